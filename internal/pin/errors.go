package pin

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid pin")
	ErrPinNotSet    = errors.New("pin not set")
	ErrIncorrectPin = errors.New("incorrect pin")
	ErrLocked       = errors.New("pin entry locked")
)

// LockedError reports how long the caller must wait before trying again.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("pin entry locked for %s", e.RetryAfter.Round(time.Second))
}

func (e *LockedError) Unwrap() error { return ErrLocked }
