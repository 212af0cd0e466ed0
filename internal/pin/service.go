package pin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"
)

// ProfileStore is the slice of the credential store the PIN flow needs.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	UpsertPinHash(ctx context.Context, defaults model.Profile, pinHash string) (model.Profile, error)
}

// Service sets and verifies PINs for authenticated identities.
type Service struct {
	store   ProfileStore
	hasher  Hasher
	limiter *AttemptLimiter
	logger  *slog.Logger
}

func NewService(st ProfileStore, hasher Hasher, limiter *AttemptLimiter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, hasher: hasher, limiter: limiter, logger: logger}
}

// Set stores the digest of pin on the identity's profile, creating the
// profile when missing. It does not mark the session as PIN-verified.
func (s *Service) Set(ctx context.Context, id model.Identity, pin string) error {
	if err := Validate(pin); err != nil {
		return err
	}

	digest, err := s.hasher.Hash(pin)
	if err != nil {
		return err
	}

	defaults := model.Profile{
		UserID:    id.ID,
		Email:     id.Email,
		FirstName: model.DefaultFirstName(id.Email),
		Role:      model.RoleUser,
	}
	if _, err := s.store.UpsertPinHash(ctx, defaults, digest); err != nil {
		return fmt.Errorf("store pin: %w", err)
	}

	s.limiter.Reset(id.ID)
	return nil
}

// Verify checks pin against the stored digest. On success the caller may
// grant the PIN-verified signal.
func (s *Service) Verify(ctx context.Context, id model.Identity, pin string) error {
	if err := Validate(pin); err != nil {
		return err
	}

	attempt, wait, err := s.limiter.Acquire(ctx, id.ID)
	if err != nil {
		return err
	}
	if wait > 0 {
		return &LockedError{RetryAfter: wait}
	}
	defer attempt.Release()

	profile, err := s.store.GetProfile(ctx, id.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPinNotSet
		}
		return fmt.Errorf("load profile: %w", err)
	}
	if !profile.HasPin() {
		return ErrPinNotSet
	}

	ok, needsRehash, err := s.hasher.Verify(pin, profile.PinHash)
	if err != nil {
		return fmt.Errorf("verify pin: %w", err)
	}
	if !ok {
		if wait := attempt.Fail(); wait > 0 {
			s.logger.WarnContext(ctx, "pin entry locked", "user_id", id.ID, "retry_after", wait.String())
		}
		return ErrIncorrectPin
	}

	attempt.Succeed()

	if needsRehash {
		s.upgrade(ctx, *profile, pin)
	}
	return nil
}

// upgrade replaces an outdated digest. Failure leaves the old digest usable.
func (s *Service) upgrade(ctx context.Context, profile model.Profile, pin string) {
	digest, err := s.hasher.Hash(pin)
	if err != nil {
		s.logger.WarnContext(ctx, "pin rehash failed", "user_id", profile.UserID, "error", err)
		return
	}
	if _, err := s.store.UpsertPinHash(ctx, profile, digest); err != nil {
		s.logger.WarnContext(ctx, "pin rehash failed", "user_id", profile.UserID, "error", err)
		return
	}
	s.logger.InfoContext(ctx, "pin digest upgraded", "user_id", profile.UserID)
}
