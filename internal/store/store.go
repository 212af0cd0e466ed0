package store

import (
	"context"
	"errors"
	"time"

	"pingate-bank/web/internal/model"
)

var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
)

// ProfileFilter narrows ListProfiles. Zero values match everything.
type ProfileFilter struct {
	Role  model.Role
	Limit int
}

// Store is the credential store: identities, their sessions and profiles.
// Implementations must be safe for concurrent use.
type Store interface {
	CreateIdentity(ctx context.Context, id model.Identity) (model.Identity, error)
	GetIdentityByID(ctx context.Context, id string) (*model.Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error)

	CreateSession(ctx context.Context, s model.Session) (model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	RevokeSession(ctx context.Context, id string) error

	CreateProfile(ctx context.Context, p model.Profile) (model.Profile, error)
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	ListProfiles(ctx context.Context, f ProfileFilter) ([]model.Profile, error)
	// UpsertPinHash sets pin_hash on the caller's profile, creating the
	// profile from the given defaults when none exists.
	UpsertPinHash(ctx context.Context, defaults model.Profile, pinHash string) (model.Profile, error)

	Close() error
}

// SessionPurger is implemented by stores that can drop dead sessions.
type SessionPurger interface {
	PurgeSessions(ctx context.Context, cutoff time.Time) (int, error)
}
