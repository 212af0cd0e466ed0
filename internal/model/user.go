package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is the sign-in record owned by the credential store.
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is the server-side half of an identity session. The browser holds
// a signed token that names it by ID.
type Session struct {
	ID         string     `json:"id"`
	IdentityID string     `json:"identity_id"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// Profile is the per-identity record. PinHash is empty until a PIN is set.
type Profile struct {
	UserID       string     `json:"user_id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         Role       `json:"role"`
	PinHash      string     `json:"-"`
	PinUpdatedAt *time.Time `json:"pin_updated_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (p Profile) HasPin() bool {
	return p.PinHash != ""
}

func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// DefaultFirstName derives a display name from the local part of an email.
func DefaultFirstName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local = strings.TrimSpace(local); local != "" {
		return local
	}
	return "User"
}
