// Package auth is the identity side of the credential store: sign-up,
// password sign-in, session tokens and current-user lookup.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultSessionTTL = 7 * 24 * time.Hour
	minPasswordLen    = 8
)

type Options struct {
	// JWTSecret signs session tokens. Empty means a random per-process key.
	JWTSecret  string
	SessionTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Logger     *slog.Logger
}

// Service is constructed once per process and shared by all handlers.
type Service struct {
	store  store.Store
	signer *tokenSigner
	ttl    time.Duration
	cost   int
	logger *slog.Logger
	now    func() time.Time
}

func NewService(st store.Store, opts Options) (*Service, error) {
	signer, err := newTokenSigner(opts.JWTSecret)
	if err != nil {
		return nil, err
	}
	s := &Service{
		store:  st,
		signer: signer,
		ttl:    opts.SessionTTL,
		cost:   opts.BcryptCost,
		logger: opts.Logger,
		now:    time.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Store exposes the underlying credential store for profile reads.
func (s *Service) Store() store.Store { return s.store }

// SessionTTL is the lifetime of tokens minted by SignIn.
func (s *Service) SessionTTL() time.Duration { return s.ttl }

// NormalizeEmail trims and case-folds an address, rejecting anything
// net/mail cannot parse as a bare address.
func (s *Service) NormalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", ErrInvalidEmail
	}
	// Casers carry state, so one per call.
	return cases.Fold().String(norm.NFC.String(raw)), nil
}

type SignUpRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      model.Role
}

// SignUp creates an identity and its profile.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (model.Identity, model.Profile, error) {
	email, err := s.NormalizeEmail(req.Email)
	if err != nil {
		return model.Identity{}, model.Profile{}, err
	}
	if len(req.Password) < minPasswordLen {
		return model.Identity{}, model.Profile{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return model.Identity{}, model.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.store.CreateIdentity(ctx, model.Identity{Email: email, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return model.Identity{}, model.Profile{}, ErrEmailTaken
		}
		return model.Identity{}, model.Profile{}, fmt.Errorf("create identity: %w", err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		firstName = model.DefaultFirstName(email)
	}

	profile, err := s.store.CreateProfile(ctx, model.Profile{
		UserID:    id.ID,
		Email:     email,
		FirstName: firstName,
		LastName:  strings.TrimSpace(req.LastName),
		Role:      role,
	})
	if err != nil && !errors.Is(err, store.ErrConflict) {
		return id, model.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return id, profile, nil
}

// SignIn checks the password and opens a session. The returned token is the
// identity cookie value.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, model.Identity, error) {
	email, err := s.NormalizeEmail(email)
	if err != nil {
		return "", model.Identity{}, ErrInvalidCredentials
	}

	id, err := s.store.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", model.Identity{}, ErrInvalidCredentials
		}
		return "", model.Identity{}, fmt.Errorf("load identity: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(id.PasswordHash), []byte(password)); err != nil {
		return "", model.Identity{}, ErrInvalidCredentials
	}

	token, err := s.issue(ctx, *id)
	if err != nil {
		return "", model.Identity{}, err
	}
	return token, *id, nil
}

func (s *Service) issue(ctx context.Context, id model.Identity) (string, error) {
	now := s.now().UTC()
	sess, err := s.store.CreateSession(ctx, model.Session{
		IdentityID: id.ID,
		ExpiresAt:  now.Add(s.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	token, err := s.signer.sign(id.ID, id.Email, sess.ID, now, sess.ExpiresAt)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// CurrentUser resolves a session token to its identity. Invalid, expired or
// revoked tokens yield ErrUnauthorized; store outages are returned wrapped.
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	claims, err := s.signer.parse(token, s.now)
	if err != nil {
		s.logger.DebugContext(ctx, "session token rejected", "error", err)
		return nil, ErrUnauthorized
	}

	sess, err := s.store.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.IdentityID != claims.Subject || !sess.Active(s.now()) {
		return nil, ErrUnauthorized
	}

	id, err := s.store.GetIdentityByID(ctx, sess.IdentityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load identity: %w", err)
	}
	return id, nil
}

// SignOut revokes the session behind token. Unknown or invalid tokens are
// ignored so sign-out is always safe to call.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.signer.parse(token, s.now)
	if err != nil {
		return nil
	}
	if err := s.store.RevokeSession(ctx, claims.SessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Profile loads the profile of an identity.
func (s *Service) Profile(ctx context.Context, identityID string) (*model.Profile, error) {
	p, err := s.store.GetProfile(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RequireRole loads the identity's profile and checks its role.
func (s *Service) RequireRole(ctx context.Context, identityID string, role model.Role) (*model.Profile, error) {
	p, err := s.store.GetProfile(ctx, identityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p.Role != role {
		return nil, ErrForbidden
	}
	return p, nil
}

// CreateAdmin registers an identity whose profile carries the admin role.
func (s *Service) CreateAdmin(ctx context.Context, req SignUpRequest) (model.Identity, model.Profile, error) {
	req.Role = model.RoleAdmin
	id, p, err := s.SignUp(ctx, req)
	if err != nil {
		return id, p, err
	}
	s.logger.InfoContext(ctx, "admin created", "user_id", id.ID)
	return id, p, nil
}
