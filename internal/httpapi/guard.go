package httpapi

import (
	"context"
	"errors"
	"net/http"

	"pingate-bank/web/internal/auth"
	"pingate-bank/web/internal/model"
)

type denyMode int

const (
	denyJSON denyMode = iota
	denyRedirect
)

// Requirement is the set of signals a protected entry point needs.
type Requirement struct {
	Identity bool
	PIN      bool
	Role     model.Role

	Deny denyMode
	// LoginPath is where denyRedirect sends visitors without an identity or
	// the required role. Defaults to the customer sign-in page.
	LoginPath string
}

var (
	requireIdentity = Requirement{Identity: true}
	requireCustomer = Requirement{Identity: true, PIN: true}
	requireAdminAPI = Requirement{Identity: true, Role: model.RoleAdmin}
	requireAdminUI  = Requirement{Identity: true, PIN: true, Role: model.RoleAdmin, Deny: denyRedirect, LoginPath: adminLoginPath}
)

// check resolves the signals req asks for. A role requirement implies an
// identity. The profile is only loaded when a role is required.
func (s *Server) check(r *http.Request, req Requirement) (*model.Identity, error) {
	var id *model.Identity

	if req.Identity || req.Role != "" {
		var err error
		id, err = s.auth.CurrentUser(r.Context(), s.identityToken(r))
		if err != nil {
			return nil, err
		}
	}

	if req.PIN && !pinVerified(r) {
		return id, errPinRequired
	}

	if req.Role != "" {
		if _, err := s.auth.RequireRole(r.Context(), id.ID, req.Role); err != nil {
			return id, err
		}
	}
	return id, nil
}

// require is check as middleware. The resolved identity is put on the
// request context.
func (s *Server) require(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := s.check(r, req)
			if err != nil {
				s.deny(w, r, req, err)
				return
			}
			ctx := r.Context()
			if id != nil {
				ctx = context.WithValue(ctx, ctxIdentity, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *Server) deny(w http.ResponseWriter, r *http.Request, req Requirement, err error) {
	if req.Deny != denyRedirect {
		s.fail(w, r, err)
		return
	}

	login := req.LoginPath
	if login == "" {
		login = signInPath
	}
	switch {
	case errors.Is(err, errPinRequired):
		http.Redirect(w, r, redirectTarget(pinPath, r.URL.Path), http.StatusTemporaryRedirect)
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrForbidden):
		http.Redirect(w, r, redirectTarget(login, r.URL.Path), http.StatusTemporaryRedirect)
	default:
		// Store failures on a page still fail closed.
		s.logger.ErrorContext(r.Context(), "guard check failed", "path", r.URL.Path, "error", err)
		http.Redirect(w, r, redirectTarget(login, r.URL.Path), http.StatusTemporaryRedirect)
	}
}
