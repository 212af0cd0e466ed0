package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pingate-bank/web/internal/auth"
	"pingate-bank/web/internal/model"
)

type credentialsRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	RedirectedFrom string `json:"redirectedFrom"`
}

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type authResponse struct {
	User userView `json:"user"`
	Next string   `json:"next"`
}

func newUserView(id model.Identity) userView {
	return userView{ID: id.ID, Email: id.Email}
}

// localPath returns raw if it is a same-origin path outside /auth, else the
// default landing page.
func localPath(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return defaultLanding
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || strings.HasPrefix(u.Path, "/auth") {
		return defaultLanding
	}
	return raw
}

func redirectedFrom(r *http.Request, body string) string {
	if body != "" {
		return localPath(body)
	}
	return localPath(r.URL.Query().Get("redirectedFrom"))
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	id, _, err := s.auth.SignUp(r.Context(), auth.SignUpRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.audit.log(auditSignUp, r, id.ID)

	token, _, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeIdentityCookie(w, r, token, time.Now().Add(s.auth.SessionTTL()))
	s.clearPinCookie(w, r)

	writeJSON(w, http.StatusCreated, authResponse{
		User: newUserView(id),
		Next: redirectTarget(pinSetupPath, redirectedFrom(r, req.RedirectedFrom)),
	})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	token, id, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.audit.log(auditSignInFailure, r, "", slog.String("email", strings.TrimSpace(req.Email)))
		}
		s.fail(w, r, err)
		return
	}
	s.audit.log(auditSignInSuccess, r, id.ID)

	s.writeIdentityCookie(w, r, token, time.Now().Add(s.auth.SessionTTL()))
	s.clearPinCookie(w, r)
	writeJSON(w, http.StatusOK, authResponse{
		User: newUserView(id),
		Next: redirectTarget(pinPath, redirectedFrom(r, req.RedirectedFrom)),
	})
}

// endSession revokes the caller's session, if any, and clears both the
// identity and PIN cookies.
func (s *Server) endSession(w http.ResponseWriter, r *http.Request, event auditEvent) error {
	token := s.identityToken(r)
	if token != "" {
		var userID string
		if id, err := s.auth.CurrentUser(r.Context(), token); err == nil {
			userID = id.ID
		}
		if err := s.auth.SignOut(r.Context(), token); err != nil {
			return err
		}
		s.audit.log(event, r, userID)
	}
	s.clearCookies(w, r)
	return nil
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.endSession(w, r, auditSignOut); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "next": signInPath})
}
