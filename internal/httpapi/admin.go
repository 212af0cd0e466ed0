package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pingate-bank/web/internal/auth"
	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"
)

const maxListLimit = 500

type profileView struct {
	UserID       string     `json:"user_id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         model.Role `json:"role"`
	HasPin       bool       `json:"has_pin"`
	PinUpdatedAt *time.Time `json:"pin_updated_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func newProfileView(p model.Profile) profileView {
	return profileView{
		UserID:       p.UserID,
		Email:        p.Email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Role:         p.Role,
		HasPin:       p.HasPin(),
		PinUpdatedAt: p.PinUpdatedAt,
		CreatedAt:    p.CreatedAt,
	}
}

func (s *Server) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.FirstName) == "" {
		req.FirstName = "Admin"
	}
	if strings.TrimSpace(req.LastName) == "" {
		req.LastName = "User"
	}

	id, p, err := s.auth.CreateAdmin(r.Context(), auth.SignUpRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var caller string
	if c := identityFromContext(r.Context()); c != nil {
		caller = c.ID
	}
	s.audit.log(auditAdminCreated, r, caller, slog.String("created_user_id", id.ID))

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":    newUserView(id),
		"profile": newProfileView(p),
	})
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	f := store.ProfileFilter{Role: model.Role(r.URL.Query().Get("role"))}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.fail(w, r, errBadRequest)
			return
		}
		f.Limit = min(n, maxListLimit)
	}

	profiles, err := s.auth.Store().ListProfiles(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]profileView, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, newProfileView(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.endSession(w, r, auditAdminLogout); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "next": adminLoginPath})
}
