package httpapi

import (
	"errors"
	"net/http"
	"time"

	"pingate-bank/web/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

type meResponse struct {
	User    userView     `json:"user"`
	Profile *profileView `json:"profile,omitempty"`
	HasPin  bool         `json:"has_pin"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r.Context())
	if id == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	res := meResponse{User: newUserView(*id)}
	p, err := s.auth.Profile(r.Context(), id.ID)
	switch {
	case err == nil:
		v := newProfileView(*p)
		res.Profile = &v
		res.HasPin = p.HasPin()
	case errors.Is(err, store.ErrNotFound):
	default:
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
