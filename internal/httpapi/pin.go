package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"pingate-bank/web/internal/pin"
)

type pinRequest struct {
	PIN            string `json:"pin"`
	RedirectedFrom string `json:"redirectedFrom"`
}

// decodePIN reads and validates the body. Anything that is not exactly six
// digits, including a malformed body, is invalid input.
func decodePIN(r *http.Request) (pinRequest, error) {
	var req pinRequest
	if err := decodeJSON(r, &req); err != nil {
		return pinRequest{}, pin.ErrInvalidInput
	}
	if err := pin.Validate(req.PIN); err != nil {
		return pinRequest{}, err
	}
	return req, nil
}

func (s *Server) handlePinSet(w http.ResponseWriter, r *http.Request) {
	req, err := decodePIN(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.check(r, requireIdentity)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.pins.Set(r.Context(), *id, req.PIN); err != nil {
		s.fail(w, r, err)
		return
	}
	s.audit.log(auditPinSet, r, id.ID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handlePinVerify answers with next, the same-origin page to continue to.
func (s *Server) handlePinVerify(w http.ResponseWriter, r *http.Request) {
	req, err := decodePIN(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.check(r, requireIdentity)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.pins.Verify(r.Context(), *id, req.PIN); err != nil {
		var locked *pin.LockedError
		switch {
		case errors.As(err, &locked):
			s.audit.log(auditPinLocked, r, id.ID, slog.Duration("retry_after", locked.RetryAfter))
		case errors.Is(err, pin.ErrIncorrectPin):
			s.audit.log(auditPinFailure, r, id.ID)
		}
		s.fail(w, r, err)
		return
	}

	s.writePinCookie(w)
	s.audit.log(auditPinVerified, r, id.ID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "next": redirectedFrom(r, req.RedirectedFrom)})
}
