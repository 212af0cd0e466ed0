package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"pingate-bank/web/internal/auth"
	"pingate-bank/web/internal/pin"
)

const maxBodyBytes = 1 << 16

var (
	errBadRequest  = errors.New("invalid request body")
	errPinRequired = errors.New("pin verification required")
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}

// mapError translates a domain error into status, code and message.
func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, pin.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input", "Invalid PIN"
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized", "Unauthorized"
	case errors.Is(err, pin.ErrPinNotSet):
		return http.StatusBadRequest, "pin_not_set", "PIN not set"
	case errors.Is(err, pin.ErrIncorrectPin):
		return http.StatusBadRequest, "incorrect_pin", "Incorrect PIN"
	case errors.Is(err, pin.ErrLocked):
		return http.StatusTooManyRequests, "locked", "Too many attempts, try again later"
	case errors.Is(err, errPinRequired):
		return http.StatusForbidden, "pin_required", "PIN verification required"
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "forbidden", "Forbidden"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, "email_taken", "Email already registered"
	case errors.Is(err, auth.ErrInvalidEmail):
		return http.StatusBadRequest, "invalid_email", "Invalid email"
	case errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, "weak_password", "Password must be at least 8 characters"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "invalid_request", "Invalid request body"
	default:
		return http.StatusInternalServerError, "upstream_failure", "Internal server error"
	}
}

// fail writes err as a JSON error. Unmapped errors are logged with the
// request id and reported as upstream failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := mapError(err)

	var locked *pin.LockedError
	if errors.As(err, &locked) {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(locked.RetryAfter.Seconds()))))
	}
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", r.Header.Get(requestIDHeader)),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	writeError(w, status, code, msg)
}
