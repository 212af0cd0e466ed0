package httpapi

import (
	"log/slog"
	"net/http"
	"time"
)

type auditEvent string

const (
	auditSignUp        auditEvent = "sign_up"
	auditSignInSuccess auditEvent = "sign_in_success"
	auditSignInFailure auditEvent = "sign_in_failure"
	auditSignOut       auditEvent = "sign_out"
	auditPinSet        auditEvent = "pin_set"
	auditPinVerified   auditEvent = "pin_verified"
	auditPinFailure    auditEvent = "pin_failure"
	auditPinLocked     auditEvent = "pin_locked"
	auditAdminCreated  auditEvent = "admin_created"
	auditAdminLogout   auditEvent = "admin_logout"
)

// auditLogger writes security events as structured records tagged
// component=audit.
type auditLogger struct {
	logger *slog.Logger
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{logger: logger.With("component", "audit")}
}

func (al *auditLogger) log(event auditEvent, r *http.Request, userID string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("user_id", userID),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("request_id", r.Header.Get(requestIDHeader)),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	attrs = append(attrs, extra...)
	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", attrs...)
}
