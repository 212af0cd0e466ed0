package httpapi

import (
	"net/http"
	"strings"
	"time"
)

const (
	pinCookieName  = "pin_verified"
	pinCookieValue = "true"
)

// cookieSecure reports whether cookies set on this response carry the Secure
// attribute. Production always does; elsewhere only TLS requests do.
func (s *Server) cookieSecure(r *http.Request) bool {
	return s.cfg.IsProduction() || requestIsSecure(r)
}

func (s *Server) writeIdentityCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.IdentityCookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
	})
}

// writePinCookie grants the PIN signal. Secure follows the environment only.
func (s *Server) writePinCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     pinCookieName,
		Value:    pinCookieValue,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.cfg.PinCookieTTL / time.Second),
	})
}

func (s *Server) clearCookies(w http.ResponseWriter, r *http.Request) {
	s.expireCookie(w, r, s.cfg.IdentityCookieName())
	s.clearPinCookie(w, r)
}

// clearPinCookie drops a PIN signal left by an earlier session in this
// browser.
func (s *Server) clearPinCookie(w http.ResponseWriter, r *http.Request) {
	s.expireCookie(w, r, pinCookieName)
}

func (s *Server) expireCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// identityToken returns the session token from the identity cookie, or from
// an Authorization bearer header for non-browser clients.
func (s *Server) identityToken(r *http.Request) string {
	if c, err := r.Cookie(s.cfg.IdentityCookieName()); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		const prefix = "Bearer "
		if strings.HasPrefix(h, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(h, prefix))
		}
	}
	return ""
}

func pinVerified(r *http.Request) bool {
	c, err := r.Cookie(pinCookieName)
	return err == nil && c.Value == pinCookieValue
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Forwarded")), "proto=https")
}
