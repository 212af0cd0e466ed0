package httpapi

import (
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
)

const (
	signInPath     = "/auth/sign-in"
	pinPath        = "/auth/pin"
	pinSetupPath   = "/auth/pin-setup"
	adminLoginPath = "/admin/login"
	defaultLanding = "/dashboard"
)

var exemptPrefixes = []string{"/auth", "/api", "/assets", "/_next"}

var exemptExact = map[string]bool{
	"/favicon.ico": true,
	"/health":      true,
	adminLoginPath: true,
}

var staticExtensions = map[string]bool{
	".png": true, ".jpg": true, ".svg": true, ".ico": true,
	".css": true, ".js": true, ".map": true, ".txt": true,
}

var fixedIdentityCookies = map[string]bool{
	"sb-access-token":     true,
	"sb-refresh-token":    true,
	"supabase-auth-token": true,
}

var scopedIdentityCookie = regexp.MustCompile(`sb-.*-auth-token`)

func admissionExempt(p string) bool {
	if exemptExact[p] {
		return true
	}
	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return staticExtensions[strings.ToLower(path.Ext(p))]
}

func isPreviewHost(host string, previewHosts []string) bool {
	for _, h := range previewHosts {
		if h != "" && strings.Contains(host, h) {
			return true
		}
	}
	return false
}

// hasIdentityCookie only looks at cookie names. Whether the session behind
// the cookie is valid is decided later by the guard.
func hasIdentityCookie(r *http.Request) bool {
	for _, c := range r.Cookies() {
		if fixedIdentityCookies[c.Name] || scopedIdentityCookie.MatchString(c.Name) {
			return true
		}
	}
	return false
}

func redirectTarget(base, from string) string {
	return base + "?" + url.Values{"redirectedFrom": {from}}.Encode()
}

// admissionRedirect returns where the request must be sent, or "" to admit
// it. It reads cookies and the Host header only.
func admissionRedirect(r *http.Request, previewHosts []string) string {
	p := r.URL.Path
	if admissionExempt(p) {
		return ""
	}
	if isPreviewHost(r.Host, previewHosts) {
		return ""
	}
	if !hasIdentityCookie(r) {
		return redirectTarget(signInPath, p)
	}
	if !pinVerified(r) {
		return redirectTarget(pinPath, p)
	}
	return ""
}

// admissionFilter gates the customer surface on the identity and PIN
// cookies. It never calls the credential store.
func admissionFilter(previewHosts []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if to := admissionRedirect(r, previewHosts); to != "" {
				http.Redirect(w, r, to, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
