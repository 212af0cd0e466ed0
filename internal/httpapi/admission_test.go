package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var defaultPreviewHosts = []string{"v0.app", "usercontent.net"}

func admissionRequest(path string, cookies ...*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func TestAdmissionRedirect_ExemptPaths(t *testing.T) {
	paths := []string{
		"/auth/sign-in", "/auth/pin", "/api/pin/verify", "/api/anything",
		"/admin/login", "/assets/app.js", "/_next/static/chunk",
		"/favicon.ico", "/health",
		"/logo.svg", "/img/hero.PNG", "/styles/site.css", "/robots.txt", "/bundle.js.map",
	}
	for _, p := range paths {
		assert.Empty(t, admissionRedirect(admissionRequest(p), defaultPreviewHosts), p)
	}
}

func TestAdmissionRedirect_PreviewHosts(t *testing.T) {
	for _, host := range []string{"preview.v0.app", "abc.usercontent.net:443"} {
		r := admissionRequest("/dashboard")
		r.Host = host
		assert.Empty(t, admissionRedirect(r, defaultPreviewHosts), host)
	}

	r := admissionRequest("/dashboard")
	r.Host = "bank.example"
	assert.NotEmpty(t, admissionRedirect(r, defaultPreviewHosts))
	r.Host = "preview.v0.app"
	assert.NotEmpty(t, admissionRedirect(r, nil), "no preview hosts configured")
}

func TestAdmissionRedirect_NoIdentity(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/dashboard", "/auth/sign-in?redirectedFrom=%2Fdashboard"},
		{"/", "/auth/sign-in?redirectedFrom=%2F"},
		{"/cards/123", "/auth/sign-in?redirectedFrom=%2Fcards%2F123"},
		{"/admin", "/auth/sign-in?redirectedFrom=%2Fadmin"},
		{"/admin/users", "/auth/sign-in?redirectedFrom=%2Fadmin%2Fusers"},
	}
	for _, tt := range tests {
		r := admissionRequest(tt.path,
			&http.Cookie{Name: pinCookieName, Value: "true"},
			&http.Cookie{Name: "unrelated", Value: "x"})
		assert.Equal(t, tt.want, admissionRedirect(r, defaultPreviewHosts), tt.path)
	}
}

func TestAdmissionRedirect_IdentityCookieNames(t *testing.T) {
	names := []string{
		"sb-access-token",
		"sb-refresh-token",
		"supabase-auth-token",
		"sb-abcd-auth-token",
		"sb-local-auth-token",
	}
	for _, name := range names {
		r := admissionRequest("/dashboard", &http.Cookie{Name: name, Value: "anything"})
		assert.Equal(t, "/auth/pin?redirectedFrom=%2Fdashboard", admissionRedirect(r, defaultPreviewHosts), name)

		r = admissionRequest("/dashboard",
			&http.Cookie{Name: name, Value: "anything"},
			&http.Cookie{Name: pinCookieName, Value: "true"})
		assert.Empty(t, admissionRedirect(r, defaultPreviewHosts), name)
	}
}

func TestAdmissionRedirect_PinCookieMustBeExactlyTrue(t *testing.T) {
	for _, v := range []string{"TRUE", "1", "yes", "", "true "} {
		r := admissionRequest("/withdraw",
			&http.Cookie{Name: "sb-access-token", Value: "t"},
			&http.Cookie{Name: pinCookieName, Value: v})
		assert.Equal(t, "/auth/pin?redirectedFrom=%2Fwithdraw", admissionRedirect(r, defaultPreviewHosts), "%q", v)
	}
}

func TestAdmissionFilter_Middleware(t *testing.T) {
	var reached bool
	h := admissionFilter(defaultPreviewHosts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, admissionRequest("/profile"))
	assert.False(t, reached)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/auth/sign-in?redirectedFrom=%2Fprofile", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, admissionRequest("/profile",
		&http.Cookie{Name: "sb-refresh-token", Value: "t"},
		&http.Cookie{Name: pinCookieName, Value: "true"}))
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLocalPath(t *testing.T) {
	tests := map[string]string{
		"":                      defaultLanding,
		"/cards":                "/cards",
		"/cards?tab=virtual":    "/cards?tab=virtual",
		"//evil.example":        defaultLanding,
		"https://evil.example/": defaultLanding,
		`/\evil.example`:        defaultLanding,
		"dashboard":             defaultLanding,
		"/auth/pin":             defaultLanding,
	}
	for in, want := range tests {
		assert.Equal(t, want, localPath(in), in)
	}
}
