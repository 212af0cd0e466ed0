package httpapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingate-bank/web/internal/auth"
	"pingate-bank/web/internal/config"
)

func (e *testEnv) seedAdmin(email string) {
	e.t.Helper()
	_, _, err := e.auth.CreateAdmin(context.Background(), auth.SignUpRequest{Email: email, Password: "password1"})
	require.NoError(e.t, err)
}

func (e *testEnv) verifyPin(c *http.Client) {
	e.t.Helper()
	require.Equal(e.t, http.StatusOK, e.do(c, http.MethodPost, "/api/pin/set", map[string]string{"pin": "123456"}).status)
	require.Equal(e.t, http.StatusOK, e.do(c, http.MethodPost, "/api/pin/verify", map[string]string{"pin": "123456"}).status)
}

func TestAdminGate_Pages(t *testing.T) {
	env := newTestEnv(t)

	anon := env.client()
	res := env.do(anon, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, res.status)
	assert.Equal(t, "/auth/sign-in?redirectedFrom=%2Fadmin", res.header.Get("Location"))

	assert.Equal(t, http.StatusOK, env.do(anon, http.MethodGet, "/admin/login", nil).status)

	user := env.client()
	env.signUp(user, "pat@example.com")
	res = env.do(user, http.MethodGet, "/admin/users", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, res.status)
	assert.Equal(t, "/auth/pin?redirectedFrom=%2Fadmin%2Fusers", res.header.Get("Location"))

	env.verifyPin(user)
	res = env.do(user, http.MethodGet, "/admin/users", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, res.status, "non-admin roles are rejected on every admin page")
	assert.Equal(t, "/admin/login?redirectedFrom=%2Fadmin%2Fusers", res.header.Get("Location"))

	env.seedAdmin("root@example.com")
	admin := env.client()
	env.signIn(admin, "root@example.com")
	res = env.do(admin, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, res.status, "the console needs the PIN signal too")
	assert.Equal(t, "/auth/pin?redirectedFrom=%2Fadmin", res.header.Get("Location"))

	env.verifyPin(admin)
	assert.Equal(t, http.StatusOK, env.do(admin, http.MethodGet, "/admin", nil).status)
	assert.Equal(t, http.StatusOK, env.do(admin, http.MethodGet, "/admin/users", nil).status)
}

func TestAdminGate_PagesNeedPinOnPreviewHosts(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.PreviewHosts = []string{"127.0.0.1"} })
	env.seedAdmin("root@example.com")
	admin := env.client()
	env.signIn(admin, "root@example.com")

	res := env.do(admin, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, res.status)
	assert.Equal(t, "/auth/pin?redirectedFrom=%2Fadmin", res.header.Get("Location"))
}

func TestAdminGate_API(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(env.client(), http.MethodGet, "/api/admin/users", nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Equal(t, "unauthorized", res.body["code"])

	user := env.client()
	env.signUp(user, "pat@example.com")
	res = env.do(user, http.MethodGet, "/api/admin/users", nil)
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "forbidden", res.body["code"])

	res = env.do(user, http.MethodPost, "/api/admin/create", map[string]string{"email": "x@example.com", "password": "password1"})
	assert.Equal(t, http.StatusForbidden, res.status)
}

func TestAdminCreateAndList(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin("root@example.com")
	admin := env.client()
	env.signIn(admin, "root@example.com")
	env.signUp(env.client(), "pat@example.com")

	res := env.do(admin, http.MethodPost, "/api/admin/create", map[string]string{
		"email": "ops@example.com", "password": "password1",
	})
	require.Equal(t, http.StatusCreated, res.status, res.raw)
	profile := res.body["profile"].(map[string]any)
	assert.Equal(t, "admin", profile["role"])
	assert.Equal(t, "Admin", profile["first_name"])
	assert.Equal(t, "User", profile["last_name"])
	assert.Contains(t, env.logs.String(), `"event":"admin_created"`)

	res = env.do(admin, http.MethodPost, "/api/admin/create", map[string]string{
		"email": "OPS@example.com", "password": "password1",
	})
	assert.Equal(t, http.StatusConflict, res.status)

	res = env.do(admin, http.MethodGet, "/api/admin/users", nil)
	require.Equal(t, http.StatusOK, res.status)
	users := res.body["users"].([]any)
	assert.Len(t, users, 3)
	for _, u := range users {
		_, leaked := u.(map[string]any)["pin_hash"]
		assert.False(t, leaked)
	}

	res = env.do(admin, http.MethodGet, "/api/admin/users?role=admin", nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Len(t, res.body["users"].([]any), 2)

	res = env.do(admin, http.MethodGet, "/api/admin/users?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, res.status)
}

func TestAdminLogout(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin("root@example.com")
	admin := env.client()
	env.signIn(admin, "root@example.com")

	res := env.do(admin, http.MethodPost, "/api/admin/logout", nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, adminLoginPath, res.body["next"])

	res = env.do(admin, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, res.status)
}
