package guard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrunalTTech03/rbac-console/internal/guard"
	"github.com/KrunalTTech03/rbac-console/internal/shared"
	_ "github.com/KrunalTTech03/rbac-console/testing"
)

func sessionWith(t *testing.T, id shared.Identity) *shared.Session {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	sess, err := manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	if id.Token != "" {
		sess.Login(id)
	}
	return sess
}

func serve(t *testing.T, mw func(http.Handler) http.Handler, req *http.Request, sess *shared.Session) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	reached := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res, reached
}

func TestRequireAuthRedirectsAnonymousBrowser(t *testing.T) {
	g := guard.Guard{}
	sess := sessionWith(t, shared.Identity{})

	req := httptest.NewRequest(http.MethodGet, "/menus?page=2", nil)
	res, reached := serve(t, g.RequireAuth(), req, sess)

	assert.False(t, reached)
	require.Equal(t, http.StatusSeeOther, res.Code)

	loc, err := url.Parse(res.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, guard.LoginPath, loc.Path)
	assert.Equal(t, "/menus?page=2", loc.Query().Get("from"))
	assert.Equal(t, "/menus?page=2", sess.Get(shared.ReturnPathKey))
}

func TestRequireAuthJSONGets401(t *testing.T) {
	g := guard.Guard{}
	sess := sessionWith(t, shared.Identity{})

	req := httptest.NewRequest(http.MethodGet, "/menus", nil)
	req.Header.Set("Accept", "application/json")
	res, reached := serve(t, g.RequireAuth(), req, sess)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequireAuthPassesAuthenticated(t *testing.T) {
	g := guard.Guard{}
	sess := sessionWith(t, shared.Identity{UserID: "u-1", Token: "tok"})

	res, reached := serve(t, g.RequireAuth(), httptest.NewRequest(http.MethodGet, "/menus", nil), sess)

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestPermissionDeniedRedirectsBrowser(t *testing.T) {
	g := guard.Guard{}
	sess := sessionWith(t, shared.Identity{UserID: "u-1", Token: "tok", Permissions: []string{shared.PermRead}})

	res, reached := serve(t, g.Permission(shared.PermDelete), httptest.NewRequest(http.MethodGet, "/menus", nil), sess)

	assert.False(t, reached)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, guard.UnauthorizedPath, res.Header().Get("Location"))
}

func TestPermissionDeniedJSONGets403(t *testing.T) {
	g := guard.Guard{}
	sess := sessionWith(t, shared.Identity{UserID: "u-1", Token: "tok"})

	req := httptest.NewRequest(http.MethodDelete, "/menus/m1", nil)
	req.Header.Set(shared.CSRFHeader, "token")
	res, reached := serve(t, g.Permission(shared.PermDelete), req, sess)

	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestPermissionGranted(t *testing.T) {
	g := guard.Guard{}
	sess := sessionWith(t, shared.Identity{UserID: "u-1", Token: "tok", Permissions: []string{shared.PermDelete}})

	_, reached := serve(t, g.Permission(shared.PermDelete), httptest.NewRequest(http.MethodDelete, "/menus/m1", nil), sess)
	assert.True(t, reached)
}

func TestAnyRoleMatchesOneOfSeveral(t *testing.T) {
	g := guard.Guard{}
	sess := sessionWith(t, shared.Identity{UserID: "u-1", Token: "tok", Roles: []string{"User"}})

	_, reached := serve(t, g.AnyRole("Admin", "User"), httptest.NewRequest(http.MethodGet, "/", nil), sess)
	assert.True(t, reached)

	res, reached := serve(t, g.AnyRole("Admin"), httptest.NewRequest(http.MethodGet, "/", nil), sess)
	assert.False(t, reached)
	assert.Equal(t, http.StatusSeeOther, res.Code)
}

func TestProtectChecksAuthBeforePermission(t *testing.T) {
	// Anonymous callers are redirected to login, never to unauthorized,
	// even when a permission requirement would also fail.
	g := guard.Guard{}
	sess := sessionWith(t, shared.Identity{})

	res, reached := serve(t, g.Protect(guard.Requirement{Permission: shared.PermDelete}), httptest.NewRequest(http.MethodGet, "/menus", nil), sess)

	assert.False(t, reached)
	require.Equal(t, http.StatusSeeOther, res.Code)
	loc, err := url.Parse(res.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, guard.LoginPath, loc.Path)
}

func TestGuardAnswersForNilSession(t *testing.T) {
	g := guard.Guard{}

	res, reached := serve(t, g.RequireAuth(), httptest.NewRequest(http.MethodGet, "/menus", nil), nil)
	assert.False(t, reached)
	assert.Equal(t, http.StatusSeeOther, res.Code)
}
