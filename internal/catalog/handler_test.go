package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrunalTTech03/rbac-console/internal/catalog"
	"github.com/KrunalTTech03/rbac-console/internal/guard"
	"github.com/KrunalTTech03/rbac-console/internal/shared"
	_ "github.com/KrunalTTech03/rbac-console/testing"
)

type fakeRepo struct {
	catalog.Repository

	users []catalog.User
	roles []catalog.Role
}

func (f *fakeRepo) ListUsers(ctx context.Context, q catalog.ListQuery) ([]catalog.User, shared.Pagination, error) {
	return f.users, shared.NewPagination(q.Page, q.PerPage, len(f.users)), nil
}

func (f *fakeRepo) ListRoles(ctx context.Context) ([]catalog.Role, error) {
	return f.roles, nil
}

func (f *fakeRepo) CreateRole(ctx context.Context, name string) error { return nil }

func (f *fakeRepo) FilterUsers(ctx context.Context, filters []catalog.FilterRow) ([]catalog.User, error) {
	return f.users, nil
}

func newRouter(t *testing.T, repo catalog.Repository, perms []string) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	sess, err := manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Login(shared.Identity{UserID: "u-1", Token: "tok", Permissions: perms})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := catalog.NewHandler(logger, catalog.NewService(repo, 20*time.Millisecond), guard.Guard{Logger: logger})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/users", handler.MountUsers)
	r.Route("/roles", handler.MountRoles)
	r.Route("/permissions", handler.MountPermissions)
	return r
}

func jsonReq(method, path, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Accept", "application/json")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestListUsers(t *testing.T) {
	repo := &fakeRepo{users: []catalog.User{{ID: "u1", Name: "Ana"}, {ID: "u2", Name: "Ben"}}}
	router := newRouter(t, repo, []string{shared.PermRead})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, jsonReq(http.MethodGet, "/users/?pageNumber=1&pageSize=10", ""))

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Ana")
	assert.Contains(t, res.Body.String(), `"pagination"`)
}

func TestListUsersForbiddenWithoutRead(t *testing.T) {
	router := newRouter(t, &fakeRepo{}, []string{shared.PermCreate})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, jsonReq(http.MethodGet, "/users/", ""))
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestSearchUsersReturnsLatestResult(t *testing.T) {
	repo := &fakeRepo{users: []catalog.User{{ID: "u1", Name: "John"}}}
	router := newRouter(t, repo, []string{shared.PermRead})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, jsonReq(http.MethodGet, "/users/search?q=joh", ""))

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "John")
}

func TestSearchUsersSupersededAnswersNoContent(t *testing.T) {
	repo := &fakeRepo{users: []catalog.User{{ID: "u1", Name: "John"}}}
	router := newRouter(t, repo, []string{shared.PermRead})

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i, q := range []string{"j", "jo"} {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			res := httptest.NewRecorder()
			router.ServeHTTP(res, jsonReq(http.MethodGet, "/users/search?q="+q, ""))
			codes[i] = res.Code
		}(i, q)
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	assert.Equal(t, http.StatusNoContent, codes[0], "stale keystroke gets no content")
	assert.Equal(t, http.StatusOK, codes[1], "latest keystroke gets the result")
}

func TestFilterUsersRejectsBadRows(t *testing.T) {
	router := newRouter(t, &fakeRepo{}, []string{shared.PermRead})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, jsonReq(http.MethodPost, "/users/filter", `[{"column":"","condition":"equals","value":"x"}]`))
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestCreateRoleValidation(t *testing.T) {
	router := newRouter(t, &fakeRepo{}, []string{shared.PermCreate})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, jsonReq(http.MethodPost, "/roles/", `{"name":"  "}`))
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, jsonReq(http.MethodPost, "/roles/", `{"name":"Auditor"}`))
	assert.Equal(t, http.StatusCreated, res.Code)
}

func TestRolePermissionManagementNeedsManagePermission(t *testing.T) {
	router := newRouter(t, &fakeRepo{}, []string{shared.PermRead, shared.PermUpdate})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, jsonReq(http.MethodPost, "/roles/r1/permissions", `{"permissionIds":["p1"]}`))
	assert.Equal(t, http.StatusForbidden, res.Code)
}
