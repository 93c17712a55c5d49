package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/KrunalTTech03/rbac-console/internal/shared"
	_ "github.com/KrunalTTech03/rbac-console/testing"
)

func newManager(t *testing.T) (*shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false), mr
}

func TestPredicatesAnonymousSession(t *testing.T) {
	manager, _ := newManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}

	if sess.IsAuthenticated() {
		t.Fatalf("fresh session must not be authenticated")
	}
	if sess.HasPermission("Read") {
		t.Fatalf("fresh session must have no permissions")
	}
	if sess.HasAnyRole("Admin", "User") {
		t.Fatalf("fresh session must have no roles")
	}
}

func TestPredicatesNilSession(t *testing.T) {
	var sess *shared.Session
	if sess.IsAuthenticated() || sess.HasPermission("Read") || sess.HasAnyRole("Admin") {
		t.Fatalf("nil session must answer false everywhere")
	}
	if sess.UserID() != "" || sess.Token() != "" {
		t.Fatalf("nil session must have empty identity")
	}
}

func TestLoginMakesClaimsVisible(t *testing.T) {
	manager, _ := newManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}

	sess.Login(shared.Identity{
		UserID:      "u-42",
		Roles:       []string{"Admin"},
		Permissions: []string{"Create", "Read"},
		Token:       "bearer-token",
	})

	if !sess.IsAuthenticated() {
		t.Fatalf("expected authenticated after login")
	}
	if !sess.HasPermission("Create") || !sess.HasPermission("Read") {
		t.Fatalf("expected granted permissions to answer true")
	}
	if sess.HasPermission("Delete") {
		t.Fatalf("ungranted permission must answer false")
	}
	if !sess.HasAnyRole("SuperAdmin", "Admin") {
		t.Fatalf("expected role match in candidate list")
	}
	if sess.HasAnyRole("SuperAdmin") {
		t.Fatalf("non-member role must answer false")
	}
}

func TestLogoutClearsClaimsSynchronously(t *testing.T) {
	manager, _ := newManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.Login(shared.Identity{UserID: "u-1", Roles: []string{"User"}, Permissions: []string{"Read"}, Token: "tok"})
	sess.Set(shared.SidebarCollapsedKey, "1")

	sess.Logout()

	// Cleared before any store round-trip.
	if sess.IsAuthenticated() {
		t.Fatalf("logout must clear authentication immediately")
	}
	if sess.HasPermission("Read") || sess.HasAnyRole("User") {
		t.Fatalf("logout must clear claims immediately")
	}
	if sess.Get(shared.SidebarCollapsedKey) != "" {
		t.Fatalf("logout must clear stored values")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	manager, _ := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.Login(shared.Identity{UserID: "u-7", Roles: []string{"Admin"}, Permissions: []string{"Read"}, Token: "tok"})

	res := httptest.NewRecorder()
	if err := manager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: manager.CookieName(), Value: sess.ID})
	loaded, err := manager.Load(ctx, next)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}

	if !loaded.IsAuthenticated() {
		t.Fatalf("expected identity to survive the round trip")
	}
	if loaded.UserID() != "u-7" || loaded.Token() != "tok" {
		t.Fatalf("unexpected identity after reload: %q %q", loaded.UserID(), loaded.Token())
	}
	if !loaded.HasAnyRole("Admin") || !loaded.HasPermission("Read") {
		t.Fatalf("expected claims to survive the round trip")
	}
}

func TestFlashSurvivesUntilDrained(t *testing.T) {
	manager, _ := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back"})
	if err := manager.Commit(ctx, httptest.NewRecorder(), req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	// The next request sees the queued flash exactly once.
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: manager.CookieName(), Value: sess.ID})
	loaded, err := manager.Load(ctx, next)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	flashes := loaded.PopFlashes()
	if len(flashes) != 1 || flashes[0].Message != "Welcome back" {
		t.Fatalf("expected the queued flash after reload, got %v", flashes)
	}
	if err := manager.Commit(ctx, httptest.NewRecorder(), next, loaded); err != nil {
		t.Fatalf("commit drained session: %v", err)
	}

	third := httptest.NewRequest(http.MethodGet, "/", nil)
	third.AddCookie(&http.Cookie{Name: manager.CookieName(), Value: sess.ID})
	again, err := manager.Load(ctx, third)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if again.PopFlash() != nil {
		t.Fatalf("drained flash must not reappear")
	}
}

func TestStoreFailureDegradesToAnonymous(t *testing.T) {
	manager, mr := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.Login(shared.Identity{UserID: "u-9", Token: "tok"})
	res := httptest.NewRecorder()
	if err := manager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	mr.Close()

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: manager.CookieName(), Value: sess.ID})
	degraded, err := manager.Load(ctx, next)
	if err == nil {
		t.Fatalf("expected a store error to be reported")
	}
	if degraded == nil {
		t.Fatalf("expected a usable session despite the store error")
	}
	if degraded.IsAuthenticated() {
		t.Fatalf("degraded session must be anonymous")
	}
}

func TestDestroyDeletesServerState(t *testing.T) {
	manager, mr := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.Login(shared.Identity{UserID: "u-1", Token: "tok"})
	res := httptest.NewRecorder()
	if err := manager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	if len(mr.Keys()) == 0 {
		t.Fatalf("expected session key in store")
	}

	manager.Destroy(sess)
	res2 := httptest.NewRecorder()
	if err := manager.Commit(ctx, res2, req, sess); err != nil {
		t.Fatalf("commit destroyed session: %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("expected session key removed, got %v", mr.Keys())
	}
}
