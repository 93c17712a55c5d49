// Package guard gates console routes on the session's cached claims. The
// session middleware has always finished loading before a guard runs, so a
// decision is never made against a half-initialized session.
package guard

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/KrunalTTech03/rbac-console/internal/platform/httpx"
	"github.com/KrunalTTech03/rbac-console/internal/shared"
)

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// UnauthorizedPath is where denied requests are sent.
const UnauthorizedPath = "/unauthorized"

// Guard builds route middleware from the session predicates.
type Guard struct {
	Logger *slog.Logger
}

// Requirement describes the three optional AND-combined conditions of a
// guarded route. Authentication is always required.
type Requirement struct {
	Permission string
	AnyRole    []string
}

// Protect enforces authentication plus the given requirement.
func (g Guard) Protect(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())

			if !sess.IsAuthenticated() {
				g.denyUnauthenticated(w, r)
				return
			}
			if req.Permission != "" && !sess.HasPermission(req.Permission) {
				g.denyForbidden(w, r)
				return
			}
			if len(req.AnyRole) > 0 && !sess.HasAnyRole(req.AnyRole...) {
				g.denyForbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth enforces authentication only.
func (g Guard) RequireAuth() func(http.Handler) http.Handler {
	return g.Protect(Requirement{})
}

// Permission enforces authentication plus a single permission.
func (g Guard) Permission(name string) func(http.Handler) http.Handler {
	return g.Protect(Requirement{Permission: name})
}

// AnyRole enforces authentication plus membership in at least one role.
func (g Guard) AnyRole(roles ...string) func(http.Handler) http.Handler {
	return g.Protect(Requirement{AnyRole: roles})
}

func (g Guard) denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	// Preserve the requested location so the login page can offer a way
	// back. Acting on it after login is up to the login flow.
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Set(shared.ReturnPathKey, r.URL.RequestURI())
	}
	target := LoginPath + "?from=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (g Guard) denyForbidden(w http.ResponseWriter, r *http.Request) {
	if g.Logger != nil {
		g.Logger.Warn("access denied",
			slog.String("path", r.URL.Path),
			slog.String("user", shared.SessionFromContext(r.Context()).UserID()))
	}
	if wantsJSON(r) {
		httpx.Fail(w, http.StatusForbidden, "insufficient permissions")
		return
	}
	http.Redirect(w, r, UnauthorizedPath, http.StatusSeeOther)
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}
	return r.Header.Get(shared.CSRFHeader) != "" || strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
