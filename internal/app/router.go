package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/KrunalTTech03/rbac-console/internal/auth"
	"github.com/KrunalTTech03/rbac-console/internal/catalog"
	"github.com/KrunalTTech03/rbac-console/internal/guard"
	"github.com/KrunalTTech03/rbac-console/internal/menu"
	"github.com/KrunalTTech03/rbac-console/internal/observability"
	"github.com/KrunalTTech03/rbac-console/internal/platform/httpx"
	"github.com/KrunalTTech03/rbac-console/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Guard          guard.Guard
	AuthHandler    *auth.Handler
	MenuHandler    *menu.Handler
	CatalogHandler *catalog.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router for the console.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Entry point for unauthenticated users. Hands out the CSRF token the
	// client must echo on writes, plus the path it was bounced away from.
	r.Get(guard.LoginPath, func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		csrfToken, err := params.CSRFManager.EnsureToken(r.Context(), sess)
		if err != nil {
			params.Logger.Error("ensure csrf token", slog.Any("error", err))
			httpx.Fail(w, http.StatusInternalServerError, "could not prepare login")
			return
		}
		from := r.URL.Query().Get("from")
		if from == "" && sess != nil {
			from = sess.Get(shared.ReturnPathKey)
		}
		httpx.OK(w, map[string]any{
			"csrf_token": csrfToken,
			"from":       from,
		})
	})

	r.Get(guard.UnauthorizedPath, func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusForbidden, "you do not have access to this resource")
	})

	// One-shot notification drain. Flashes queued by earlier requests
	// (login, logout) are delivered here exactly once; the commit that
	// follows this response persists the emptied queue.
	r.Get("/notifications", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		flashes := sess.PopFlashes()
		if flashes == nil {
			flashes = []shared.FlashMessage{}
		}
		httpx.OK(w, map[string]any{"notifications": flashes})
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/menus", params.MenuHandler.MountRoutes)
	r.Route("/users", params.CatalogHandler.MountUsers)
	r.Route("/roles", params.CatalogHandler.MountRoles)
	r.Route("/permissions", params.CatalogHandler.MountPermissions)

	r.Group(func(r chi.Router) {
		r.Use(params.Guard.RequireAuth())
		r.Put("/preferences/sidebar", updateSidebarPreference)
		r.Get("/preferences/sidebar", readSidebarPreference)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

// Sidebar collapse state survives reloads by living in the session rather
// than the client.
func updateSidebarPreference(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Collapsed bool `json:"collapsed"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid payload")
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if req.Collapsed {
		sess.Set(shared.SidebarCollapsedKey, "1")
	} else {
		sess.Delete(shared.SidebarCollapsedKey)
	}
	httpx.OK(w, map[string]bool{"collapsed": req.Collapsed})
}

func readSidebarPreference(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	httpx.OK(w, map[string]bool{"collapsed": sess.Get(shared.SidebarCollapsedKey) == "1"})
}
