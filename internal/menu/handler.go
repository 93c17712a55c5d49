package menu

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/KrunalTTech03/rbac-console/internal/catalog"
	"github.com/KrunalTTech03/rbac-console/internal/guard"
	"github.com/KrunalTTech03/rbac-console/internal/platform/httpx"
	"github.com/KrunalTTech03/rbac-console/internal/shared"
)

// Handler wires the menu management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   guard.Guard
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, g guard.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: g}
}

// MountRoutes registers menu routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuth())
		r.Get("/sidebar", h.sidebar)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermRead))
		r.Get("/", h.forest)
		r.Get("/rows", h.rows)
		r.Get("/options", h.options)
		r.Post("/filter", h.filter)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermUpdate))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermDelete))
		r.Delete("/{id}", h.delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermManagePermissions))
		r.Get("/assignment-data", h.assignmentData)
		r.Get("/{id}/permissions", h.menuPermissions)
		r.Post("/{id}/permissions", h.assignPermissions)
		r.Delete("/{id}/permissions", h.removePermissions)
		r.Post("/permissions", h.createPermission)
		r.Delete("/permissions/{id}", h.deletePermission)
	})
}

func (h *Handler) forest(w http.ResponseWriter, r *http.Request) {
	forest, err := h.service.Forest(r.Context())
	if err != nil {
		h.logger.Error("fetch menu forest", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, forest)
}

// sidebar serves the permission-filtered forest for the current user, with
// icon names resolved to glyph handles.
func (h *Handler) sidebar(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	forest, err := h.service.ForestForUser(r.Context(), sess.UserID())
	if err != nil {
		h.logger.Error("fetch sidebar menu", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, DecorateGlyphs(forest))
}

// rows renders the admin table rows for the given expanded node set
// (comma-separated ids in the expanded query parameter).
func (h *Handler) rows(w http.ResponseWriter, r *http.Request) {
	forest := h.service.View()
	if forest == nil {
		fetched, err := h.service.Forest(r.Context())
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		forest = fetched
	}

	expanded := make(map[string]bool)
	if raw := r.URL.Query().Get("expanded"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			expanded[id] = true
		}
	}
	httpx.OK(w, Rows(forest, expanded))
}

func (h *Handler) options(w http.ResponseWriter, r *http.Request) {
	forest, err := h.service.Forest(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, Options(forest))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	forest, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondMenuError(w, err)
		return
	}
	httpx.Created(w, forest)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var input UpdateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	forest, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondMenuError(w, err)
		return
	}
	httpx.OK(w, forest)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	forest, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondMenuError(w, err)
		return
	}
	httpx.OK(w, forest)
}

// assignmentData loads everything the assignment screen needs. The three
// sources are independent, so they load in parallel.
func (h *Handler) assignmentData(w http.ResponseWriter, r *http.Request) {
	var (
		roles   []Role
		perms   []Permission
		options []Option
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		roles, err = h.service.Roles(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		perms, err = h.service.PermissionCatalog(ctx)
		return err
	})
	g.Go(func() error {
		forest, err := h.service.Forest(ctx)
		if err != nil {
			return err
		}
		options = Options(forest)
		return nil
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("load assignment data", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.OK(w, map[string]any{
		"roles":       roles,
		"permissions": perms,
		"menuOptions": options,
	})
}

func (h *Handler) menuPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.PermissionsForMenu(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, perms)
}

type assignRequest struct {
	RoleID        string   `json:"roleId"`
	PermissionIDs []string `json:"permissionIds"`
}

func (h *Handler) assignPermissions(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.RoleID == "" {
		httpx.Fail(w, http.StatusBadRequest, "roleId is required")
		return
	}
	if err := h.service.AssignPermissions(r.Context(), chi.URLParam(r, "id"), req.RoleID, req.PermissionIDs); err != nil {
		h.respondMenuError(w, err)
		return
	}
	httpx.OK(w, nil)
}

type removeRequest struct {
	PermissionIDs []string `json:"permissionIds"`
}

func (h *Handler) removePermissions(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.service.RemovePermissions(r.Context(), chi.URLParam(r, "id"), req.PermissionIDs); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

type namedRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createPermission(w http.ResponseWriter, r *http.Request) {
	var req namedRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.service.CreatePermission(r.Context(), req.Name); err != nil {
		h.respondMenuError(w, err)
		return
	}
	httpx.Created(w, nil)
}

func (h *Handler) deletePermission(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePermission(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) filter(w http.ResponseWriter, r *http.Request) {
	var filters []catalog.FilterRow
	if err := httpx.DecodeJSON(r, &filters); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	forest, err := h.service.Filter(r.Context(), filters)
	if err != nil {
		h.respondMenuError(w, err)
		return
	}
	httpx.OK(w, forest)
}

func (h *Handler) respondMenuError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrHasChildren):
		httpx.Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNoPermissionsSelected),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, catalog.ErrInvalidFilter):
		httpx.Fail(w, http.StatusBadRequest, err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
