package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/KrunalTTech03/rbac-console/internal/guard"
	"github.com/KrunalTTech03/rbac-console/internal/platform/debounce"
	"github.com/KrunalTTech03/rbac-console/internal/platform/httpx"
	"github.com/KrunalTTech03/rbac-console/internal/shared"
)

// Handler wires the user, role and permission catalog endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   guard.Guard
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, g guard.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: g}
}

// MountUsers registers user catalog routes.
func (h *Handler) MountUsers(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermRead))
		r.Get("/", h.listUsers)
		r.Get("/search", h.searchUsers)
		r.Post("/filter", h.filterUsers)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermDelete))
		r.Delete("/{id}", h.deleteUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermUpdate))
		r.Post("/{id}/roles", h.assignRole)
		r.Delete("/{id}/roles", h.removeRole)
	})
}

// MountRoles registers role catalog routes.
func (h *Handler) MountRoles(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermRead))
		r.Get("/", h.listRoles)
		r.Get("/{id}/users", h.usersWithRole)
		r.Post("/filter", h.filterRoles)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermCreate))
		r.Post("/", h.createRole)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermUpdate))
		r.Put("/{id}", h.updateRole)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermDelete))
		r.Delete("/{id}", h.deleteRole)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermManagePermissions))
		r.Post("/{id}/permissions", h.assignPermissionsToRole)
		r.Delete("/{id}/permissions", h.removePermissionsFromRole)
	})
}

// MountPermissions registers permission catalog routes.
func (h *Handler) MountPermissions(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermRead))
		r.Get("/", h.listPermissions)
		r.Get("/role-permissions", h.rolePermissions)
		r.Post("/filter", h.filterPermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermManagePermissions))
		r.Post("/", h.createPermission)
		r.Delete("/{id}", h.deletePermission)
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("pageNumber"))
	perPage, _ := strconv.Atoi(query.Get("pageSize"))

	users, pagination, err := h.service.ListUsers(r.Context(), ListQuery{
		Search:    query.Get("search"),
		SortBy:    query.Get("sortBy"),
		SortOrder: query.Get("sortOrder"),
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"users": users, "pagination": pagination})
}

func (h *Handler) searchUsers(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	key := "anonymous"
	if sess != nil {
		key = sess.ID
	}

	users, err := h.service.SearchUsers(r.Context(), key, r.URL.Query().Get("q"))
	if err != nil {
		if errors.Is(err, debounce.ErrSuperseded) {
			// A newer keystroke took over; this result would be stale.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, users)
}

func (h *Handler) filterUsers(w http.ResponseWriter, r *http.Request) {
	var filters []FilterRow
	if err := httpx.DecodeJSON(r, &filters); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	users, err := h.service.FilterUsers(r.Context(), filters)
	if err != nil {
		h.respondCatalogError(w, err)
		return
	}
	httpx.OK(w, users)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

type roleLinkRequest struct {
	RoleID string `json:"roleId"`
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	var req roleLinkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.RoleID == "" {
		httpx.Fail(w, http.StatusBadRequest, "roleId is required")
		return
	}
	if err := h.service.AssignRole(r.Context(), chi.URLParam(r, "id"), req.RoleID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) removeRole(w http.ResponseWriter, r *http.Request) {
	var req roleLinkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.RoleID == "" {
		httpx.Fail(w, http.StatusBadRequest, "roleId is required")
		return
	}
	if err := h.service.RemoveRole(r.Context(), chi.URLParam(r, "id"), req.RoleID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, roles)
}

func (h *Handler) usersWithRole(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.UsersWithRole(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, users)
}

type namedRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req namedRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.service.CreateRole(r.Context(), req.Name); err != nil {
		h.respondCatalogError(w, err)
		return
	}
	httpx.Created(w, nil)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	var req namedRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.service.UpdateRole(r.Context(), chi.URLParam(r, "id"), req.Name); err != nil {
		h.respondCatalogError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRole(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) filterRoles(w http.ResponseWriter, r *http.Request) {
	var filters []FilterRow
	if err := httpx.DecodeJSON(r, &filters); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	roles, err := h.service.FilterRoles(r.Context(), filters)
	if err != nil {
		h.respondCatalogError(w, err)
		return
	}
	httpx.OK(w, roles)
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, perms)
}

func (h *Handler) rolePermissions(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.RolePermissions(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, roles)
}

func (h *Handler) createPermission(w http.ResponseWriter, r *http.Request) {
	var req namedRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.service.CreatePermission(r.Context(), req.Name); err != nil {
		h.respondCatalogError(w, err)
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

type permissionSetRequest struct {
	PermissionIDs []string `json:"permissionIds"`
}

func (h *Handler) assignPermissionsToRole(w http.ResponseWriter, r *http.Request) {
	var req permissionSetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.service.AssignPermissionsToRole(r.Context(), chi.URLParam(r, "id"), req.PermissionIDs); err != nil {
		h.respondCatalogError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) removePermissionsFromRole(w http.ResponseWriter, r *http.Request) {
	var req permissionSetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.service.RemovePermissionsFromRole(r.Context(), chi.URLParam(r, "id"), req.PermissionIDs); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) filterPermissions(w http.ResponseWriter, r *http.Request) {
	var filters []FilterRow
	if err := httpx.DecodeJSON(r, &filters); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	perms, err := h.service.FilterPermissions(r.Context(), filters)
	if err != nil {
		h.respondCatalogError(w, err)
		return
	}
	httpx.OK(w, perms)
}

func (h *Handler) respondCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidFilter),
		errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrNoPermissionsSelected):
		httpx.Fail(w, http.StatusBadRequest, err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
