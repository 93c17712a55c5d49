package catalog

import (
	"context"
	"fmt"
	"net/url"

	"github.com/KrunalTTech03/rbac-console/internal/backend"
	"github.com/KrunalTTech03/rbac-console/internal/shared"
)

// Repository defines the backend operations behind the catalog screens.
type Repository interface {
	ListUsers(ctx context.Context, q ListQuery) ([]User, shared.Pagination, error)
	FilterUsers(ctx context.Context, filters []FilterRow) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
	AssignRole(ctx context.Context, userID, roleID string) error
	RemoveRole(ctx context.Context, userID, roleID string) error
	UsersWithRole(ctx context.Context, roleID string) ([]User, error)

	ListRoles(ctx context.Context) ([]Role, error)
	CreateRole(ctx context.Context, name string) error
	UpdateRole(ctx context.Context, id, name string) error
	DeleteRole(ctx context.Context, id string) error
	FilterRoles(ctx context.Context, filters []FilterRow) ([]Role, error)

	ListPermissions(ctx context.Context) ([]Permission, error)
	RolePermissions(ctx context.Context) ([]Role, error)
	CreatePermission(ctx context.Context, name string) error
	DeletePermission(ctx context.Context, id string) error
	AssignPermissionsToRole(ctx context.Context, roleID string, permissionIDs []string) error
	RemovePermissionsFromRole(ctx context.Context, roleID string, permissionIDs []string) error
	FilterPermissions(ctx context.Context, filters []FilterRow) ([]Permission, error)
}

type restRepository struct {
	api *backend.Client
}

// NewRepository constructs a backend-delegating repository.
func NewRepository(api *backend.Client) Repository {
	return &restRepository{api: api}
}

type pagedUsers struct {
	Users      []User `json:"users"`
	Total      int    `json:"totalCount"`
	PageNumber int    `json:"pageNumber"`
	PageSize   int    `json:"pageSize"`
}

func (r *restRepository) ListUsers(ctx context.Context, q ListQuery) ([]User, shared.Pagination, error) {
	query := url.Values{}
	query.Set("pageNumber", fmt.Sprint(q.Page))
	query.Set("pageSize", fmt.Sprint(q.PerPage))
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.SortBy != "" {
		query.Set("sortBy", q.SortBy)
		query.Set("sortOrder", q.SortOrder)
	}

	var page pagedUsers
	if err := r.api.Get(ctx, "/User/all/?"+query.Encode(), &page); err != nil {
		return nil, shared.Pagination{}, err
	}
	return page.Users, shared.NewPagination(page.PageNumber, page.PageSize, page.Total), nil
}

func (r *restRepository) FilterUsers(ctx context.Context, filters []FilterRow) ([]User, error) {
	var users []User
	if err := r.api.Post(ctx, "/User/filter", filters, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *restRepository) DeleteUser(ctx context.Context, id string) error {
	return r.api.Delete(ctx, "/User/"+url.PathEscape(id), nil, nil)
}

type userRoleBody struct {
	UserID string `json:"userId"`
	RoleID string `json:"roleId"`
}

func (r *restRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	return r.api.Post(ctx, "/Role/assign/", userRoleBody{UserID: userID, RoleID: roleID}, nil)
}

func (r *restRepository) RemoveRole(ctx context.Context, userID, roleID string) error {
	return r.api.Delete(ctx, "/Role/remove", userRoleBody{UserID: userID, RoleID: roleID}, nil)
}

func (r *restRepository) UsersWithRole(ctx context.Context, roleID string) ([]User, error) {
	var users []User
	if err := r.api.Post(ctx, "/Role/all-assigned-role", map[string]string{"roleID": roleID}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *restRepository) ListRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := r.api.Get(ctx, "/Role/", &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *restRepository) CreateRole(ctx context.Context, name string) error {
	return r.api.Post(ctx, "/Role", map[string]string{"role_name": name}, nil)
}

func (r *restRepository) UpdateRole(ctx context.Context, id, name string) error {
	return r.api.Put(ctx, "/Role/update/"+url.PathEscape(id), map[string]string{"role_name": name}, nil)
}

func (r *restRepository) DeleteRole(ctx context.Context, id string) error {
	return r.api.Delete(ctx, "/Role/"+url.PathEscape(id), nil, nil)
}

func (r *restRepository) FilterRoles(ctx context.Context, filters []FilterRow) ([]Role, error) {
	var roles []Role
	if err := r.api.Post(ctx, "/Role/filter", filters, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *restRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	var perms []Permission
	if err := r.api.Get(ctx, "/Permission/permissions", &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *restRepository) RolePermissions(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := r.api.Get(ctx, "/Permission/role-permissions", &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *restRepository) CreatePermission(ctx context.Context, name string) error {
	return r.api.Post(ctx, "/Permission", map[string]string{"name": name}, nil)
}

func (r *restRepository) DeletePermission(ctx context.Context, id string) error {
	return r.api.Delete(ctx, "/Permission/"+url.PathEscape(id), nil, nil)
}

type rolePermissionsBody struct {
	RoleID        string   `json:"roleId"`
	PermissionIDs []string `json:"permissionIds"`
}

func (r *restRepository) AssignPermissionsToRole(ctx context.Context, roleID string, permissionIDs []string) error {
	return r.api.Post(ctx, "/Permission/assign", rolePermissionsBody{RoleID: roleID, PermissionIDs: permissionIDs}, nil)
}

func (r *restRepository) RemovePermissionsFromRole(ctx context.Context, roleID string, permissionIDs []string) error {
	return r.api.Delete(ctx, "/Permission/remove", rolePermissionsBody{RoleID: roleID, PermissionIDs: permissionIDs}, nil)
}

func (r *restRepository) FilterPermissions(ctx context.Context, filters []FilterRow) ([]Permission, error) {
	var perms []Permission
	if err := r.api.Post(ctx, "/Permission/filter", filters, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}
