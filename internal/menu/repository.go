package menu

import (
	"context"
	"net/url"

	"github.com/KrunalTTech03/rbac-console/internal/backend"
	"github.com/KrunalTTech03/rbac-console/internal/catalog"
)

// Repository defines the backend operations the menu service depends on.
type Repository interface {
	Forest(ctx context.Context) ([]Node, error)
	ForestForUser(ctx context.Context, userID string) ([]Node, error)
	Create(ctx context.Context, input CreateInput) error
	Update(ctx context.Context, id string, input UpdateInput) error
	Delete(ctx context.Context, id string) error
	PermissionsForMenu(ctx context.Context, menuID string) ([]Permission, error)
	PermissionCatalog(ctx context.Context) ([]Permission, error)
	AssignPermissions(ctx context.Context, menuID, roleID string, permissionIDs []string) error
	RemovePermissions(ctx context.Context, menuID string, permissionIDs []string) error
	CreatePermission(ctx context.Context, name string) error
	DeletePermission(ctx context.Context, id string) error
	Roles(ctx context.Context) ([]Role, error)
	Filter(ctx context.Context, filters []catalog.FilterRow) ([]Node, error)
}

type restRepository struct {
	api *backend.Client
}

// NewRepository constructs a backend-delegating repository.
func NewRepository(api *backend.Client) Repository {
	return &restRepository{api: api}
}

func (r *restRepository) Forest(ctx context.Context) ([]Node, error) {
	var forest []Node
	if err := r.api.Get(ctx, "/Menu/all", &forest); err != nil {
		return nil, err
	}
	return forest, nil
}

func (r *restRepository) ForestForUser(ctx context.Context, userID string) ([]Node, error) {
	var forest []Node
	if err := r.api.Get(ctx, "/Menu/"+url.PathEscape(userID), &forest); err != nil {
		return nil, err
	}
	return forest, nil
}

func (r *restRepository) Create(ctx context.Context, input CreateInput) error {
	return r.api.Post(ctx, "/Menu/create", input, nil)
}

func (r *restRepository) Update(ctx context.Context, id string, input UpdateInput) error {
	return r.api.Put(ctx, "/Menu/update/"+url.PathEscape(id), input, nil)
}

func (r *restRepository) Delete(ctx context.Context, id string) error {
	return r.api.Delete(ctx, "/Menu/delete/"+url.PathEscape(id), nil, nil)
}

func (r *restRepository) PermissionsForMenu(ctx context.Context, menuID string) ([]Permission, error) {
	var perms []Permission
	if err := r.api.Get(ctx, "/Menu/"+url.PathEscape(menuID)+"/permissions", &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *restRepository) PermissionCatalog(ctx context.Context) ([]Permission, error) {
	var perms []Permission
	if err := r.api.Get(ctx, "/Menu/permission-all", &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

type assignBody struct {
	MenuID        string   `json:"menuId"`
	RoleID        string   `json:"roleId"`
	PermissionIDs []string `json:"permissionIds"`
}

func (r *restRepository) AssignPermissions(ctx context.Context, menuID, roleID string, permissionIDs []string) error {
	return r.api.Post(ctx, "/Menu/assign-permission", assignBody{
		MenuID:        menuID,
		RoleID:        roleID,
		PermissionIDs: permissionIDs,
	}, nil)
}

type removeBody struct {
	MenuID        string   `json:"menuId"`
	PermissionIDs []string `json:"permissionIds"`
}

func (r *restRepository) RemovePermissions(ctx context.Context, menuID string, permissionIDs []string) error {
	return r.api.Delete(ctx, "/Menu/delete-menu-permission", removeBody{
		MenuID:        menuID,
		PermissionIDs: permissionIDs,
	}, nil)
}

func (r *restRepository) CreatePermission(ctx context.Context, name string) error {
	return r.api.Post(ctx, "/Menu/create-permission", map[string]string{"name": name}, nil)
}

func (r *restRepository) DeletePermission(ctx context.Context, id string) error {
	return r.api.Delete(ctx, "/Menu/delete-permission/"+url.PathEscape(id), nil, nil)
}

func (r *restRepository) Roles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := r.api.Get(ctx, "/Role/", &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *restRepository) Filter(ctx context.Context, filters []catalog.FilterRow) ([]Node, error) {
	var forest []Node
	if err := r.api.Post(ctx, "/Menu/filter", filters, &forest); err != nil {
		return nil, err
	}
	return forest, nil
}
