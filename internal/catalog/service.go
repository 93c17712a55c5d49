package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/KrunalTTech03/rbac-console/internal/platform/debounce"
	"github.com/KrunalTTech03/rbac-console/internal/shared"
)

var (
	// ErrNameRequired blocks catalog writes with a blank name.
	ErrNameRequired = errors.New("name is required")
	// ErrNoPermissionsSelected blocks an empty role-permission assignment.
	ErrNoPermissionsSelected = errors.New("select at least one permission")
)

// Service fronts the flat catalog screens: users, roles, permissions.
type Service struct {
	repo     Repository
	searches *debounce.Group[[]User]
}

// NewService constructs a Service. quiet is the search debounce window.
func NewService(repo Repository, quiet time.Duration) *Service {
	s := &Service{repo: repo}
	s.searches = debounce.NewGroup(quiet, func(ctx context.Context, term string) ([]User, error) {
		users, _, err := repo.ListUsers(ctx, ListQuery{Search: term, Page: 1, PerPage: 20})
		return users, err
	})
	return s
}

// ListUsers returns one page of the user catalog.
func (s *Service) ListUsers(ctx context.Context, q ListQuery) ([]User, shared.Pagination, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = 20
	}
	return s.repo.ListUsers(ctx, q)
}

// SearchUsers coalesces rapid search input per key (one key per session):
// only the value standing after the quiet window reaches the backend, and
// superseded callers get debounce.ErrSuperseded.
func (s *Service) SearchUsers(ctx context.Context, key, term string) ([]User, error) {
	return s.searches.Do(ctx, key, term)
}

// FilterUsers applies flat column filters, validated locally first.
func (s *Service) FilterUsers(ctx context.Context, filters []FilterRow) ([]User, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}
	return s.repo.FilterUsers(ctx, filters)
}

// DeleteUser removes a user account.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}

// AssignRole links a role to a user.
func (s *Service) AssignRole(ctx context.Context, userID, roleID string) error {
	return s.repo.AssignRole(ctx, userID, roleID)
}

// RemoveRole unlinks a role from a user.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID string) error {
	return s.repo.RemoveRole(ctx, userID, roleID)
}

// UsersWithRole lists the users currently holding a role.
func (s *Service) UsersWithRole(ctx context.Context, roleID string) ([]User, error) {
	return s.repo.UsersWithRole(ctx, roleID)
}

// ListRoles returns the role catalog.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// CreateRole adds a role.
func (s *Service) CreateRole(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return s.repo.CreateRole(ctx, strings.TrimSpace(name))
}

// UpdateRole renames a role.
func (s *Service) UpdateRole(ctx context.Context, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return s.repo.UpdateRole(ctx, id, strings.TrimSpace(name))
}

// DeleteRole removes a role. Orphaned menu assignments, if any, are the
// backend's policy call.
func (s *Service) DeleteRole(ctx context.Context, id string) error {
	return s.repo.DeleteRole(ctx, id)
}

// FilterRoles applies flat column filters to the role catalog.
func (s *Service) FilterRoles(ctx context.Context, filters []FilterRow) ([]Role, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}
	return s.repo.FilterRoles(ctx, filters)
}

// ListPermissions returns the permission catalog.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// RolePermissions returns roles with their granted permission names.
func (s *Service) RolePermissions(ctx context.Context) ([]Role, error) {
	return s.repo.RolePermissions(ctx)
}

// CreatePermission adds a permission to the global catalog.
func (s *Service) CreatePermission(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return s.repo.CreatePermission(ctx, strings.TrimSpace(name))
}

// DeletePermission removes a catalog permission.
func (s *Service) DeletePermission(ctx context.Context, id string) error {
	return s.repo.DeletePermission(ctx, id)
}

// AssignPermissionsToRole grants permissions to a role.
func (s *Service) AssignPermissionsToRole(ctx context.Context, roleID string, permissionIDs []string) error {
	if len(permissionIDs) == 0 {
		return ErrNoPermissionsSelected
	}
	return s.repo.AssignPermissionsToRole(ctx, roleID, permissionIDs)
}

// RemovePermissionsFromRole strips permissions from a role.
func (s *Service) RemovePermissionsFromRole(ctx context.Context, roleID string, permissionIDs []string) error {
	if len(permissionIDs) == 0 {
		return nil
	}
	return s.repo.RemovePermissionsFromRole(ctx, roleID, permissionIDs)
}

// FilterPermissions applies flat column filters to the permission catalog.
func (s *Service) FilterPermissions(ctx context.Context, filters []FilterRow) ([]Permission, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}
	return s.repo.FilterPermissions(ctx, filters)
}

func validateFilters(filters []FilterRow) error {
	if len(filters) == 0 {
		return ErrInvalidFilter
	}
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}
