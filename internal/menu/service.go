package menu

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/KrunalTTech03/rbac-console/internal/catalog"
)

var (
	// ErrHasChildren blocks deletion of a node that still owns sub-menus.
	ErrHasChildren = errors.New("cannot delete a menu that has sub-menus")
	// ErrNoPermissionsSelected blocks an assignment with an empty set.
	ErrNoPermissionsSelected = errors.New("select at least one permission")
	// ErrInvalidInput wraps field validation failures.
	ErrInvalidInput = errors.New("invalid menu input")
)

// Service owns the menu hierarchy on behalf of the admin screen. It keeps
// the last fetched forest as the screen's view state; the backend stays the
// source of truth and the view converges to it after every mutation.
type Service struct {
	repo     Repository
	validate *validator.Validate

	mu   sync.RWMutex
	view []Node
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Forest retrieves every menu node as a nested structure and refreshes the
// view state.
func (s *Service) Forest(ctx context.Context) ([]Node, error) {
	forest, err := s.repo.Forest(ctx)
	if err != nil {
		return nil, err
	}
	s.setView(forest)
	return forest, nil
}

// ForestForUser retrieves the permission-filtered forest for one user. The
// backend prunes; the console does no additional filtering.
func (s *Service) ForestForUser(ctx context.Context, userID string) ([]Node, error) {
	return s.repo.ForestForUser(ctx, userID)
}

// View returns the current forest snapshot without a network call.
func (s *Service) View() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Create validates and submits a new node, then refreshes the forest.
func (s *Service) Create(ctx context.Context, input CreateInput) ([]Node, error) {
	if err := s.validateInput(UpdateInput(input)); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, input); err != nil {
		return nil, err
	}
	return s.Forest(ctx)
}

// Update validates and submits an edit. The view is patched in place when
// the node sits at most one level deep; deeper matches fall back to a full
// refetch so the displayed tree always converges to server state.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) ([]Node, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	updated := Node{
		ID:       id,
		Title:    input.Title,
		Icon:     input.Icon,
		Path:     input.Path,
		Order:    input.Order,
		ParentID: input.ParentID,
	}
	view, patched := Patch(s.view, updated)
	if patched {
		s.view = view
		s.mu.Unlock()
		return view, nil
	}
	s.mu.Unlock()
	return s.Forest(ctx)
}

// Delete refuses to remove a node that still has children, before the
// deletion is submitted, and otherwise submits it and refreshes. An id
// missing from the local snapshot triggers one forest fetch so the guard
// also holds on a cold start.
func (s *Service) Delete(ctx context.Context, id string) ([]Node, error) {
	node := Find(s.View(), id)
	if node == nil {
		forest, err := s.Forest(ctx)
		if err != nil {
			return nil, err
		}
		node = Find(forest, id)
	}
	if node != nil && node.HasChildren() {
		return nil, ErrHasChildren
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return s.Forest(ctx)
}

// PermissionsForMenu lists the permissions currently linked to a menu.
func (s *Service) PermissionsForMenu(ctx context.Context, menuID string) ([]Permission, error) {
	return s.repo.PermissionsForMenu(ctx, menuID)
}

// PermissionCatalog lists every assignable permission.
func (s *Service) PermissionCatalog(ctx context.Context) ([]Permission, error) {
	return s.repo.PermissionCatalog(ctx)
}

// Roles lists the role catalog for the assignment screen.
func (s *Service) Roles(ctx context.Context) ([]Role, error) {
	return s.repo.Roles(ctx)
}

// AssignPermissions grants permissions to a role on a menu. An empty
// selection is rejected locally; duplicate IDs collapse so assignment stays
// idempotent regardless of what the caller sends.
func (s *Service) AssignPermissions(ctx context.Context, menuID, roleID string, permissionIDs []string) error {
	deduped := dedupe(permissionIDs)
	if len(deduped) == 0 {
		return ErrNoPermissionsSelected
	}
	return s.repo.AssignPermissions(ctx, menuID, roleID, deduped)
}

// RemovePermissions strips permissions from a menu across all roles. An
// empty selection is a no-op, not an error.
func (s *Service) RemovePermissions(ctx context.Context, menuID string, permissionIDs []string) error {
	deduped := dedupe(permissionIDs)
	if len(deduped) == 0 {
		return nil
	}
	return s.repo.RemovePermissions(ctx, menuID, deduped)
}

// CreatePermission adds an entry to the global permission catalog.
func (s *Service) CreatePermission(ctx context.Context, name string) error {
	if len(name) < 2 {
		return ErrInvalidInput
	}
	return s.repo.CreatePermission(ctx, name)
}

// DeletePermission removes a catalog entry. Existing menu assignments are
// the backend's concern; the console does not cascade.
func (s *Service) DeletePermission(ctx context.Context, id string) error {
	return s.repo.DeletePermission(ctx, id)
}

// Filter queries the forest with flat column filters.
func (s *Service) Filter(ctx context.Context, filters []catalog.FilterRow) ([]Node, error) {
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}
	return s.repo.Filter(ctx, filters)
}

func (s *Service) validateInput(input UpdateInput) error {
	if err := s.validate.Struct(input); err != nil {
		return ErrInvalidInput
	}
	return nil
}

func (s *Service) setView(forest []Node) {
	s.mu.Lock()
	s.view = forest
	s.mu.Unlock()
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
