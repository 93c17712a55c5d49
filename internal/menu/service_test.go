package menu

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrunalTTech03/rbac-console/internal/catalog"
)

type mockRepository struct {
	forest     []Node
	userForest []Node

	forestErr error
	createErr error
	updateErr error
	deleteErr error

	forestCalls  int
	createCalls  int
	updateCalls  int
	deleteCalls  int
	deletedIDs   []string
	lastAssign   []string
	assignCalls  int
	removeCalls  int
	lastRemoved  []string
	filtered     []Node
	lastFilters  []catalog.FilterRow
	createdPerms []string
}

func (m *mockRepository) Forest(ctx context.Context) ([]Node, error) {
	m.forestCalls++
	if m.forestErr != nil {
		return nil, m.forestErr
	}
	return m.forest, nil
}

func (m *mockRepository) ForestForUser(ctx context.Context, userID string) ([]Node, error) {
	return m.userForest, nil
}

func (m *mockRepository) Create(ctx context.Context, input CreateInput) error {
	m.createCalls++
	return m.createErr
}

func (m *mockRepository) Update(ctx context.Context, id string, input UpdateInput) error {
	m.updateCalls++
	return m.updateErr
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	m.deleteCalls++
	m.deletedIDs = append(m.deletedIDs, id)
	return m.deleteErr
}

func (m *mockRepository) PermissionsForMenu(ctx context.Context, menuID string) ([]Permission, error) {
	return nil, nil
}

func (m *mockRepository) PermissionCatalog(ctx context.Context) ([]Permission, error) {
	return nil, nil
}

func (m *mockRepository) AssignPermissions(ctx context.Context, menuID, roleID string, permissionIDs []string) error {
	m.assignCalls++
	m.lastAssign = permissionIDs
	return nil
}

func (m *mockRepository) RemovePermissions(ctx context.Context, menuID string, permissionIDs []string) error {
	m.removeCalls++
	m.lastRemoved = permissionIDs
	return nil
}

func (m *mockRepository) CreatePermission(ctx context.Context, name string) error {
	m.createdPerms = append(m.createdPerms, name)
	return nil
}

func (m *mockRepository) DeletePermission(ctx context.Context, id string) error {
	return nil
}

func (m *mockRepository) Roles(ctx context.Context) ([]Role, error) {
	return []Role{{ID: "r1", Name: "Admin"}}, nil
}

func (m *mockRepository) Filter(ctx context.Context, filters []catalog.FilterRow) ([]Node, error) {
	m.lastFilters = filters
	return m.filtered, nil
}

func TestDeleteRefusesParentBeforeNetwork(t *testing.T) {
	repo := &mockRepository{forest: sampleForest()}
	svc := NewService(repo)

	_, err := svc.Forest(context.Background())
	require.NoError(t, err)

	_, err = svc.Delete(context.Background(), "m1")
	require.ErrorIs(t, err, ErrHasChildren)
	assert.Zero(t, repo.deleteCalls, "parent deletion must be blocked locally")
}

func TestDeleteLeafSubmitsAndRefetches(t *testing.T) {
	repo := &mockRepository{forest: sampleForest()}
	svc := NewService(repo)

	_, err := svc.Forest(context.Background())
	require.NoError(t, err)

	repo.forest = repo.forest[:1]
	view, err := svc.Delete(context.Background(), "m1a")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.deleteCalls)
	assert.Equal(t, []string{"m1a"}, repo.deletedIDs)
	assert.Len(t, view, 1)
}

func TestDeleteColdStartFetchesBeforeGuard(t *testing.T) {
	// With no snapshot yet, the forest is fetched once so the children
	// guard still holds on a fresh process.
	repo := &mockRepository{forest: sampleForest()}
	svc := NewService(repo)

	_, err := svc.Delete(context.Background(), "m1")
	require.ErrorIs(t, err, ErrHasChildren)
	assert.Equal(t, 1, repo.forestCalls)
	assert.Zero(t, repo.deleteCalls, "parent deletion must be blocked before submission")
}

func TestDeleteUnknownIDStillSubmits(t *testing.T) {
	// A node absent even from the fetched forest cannot be proven to have
	// children, so the backend gets the final word.
	repo := &mockRepository{forest: sampleForest()}
	svc := NewService(repo)

	_, err := svc.Delete(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.deleteCalls)
}

func TestCreateValidatesInput(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateInput{Title: "X"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), CreateInput{Title: "Reports", Path: "reports"})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, repo.createCalls)

	_, err = svc.Create(context.Background(), CreateInput{Title: "Reports", Path: "/reports"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.createCalls)
}

func TestUpdatePatchesShallowNodeWithoutRefetch(t *testing.T) {
	repo := &mockRepository{forest: sampleForest()}
	svc := NewService(repo)

	_, err := svc.Forest(context.Background())
	require.NoError(t, err)

	repo.forestErr = errors.New("refetch should not happen")
	view, err := svc.Update(context.Background(), "m2a", UpdateInput{Title: "People", Path: "/people"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.updateCalls)
	assert.Equal(t, "People", view[1].SubMenus[0].Title)
}

func TestUpdateDeepNodeFallsBackToRefetch(t *testing.T) {
	repo := &mockRepository{forest: sampleForest()}
	svc := NewService(repo)

	_, err := svc.Forest(context.Background())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), "m2c1", UpdateInput{Title: "Grants"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.updateCalls)
}

func TestAssignPermissionsRejectsEmptySelection(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)

	err := svc.AssignPermissions(context.Background(), "m1", "r1", nil)
	require.ErrorIs(t, err, ErrNoPermissionsSelected)

	err = svc.AssignPermissions(context.Background(), "m1", "r1", []string{"", ""})
	require.ErrorIs(t, err, ErrNoPermissionsSelected)
	assert.Zero(t, repo.assignCalls)
}

func TestAssignPermissionsDeduplicates(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)

	err := svc.AssignPermissions(context.Background(), "m1", "r1", []string{"p1", "p2", "p1", "p2", "p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, repo.lastAssign)
}

func TestRemovePermissionsEmptyIsNoOp(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)

	require.NoError(t, svc.RemovePermissions(context.Background(), "m1", nil))
	assert.Zero(t, repo.removeCalls)

	require.NoError(t, svc.RemovePermissions(context.Background(), "m1", []string{"p1", "p1"}))
	assert.Equal(t, 1, repo.removeCalls)
	assert.Equal(t, []string{"p1"}, repo.lastRemoved)
}

func TestCreatePermissionRequiresName(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)

	require.ErrorIs(t, svc.CreatePermission(context.Background(), "x"), ErrInvalidInput)
	require.NoError(t, svc.CreatePermission(context.Background(), "Export"))
	assert.Equal(t, []string{"Export"}, repo.createdPerms)
}

func TestFilterValidatesRows(t *testing.T) {
	repo := &mockRepository{filtered: sampleForest()}
	svc := NewService(repo)

	_, err := svc.Filter(context.Background(), []catalog.FilterRow{{Column: "title", Condition: "between", Value: "a"}})
	require.ErrorIs(t, err, catalog.ErrInvalidFilter)
	assert.Nil(t, repo.lastFilters)

	out, err := svc.Filter(context.Background(), []catalog.FilterRow{{Column: "title", Condition: catalog.CondContains, Value: "dash"}})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
