package auth

import (
	"context"

	"github.com/KrunalTTech03/rbac-console/internal/shared"
)

// Service wraps authentication flows. Credential checking is the backend's
// job; this layer only translates results into session identities.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate verifies credentials against the backend and returns the
// identity to cache in the session.
func (s *Service) Authenticate(ctx context.Context, email, password string) (shared.Identity, error) {
	result, err := s.repo.Authenticate(ctx, email, password)
	if err != nil {
		return shared.Identity{}, err
	}
	return identityFrom(result), nil
}

// Register creates a new account.
func (s *Service) Register(ctx context.Context, email, password string) error {
	return s.repo.Register(ctx, email, password)
}

// Profile fetches the current user's account details.
func (s *Service) Profile(ctx context.Context) (*Profile, error) {
	return s.repo.Profile(ctx)
}

// Mimic logs in as another user. The caller must hold the mimic permission;
// the route guard enforces that before this runs.
func (s *Service) Mimic(ctx context.Context, email string) (shared.Identity, error) {
	result, err := s.repo.MimicLogin(ctx, email)
	if err != nil {
		return shared.Identity{}, err
	}
	return identityFrom(result), nil
}

func identityFrom(result *LoginResult) shared.Identity {
	// The backend issues a single role name today. The session models roles
	// as a set so the predicates keep working if that changes.
	roles := []string{}
	if result.RoleName != "" {
		roles = append(roles, result.RoleName)
	}
	permissions := result.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return shared.Identity{
		UserID:      result.UserID,
		Roles:       roles,
		Permissions: permissions,
		Token:       result.Token,
	}
}
