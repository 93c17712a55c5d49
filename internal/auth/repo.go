package auth

import (
	"context"

	"github.com/KrunalTTech03/rbac-console/internal/backend"
)

// Repository defines the authentication operations delegated to the backend.
type Repository interface {
	Authenticate(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, email, password string) error
	Profile(ctx context.Context) (*Profile, error)
	MimicLogin(ctx context.Context, email string) (*LoginResult, error)
}

type restRepository struct {
	api *backend.Client
}

// NewRepository constructs a backend-delegating repository.
func NewRepository(api *backend.Client) Repository {
	return &restRepository{api: api}
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *restRepository) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	if err := r.api.Post(ctx, "/auth/login", credentialsBody{Email: email, Password: password}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *restRepository) Register(ctx context.Context, email, password string) error {
	return r.api.Post(ctx, "/auth/register", credentialsBody{Email: email, Password: password}, nil)
}

func (r *restRepository) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := r.api.Get(ctx, "/auth/profile", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *restRepository) MimicLogin(ctx context.Context, email string) (*LoginResult, error) {
	var result LoginResult
	if err := r.api.Post(ctx, "/auth/mimic-login", map[string]string{"email": email}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
