package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/organs/internal/core/domain"
)

type SignUpInput struct {
	Username     string
	Email        string
	Password     string
	ProfileImage string
}

type AuthService interface {
	SignUp(ctx context.Context, input SignUpInput) (*domain.User, error)
	// SignIn returns a signed bearer token.
	SignIn(ctx context.Context, email, password string) (string, error)
}

type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}
