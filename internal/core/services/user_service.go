package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

type UserService struct {
	repo ports.UserRepository
	opts Options
}

func NewUserService(repo ports.UserRepository, opts Options) ports.UserService {
	return &UserService{
		repo: repo,
		opts: opts.withDefaults(),
	}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := withStore(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*domain.User, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
