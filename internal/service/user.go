package service

import (
	"context"

	"github.com/gulfemperor/storefront/internal/domain"
)

type userService struct {
	store Store
}

// NewUserService creates the session resolution service.
func NewUserService(store Store) domain.UserService {
	return &userService{store: store}
}

// GetUserBySessionToken resolves a bearer session token to its user.
func (s *userService) GetUserBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.store.GetUserBySessionToken(ctx, token)
}
