package repository

import (
	"context"

	"eventflow/auth-service/internal/user/domain"
)

// Repository defines persistence for users. Email arguments are normalized by the implementation.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create inserts u; returns domain.ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
}
