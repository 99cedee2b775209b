package repository

import (
	"context"

	"eventflow/auth-service/internal/role/domain"
)

// Repository defines read access to roles. Both lookups return (nil, nil) when absent.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
}
