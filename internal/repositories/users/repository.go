package users

import (
	"context"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
	SetPassword(ctx context.Context, id string, passwordHash string) error
}
