package team

import (
	"context"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/models"
)

type Repository interface {
	Create(ctx context.Context, m *models.TeamMember) (*models.TeamMember, error)
	GetByID(ctx context.Context, id string) (*models.TeamMember, error)
	List(ctx context.Context, limit, offset int) ([]*models.TeamMember, error)
	Update(ctx context.Context, m *models.TeamMember) error
	Delete(ctx context.Context, id string) error
}
