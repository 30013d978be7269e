package projects

import (
	"context"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/models"
)

// ListFilter narrows a project listing. Nil fields match everything.
type ListFilter struct {
	Featured *bool
	Category string
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context, filter ListFilter) ([]*models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id string) error
}
