package contacts

import (
	"context"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/models"
)

// ListFilter narrows and pages a submission listing. A nil Status means all
// statuses; Limit 0 falls back to the repository default.
type ListFilter struct {
	Status *models.ContactStatus
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, sub *models.ContactSubmission) (*models.ContactSubmission, error)
	GetByID(ctx context.Context, id string) (*models.ContactSubmission, error)
	List(ctx context.Context, filter ListFilter) ([]*models.ContactSubmission, error)
	UpdateStatus(ctx context.Context, id string, status models.ContactStatus) error
}
