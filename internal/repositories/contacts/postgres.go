// Package contacts provides the PostgreSQL-backed repository for contact
// submissions.
package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/common"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/dbx"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/models"
)

// defaultListLimit caps unpaged admin listings.
const defaultListLimit = 50

// PostgresRepository implements submission storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a submission row with status NEW and fills in the
// generated id and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, sub *models.ContactSubmission) (*models.ContactSubmission, error) {
	query :=
		`INSERT INTO contact_submissions (name, email, company, service, message)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, status, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		sub.Name, sub.Email, sub.Company, sub.Service, sub.Message).
		Scan(&sub.ID, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return sub, nil
}

// GetByID returns a submission or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.ContactSubmission, error) {
	query :=
		`SELECT id, name, email, company, service, message, status, created_at, updated_at
		 FROM contact_submissions
		 WHERE id = $1
		 `

	sub := &models.ContactSubmission{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID, &sub.Name, &sub.Email, &sub.Company, &sub.Service,
		&sub.Message, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sub, nil
}

// List returns submissions newest first, optionally filtered by status and
// paged by limit/offset.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*models.ContactSubmission, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query :=
		`SELECT id, name, email, company, service, message, status, created_at, updated_at
		 FROM contact_submissions
		 WHERE ($1::text IS NULL OR status = $1)
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3
		 `

	var status any
	if filter.Status != nil {
		status = string(*filter.Status)
	}

	rows, err := r.db.QueryContext(ctx, query, status, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select submissions: %w", err)
	}
	defer rows.Close()

	var result []*models.ContactSubmission
	for rows.Next() {
		var item models.ContactSubmission
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Email, &item.Company, &item.Service,
			&item.Message, &item.Status, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus moves a submission to a new workflow status. Unknown ids
// yield common.ErrNotFound.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status models.ContactStatus) error {
	query :=
		`UPDATE contact_submissions SET status = $2, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
