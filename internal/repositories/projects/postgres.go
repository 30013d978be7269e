// Package projects provides the PostgreSQL-backed repository for portfolio
// projects.
package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/common"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/dbx"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/models"
)

const defaultListLimit = 50

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a project. A duplicate slug yields common.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	query :=
		`INSERT INTO projects (title, slug, summary, description, category, image_key, featured, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.Title, p.Slug, p.Summary, p.Description, p.Category, p.ImageKey, p.Featured, p.SortOrder).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query :=
		`SELECT id, title, slug, summary, description, category, image_key, featured, sort_order, created_at, updated_at
		 FROM projects
		 WHERE id = $1
		 `

	p := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Slug, &p.Summary, &p.Description, &p.Category,
		&p.ImageKey, &p.Featured, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// List returns projects ordered by sort_order then recency, optionally
// filtered by featured flag and category.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*models.Project, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query :=
		`SELECT id, title, slug, summary, description, category, image_key, featured, sort_order, created_at, updated_at
		 FROM projects
		 WHERE ($1::boolean IS NULL OR featured = $1)
		   AND ($2::text IS NULL OR category = $2)
		 ORDER BY sort_order ASC, created_at DESC
		 LIMIT $3 OFFSET $4
		 `

	var featured, category any
	if filter.Featured != nil {
		featured = *filter.Featured
	}
	if filter.Category != "" {
		category = filter.Category
	}

	rows, err := r.db.QueryContext(ctx, query, featured, category, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select projects: %w", err)
	}
	defer rows.Close()

	var result []*models.Project
	for rows.Next() {
		var item models.Project
		if err := rows.Scan(
			&item.ID, &item.Title, &item.Slug, &item.Summary, &item.Description, &item.Category,
			&item.ImageKey, &item.Featured, &item.SortOrder, &item.CreatedAt, &item.UpdatedAt,
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

func (r *PostgresRepository) Update(ctx context.Context, p *models.Project) error {
	query :=
		`UPDATE projects
		 SET title = $2, slug = $3, summary = $4, description = $5, category = $6,
		     image_key = $7, featured = $8, sort_order = $9, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Slug, p.Summary, p.Description, p.Category, p.ImageKey, p.Featured, p.SortOrder)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return common.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return expectRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectRow(res)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
