// Package team provides the PostgreSQL-backed repository for staff profiles.
package team

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, m *models.TeamMember) (*models.TeamMember, error) {
	query :=
		`INSERT INTO team_members (name, title, bio, image_key, sort_order)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		m.Name, m.Title, m.Bio, m.ImageKey, m.SortOrder).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.TeamMember, error) {
	query :=
		`SELECT id, name, title, bio, image_key, sort_order, created_at, updated_at
		 FROM team_members
		 WHERE id = $1
		 `

	m := &models.TeamMember{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Title, &m.Bio, &m.ImageKey, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.TeamMember, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query :=
		`SELECT id, name, title, bio, image_key, sort_order, created_at, updated_at
		 FROM team_members
		 ORDER BY sort_order ASC, name ASC
		 LIMIT $1 OFFSET $2
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select team members: %w", err)
	}
	defer rows.Close()

	var result []*models.TeamMember
	for rows.Next() {
		var item models.TeamMember
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Title, &item.Bio, &item.ImageKey,
			&item.SortOrder, &item.CreatedAt, &item.UpdatedAt,
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

func (r *PostgresRepository) Update(ctx context.Context, m *models.TeamMember) error {
	query :=
		`UPDATE team_members
		 SET name = $2, title = $3, bio = $4, image_key = $5, sort_order = $6, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, m.ID, m.Name, m.Title, m.Bio, m.ImageKey, m.SortOrder)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM team_members WHERE id = $1`, id)
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
