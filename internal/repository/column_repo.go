package repository

import (
	"context"

	"taskflow/internal/board"
	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ColumnRepository struct {
	db *pgxpool.Pool
}

func NewColumnRepository(db *pgxpool.Pool) *ColumnRepository {
	return &ColumnRepository{db: db}
}

// Create appends the column at the end of the board.
func (r *ColumnRepository) Create(ctx context.Context, c *domain.Column) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO columns (project_id, name, sort_order)
		VALUES ($1, $2, (
			SELECT COALESCE(MAX(sort_order), 0) + $3
			FROM columns
			WHERE project_id = $1
		))
		RETURNING id, sort_order
	`, c.ProjectID, c.Name, board.PositionGap).Scan(&c.ID, &c.SortOrder)
}

// BelongsToProject reports whether the column is part of the project.
func (r *ColumnRepository) BelongsToProject(ctx context.Context, columnID, projectID string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM columns WHERE id = $1 AND project_id = $2)
	`, columnID, projectID).Scan(&ok)
	return ok, err
}

func (r *ColumnRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Column, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, name, sort_order
		FROM columns
		WHERE project_id = $1
		ORDER BY sort_order
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Column
	for rows.Next() {
		var c domain.Column
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Name, &c.SortOrder); err != nil {
			return nil, err
		}
		res = append(res, &c)
	}
	return res, rows.Err()
}
