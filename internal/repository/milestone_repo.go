package repository

import (
	"context"

	"taskflow/internal/board"
	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MilestoneRepository struct {
	db *pgxpool.Pool
}

func NewMilestoneRepository(db *pgxpool.Pool) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

func (r *MilestoneRepository) Create(ctx context.Context, m *domain.Milestone) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO milestones (project_id, name, status, due_date, created_by, sort_order)
		VALUES ($1, $2, $3, $4, $5, (
			SELECT COALESCE(MAX(sort_order), 0) + $6
			FROM milestones
			WHERE project_id = $1
		))
		RETURNING id, sort_order
	`, m.ProjectID, m.Name, m.Status, m.DueDate, m.CreatedBy, board.PositionGap).Scan(&m.ID, &m.SortOrder)
}

func (r *MilestoneRepository) GetByID(ctx context.Context, id string) (*domain.Milestone, error) {
	var m domain.Milestone
	err := r.db.QueryRow(ctx, `
		SELECT id, project_id, name, status, due_date, sort_order, created_by
		FROM milestones WHERE id = $1
	`, id).Scan(&m.ID, &m.ProjectID, &m.Name, &m.Status, &m.DueDate, &m.SortOrder, &m.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MilestoneRepository) SetStatus(ctx context.Context, id string, status domain.MilestoneStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE milestones SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes the milestone; tasks referencing it fall back to no
// milestone via ON DELETE SET NULL.
func (r *MilestoneRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM milestones WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *MilestoneRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Milestone, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, name, status, due_date, sort_order, created_by
		FROM milestones
		WHERE project_id = $1
		ORDER BY sort_order
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Milestone
	for rows.Next() {
		var m domain.Milestone
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Status, &m.DueDate, &m.SortOrder, &m.CreatedBy); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}
