package repository

import (
	"context"
	"fmt"
	"strings"

	"taskflow/internal/board"
	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubtaskRepository struct {
	db *pgxpool.Pool
}

func NewSubtaskRepository(db *pgxpool.Pool) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

func (r *SubtaskRepository) Create(ctx context.Context, s *domain.Subtask) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO task_subtasks (task_id, title, sort_order)
		VALUES ($1, $2, (
			SELECT COALESCE(MAX(sort_order), 0) + $3
			FROM task_subtasks
			WHERE task_id = $1
		))
		RETURNING id, sort_order
	`, s.TaskID, s.Title, board.PositionGap).Scan(&s.ID, &s.SortOrder)
}

// Update applies a partial edit to title and done flag.
func (r *SubtaskRepository) Update(ctx context.Context, id string, title *string, done *bool) error {
	var sets []string
	args := []any{id}
	if title != nil {
		args = append(args, *title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if done != nil {
		args = append(args, *done)
		sets = append(sets, fmt.Sprintf("is_done = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE task_subtasks SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *SubtaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM task_subtasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// TaskID resolves the owning task, for access checks.
func (r *SubtaskRepository) TaskID(ctx context.Context, id string) (string, error) {
	var taskID string
	err := r.db.QueryRow(ctx, `SELECT task_id FROM task_subtasks WHERE id = $1`, id).Scan(&taskID)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	return taskID, err
}

func (r *SubtaskRepository) ListByTask(ctx context.Context, taskID string) ([]*domain.Subtask, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, task_id, title, is_done, sort_order
		FROM task_subtasks
		WHERE task_id = $1
		ORDER BY sort_order
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Subtask
	for rows.Next() {
		var s domain.Subtask
		if err := rows.Scan(&s.ID, &s.TaskID, &s.Title, &s.IsDone, &s.SortOrder); err != nil {
			return nil, err
		}
		res = append(res, &s)
	}
	return res, rows.Err()
}
