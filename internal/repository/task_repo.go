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

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, project_id, column_id, title, description, priority, status, assignee_id, milestone_id, sort_order, created_by, created_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.ProjectID, &t.ColumnID, &t.Title, &t.Description,
		&t.Priority, &t.Status, &t.AssigneeID, &t.MilestoneID, &t.SortOrder,
		&t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
}

// Create appends the task to its column: sort order is the current column
// maximum plus the position gap.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO tasks (project_id, column_id, title, description, priority, status, created_by, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, (
			SELECT COALESCE(MAX(sort_order), 0) + $8
			FROM tasks
			WHERE project_id = $1 AND column_id = $2
		))
		RETURNING id, sort_order, created_at
	`, t.ProjectID, t.ColumnID, t.Title, t.Description, t.Priority, t.Status,
		t.CreatedBy, board.PositionGap).Scan(&t.ID, &t.SortOrder, &t.CreatedAt)
}

type TaskUpdates struct {
	Title       *string
	Description *string
	ClearDesc   bool
	Priority    *domain.TaskPriority
	Status      *domain.TaskStatus
	AssigneeID  *string
	ClearAssign bool
	MilestoneID *string
	ClearMilest bool
}

func (u TaskUpdates) Empty() bool {
	return u.Title == nil && u.Description == nil && !u.ClearDesc &&
		u.Priority == nil && u.Status == nil &&
		u.AssigneeID == nil && !u.ClearAssign &&
		u.MilestoneID == nil && !u.ClearMilest
}

// Update applies the partial update and returns the fresh row.
func (r *TaskRepository) Update(ctx context.Context, id string, u TaskUpdates) (*domain.Task, error) {
	set := make([]string, 0, 6)
	args := make([]any, 0, 7)
	add := func(col string, val any) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.ClearDesc {
		set = append(set, "description = NULL")
	} else if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Priority != nil {
		add("priority", *u.Priority)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	if u.ClearAssign {
		set = append(set, "assignee_id = NULL")
	} else if u.AssigneeID != nil {
		add("assignee_id", *u.AssigneeID)
	}
	if u.ClearMilest {
		set = append(set, "milestone_id = NULL")
	} else if u.MilestoneID != nil {
		add("milestone_id", *u.MilestoneID)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d RETURNING `+taskColumns,
		strings.Join(set, ", "), len(args))
	return scanTask(r.db.QueryRow(ctx, query, args...))
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IDsInProject returns which of the given ids exist within the project.
// Used by the reorder validator to reject foreign or stale task ids.
func (r *TaskRepository) IDsInProject(ctx context.Context, projectID string, ids []string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM tasks WHERE project_id = $1 AND id = ANY($2)
	`, projectID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

// Reorder writes the submitted arrangement: every task gets its column and
// a gap-spaced position, all inside one transaction so a failed write rolls
// the whole arrangement back. Each update is scoped by task id AND project
// id; an update matching no row aborts the transaction.
func (r *TaskRepository) Reorder(ctx context.Context, projectID string, columns []domain.ReorderColumn) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, col := range columns {
		for i, taskID := range col.TaskIDs {
			tag, err := tx.Exec(ctx, `
				UPDATE tasks SET column_id = $1, sort_order = $2
				WHERE id = $3 AND project_id = $4
			`, col.ID, board.PositionFor(i), taskID, projectID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return pgx.ErrNoRows
			}
		}
	}

	return tx.Commit(ctx)
}

// ListByProject returns the project's tasks in column display order,
// optionally restricted to one milestone.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string, milestoneID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1`
	args := []any{projectID}
	if milestoneID != "" {
		query += ` AND milestone_id = $2`
		args = append(args, milestoneID)
	}
	query += ` ORDER BY column_id, sort_order`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}
