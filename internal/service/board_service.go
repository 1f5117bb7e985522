package service

import (
	"context"
	"errors"

	"taskflow/internal/domain"
	"taskflow/internal/logger"

	"github.com/jackc/pgx/v5"
)

// ReorderStore is the persistence surface of a board reorder.
type ReorderStore interface {
	IDsInProject(ctx context.Context, projectID string, ids []string) ([]string, error)
	Reorder(ctx context.Context, projectID string, columns []domain.ReorderColumn) error
	ListByProject(ctx context.Context, projectID, milestoneID string) ([]*domain.Task, error)
}

// ColumnStore lists and appends board columns.
type ColumnStore interface {
	Create(ctx context.Context, c *domain.Column) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.Column, error)
}

// BoardService validates and commits board arrangements and serves the
// board read model.
type BoardService struct {
	access  *AccessService
	tasks   ReorderStore
	columns ColumnStore
}

func NewBoardService(access *AccessService, tasks ReorderStore, columns ColumnStore) *BoardService {
	return &BoardService{access: access, tasks: tasks, columns: columns}
}

// Reorder applies a full board arrangement submitted by userID. The
// request carries every column with its task ids in desired order. All
// ids must be tasks of the project; duplicates are rejected. An empty
// arrangement is a no-op success.
func (s *BoardService) Reorder(ctx context.Context, userID string, req domain.ReorderRequest) error {
	if !s.access.CanMutateBoard(ctx, req.ProjectID, userID) {
		return ErrForbidden
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, col := range req.Columns {
		for _, id := range col.TaskIDs {
			if _, dup := seen[id]; dup {
				return ErrInvalidInput
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	found, err := s.tasks.IDsInProject(ctx, req.ProjectID, ids)
	if err != nil {
		logger.Error("reorder validation lookup failed", "error", err, "project_id", req.ProjectID)
		return err
	}
	if len(found) != len(ids) {
		return ErrInvalidInput
	}

	if err := s.tasks.Reorder(ctx, req.ProjectID, req.Columns); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// a task vanished between validation and commit; the
			// transaction rolled the whole arrangement back
			return ErrInvalidInput
		}
		logger.Error("reorder commit failed", "error", err, "project_id", req.ProjectID)
		return err
	}
	return nil
}

// Board returns the project's columns with their tasks in display order.
// A non-empty milestoneID restricts tasks to that milestone.
func (s *BoardService) Board(ctx context.Context, userID, projectID, milestoneID string) ([]domain.BoardColumn, error) {
	if !s.access.CanAccessProject(ctx, projectID, userID) {
		return nil, ErrForbidden
	}

	cols, err := s.columns.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByProject(ctx, projectID, milestoneID)
	if err != nil {
		return nil, err
	}

	byColumn := make(map[string][]domain.Task, len(cols))
	for _, t := range tasks {
		byColumn[t.ColumnID] = append(byColumn[t.ColumnID], *t)
	}

	out := make([]domain.BoardColumn, len(cols))
	for i, c := range cols {
		out[i] = domain.BoardColumn{
			ID:        c.ID,
			Name:      c.Name,
			SortOrder: c.SortOrder,
			Tasks:     byColumn[c.ID],
		}
	}
	return out, nil
}

// AddColumn appends a column at the end of the board.
func (s *BoardService) AddColumn(ctx context.Context, userID, projectID, name string) (*domain.Column, error) {
	if !s.access.CanAccessProject(ctx, projectID, userID) {
		return nil, ErrForbidden
	}
	if name == "" {
		return nil, ErrInvalidInput
	}
	c := &domain.Column{ProjectID: projectID, Name: name}
	if err := s.columns.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
