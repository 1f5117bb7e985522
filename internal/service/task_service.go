package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"taskflow/internal/domain"
	"taskflow/internal/logger"
	"taskflow/internal/repository"

	"github.com/jackc/pgx/v5"
)

type TaskStore interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, id string, u repository.TaskUpdates) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type SubtaskStore interface {
	Create(ctx context.Context, s *domain.Subtask) error
	Update(ctx context.Context, id string, title *string, done *bool) error
	Delete(ctx context.Context, id string) error
	TaskID(ctx context.Context, id string) (string, error)
	ListByTask(ctx context.Context, taskID string) ([]*domain.Subtask, error)
}

// validTitle bounds every user-supplied title field.
func validTitle(title string) bool {
	t := strings.TrimSpace(title)
	return t != "" && utf8.RuneCountInString(t) <= maxTitleLen
}

type ColumnChecker interface {
	BelongsToProject(ctx context.Context, columnID, projectID string) (bool, error)
}

type MilestoneGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Milestone, error)
}

type memberChecker interface {
	IsMember(ctx context.Context, projectID, userID string) (bool, error)
}

// TaskService owns task and subtask lifecycle. Board-wide ordering lives
// in BoardService; this service only appends and edits individual tasks.
type TaskService struct {
	access     *AccessService
	tasks      TaskStore
	subtasks   SubtaskStore
	columns    ColumnChecker
	milestones MilestoneGetter
	members    memberChecker
}

func NewTaskService(access *AccessService, tasks TaskStore, subtasks SubtaskStore, columns ColumnChecker, milestones MilestoneGetter, members memberChecker) *TaskService {
	return &TaskService{
		access:     access,
		tasks:      tasks,
		subtasks:   subtasks,
		columns:    columns,
		milestones: milestones,
		members:    members,
	}
}

type CreateTaskInput struct {
	ProjectID   string
	ColumnID    string
	Title       string
	Description *string
	Priority    domain.TaskPriority
	Status      domain.TaskStatus
}

func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (*domain.Task, error) {
	if !s.access.CanAccessProject(ctx, in.ProjectID, userID) {
		return nil, ErrForbidden
	}
	if !validTitle(in.Title) {
		return nil, ErrInvalidInput
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if in.Status == "" {
		in.Status = domain.StatusTodo
	}
	if !in.Priority.Valid() || !in.Status.Valid() {
		return nil, ErrInvalidInput
	}

	ok, err := s.columns.BelongsToProject(ctx, in.ColumnID, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidInput
	}

	t := &domain.Task{
		ProjectID:   in.ProjectID,
		ColumnID:    in.ColumnID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		CreatedBy:   userID,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		logger.Error("task create failed", "error", err, "project_id", in.ProjectID)
		return nil, err
	}
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !s.access.CanAccessProject(ctx, t.ProjectID, userID) {
		return nil, ErrForbidden
	}
	return t, nil
}

// Update applies a partial edit. An assignee must be a direct project
// member; a milestone must belong to the task's project.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, u repository.TaskUpdates) (*domain.Task, error) {
	t, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if u.Empty() {
		return t, nil
	}
	if u.Title != nil && !validTitle(*u.Title) {
		return nil, ErrInvalidInput
	}
	if u.Priority != nil && !u.Priority.Valid() {
		return nil, ErrInvalidInput
	}
	if u.Status != nil && !u.Status.Valid() {
		return nil, ErrInvalidInput
	}

	if u.AssigneeID != nil {
		member, err := s.members.IsMember(ctx, t.ProjectID, *u.AssigneeID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrInvalidInput
		}
	}
	if u.MilestoneID != nil {
		m, err := s.milestones.GetByID(ctx, *u.MilestoneID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidInput
		}
		if err != nil {
			return nil, err
		}
		if m.ProjectID != t.ProjectID {
			return nil, ErrInvalidInput
		}
	}

	updated, err := s.tasks.Update(ctx, taskID, u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return updated, err
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if _, err := s.Get(ctx, userID, taskID); err != nil {
		return err
	}
	err := s.tasks.Delete(ctx, taskID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *TaskService) AddSubtask(ctx context.Context, userID, taskID, title string) (*domain.Subtask, error) {
	if _, err := s.Get(ctx, userID, taskID); err != nil {
		return nil, err
	}
	if !validTitle(title) {
		return nil, ErrInvalidInput
	}
	sub := &domain.Subtask{TaskID: taskID, Title: strings.TrimSpace(title)}
	if err := s.subtasks.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// UpdateSubtask applies a partial edit: title, done flag, or both.
func (s *TaskService) UpdateSubtask(ctx context.Context, userID, subtaskID string, title *string, done *bool) error {
	if err := s.checkSubtaskAccess(ctx, userID, subtaskID); err != nil {
		return err
	}
	if title == nil && done == nil {
		return nil
	}
	if title != nil && !validTitle(*title) {
		return ErrInvalidInput
	}
	err := s.subtasks.Update(ctx, subtaskID, title, done)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *TaskService) DeleteSubtask(ctx context.Context, userID, subtaskID string) error {
	if err := s.checkSubtaskAccess(ctx, userID, subtaskID); err != nil {
		return err
	}
	err := s.subtasks.Delete(ctx, subtaskID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *TaskService) ListSubtasks(ctx context.Context, userID, taskID string) ([]*domain.Subtask, error) {
	if _, err := s.Get(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return s.subtasks.ListByTask(ctx, taskID)
}

func (s *TaskService) checkSubtaskAccess(ctx context.Context, userID, subtaskID string) error {
	taskID, err := s.subtasks.TaskID(ctx, subtaskID)
	if err != nil {
		return err
	}
	if taskID == "" {
		return ErrNotFound
	}
	_, err = s.Get(ctx, userID, taskID)
	return err
}
