package service

import (
	"context"
	"errors"
	"strings"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
)

type MilestoneStore interface {
	Create(ctx context.Context, m *domain.Milestone) error
	GetByID(ctx context.Context, id string) (*domain.Milestone, error)
	SetStatus(ctx context.Context, id string, status domain.MilestoneStatus) error
	Delete(ctx context.Context, id string) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.Milestone, error)
}

type MilestoneService struct {
	access *AccessService
	store  MilestoneStore
}

func NewMilestoneService(access *AccessService, store MilestoneStore) *MilestoneService {
	return &MilestoneService{access: access, store: store}
}

func (s *MilestoneService) Create(ctx context.Context, userID, projectID, name string, dueDate *string) (*domain.Milestone, error) {
	if !s.access.CanAccessProject(ctx, projectID, userID) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}
	m := &domain.Milestone{
		ProjectID: projectID,
		Name:      strings.TrimSpace(name),
		Status:    domain.MilestonePlanned,
		DueDate:   dueDate,
		CreatedBy: userID,
	}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MilestoneService) get(ctx context.Context, userID, milestoneID string) (*domain.Milestone, error) {
	m, err := s.store.GetByID(ctx, milestoneID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !s.access.CanAccessProject(ctx, m.ProjectID, userID) {
		return nil, ErrForbidden
	}
	return m, nil
}

func (s *MilestoneService) SetStatus(ctx context.Context, userID, milestoneID, rawStatus string) error {
	status := domain.MilestoneStatus(rawStatus)
	if !status.Valid() {
		return ErrInvalidInput
	}
	if _, err := s.get(ctx, userID, milestoneID); err != nil {
		return err
	}
	err := s.store.SetStatus(ctx, milestoneID, status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *MilestoneService) Delete(ctx context.Context, userID, milestoneID string) error {
	if _, err := s.get(ctx, userID, milestoneID); err != nil {
		return err
	}
	err := s.store.Delete(ctx, milestoneID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *MilestoneService) List(ctx context.Context, userID, projectID string) ([]*domain.Milestone, error) {
	if !s.access.CanAccessProject(ctx, projectID, userID) {
		return nil, ErrForbidden
	}
	return s.store.ListByProject(ctx, projectID)
}
