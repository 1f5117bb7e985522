package service

import (
	"context"
	"errors"
	"strings"

	"taskflow/internal/domain"
	"taskflow/internal/logger"

	"github.com/jackc/pgx/v5"
)

type WikiStore interface {
	Create(ctx context.Context, p *domain.WikiPage) error
	GetByID(ctx context.Context, id string) (*domain.WikiPage, error)
	Update(ctx context.Context, id, title, body, editorID string) (string, *domain.WikiPage, error)
	SoftDelete(ctx context.Context, id string) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.WikiPage, error)
	AddRevision(ctx context.Context, rev *domain.WikiRevision) error
	ListRevisions(ctx context.Context, pageID string) ([]*domain.WikiRevision, error)
}

// WikiService owns project wiki pages. Pages are soft-deleted and every
// body change leaves a revision behind.
type WikiService struct {
	access *AccessService
	pages  WikiStore
}

func NewWikiService(access *AccessService, pages WikiStore) *WikiService {
	return &WikiService{access: access, pages: pages}
}

func (s *WikiService) Create(ctx context.Context, userID, projectID, title, body string) (*domain.WikiPage, error) {
	if !s.access.CanAccessProject(ctx, projectID, userID) {
		return nil, ErrForbidden
	}
	if !validTitle(title) {
		return nil, ErrInvalidInput
	}
	p := &domain.WikiPage{
		ProjectID: projectID,
		Title:     strings.TrimSpace(title),
		Body:      body,
		CreatedBy: userID,
	}
	if err := s.pages.Create(ctx, p); err != nil {
		logger.Error("wiki create failed", "error", err, "project_id", projectID)
		return nil, err
	}
	p.UpdatedBy = userID
	return p, nil
}

func (s *WikiService) Get(ctx context.Context, userID, pageID string) (*domain.WikiPage, error) {
	p, err := s.pages.GetByID(ctx, pageID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !s.access.CanAccessProject(ctx, p.ProjectID, userID) {
		return nil, ErrForbidden
	}
	return p, nil
}

// Update rewrites the page. When the body actually changed, the previous
// body is stored as a revision; a failed revision write is logged but does
// not fail the update.
func (s *WikiService) Update(ctx context.Context, userID, pageID, title, body string) (*domain.WikiPage, error) {
	if _, err := s.Get(ctx, userID, pageID); err != nil {
		return nil, err
	}
	if !validTitle(title) {
		return nil, ErrInvalidInput
	}

	prevBody, page, err := s.pages.Update(ctx, pageID, strings.TrimSpace(title), body, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if prevBody != body {
		rev := &domain.WikiRevision{PageID: pageID, Body: prevBody, EditedBy: userID}
		if err := s.pages.AddRevision(ctx, rev); err != nil {
			logger.Warn("wiki revision write failed", "error", err, "page_id", pageID)
		}
	}
	return page, nil
}

func (s *WikiService) Delete(ctx context.Context, userID, pageID string) error {
	if _, err := s.Get(ctx, userID, pageID); err != nil {
		return err
	}
	err := s.pages.SoftDelete(ctx, pageID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *WikiService) List(ctx context.Context, userID, projectID string) ([]*domain.WikiPage, error) {
	if !s.access.CanAccessProject(ctx, projectID, userID) {
		return nil, ErrForbidden
	}
	return s.pages.ListByProject(ctx, projectID)
}

func (s *WikiService) Revisions(ctx context.Context, userID, pageID string) ([]*domain.WikiRevision, error) {
	if _, err := s.Get(ctx, userID, pageID); err != nil {
		return nil, err
	}
	return s.pages.ListRevisions(ctx, pageID)
}
