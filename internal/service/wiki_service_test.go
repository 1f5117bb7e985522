package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
)

type fakeWikiStore struct {
	byID map[string]*domain.WikiPage
}

func (f *fakeWikiStore) Create(_ context.Context, p *domain.WikiPage) error {
	p.ID = "w-new"
	f.byID[p.ID] = p
	return nil
}

func (f *fakeWikiStore) GetByID(_ context.Context, id string) (*domain.WikiPage, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeWikiStore) Update(_ context.Context, id, title, body, editorID string) (string, *domain.WikiPage, error) {
	p, ok := f.byID[id]
	if !ok {
		return "", nil, pgx.ErrNoRows
	}
	prev := p.Body
	p.Title, p.Body, p.UpdatedBy = title, body, editorID
	return prev, p, nil
}

func (f *fakeWikiStore) SoftDelete(_ context.Context, id string) error { return nil }

func (f *fakeWikiStore) ListByProject(_ context.Context, projectID string) ([]*domain.WikiPage, error) {
	return nil, nil
}

func (f *fakeWikiStore) AddRevision(_ context.Context, rev *domain.WikiRevision) error { return nil }

func (f *fakeWikiStore) ListRevisions(_ context.Context, pageID string) ([]*domain.WikiRevision, error) {
	return nil, nil
}

func newTestWikiService(pages *fakeWikiStore) *WikiService {
	access := NewAccessService(
		&fakeProjectStore{
			members: map[string]map[string]bool{"p1": {"alice": true}},
			teams:   map[string]string{"p1": "team1"},
		},
		&fakeTeamStore{roles: map[string]map[string]domain.TeamRole{}},
	)
	return NewWikiService(access, pages)
}

func TestWikiTitleBounds(t *testing.T) {
	pages := &fakeWikiStore{byID: map[string]*domain.WikiPage{
		"w1": {ID: "w1", ProjectID: "p1", Title: "notes", Body: "v1"},
	}}
	svc := newTestWikiService(pages)
	ctx := context.Background()
	long := strings.Repeat("a", 201)

	if _, err := svc.Create(ctx, "alice", "p1", long, "body"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("create err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Update(ctx, "alice", "w1", long, "v2"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("update err = %v, want ErrInvalidInput", err)
	}
	if pages.byID["w1"].Body != "v1" {
		t.Fatal("page changed despite invalid title")
	}

	if _, err := svc.Create(ctx, "alice", "p1", strings.Repeat("a", 200), "body"); err != nil {
		t.Fatalf("max-length create: %v", err)
	}
}
