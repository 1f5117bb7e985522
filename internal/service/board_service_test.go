package service

import (
	"context"
	"errors"
	"testing"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
)

type fakeProjectStore struct {
	members map[string]map[string]bool // projectID -> userID -> member
	teams   map[string]string          // projectID -> teamID
	err     error
}

func (f *fakeProjectStore) IsMember(_ context.Context, projectID, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.members[projectID][userID], nil
}

func (f *fakeProjectStore) TeamID(_ context.Context, projectID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.teams[projectID], nil
}

type fakeTeamStore struct {
	roles map[string]map[string]domain.TeamRole // teamID -> userID -> role
	err   error
}

func (f *fakeTeamStore) Role(_ context.Context, teamID, userID string) (domain.TeamRole, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.roles[teamID][userID], nil
}

type fakeReorderStore struct {
	tasks     map[string][]string // projectID -> task ids
	reorders  []domain.ReorderRequest
	commitErr error
}

func (f *fakeReorderStore) IDsInProject(_ context.Context, projectID string, ids []string) ([]string, error) {
	known := make(map[string]bool)
	for _, id := range f.tasks[projectID] {
		known[id] = true
	}
	var found []string
	for _, id := range ids {
		if known[id] {
			found = append(found, id)
		}
	}
	return found, nil
}

func (f *fakeReorderStore) Reorder(_ context.Context, projectID string, columns []domain.ReorderColumn) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.reorders = append(f.reorders, domain.ReorderRequest{ProjectID: projectID, Columns: columns})
	return nil
}

func (f *fakeReorderStore) ListByProject(_ context.Context, projectID, milestoneID string) ([]*domain.Task, error) {
	return nil, nil
}

type fakeColumnStore struct {
	cols []*domain.Column
}

func (f *fakeColumnStore) Create(_ context.Context, c *domain.Column) error {
	c.ID = "col-new"
	f.cols = append(f.cols, c)
	return nil
}

func (f *fakeColumnStore) ListByProject(_ context.Context, projectID string) ([]*domain.Column, error) {
	return f.cols, nil
}

func newTestBoardService(tasks *fakeReorderStore) *BoardService {
	access := NewAccessService(
		&fakeProjectStore{
			members: map[string]map[string]bool{"p1": {"member": true}},
			teams:   map[string]string{"p1": "team1", "p2": "team1"},
		},
		&fakeTeamStore{
			roles: map[string]map[string]domain.TeamRole{"team1": {"admin": domain.RoleAdmin, "regular": domain.RoleUser}},
		},
	)
	return NewBoardService(access, tasks, &fakeColumnStore{})
}

func TestReorderHappyPath(t *testing.T) {
	store := &fakeReorderStore{tasks: map[string][]string{"p1": {"t1", "t2", "t3"}}}
	svc := newTestBoardService(store)

	err := svc.Reorder(context.Background(), "member", domain.ReorderRequest{
		ProjectID: "p1",
		Columns:   []domain.ReorderColumn{{ID: "c1", TaskIDs: []string{"t3", "t1", "t2"}}},
	})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if len(store.reorders) != 1 {
		t.Fatalf("commits = %d, want 1", len(store.reorders))
	}
	got := store.reorders[0].Columns[0].TaskIDs
	if got[0] != "t3" || got[1] != "t1" || got[2] != "t2" {
		t.Fatalf("committed order = %v", got)
	}
}

func TestReorderTeamAdminAllowed(t *testing.T) {
	store := &fakeReorderStore{tasks: map[string][]string{"p1": {"t1"}}}
	svc := newTestBoardService(store)

	err := svc.Reorder(context.Background(), "admin", domain.ReorderRequest{
		ProjectID: "p1",
		Columns:   []domain.ReorderColumn{{ID: "c1", TaskIDs: []string{"t1"}}},
	})
	if err != nil {
		t.Fatalf("Reorder as team admin: %v", err)
	}
}

func TestReorderForbidden(t *testing.T) {
	store := &fakeReorderStore{tasks: map[string][]string{"p1": {"t1"}}}
	svc := newTestBoardService(store)

	// a regular team member without a project-member row is denied
	err := svc.Reorder(context.Background(), "regular", domain.ReorderRequest{
		ProjectID: "p1",
		Columns:   []domain.ReorderColumn{{ID: "c1", TaskIDs: []string{"t1"}}},
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if len(store.reorders) != 0 {
		t.Fatal("forbidden reorder reached the store")
	}
}

func TestReorderAccessFailClosed(t *testing.T) {
	store := &fakeReorderStore{tasks: map[string][]string{"p1": {"t1"}}}
	access := NewAccessService(
		&fakeProjectStore{err: errors.New("db down")},
		&fakeTeamStore{},
	)
	svc := NewBoardService(access, store, &fakeColumnStore{})

	err := svc.Reorder(context.Background(), "member", domain.ReorderRequest{
		ProjectID: "p1",
		Columns:   []domain.ReorderColumn{{ID: "c1", TaskIDs: []string{"t1"}}},
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden on lookup error", err)
	}
}

func TestReorderForeignTaskRejected(t *testing.T) {
	// t9 belongs to another project; the whole request is rejected
	store := &fakeReorderStore{tasks: map[string][]string{"p1": {"t1", "t2"}, "p2": {"t9"}}}
	svc := newTestBoardService(store)

	err := svc.Reorder(context.Background(), "member", domain.ReorderRequest{
		ProjectID: "p1",
		Columns:   []domain.ReorderColumn{{ID: "c1", TaskIDs: []string{"t1", "t9"}}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if len(store.reorders) != 0 {
		t.Fatal("cross-project reorder reached the store")
	}
}

func TestReorderUnknownTaskRejected(t *testing.T) {
	store := &fakeReorderStore{tasks: map[string][]string{"p1": {"t1"}}}
	svc := newTestBoardService(store)

	err := svc.Reorder(context.Background(), "member", domain.ReorderRequest{
		ProjectID: "p1",
		Columns:   []domain.ReorderColumn{{ID: "c1", TaskIDs: []string{"t1", "ghost"}}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestReorderDuplicateTaskRejected(t *testing.T) {
	store := &fakeReorderStore{tasks: map[string][]string{"p1": {"t1", "t2"}}}
	svc := newTestBoardService(store)

	err := svc.Reorder(context.Background(), "member", domain.ReorderRequest{
		ProjectID: "p1",
		Columns: []domain.ReorderColumn{
			{ID: "c1", TaskIDs: []string{"t1", "t2"}},
			{ID: "c2", TaskIDs: []string{"t1"}},
		},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if len(store.reorders) != 0 {
		t.Fatal("duplicate reorder reached the store")
	}
}

func TestReorderEmptyPayloadIsNoop(t *testing.T) {
	store := &fakeReorderStore{tasks: map[string][]string{"p1": {"t1"}}}
	svc := newTestBoardService(store)

	err := svc.Reorder(context.Background(), "member", domain.ReorderRequest{
		ProjectID: "p1",
		Columns: []domain.ReorderColumn{
			{ID: "c1", TaskIDs: []string{}},
			{ID: "c2", TaskIDs: nil},
		},
	})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if len(store.reorders) != 0 {
		t.Fatal("empty payload caused writes")
	}
}

func TestReorderIdempotent(t *testing.T) {
	store := &fakeReorderStore{tasks: map[string][]string{"p1": {"t1", "t2"}}}
	svc := newTestBoardService(store)

	req := domain.ReorderRequest{
		ProjectID: "p1",
		Columns:   []domain.ReorderColumn{{ID: "c1", TaskIDs: []string{"t2", "t1"}}},
	}
	for i := 0; i < 2; i++ {
		if err := svc.Reorder(context.Background(), "member", req); err != nil {
			t.Fatalf("Reorder #%d: %v", i+1, err)
		}
	}
	if len(store.reorders) != 2 {
		t.Fatalf("commits = %d, want 2", len(store.reorders))
	}
	// same arrangement submitted both times
	for _, r := range store.reorders {
		ids := r.Columns[0].TaskIDs
		if ids[0] != "t2" || ids[1] != "t1" {
			t.Fatalf("commit order = %v", ids)
		}
	}
}

func TestReorderVanishedTaskAbortsCommit(t *testing.T) {
	store := &fakeReorderStore{
		tasks:     map[string][]string{"p1": {"t1"}},
		commitErr: pgx.ErrNoRows,
	}
	svc := newTestBoardService(store)

	err := svc.Reorder(context.Background(), "member", domain.ReorderRequest{
		ProjectID: "p1",
		Columns:   []domain.ReorderColumn{{ID: "c1", TaskIDs: []string{"t1"}}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
