package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"taskflow/internal/domain"
	"taskflow/internal/service"
	"taskflow/internal/ws"

	"github.com/gin-gonic/gin"
)

const (
	testProject = "11111111-1111-4111-8111-111111111111"
	testColumn1 = "22222222-2222-4222-8222-222222222222"
	testColumn2 = "33333333-3333-4333-8333-333333333333"
	testTask1   = "44444444-4444-4444-8444-444444444444"
	testTask2   = "55555555-5555-4555-8555-555555555555"
	testTask3   = "66666666-6666-4666-8666-666666666666"
)

type fakeBoardAccess struct{}

func (fakeBoardAccess) IsMember(_ context.Context, projectID, userID string) (bool, error) {
	return projectID == testProject && userID == "member", nil
}

func (fakeBoardAccess) TeamID(_ context.Context, projectID string) (string, error) {
	return "", nil
}

func (fakeBoardAccess) Role(_ context.Context, teamID, userID string) (domain.TeamRole, error) {
	return "", nil
}

type fakeBoardStore struct {
	mu       sync.Mutex
	tasks    []string
	lookups  int
	reorders []domain.ReorderRequest
}

func (f *fakeBoardStore) IDsInProject(_ context.Context, projectID string, ids []string) ([]string, error) {
	f.mu.Lock()
	f.lookups++
	f.mu.Unlock()
	var known []string
	for _, id := range ids {
		for _, t := range f.tasks {
			if id == t {
				known = append(known, id)
			}
		}
	}
	return known, nil
}

func (f *fakeBoardStore) Reorder(_ context.Context, projectID string, columns []domain.ReorderColumn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reorders = append(f.reorders, domain.ReorderRequest{ProjectID: projectID, Columns: columns})
	return nil
}

func (f *fakeBoardStore) ListByProject(_ context.Context, projectID, milestoneID string) ([]*domain.Task, error) {
	return []*domain.Task{
		{ID: testTask1, ProjectID: projectID, ColumnID: testColumn1, Title: "first"},
		{ID: testTask2, ProjectID: projectID, ColumnID: testColumn1, Title: "second"},
		{ID: testTask3, ProjectID: projectID, ColumnID: testColumn2, Title: "third"},
	}, nil
}

type fakeColumnLister struct{}

func (fakeColumnLister) Create(_ context.Context, c *domain.Column) error { return nil }

func (fakeColumnLister) ListByProject(_ context.Context, projectID string) ([]*domain.Column, error) {
	return []*domain.Column{
		{ID: testColumn1, ProjectID: projectID, Name: "To Do", SortOrder: 100},
		{ID: testColumn2, ProjectID: projectID, Name: "Done", SortOrder: 200},
	}, nil
}

func newBoardRouter(store *fakeBoardStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	access := service.NewAccessService(fakeBoardAccess{}, fakeBoardAccess{})
	h := &Handler{
		Boards: service.NewBoardService(access, store, fakeColumnLister{}),
		Hub:    ws.NewHub(),
	}

	r := gin.New()
	auth := func(c *gin.Context) {
		if u := c.GetHeader("X-Test-User"); u != "" {
			c.Set("user_id", u)
		}
	}
	v1 := r.Group("/api/v1", auth)
	v1.POST("/tasks/reorder", h.Reorder)
	v1.GET("/projects/:id/board", h.GetBoard)
	return r
}

func postReorder(t *testing.T, r *gin.Engine, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/tasks/reorder", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	r.ServeHTTP(w, req)
	return w
}

func reorderBody(columns string) string {
	return `{"projectId":"` + testProject + `","columns":[` + columns + `]}`
}

func TestReorderEndpoint(t *testing.T) {
	store := &fakeBoardStore{tasks: []string{testTask1, testTask2, testTask3}}
	r := newBoardRouter(store)

	body := reorderBody(
		`{"id":"` + testColumn1 + `","taskIds":["` + testTask2 + `","` + testTask1 + `"]},` +
			`{"id":"` + testColumn2 + `","taskIds":["` + testTask3 + `"]}`)
	w := postReorder(t, r, "member", body)
	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if !resp["ok"] {
		t.Fatalf("body = %s", w.Body.String())
	}

	if len(store.reorders) != 1 {
		t.Fatalf("reorder calls = %d, want 1", len(store.reorders))
	}
	got := store.reorders[0]
	if got.ProjectID != testProject {
		t.Fatalf("project = %q", got.ProjectID)
	}
	if got.Columns[0].TaskIDs[0] != testTask2 {
		t.Fatalf("order not preserved: %v", got.Columns[0].TaskIDs)
	}
}

func TestReorderEndpointRequiresAuth(t *testing.T) {
	store := &fakeBoardStore{tasks: []string{testTask1}}
	r := newBoardRouter(store)

	w := postReorder(t, r, "", reorderBody(`{"id":"`+testColumn1+`","taskIds":["`+testTask1+`"]}`))
	if w.Code != 401 {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestReorderEndpointForbidden(t *testing.T) {
	store := &fakeBoardStore{tasks: []string{testTask1}}
	r := newBoardRouter(store)

	w := postReorder(t, r, "stranger", reorderBody(`{"id":"`+testColumn1+`","taskIds":["`+testTask1+`"]}`))
	if w.Code != 403 {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if len(store.reorders) != 0 {
		t.Fatal("reorder committed for non-member")
	}
}

func TestReorderEndpointForeignTask(t *testing.T) {
	store := &fakeBoardStore{tasks: []string{testTask1}}
	r := newBoardRouter(store)

	w := postReorder(t, r, "member", reorderBody(`{"id":"`+testColumn1+`","taskIds":["`+testTask3+`"]}`))
	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	// well-formed unknown ids get past binding and fail validation
	if store.lookups != 1 {
		t.Fatalf("lookups = %d, want 1", store.lookups)
	}
	if len(store.reorders) != 0 {
		t.Fatal("reorder committed with foreign task")
	}
}

func TestReorderEndpointMalformedIDs(t *testing.T) {
	bodies := []string{
		reorderBody(`{"id":"not-a-uuid","taskIds":["` + testTask1 + `"]}`),
		reorderBody(`{"id":"` + testColumn1 + `","taskIds":["also-not-a-uuid"]}`),
		`{"projectId":"not-a-uuid","columns":[{"id":"` + testColumn1 + `","taskIds":[]}]}`,
	}
	for _, body := range bodies {
		store := &fakeBoardStore{tasks: []string{testTask1}}
		r := newBoardRouter(store)

		w := postReorder(t, r, "member", body)
		if w.Code != 400 {
			t.Fatalf("body %s: status = %d, want 400", body, w.Code)
		}
		// malformed ids must die at binding, before any store access
		if store.lookups != 0 || len(store.reorders) != 0 {
			t.Fatalf("body %s: store touched (lookups=%d, reorders=%d)", body, store.lookups, len(store.reorders))
		}
	}
}

func TestReorderEndpointEmptyColumnsNoop(t *testing.T) {
	store := &fakeBoardStore{tasks: []string{testTask1}}
	r := newBoardRouter(store)

	w := postReorder(t, r, "member", reorderBody(`{"id":"`+testColumn1+`","taskIds":[]}`))
	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(store.reorders) != 0 {
		t.Fatal("empty arrangement should not hit the store")
	}
}

func TestGetBoardGroupsTasksByColumn(t *testing.T) {
	store := &fakeBoardStore{tasks: []string{testTask1, testTask2, testTask3}}
	r := newBoardRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/projects/"+testProject+"/board", nil)
	req.Header.Set("X-Test-User", "member")
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Columns []domain.BoardColumn `json:"columns"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Columns) != 2 {
		t.Fatalf("columns = %d, want 2", len(resp.Columns))
	}
	if len(resp.Columns[0].Tasks) != 2 || len(resp.Columns[1].Tasks) != 1 {
		t.Fatalf("task grouping wrong: %+v", resp.Columns)
	}
	if resp.Columns[0].Tasks[0].ID != testTask1 {
		t.Fatalf("task order wrong: %+v", resp.Columns[0].Tasks)
	}
}
