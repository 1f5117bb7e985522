package board

import (
	"context"
	"sync"

	"taskflow/internal/domain"
)

// Phase is the drag lifecycle of an optimistic board copy.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseDragging   Phase = "dragging"
	PhasePersisting Phase = "persisting"
)

// Persister writes a board arrangement to the server.
type Persister interface {
	PersistOrder(ctx context.Context, req domain.ReorderRequest) error
}

// State is an optimistic in-memory mirror of one project's board. Drag
// gestures mutate it synchronously; persistence runs in the background and
// never rolls the local copy back. A failed persist only surfaces through
// the alert callback, so the copy can silently diverge from server truth.
type State struct {
	mu        sync.Mutex
	projectID string
	columns   []domain.BoardColumn
	phase     Phase
	dragging  string
	filter    string

	persister Persister
	alert     func(msg string)
	wg        sync.WaitGroup
}

// NewState builds a board mirror over the given columns. alert is invoked
// with a user-facing message when a background persist fails; it may be nil.
func NewState(projectID string, columns []domain.BoardColumn, p Persister, alert func(string)) *State {
	if alert == nil {
		alert = func(string) {}
	}
	return &State{
		projectID: projectID,
		columns:   columns,
		phase:     PhaseIdle,
		persister: p,
		alert:     alert,
	}
}

// Columns returns a snapshot of the current arrangement.
func (s *State) Columns() []domain.BoardColumn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.BoardColumn, len(s.columns))
	for i, c := range s.columns {
		out[i] = c
		out[i].Tasks = append([]domain.Task(nil), c.Tasks...)
	}
	return out
}

func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Dragging returns the id of the task currently being dragged, if any.
func (s *State) Dragging() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragging
}

// SetMilestoneFilter restricts the view to one milestone. While a filter is
// active dragging is disabled: a reorder built from the filtered subset
// would drop the hidden tasks from their columns.
func (s *State) SetMilestoneFilter(milestoneID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = milestoneID
}

// DragEnabled reports whether cards accept drag gestures.
func (s *State) DragEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter == ""
}

// StartDrag records the active task. A no-op when dragging is disabled or
// the task is not on the board.
func (s *State) StartDrag(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter != "" {
		return false
	}
	if ci, _ := s.locate(taskID); ci < 0 {
		return false
	}
	s.dragging = taskID
	s.phase = PhaseDragging
	return true
}

// CancelDrag drops the gesture without mutating the board.
func (s *State) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragging = ""
	s.phase = PhaseIdle
}

// Drop ends the gesture over targetColumnID at targetIndex. If the target
// differs from the source, the new arrangement is applied locally right
// away and persisted in the background. The local mutation is kept even
// when persistence later fails.
func (s *State) Drop(ctx context.Context, targetColumnID string, targetIndex int) bool {
	s.mu.Lock()

	taskID := s.dragging
	s.dragging = ""
	s.phase = PhaseIdle
	if taskID == "" || s.filter != "" {
		s.mu.Unlock()
		return false
	}

	srcCol, srcIdx := s.locate(taskID)
	dstCol := s.columnIndex(targetColumnID)
	if srcCol < 0 || dstCol < 0 {
		s.mu.Unlock()
		return false
	}
	if srcCol == dstCol && srcIdx == targetIndex {
		s.mu.Unlock()
		return false
	}

	task := s.columns[srcCol].Tasks[srcIdx]
	if srcCol == dstCol {
		s.columns[srcCol].Tasks = splice(s.columns[srcCol].Tasks, srcIdx, targetIndex)
	} else {
		src := s.columns[srcCol].Tasks
		s.columns[srcCol].Tasks = append(src[:srcIdx], src[srcIdx+1:]...)
		s.columns[dstCol].Tasks = insertAt(s.columns[dstCol].Tasks, task, targetIndex)
	}

	req := s.arrangement()
	s.phase = PhasePersisting
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.persister.PersistOrder(ctx, req)

		s.mu.Lock()
		s.phase = PhaseIdle
		s.mu.Unlock()

		if err != nil {
			msg := err.Error()
			if msg == "" {
				msg = "failed to save board order"
			}
			s.alert(msg)
		}
	}()
	return true
}

// Wait blocks until all background persists have finished.
func (s *State) Wait() {
	s.wg.Wait()
}

// arrangement builds the full-board reorder payload. Callers hold s.mu.
func (s *State) arrangement() domain.ReorderRequest {
	cols := make([]domain.ReorderColumn, len(s.columns))
	for i, c := range s.columns {
		ids := make([]string, len(c.Tasks))
		for j, t := range c.Tasks {
			ids[j] = t.ID
		}
		cols[i] = domain.ReorderColumn{ID: c.ID, TaskIDs: ids}
	}
	return domain.ReorderRequest{ProjectID: s.projectID, Columns: cols}
}

func (s *State) locate(taskID string) (col, idx int) {
	for ci, c := range s.columns {
		for ti, t := range c.Tasks {
			if t.ID == taskID {
				return ci, ti
			}
		}
	}
	return -1, -1
}

func (s *State) columnIndex(id string) int {
	for i, c := range s.columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// splice moves the element at from to position to within one slice.
func splice(tasks []domain.Task, from, to int) []domain.Task {
	t := tasks[from]
	tasks = append(tasks[:from], tasks[from+1:]...)
	return insertAt(tasks, t, to)
}

func insertAt(tasks []domain.Task, t domain.Task, idx int) []domain.Task {
	if idx < 0 {
		idx = 0
	}
	if idx > len(tasks) {
		idx = len(tasks)
	}
	tasks = append(tasks, domain.Task{})
	copy(tasks[idx+1:], tasks[idx:])
	tasks[idx] = t
	return tasks
}
