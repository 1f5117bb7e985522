package domain

import "time"

type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusReview     TaskStatus = "review"
	StatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// Task belongs to exactly one project and one column. SortOrder totally
// orders siblings within the column.
type Task struct {
	ID          string       `db:"id" json:"id"`
	ProjectID   string       `db:"project_id" json:"project_id"`
	ColumnID    string       `db:"column_id" json:"column_id"`
	Title       string       `db:"title" json:"title"`
	Description *string      `db:"description" json:"description"`
	Priority    TaskPriority `db:"priority" json:"priority"`
	Status      TaskStatus   `db:"status" json:"status"`
	AssigneeID  *string      `db:"assignee_id" json:"assignee_id"`
	MilestoneID *string      `db:"milestone_id" json:"milestone_id"`
	SortOrder   int          `db:"sort_order" json:"sort_order"`
	CreatedBy   string       `db:"created_by" json:"created_by"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

type Subtask struct {
	ID        string `db:"id" json:"id"`
	TaskID    string `db:"task_id" json:"-"`
	Title     string `db:"title" json:"title"`
	IsDone    bool   `db:"is_done" json:"is_done"`
	SortOrder int    `db:"sort_order" json:"sort_order"`
}
