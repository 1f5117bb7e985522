package domain

// Column is a kanban board column. Columns are created by project members;
// there is no delete endpoint.
type Column struct {
	ID        string `db:"id" json:"id"`
	ProjectID string `db:"project_id" json:"-"`
	Name      string `db:"name" json:"name"`
	SortOrder int    `db:"sort_order" json:"sort_order"`
}

// BoardColumn is the board read model: a column with its tasks in display
// order.
type BoardColumn struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
	Tasks     []Task `json:"tasks"`
}

// ReorderColumn is one column's desired task arrangement within a reorder
// request. The request carries the full board, not a diff.
type ReorderColumn struct {
	ID      string   `json:"id" binding:"required,uuid"`
	TaskIDs []string `json:"taskIds" binding:"dive,uuid"`
}

type ReorderRequest struct {
	ProjectID string          `json:"projectId" binding:"required,uuid"`
	Columns   []ReorderColumn `json:"columns" binding:"required,min=1,dive"`
}
