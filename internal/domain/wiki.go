package domain

import "time"

// WikiPage is soft-deleted: DeletedAt is set instead of removing the row,
// so revision history survives deletion.
type WikiPage struct {
	ID        string     `db:"id" json:"id"`
	ProjectID string     `db:"project_id" json:"project_id"`
	Title     string     `db:"title" json:"title"`
	Body      string     `db:"body" json:"body"`
	CreatedBy string     `db:"created_by" json:"-"`
	UpdatedBy string     `db:"updated_by" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
}

type WikiRevision struct {
	ID       string    `db:"id" json:"id"`
	PageID   string    `db:"page_id" json:"-"`
	Body     string    `db:"body" json:"body"`
	EditedBy string    `db:"edited_by" json:"edited_by"`
	EditedAt time.Time `db:"edited_at" json:"edited_at"`
}
