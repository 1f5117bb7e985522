package domain

import "time"

const NotificationMention = "mention"

type Notification struct {
	ID        string                 `db:"id" json:"id"`
	UserID    string                 `db:"user_id" json:"-"`
	Type      string                 `db:"type" json:"type"`
	Body      *string                `db:"body" json:"body"`
	IsRead    bool                   `db:"is_read" json:"is_read"`
	ReadAt    *time.Time             `db:"read_at" json:"read_at"`
	ProjectID *string                `db:"project_id" json:"project_id"`
	TaskID    *string                `db:"task_id" json:"task_id"`
	CommentID *string                `db:"comment_id" json:"comment_id"`
	Metadata  map[string]interface{} `db:"metadata" json:"metadata"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}
