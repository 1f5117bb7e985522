package domain

import "time"

// Comment is a task comment. Threading is one level deep: replies carry
// the parent comment id, replies to replies are not allowed.
type Comment struct {
	ID              string    `db:"id" json:"id"`
	TaskID          string    `db:"task_id" json:"-"`
	Body            string    `db:"body" json:"body"`
	AuthorID        string    `db:"author_id" json:"author_id"`
	ParentCommentID *string   `db:"parent_comment_id" json:"parent_comment_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`

	Reactions   []ReactionSummary `json:"reaction_summary,omitempty"`
	Attachments []Attachment      `json:"attachments,omitempty"`
	Replies     []Comment         `json:"replies,omitempty"`
}

type ReactionSummary struct {
	Emoji       string `json:"emoji"`
	Count       int    `json:"count"`
	ReactedByMe bool   `json:"reacted_by_me"`
}

type Attachment struct {
	ID          string `db:"id" json:"id"`
	CommentID   string `db:"comment_id" json:"-"`
	StoragePath string `db:"storage_path" json:"-"`
	FileName    string `db:"file_name" json:"file_name"`
	MimeType    string `db:"mime_type" json:"mime_type"`
	FileSize    int64  `db:"file_size" json:"file_size"`
	SignedURL   string `json:"signed_url,omitempty"`
}
