package repository

import (
	"context"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentRepository struct {
	db *pgxpool.Pool
}

func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO task_comments (task_id, body, author_id, parent_comment_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, c.TaskID, c.Body, c.AuthorID, c.ParentCommentID).Scan(&c.ID, &c.CreatedAt)
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var c domain.Comment
	err := r.db.QueryRow(ctx, `
		SELECT id, task_id, body, author_id, parent_comment_id, created_at
		FROM task_comments WHERE id = $1
	`, id).Scan(&c.ID, &c.TaskID, &c.Body, &c.AuthorID, &c.ParentCommentID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update rewrites a comment's body, scoped to its author.
func (r *CommentRepository) Update(ctx context.Context, id, authorID, body string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE task_comments SET body = $3 WHERE id = $1 AND author_id = $2
	`, id, authorID, body)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id, authorID string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM task_comments WHERE id = $1 AND author_id = $2
	`, id, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListByTask returns the task's comments as a one-level thread: top-level
// comments newest first, each with its replies attached. Reaction
// summaries are aggregated per comment; viewerID marks the viewer's own
// reactions.
func (r *CommentRepository) ListByTask(ctx context.Context, taskID, viewerID string) ([]*domain.Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, task_id, body, author_id, parent_comment_id, created_at
		FROM task_comments
		WHERE task_id = $1
		ORDER BY created_at DESC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*domain.Comment)
	var roots []*domain.Comment
	var order []string
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.Body, &c.AuthorID, &c.ParentCommentID, &c.CreatedAt); err != nil {
			return nil, err
		}
		byID[c.ID] = &c
		order = append(order, c.ID)
		if c.ParentCommentID == nil {
			roots = append(roots, &c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range order {
		c := byID[id]
		if c.ParentCommentID == nil {
			continue
		}
		if parent, ok := byID[*c.ParentCommentID]; ok {
			parent.Replies = append(parent.Replies, *c)
		}
	}

	if err := r.attachReactions(ctx, taskID, viewerID, byID); err != nil {
		return nil, err
	}
	if err := r.attachFiles(ctx, taskID, byID); err != nil {
		return nil, err
	}

	// replies were attached before their summaries; refresh the copies
	for _, root := range roots {
		for i := range root.Replies {
			if src, ok := byID[root.Replies[i].ID]; ok {
				root.Replies[i].Reactions = src.Reactions
				root.Replies[i].Attachments = src.Attachments
			}
		}
	}
	return roots, nil
}

func (r *CommentRepository) attachReactions(ctx context.Context, taskID, viewerID string, byID map[string]*domain.Comment) error {
	rows, err := r.db.Query(ctx, `
		SELECT cr.comment_id, cr.emoji, COUNT(*),
		       BOOL_OR(cr.user_id = $2)
		FROM comment_reactions cr
		JOIN task_comments c ON c.id = cr.comment_id
		WHERE c.task_id = $1
		GROUP BY cr.comment_id, cr.emoji
		ORDER BY cr.emoji
	`, taskID, viewerID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var commentID string
		var s domain.ReactionSummary
		if err := rows.Scan(&commentID, &s.Emoji, &s.Count, &s.ReactedByMe); err != nil {
			return err
		}
		if c, ok := byID[commentID]; ok {
			c.Reactions = append(c.Reactions, s)
		}
	}
	return rows.Err()
}

func (r *CommentRepository) attachFiles(ctx context.Context, taskID string, byID map[string]*domain.Comment) error {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.comment_id, a.storage_path, a.file_name, a.mime_type, a.file_size
		FROM comment_attachments a
		JOIN task_comments c ON c.id = a.comment_id
		WHERE c.task_id = $1
		ORDER BY a.id
	`, taskID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.Attachment
		if err := rows.Scan(&a.ID, &a.CommentID, &a.StoragePath, &a.FileName, &a.MimeType, &a.FileSize); err != nil {
			return err
		}
		if c, ok := byID[a.CommentID]; ok {
			c.Attachments = append(c.Attachments, a)
		}
	}
	return rows.Err()
}

// ToggleReaction adds the reaction if absent, removes it if present, and
// reports whether the reaction now exists.
func (r *CommentRepository) ToggleReaction(ctx context.Context, commentID, userID, emoji string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM comment_reactions
		WHERE comment_id = $1 AND user_id = $2 AND emoji = $3
	`, commentID, userID, emoji)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO comment_reactions (comment_id, user_id, emoji)
		VALUES ($1, $2, $3)
		ON CONFLICT (comment_id, user_id, emoji) DO NOTHING
	`, commentID, userID, emoji)
	return err == nil, err
}
