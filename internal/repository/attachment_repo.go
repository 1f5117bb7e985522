package repository

import (
	"context"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AttachmentRepository struct {
	db *pgxpool.Pool
}

func NewAttachmentRepository(db *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, a *domain.Attachment) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO comment_attachments (comment_id, storage_path, file_name, mime_type, file_size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, a.CommentID, a.StoragePath, a.FileName, a.MimeType, a.FileSize).Scan(&a.ID)
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id string) (*domain.Attachment, error) {
	var a domain.Attachment
	err := r.db.QueryRow(ctx, `
		SELECT id, comment_id, storage_path, file_name, mime_type, file_size
		FROM comment_attachments WHERE id = $1
	`, id).Scan(&a.ID, &a.CommentID, &a.StoragePath, &a.FileName, &a.MimeType, &a.FileSize)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comment_attachments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CommentTaskID resolves the task owning the attachment's comment, for
// access checks.
func (r *AttachmentRepository) CommentTaskID(ctx context.Context, attachmentID string) (string, error) {
	var taskID string
	err := r.db.QueryRow(ctx, `
		SELECT c.task_id
		FROM comment_attachments a
		JOIN task_comments c ON c.id = a.comment_id
		WHERE a.id = $1
	`, attachmentID).Scan(&taskID)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	return taskID, err
}
