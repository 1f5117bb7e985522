package repository

import (
	"context"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// notificationListMax caps a single unread/recent listing.
const notificationListMax = 100

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO notifications (user_id, type, body, project_id, task_id, comment_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, n.UserID, n.Type, n.Body, n.ProjectID, n.TaskID, n.CommentID, n.Metadata).Scan(&n.ID, &n.CreatedAt)
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*domain.Notification, error) {
	if limit <= 0 || limit > notificationListMax {
		limit = notificationListMax
	}
	query := `
		SELECT id, user_id, type, body, is_read, read_at, project_id, task_id, comment_id, metadata, created_at
		FROM notifications
		WHERE user_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += `
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Body, &n.IsRead, &n.ReadAt,
			&n.ProjectID, &n.TaskID, &n.CommentID, &n.Metadata, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		res = append(res, &n)
	}
	return res, rows.Err()
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE
	`, userID).Scan(&n)
	return n, err
}

// SetRead flips one notification's read flag, scoped to its owner.
func (r *NotificationRepository) SetRead(ctx context.Context, id, userID string, read bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications
		SET is_read = $3, read_at = CASE WHEN $3 THEN NOW() ELSE NULL END
		WHERE id = $1 AND user_id = $2
	`, id, userID, read)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = NOW()
		WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	return err
}
