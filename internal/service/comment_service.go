package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"taskflow/internal/domain"
	"taskflow/internal/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CommentStore interface {
	Create(ctx context.Context, c *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	Update(ctx context.Context, id, authorID, body string) error
	Delete(ctx context.Context, id, authorID string) error
	ListByTask(ctx context.Context, taskID, viewerID string) ([]*domain.Comment, error)
	ToggleReaction(ctx context.Context, commentID, userID, emoji string) (bool, error)
}

type AttachmentStore interface {
	Create(ctx context.Context, a *domain.Attachment) error
	GetByID(ctx context.Context, id string) (*domain.Attachment, error)
	Delete(ctx context.Context, id string) error
	CommentTaskID(ctx context.Context, attachmentID string) (string, error)
}

// ObjectStore is the blob backend for attachments.
type ObjectStore interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	PresignedGet(ctx context.Context, path, fileName string) (string, error)
	Remove(ctx context.Context, path string) error
}

// AttachmentPolicy bounds what files a comment may carry.
type AttachmentPolicy struct {
	MaxBytes     int64
	AllowedMimes []string
}

func (p AttachmentPolicy) allows(mime string) bool {
	for _, m := range p.AllowedMimes {
		if strings.EqualFold(m, mime) {
			return true
		}
	}
	return false
}

// CommentService owns task comments, their reactions and attachments.
type CommentService struct {
	access        *AccessService
	comments      CommentStore
	attachments   AttachmentStore
	tasks         TaskStore
	objects       ObjectStore
	notifications *NotificationService
	policy        AttachmentPolicy
}

func NewCommentService(access *AccessService, comments CommentStore, attachments AttachmentStore, tasks TaskStore, objects ObjectStore, notifications *NotificationService, policy AttachmentPolicy) *CommentService {
	return &CommentService{
		access:        access,
		comments:      comments,
		attachments:   attachments,
		tasks:         tasks,
		objects:       objects,
		notifications: notifications,
		policy:        policy,
	}
}

func (s *CommentService) taskForAccess(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !s.access.CanAccessProject(ctx, t.ProjectID, userID) {
		return nil, ErrForbidden
	}
	return t, nil
}

// Add posts a comment on a task. parentID threads it one level deep:
// replying to a reply is rejected. Mentioned project members get a
// notification after the comment is stored.
func (s *CommentService) Add(ctx context.Context, userID, taskID, body string, parentID *string) (*domain.Comment, error) {
	t, err := s.taskForAccess(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" || utf8.RuneCountInString(body) > maxCommentBodyLen {
		return nil, ErrInvalidInput
	}

	if parentID != nil {
		parent, err := s.comments.GetByID(ctx, *parentID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidInput
		}
		if err != nil {
			return nil, err
		}
		if parent.TaskID != taskID || parent.ParentCommentID != nil {
			return nil, ErrInvalidInput
		}
	}

	c := &domain.Comment{
		TaskID:          taskID,
		Body:            body,
		AuthorID:        userID,
		ParentCommentID: parentID,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		logger.Error("comment create failed", "error", err, "task_id", taskID)
		return nil, err
	}

	s.notifications.NotifyMentions(ctx, t.ProjectID, taskID, c.ID, userID, body)
	return c, nil
}

// Update rewrites the body of the caller's own comment. Threading and
// attachments are untouched; mentions are only notified on create.
func (s *CommentService) Update(ctx context.Context, userID, commentID, body string) (*domain.Comment, error) {
	if strings.TrimSpace(body) == "" || utf8.RuneCountInString(body) > maxCommentBodyLen {
		return nil, ErrInvalidInput
	}
	c, err := s.comments.GetByID(ctx, commentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.taskForAccess(ctx, userID, c.TaskID); err != nil {
		return nil, err
	}
	err = s.comments.Update(ctx, commentID, userID, body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	c.Body = body
	return c, nil
}

// Delete removes the caller's own comment; replies and attachments go with
// it via cascading deletes.
func (s *CommentService) Delete(ctx context.Context, userID, commentID string) error {
	c, err := s.comments.GetByID(ctx, commentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if _, err := s.taskForAccess(ctx, userID, c.TaskID); err != nil {
		return err
	}
	err = s.comments.Delete(ctx, commentID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrForbidden
	}
	return err
}

// List returns the task's comment thread with reaction summaries and
// signed attachment links.
func (s *CommentService) List(ctx context.Context, userID, taskID string) ([]*domain.Comment, error) {
	if _, err := s.taskForAccess(ctx, userID, taskID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		s.signAttachments(ctx, c.Attachments)
		for i := range c.Replies {
			s.signAttachments(ctx, c.Replies[i].Attachments)
		}
	}
	return comments, nil
}

func (s *CommentService) signAttachments(ctx context.Context, atts []domain.Attachment) {
	if s.objects == nil {
		return
	}
	for i := range atts {
		url, err := s.objects.PresignedGet(ctx, atts[i].StoragePath, atts[i].FileName)
		if err != nil {
			logger.Warn("attachment presign failed", "error", err, "attachment_id", atts[i].ID)
			continue
		}
		atts[i].SignedURL = url
	}
}

// ToggleReaction adds or removes the caller's emoji reaction and reports
// whether it is now present.
func (s *CommentService) ToggleReaction(ctx context.Context, userID, commentID, emoji string) (bool, error) {
	if emoji == "" || utf8.RuneCountInString(emoji) > maxEmojiLen {
		return false, ErrInvalidInput
	}
	c, err := s.comments.GetByID(ctx, commentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	if _, err := s.taskForAccess(ctx, userID, c.TaskID); err != nil {
		return false, err
	}
	return s.comments.ToggleReaction(ctx, commentID, userID, emoji)
}

// AttachFile stores the upload and links it to the comment. Files outside
// the mime allowlist or over the size limit are rejected before any bytes
// hit the object store.
func (s *CommentService) AttachFile(ctx context.Context, userID, commentID, fileName, mimeType string, size int64, r io.Reader) (*domain.Attachment, error) {
	if s.objects == nil {
		return nil, ErrInvalidInput
	}
	if size <= 0 || size > s.policy.MaxBytes || !s.policy.allows(mimeType) {
		return nil, ErrInvalidInput
	}

	c, err := s.comments.GetByID(ctx, commentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.taskForAccess(ctx, userID, c.TaskID); err != nil {
		return nil, err
	}
	if c.AuthorID != userID {
		return nil, ErrForbidden
	}

	path := fmt.Sprintf("%s/%s-%s", commentID, uuid.NewString(), fileName)
	if err := s.objects.Upload(ctx, path, io.LimitReader(r, s.policy.MaxBytes), size, mimeType); err != nil {
		logger.Error("attachment upload failed", "error", err, "comment_id", commentID)
		return nil, err
	}

	a := &domain.Attachment{
		CommentID:   commentID,
		StoragePath: path,
		FileName:    fileName,
		MimeType:    mimeType,
		FileSize:    size,
	}
	if err := s.attachments.Create(ctx, a); err != nil {
		// orphaned blob; remove it so the bucket stays consistent
		if rmErr := s.objects.Remove(ctx, path); rmErr != nil {
			logger.Warn("orphan blob cleanup failed", "error", rmErr, "path", path)
		}
		return nil, err
	}
	return a, nil
}

// RemoveAttachment deletes the attachment row and its blob.
func (s *CommentService) RemoveAttachment(ctx context.Context, userID, attachmentID string) error {
	a, err := s.attachments.GetByID(ctx, attachmentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	c, err := s.comments.GetByID(ctx, a.CommentID)
	if err != nil {
		return err
	}
	if _, err := s.taskForAccess(ctx, userID, c.TaskID); err != nil {
		return err
	}
	if c.AuthorID != userID {
		return ErrForbidden
	}

	if err := s.attachments.Delete(ctx, attachmentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if s.objects != nil {
		if err := s.objects.Remove(ctx, a.StoragePath); err != nil {
			logger.Warn("attachment blob removal failed", "error", err, "path", a.StoragePath)
		}
	}
	return nil
}

// AttachmentURL returns a fresh signed download link.
func (s *CommentService) AttachmentURL(ctx context.Context, userID, attachmentID string) (string, error) {
	if s.objects == nil {
		return "", ErrNotFound
	}
	a, err := s.attachments.GetByID(ctx, attachmentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	taskID, err := s.attachments.CommentTaskID(ctx, attachmentID)
	if err != nil {
		return "", err
	}
	if taskID == "" {
		return "", ErrNotFound
	}
	if _, err := s.taskForAccess(ctx, userID, taskID); err != nil {
		return "", err
	}
	return s.objects.PresignedGet(ctx, a.StoragePath, a.FileName)
}
