package service

import (
	"context"
	"errors"
	"regexp"

	"taskflow/internal/domain"
	"taskflow/internal/logger"

	"github.com/jackc/pgx/v5"
)

// mentionCandidateMax caps the autocomplete dropdown.
const mentionCandidateMax = 8

var mentionPattern = regexp.MustCompile(`@([\p{L}\p{N}._-]+)`)

type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*domain.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	SetRead(ctx context.Context, id, userID string, read bool) error
	MarkAllRead(ctx context.Context, userID string) error
}

// ProfileDirectory resolves mention handles against project members.
type ProfileDirectory interface {
	ResolveDisplayNames(ctx context.Context, projectID string, names []string) (map[string]string, error)
	SearchProjectMembers(ctx context.Context, projectID, query string, limit int) ([]*domain.Profile, error)
}

// NotificationService delivers in-app notifications and handles @mention
// scanning in comment bodies.
type NotificationService struct {
	store    NotificationStore
	profiles ProfileDirectory
}

func NewNotificationService(store NotificationStore, profiles ProfileDirectory) *NotificationService {
	return &NotificationService{store: store, profiles: profiles}
}

// ScanMentions extracts @handles from a comment body and returns them in
// order of first appearance, deduplicated.
func ScanMentions(body string) []string {
	matches := mentionPattern.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var names []string
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

// NotifyMentions creates a mention notification for every project member
// whose display name is @mentioned in the comment. The author never
// notifies themselves. Failures are logged and do not fail the comment.
func (s *NotificationService) NotifyMentions(ctx context.Context, projectID, taskID, commentID, authorID, body string) {
	names := ScanMentions(body)
	if len(names) == 0 {
		return
	}

	resolved, err := s.profiles.ResolveDisplayNames(ctx, projectID, names)
	if err != nil {
		logger.Error("mention resolution failed", "error", err, "project_id", projectID)
		return
	}

	for name, userID := range resolved {
		if userID == authorID {
			continue
		}
		n := &domain.Notification{
			UserID:    userID,
			Type:      domain.NotificationMention,
			ProjectID: &projectID,
			TaskID:    &taskID,
			CommentID: &commentID,
			Metadata:  map[string]interface{}{"mentioned_as": name, "author_id": authorID},
		}
		if err := s.store.Create(ctx, n); err != nil {
			logger.Error("mention notification failed", "error", err, "user_id", userID)
		}
	}
}

// MentionCandidates returns project members matching the typed prefix, for
// the mention autocomplete.
func (s *NotificationService) MentionCandidates(ctx context.Context, projectID, query string) ([]*domain.Profile, error) {
	return s.profiles.SearchProjectMembers(ctx, projectID, query, mentionCandidateMax)
}

func (s *NotificationService) List(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*domain.Notification, error) {
	return s.store.ListByUser(ctx, userID, limit, unreadOnly)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.UnreadCount(ctx, userID)
}

// SetRead marks one of the caller's notifications read or unread.
func (s *NotificationService) SetRead(ctx context.Context, userID, notificationID string, read bool) error {
	err := s.store.SetRead(ctx, notificationID, userID, read)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllRead(ctx, userID)
}
