package service

import (
	"context"
	"errors"
	"testing"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
)

func TestScanMentions(t *testing.T) {
	cases := []struct {
		body string
		want []string
	}{
		{"no mentions here", nil},
		{"hey @alice check this", []string{"alice"}},
		{"@alice @bob @alice", []string{"alice", "bob"}},
		{"email alice@example.com is not a mention of example", []string{"example.com"}},
		{"@dot.name and @under_score and @dash-name", []string{"dot.name", "under_score", "dash-name"}},
	}

	for _, tc := range cases {
		got := ScanMentions(tc.body)
		if len(got) != len(tc.want) {
			t.Fatalf("ScanMentions(%q) = %v, want %v", tc.body, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("ScanMentions(%q) = %v, want %v", tc.body, got, tc.want)
			}
		}
	}
}

type fakeNotificationStore struct {
	created []*domain.Notification
}

func (f *fakeNotificationStore) Create(_ context.Context, n *domain.Notification) error {
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationStore) ListByUser(_ context.Context, userID string, limit int, unreadOnly bool) ([]*domain.Notification, error) {
	if unreadOnly {
		var unread []*domain.Notification
		for _, n := range f.created {
			if !n.IsRead {
				unread = append(unread, n)
			}
		}
		return unread, nil
	}
	return f.created, nil
}

func (f *fakeNotificationStore) UnreadCount(_ context.Context, userID string) (int, error) {
	return len(f.created), nil
}

func (f *fakeNotificationStore) SetRead(_ context.Context, id, userID string, read bool) error {
	for _, n := range f.created {
		if n.ID == id && n.UserID == userID {
			n.IsRead = read
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeNotificationStore) MarkAllRead(_ context.Context, userID string) error { return nil }

type fakeDirectory struct {
	byName map[string]string
}

func (f *fakeDirectory) ResolveDisplayNames(_ context.Context, projectID string, names []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, n := range names {
		if id, ok := f.byName[n]; ok {
			out[n] = id
		}
	}
	return out, nil
}

func (f *fakeDirectory) SearchProjectMembers(_ context.Context, projectID, query string, limit int) ([]*domain.Profile, error) {
	return nil, nil
}

func TestNotifyMentions(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, &fakeDirectory{
		byName: map[string]string{"alice": "u-alice", "bob": "u-bob"},
	})

	svc.NotifyMentions(context.Background(), "p1", "t1", "c1", "u-bob", "hi @alice @bob @ghost")

	// bob authored the comment, ghost is not a member: only alice is notified
	if len(store.created) != 1 {
		t.Fatalf("notifications = %d, want 1", len(store.created))
	}
	n := store.created[0]
	if n.UserID != "u-alice" {
		t.Fatalf("notified %q", n.UserID)
	}
	if n.Type != domain.NotificationMention {
		t.Fatalf("type = %q", n.Type)
	}
	if n.CommentID == nil || *n.CommentID != "c1" {
		t.Fatal("comment id not carried")
	}
}

func TestSetReadTogglesBothWays(t *testing.T) {
	store := &fakeNotificationStore{created: []*domain.Notification{
		{ID: "n1", UserID: "u1"},
	}}
	svc := NewNotificationService(store, &fakeDirectory{})

	if err := svc.SetRead(context.Background(), "u1", "n1", true); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !store.created[0].IsRead {
		t.Fatal("not marked read")
	}
	if err := svc.SetRead(context.Background(), "u1", "n1", false); err != nil {
		t.Fatalf("mark unread: %v", err)
	}
	if store.created[0].IsRead {
		t.Fatal("not marked unread")
	}
}

func TestSetReadScopedToOwner(t *testing.T) {
	store := &fakeNotificationStore{created: []*domain.Notification{
		{ID: "n1", UserID: "u1"},
	}}
	svc := NewNotificationService(store, &fakeDirectory{})

	if err := svc.SetRead(context.Background(), "u2", "n1", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListUnreadOnly(t *testing.T) {
	store := &fakeNotificationStore{created: []*domain.Notification{
		{ID: "n1", UserID: "u1", IsRead: true},
		{ID: "n2", UserID: "u1"},
	}}
	svc := NewNotificationService(store, &fakeDirectory{})

	all, err := svc.List(context.Background(), "u1", 50, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all = %d, want 2", len(all))
	}

	unread, err := svc.List(context.Background(), "u1", 50, true)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 1 || unread[0].ID != "n2" {
		t.Fatalf("unread = %+v", unread)
	}
}

func TestNotifyMentionsNoMatches(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, &fakeDirectory{byName: map[string]string{}})

	svc.NotifyMentions(context.Background(), "p1", "t1", "c1", "u1", "plain text")
	if len(store.created) != 0 {
		t.Fatalf("notifications = %d, want 0", len(store.created))
	}
}
