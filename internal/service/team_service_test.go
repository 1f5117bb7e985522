package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
)

type fakeTeams struct {
	teams   map[string]*domain.Team
	roles   map[string]map[string]domain.TeamRole
	added   []domain.TeamMember
	removed []string
}

func (f *fakeTeams) Create(_ context.Context, t *domain.Team) error {
	t.ID = "team-new"
	return nil
}

func (f *fakeTeams) GetByID(_ context.Context, id string) (*domain.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

func (f *fakeTeams) Role(_ context.Context, teamID, userID string) (domain.TeamRole, error) {
	return f.roles[teamID][userID], nil
}

func (f *fakeTeams) AddMember(_ context.Context, teamID, userID string, role domain.TeamRole) error {
	f.added = append(f.added, domain.TeamMember{TeamID: teamID, UserID: userID, Role: role})
	return nil
}

func (f *fakeTeams) UpdateMemberRole(_ context.Context, teamID, userID string, role domain.TeamRole) error {
	if f.roles[teamID][userID] == "" {
		return pgx.ErrNoRows
	}
	f.roles[teamID][userID] = role
	return nil
}

func (f *fakeTeams) RemoveMember(_ context.Context, teamID, userID string) error {
	if f.roles[teamID][userID] == "" {
		return pgx.ErrNoRows
	}
	delete(f.roles[teamID], userID)
	f.removed = append(f.removed, userID)
	return nil
}

func (f *fakeTeams) ListMembers(_ context.Context, teamID string) ([]*domain.TeamMember, error) {
	return nil, nil
}

type fakeProjects struct{}

func (fakeProjects) Create(_ context.Context, p *domain.Project) error         { return nil }
func (fakeProjects) GetByID(_ context.Context, id string) (*domain.Project, error) {
	return nil, pgx.ErrNoRows
}
func (fakeProjects) Delete(_ context.Context, projectID, teamID string) error { return nil }
func (fakeProjects) TeamID(_ context.Context, projectID string) (string, error) {
	return "", nil
}
func (fakeProjects) ListByTeam(_ context.Context, teamID string) ([]*domain.Project, error) {
	return nil, nil
}
func (fakeProjects) IsMember(_ context.Context, projectID, userID string) (bool, error) {
	return false, nil
}

type fakeInvites struct {
	byToken  map[string]*domain.Invitation
	created  []*domain.Invitation
	accepted []string
}

func (f *fakeInvites) Create(_ context.Context, inv *domain.Invitation) error {
	inv.ID = "inv-new"
	f.created = append(f.created, inv)
	return nil
}

func (f *fakeInvites) GetByToken(_ context.Context, token string) (*domain.Invitation, error) {
	inv, ok := f.byToken[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return inv, nil
}

func (f *fakeInvites) MarkAccepted(_ context.Context, id string) error {
	f.accepted = append(f.accepted, id)
	return nil
}

func (f *fakeInvites) ListPendingByTeam(_ context.Context, teamID string) ([]*domain.Invitation, error) {
	return nil, nil
}

type fakeProfiles struct {
	upserted []*domain.Profile
}

func (f *fakeProfiles) Upsert(_ context.Context, p *domain.Profile) error {
	f.upserted = append(f.upserted, p)
	return nil
}

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) IsConfigured() bool { return true }

func (f *fakeMailer) SendInviteEmail(to, teamName, acceptURL string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeAuditStore struct {
	entries []*domain.AuditLog
}

func (f *fakeAuditStore) Create(_ context.Context, e *domain.AuditLog) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAuditStore) ListByTeam(_ context.Context, teamID string, limit int) ([]*domain.AuditLog, error) {
	return f.entries, nil
}

func newTestTeamService(teams *fakeTeams, invites *fakeInvites, mailer *fakeMailer) (*TeamService, *fakeAuditStore, *fakeProfiles) {
	auditStore := &fakeAuditStore{}
	profiles := &fakeProfiles{}
	projects := fakeProjects{}
	access := NewAccessService(projects, teams)
	audit := NewAuditService(auditStore)
	svc := NewTeamService(teams, projects, invites, profiles, access, audit, mailer, "https://app.example.com")
	return svc, auditStore, profiles
}

func baseTeams() *fakeTeams {
	return &fakeTeams{
		teams: map[string]*domain.Team{"team1": {ID: "team1", Name: "Platform"}},
		roles: map[string]map[string]domain.TeamRole{
			"team1": {"admin": domain.RoleAdmin, "regular": domain.RoleUser},
		},
	}
}

func TestInviteFlow(t *testing.T) {
	teams := baseTeams()
	invites := &fakeInvites{byToken: map[string]*domain.Invitation{}}
	mailer := &fakeMailer{}
	svc, auditStore, _ := newTestTeamService(teams, invites, mailer)

	inv, err := svc.Invite(context.Background(), "admin", "team1", "New.User@Example.com", "user")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if inv.Email != "new.user@example.com" {
		t.Fatalf("email not normalized: %q", inv.Email)
	}
	if inv.Token == "" {
		t.Fatal("no token issued")
	}
	if ttl := time.Until(inv.ExpiresAt); ttl < 6*24*time.Hour || ttl > domain.InvitationTTL {
		t.Fatalf("unexpected ttl: %v", ttl)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "new.user@example.com" {
		t.Fatalf("mail sent to %v", mailer.sent)
	}
	if len(auditStore.entries) != 1 || auditStore.entries[0].Action != domain.AuditMemberInvited {
		t.Fatal("invite not audited")
	}
}

func TestInviteMailFailureDoesNotFailInvite(t *testing.T) {
	teams := baseTeams()
	invites := &fakeInvites{byToken: map[string]*domain.Invitation{}}
	svc, _, _ := newTestTeamService(teams, invites, &fakeMailer{err: errors.New("smtp down")})

	if _, err := svc.Invite(context.Background(), "admin", "team1", "x@example.com", "user"); err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if len(invites.created) != 1 {
		t.Fatal("invitation not stored")
	}
}

func TestInviteRequiresAdmin(t *testing.T) {
	teams := baseTeams()
	svc, _, _ := newTestTeamService(teams, &fakeInvites{byToken: map[string]*domain.Invitation{}}, &fakeMailer{})

	if _, err := svc.Invite(context.Background(), "regular", "team1", "x@example.com", "user"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestAcceptInvite(t *testing.T) {
	teams := baseTeams()
	invites := &fakeInvites{byToken: map[string]*domain.Invitation{
		"tok-1": {
			ID:        "inv-1",
			TeamID:    "team1",
			Email:     "carol@example.com",
			Role:      domain.RoleUser,
			Token:     "tok-1",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}}
	svc, _, profiles := newTestTeamService(teams, invites, &fakeMailer{})

	id := Identity{UserID: "u-carol", Email: "Carol@Example.com"}
	inv, err := svc.AcceptInvite(context.Background(), id, "tok-1")
	if err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}
	if inv.TeamID != "team1" {
		t.Fatalf("team = %q", inv.TeamID)
	}
	if len(teams.added) != 1 || teams.added[0].UserID != "u-carol" || teams.added[0].Role != domain.RoleUser {
		t.Fatalf("membership = %+v", teams.added)
	}
	if len(profiles.upserted) != 1 {
		t.Fatal("profile not mirrored")
	}
}

func TestAcceptInviteWrongEmail(t *testing.T) {
	teams := baseTeams()
	invites := &fakeInvites{byToken: map[string]*domain.Invitation{
		"tok-1": {ID: "inv-1", TeamID: "team1", Email: "carol@example.com", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc, _, _ := newTestTeamService(teams, invites, &fakeMailer{})

	_, err := svc.AcceptInvite(context.Background(), Identity{UserID: "u-x", Email: "mallory@example.com"}, "tok-1")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if len(teams.added) != 0 {
		t.Fatal("membership granted to wrong email")
	}
}

func TestAcceptInviteExpired(t *testing.T) {
	teams := baseTeams()
	invites := &fakeInvites{byToken: map[string]*domain.Invitation{
		"tok-1": {ID: "inv-1", TeamID: "team1", Email: "carol@example.com", ExpiresAt: time.Now().Add(-time.Minute)},
	}}
	svc, _, _ := newTestTeamService(teams, invites, &fakeMailer{})

	_, err := svc.AcceptInvite(context.Background(), Identity{UserID: "u-carol", Email: "carol@example.com"}, "tok-1")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestAcceptInviteAlreadyAccepted(t *testing.T) {
	accepted := time.Now().Add(-time.Hour)
	teams := baseTeams()
	invites := &fakeInvites{byToken: map[string]*domain.Invitation{
		"tok-1": {ID: "inv-1", TeamID: "team1", Email: "carol@example.com", ExpiresAt: time.Now().Add(time.Hour), AcceptedAt: &accepted},
	}}
	svc, _, _ := newTestTeamService(teams, invites, &fakeMailer{})

	_, err := svc.AcceptInvite(context.Background(), Identity{UserID: "u-carol", Email: "carol@example.com"}, "tok-1")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCreateProjectRequiresAdmin(t *testing.T) {
	teams := baseTeams()
	svc, auditStore, _ := newTestTeamService(teams, &fakeInvites{byToken: map[string]*domain.Invitation{}}, &fakeMailer{})

	if _, err := svc.CreateProject(context.Background(), "regular", "team1", "sneaky"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	p, err := svc.CreateProject(context.Background(), "admin", "team1", "roadmap")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if p.Name != "roadmap" {
		t.Fatalf("name = %q", p.Name)
	}
	if len(auditStore.entries) != 1 || auditStore.entries[0].Action != domain.AuditProjectCreated {
		t.Fatal("project create not audited")
	}
}

func TestRemoveMemberSelfRejected(t *testing.T) {
	teams := baseTeams()
	svc, _, _ := newTestTeamService(teams, &fakeInvites{byToken: map[string]*domain.Invitation{}}, &fakeMailer{})

	if err := svc.RemoveMember(context.Background(), "admin", "team1", "admin"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateMemberRoleNormalizesUnknown(t *testing.T) {
	teams := baseTeams()
	svc, _, _ := newTestTeamService(teams, &fakeInvites{byToken: map[string]*domain.Invitation{}}, &fakeMailer{})

	if err := svc.UpdateMemberRole(context.Background(), "admin", "team1", "regular", "superuser"); err != nil {
		t.Fatalf("UpdateMemberRole: %v", err)
	}
	if teams.roles["team1"]["regular"] != domain.RoleUser {
		t.Fatalf("role = %q, want user", teams.roles["team1"]["regular"])
	}
}
