package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskflow/internal/domain"
	"taskflow/internal/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TeamStore interface {
	Create(ctx context.Context, t *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	AddMember(ctx context.Context, teamID, userID string, role domain.TeamRole) error
	UpdateMemberRole(ctx context.Context, teamID, userID string, role domain.TeamRole) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error)
}

type ProjectStore interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	Delete(ctx context.Context, projectID, teamID string) error
	TeamID(ctx context.Context, projectID string) (string, error)
	ListByTeam(ctx context.Context, teamID string) ([]*domain.Project, error)
}

type InvitationStore interface {
	Create(ctx context.Context, inv *domain.Invitation) error
	GetByToken(ctx context.Context, token string) (*domain.Invitation, error)
	MarkAccepted(ctx context.Context, id string) error
	ListPendingByTeam(ctx context.Context, teamID string) ([]*domain.Invitation, error)
}

type ProfileStore interface {
	Upsert(ctx context.Context, p *domain.Profile) error
}

// InviteMailer delivers invitation emails. Delivery is best effort.
type InviteMailer interface {
	IsConfigured() bool
	SendInviteEmail(to, teamName, acceptURL string) error
}

// TeamService owns teams, their members, their projects and the invite
// flow.
type TeamService struct {
	teams    TeamStore
	projects ProjectStore
	invites  InvitationStore
	profiles ProfileStore
	access   *AccessService
	audit    *AuditService
	mailer   InviteMailer
	appURL   string
}

func NewTeamService(teams TeamStore, projects ProjectStore, invites InvitationStore, profiles ProfileStore, access *AccessService, audit *AuditService, mailer InviteMailer, appURL string) *TeamService {
	return &TeamService{
		teams:    teams,
		projects: projects,
		invites:  invites,
		profiles: profiles,
		access:   access,
		audit:    audit,
		mailer:   mailer,
		appURL:   strings.TrimRight(appURL, "/"),
	}
}

// CreateTeam creates a team with the caller as its first admin.
func (s *TeamService) CreateTeam(ctx context.Context, userID, name string) (*domain.Team, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}
	t := &domain.Team{Name: strings.TrimSpace(name), CreatedBy: userID}
	if err := s.teams.Create(ctx, t); err != nil {
		logger.Error("team create failed", "error", err)
		return nil, err
	}
	return t, nil
}

func (s *TeamService) GetTeam(ctx context.Context, userID, teamID string) (*domain.Team, error) {
	if !s.access.IsTeamMember(ctx, teamID, userID) {
		return nil, ErrForbidden
	}
	t, err := s.teams.GetByID(ctx, teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *TeamService) ListMembers(ctx context.Context, userID, teamID string) ([]*domain.TeamMember, error) {
	if !s.access.IsTeamMember(ctx, teamID, userID) {
		return nil, ErrForbidden
	}
	return s.teams.ListMembers(ctx, teamID)
}

// UpdateMemberRole sets a member's role. Admins only; unknown roles
// normalize to the regular user role.
func (s *TeamService) UpdateMemberRole(ctx context.Context, actorID, teamID, memberID, rawRole string) error {
	if !s.access.IsTeamAdmin(ctx, teamID, actorID) {
		return ErrForbidden
	}
	role := domain.NormalizeRole(rawRole)
	if err := s.teams.UpdateMemberRole(ctx, teamID, memberID, role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.audit.Log(ctx, teamID, actorID, domain.AuditMemberRoleUpdated, domain.AuditTargetTeamMember, &memberID,
		map[string]interface{}{"role": string(role)})
	return nil
}

// RemoveMember removes a member from the team. Admins only; an admin
// cannot remove themselves.
func (s *TeamService) RemoveMember(ctx context.Context, actorID, teamID, memberID string) error {
	if !s.access.IsTeamAdmin(ctx, teamID, actorID) {
		return ErrForbidden
	}
	if actorID == memberID {
		return ErrInvalidInput
	}
	if err := s.teams.RemoveMember(ctx, teamID, memberID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.audit.Log(ctx, teamID, actorID, domain.AuditMemberRemoved, domain.AuditTargetTeamMember, &memberID, nil)
	return nil
}

// Invite creates a pending invitation and mails the accept link. A mail
// failure does not fail the invite; the link can still be shared manually.
func (s *TeamService) Invite(ctx context.Context, actorID, teamID, rawEmail, rawRole string) (*domain.Invitation, error) {
	if !s.access.IsTeamAdmin(ctx, teamID, actorID) {
		return nil, ErrForbidden
	}
	mail := strings.ToLower(strings.TrimSpace(rawEmail))
	if mail == "" || !strings.Contains(mail, "@") {
		return nil, ErrInvalidInput
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	inv := &domain.Invitation{
		TeamID:    teamID,
		Email:     mail,
		Role:      domain.NormalizeRole(rawRole),
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(domain.InvitationTTL),
		CreatedBy: actorID,
	}
	if err := s.invites.Create(ctx, inv); err != nil {
		logger.Error("invitation create failed", "error", err, "team_id", teamID)
		return nil, err
	}

	s.audit.Log(ctx, teamID, actorID, domain.AuditMemberInvited, domain.AuditTargetInvitation, &inv.ID,
		map[string]interface{}{"email": mail, "role": string(inv.Role)})

	if s.mailer != nil && s.mailer.IsConfigured() {
		acceptURL := fmt.Sprintf("%s/invitations/accept?token=%s", s.appURL, inv.Token)
		if err := s.mailer.SendInviteEmail(mail, team.Name, acceptURL); err != nil {
			logger.Warn("invite email failed", "error", err, "team_id", teamID)
		}
	}
	return inv, nil
}

// AcceptInvite redeems an invite token for the authenticated user. The
// token must be pending, unexpired and addressed to the caller's email.
func (s *TeamService) AcceptInvite(ctx context.Context, id Identity, token string) (*domain.Invitation, error) {
	inv, err := s.invites.GetByToken(ctx, token)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if inv.AcceptedAt != nil || inv.Expired(time.Now()) {
		return nil, ErrInvalidInput
	}
	if !strings.EqualFold(inv.Email, id.Email) {
		return nil, ErrForbidden
	}

	if err := s.invites.MarkAccepted(ctx, inv.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// raced with another accept
			return nil, ErrInvalidInput
		}
		return nil, err
	}
	if err := s.teams.AddMember(ctx, inv.TeamID, id.UserID, inv.Role); err != nil {
		return nil, err
	}

	// keep the local profile mirror fresh for mentions and member lists
	if err := s.profiles.Upsert(ctx, &domain.Profile{ID: id.UserID, Email: id.Email}); err != nil {
		logger.Warn("profile upsert failed", "error", err, "user_id", id.UserID)
	}
	return inv, nil
}

func (s *TeamService) ListPendingInvites(ctx context.Context, userID, teamID string) ([]*domain.Invitation, error) {
	if !s.access.IsTeamAdmin(ctx, teamID, userID) {
		return nil, ErrForbidden
	}
	return s.invites.ListPendingByTeam(ctx, teamID)
}

// CreateProject creates a project under the team with the caller as its
// first member. Team admins only.
func (s *TeamService) CreateProject(ctx context.Context, userID, teamID, name string) (*domain.Project, error) {
	if !s.access.IsTeamAdmin(ctx, teamID, userID) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}
	p := &domain.Project{TeamID: teamID, Name: strings.TrimSpace(name), CreatedBy: userID}
	if err := s.projects.Create(ctx, p); err != nil {
		logger.Error("project create failed", "error", err, "team_id", teamID)
		return nil, err
	}
	s.audit.LogProject(ctx, teamID, userID, domain.AuditProjectCreated, p.ID,
		map[string]interface{}{"name": p.Name})
	return p, nil
}

// DeleteProject removes a project. Team admins only.
func (s *TeamService) DeleteProject(ctx context.Context, userID, projectID string) error {
	teamID, err := s.projects.TeamID(ctx, projectID)
	if err != nil {
		return err
	}
	if teamID == "" {
		return ErrNotFound
	}
	if !s.access.IsTeamAdmin(ctx, teamID, userID) {
		return ErrForbidden
	}
	if err := s.projects.Delete(ctx, projectID, teamID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.audit.LogProject(ctx, teamID, userID, domain.AuditProjectRemoved, projectID, nil)
	return nil
}

func (s *TeamService) ListProjects(ctx context.Context, userID, teamID string) ([]*domain.Project, error) {
	if !s.access.IsTeamMember(ctx, teamID, userID) {
		return nil, ErrForbidden
	}
	return s.projects.ListByTeam(ctx, teamID)
}

func (s *TeamService) GetProject(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	if !s.access.CanAccessProject(ctx, projectID, userID) {
		return nil, ErrForbidden
	}
	p, err := s.projects.GetByID(ctx, projectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}
