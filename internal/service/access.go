package service

import (
	"context"

	"taskflow/internal/domain"
	"taskflow/internal/logger"
)

// ProjectAccessStore resolves project membership and ownership.
type ProjectAccessStore interface {
	IsMember(ctx context.Context, projectID, userID string) (bool, error)
	TeamID(ctx context.Context, projectID string) (string, error)
}

// TeamRoleStore resolves a user's role within a team. An empty role means
// the user is not a member.
type TeamRoleStore interface {
	Role(ctx context.Context, teamID, userID string) (domain.TeamRole, error)
}

// AccessService is the gate in front of every project-scoped operation. A
// user may touch a project when they are a direct project member, or an
// admin of the team owning the project. Any lookup error denies access.
type AccessService struct {
	projects ProjectAccessStore
	teams    TeamRoleStore
}

func NewAccessService(projects ProjectAccessStore, teams TeamRoleStore) *AccessService {
	return &AccessService{projects: projects, teams: teams}
}

// CanAccessProject reports whether userID may read or mutate the project,
// board reorders included. Fail-closed: errors and missing projects deny.
func (s *AccessService) CanAccessProject(ctx context.Context, projectID, userID string) bool {
	member, err := s.projects.IsMember(ctx, projectID, userID)
	if err != nil {
		logger.Error("project membership lookup failed", "error", err, "project_id", projectID)
		return false
	}
	if member {
		return true
	}

	teamID, err := s.projects.TeamID(ctx, projectID)
	if err != nil {
		logger.Error("project team lookup failed", "error", err, "project_id", projectID)
		return false
	}
	if teamID == "" {
		return false
	}

	role, err := s.teams.Role(ctx, teamID, userID)
	if err != nil {
		logger.Error("team role lookup failed", "error", err, "team_id", teamID)
		return false
	}
	return role == domain.RoleAdmin
}

// CanMutateBoard is the reorder-path alias of CanAccessProject.
func (s *AccessService) CanMutateBoard(ctx context.Context, projectID, userID string) bool {
	return s.CanAccessProject(ctx, projectID, userID)
}

// IsTeamAdmin reports whether userID administers the team. Fail-closed.
func (s *AccessService) IsTeamAdmin(ctx context.Context, teamID, userID string) bool {
	role, err := s.teams.Role(ctx, teamID, userID)
	if err != nil {
		logger.Error("team role lookup failed", "error", err, "team_id", teamID)
		return false
	}
	return role == domain.RoleAdmin
}

// IsTeamMember reports whether userID belongs to the team at any role.
func (s *AccessService) IsTeamMember(ctx context.Context, teamID, userID string) bool {
	role, err := s.teams.Role(ctx, teamID, userID)
	if err != nil {
		logger.Error("team role lookup failed", "error", err, "team_id", teamID)
		return false
	}
	return role != ""
}
