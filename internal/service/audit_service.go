package service

import (
	"context"

	"taskflow/internal/domain"
	"taskflow/internal/logger"
)

type AuditStore interface {
	Create(ctx context.Context, e *domain.AuditLog) error
	ListByTeam(ctx context.Context, teamID string, limit int) ([]*domain.AuditLog, error)
}

// AuditService records team-scoped actions. Writes are best effort: a
// failed insert is logged and never fails the originating request.
type AuditService struct {
	store AuditStore
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store}
}

// Log creates a new audit log entry
func (s *AuditService) Log(ctx context.Context, teamID, actorID, action, targetType string, targetID *string, metadata map[string]interface{}) {
	e := &domain.AuditLog{
		TeamID:      teamID,
		ActorUserID: actorID,
		Action:      action,
		TargetType:  targetType,
		TargetID:    targetID,
		Metadata:    metadata,
	}

	if err := s.store.Create(ctx, e); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "team_id", teamID)
	}
}

// LogProject records a project-scoped action.
func (s *AuditService) LogProject(ctx context.Context, teamID, actorID, action, projectID string, metadata map[string]interface{}) {
	e := &domain.AuditLog{
		TeamID:      teamID,
		ActorUserID: actorID,
		Action:      action,
		TargetType:  domain.AuditTargetProject,
		TargetID:    &projectID,
		ProjectID:   &projectID,
		Metadata:    metadata,
	}

	if err := s.store.Create(ctx, e); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "team_id", teamID)
	}
}

// List returns the team's recent audit entries, newest first. Team admins
// only; the handler enforces that.
func (s *AuditService) List(ctx context.Context, teamID string, limit int) ([]*domain.AuditLog, error) {
	return s.store.ListByTeam(ctx, teamID, limit)
}
