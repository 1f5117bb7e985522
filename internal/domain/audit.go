package domain

import "time"

// AuditLog records a team-scoped action for later review. Writes are best
// effort: a failed insert is logged and never fails the originating request.
type AuditLog struct {
	ID          string                 `db:"id" json:"id"`
	TeamID      string                 `db:"team_id" json:"team_id"`
	ActorUserID string                 `db:"actor_user_id" json:"actor_user_id"`
	Action      string                 `db:"action" json:"action"`
	TargetType  string                 `db:"target_type" json:"target_type"`
	TargetID    *string                `db:"target_id" json:"target_id"`
	ProjectID   *string                `db:"project_id" json:"project_id"`
	Metadata    map[string]interface{} `db:"metadata" json:"metadata"`
	CreatedAt   time.Time              `db:"created_at" json:"created_at"`
}

// Audit actions
const (
	AuditProjectCreated    = "project.created"
	AuditProjectRemoved    = "project.removed"
	AuditMemberInvited     = "team.member_invited"
	AuditMemberRoleUpdated = "team.member_role_updated"
	AuditMemberRemoved     = "team.member_removed"
)

// Audit target types
const (
	AuditTargetProject    = "project"
	AuditTargetInvitation = "invitation"
	AuditTargetTeamMember = "team_member"
)
