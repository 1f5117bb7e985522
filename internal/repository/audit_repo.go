package repository

import (
	"context"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, e *domain.AuditLog) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO audit_logs (team_id, actor_user_id, action, target_type, target_id, project_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, e.TeamID, e.ActorUserID, e.Action, e.TargetType, e.TargetID, e.ProjectID, e.Metadata).Scan(&e.ID, &e.CreatedAt)
}

func (r *AuditRepository) ListByTeam(ctx context.Context, teamID string, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, team_id, actor_user_id, action, target_type, target_id, project_id, metadata, created_at
		FROM audit_logs
		WHERE team_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, teamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.AuditLog
	for rows.Next() {
		var e domain.AuditLog
		err := rows.Scan(&e.ID, &e.TeamID, &e.ActorUserID, &e.Action, &e.TargetType,
			&e.TargetID, &e.ProjectID, &e.Metadata, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		res = append(res, &e)
	}
	return res, rows.Err()
}
