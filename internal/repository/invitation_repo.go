package repository

import (
	"context"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InvitationRepository struct {
	db *pgxpool.Pool
}

func NewInvitationRepository(db *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{db: db}
}

const invitationColumns = `id, team_id, email, role, token, expires_at, accepted_at, created_by, created_at`

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := row.Scan(&inv.ID, &inv.TeamID, &inv.Email, &inv.Role, &inv.Token,
		&inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedBy, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO invitations (team_id, email, role, token, expires_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, inv.TeamID, inv.Email, inv.Role, inv.Token, inv.ExpiresAt, inv.CreatedBy).Scan(&inv.ID, &inv.CreatedAt)
}

func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	return scanInvitation(r.db.QueryRow(ctx, `
		SELECT `+invitationColumns+` FROM invitations WHERE token = $1
	`, token))
}

// MarkAccepted stamps the invitation; only pending invitations match.
func (r *InvitationRepository) MarkAccepted(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE invitations SET accepted_at = NOW()
		WHERE id = $1 AND accepted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *InvitationRepository) ListPendingByTeam(ctx context.Context, teamID string) ([]*domain.Invitation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+invitationColumns+` FROM invitations
		WHERE team_id = $1 AND accepted_at IS NULL AND expires_at > NOW()
		ORDER BY created_at DESC
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, inv)
	}
	return res, rows.Err()
}
