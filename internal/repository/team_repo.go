package repository

import (
	"context"
	"errors"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TeamRepository struct {
	db *pgxpool.Pool
}

func NewTeamRepository(db *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create inserts the team and its creator as an admin member in one
// transaction.
func (r *TeamRepository) Create(ctx context.Context, t *domain.Team) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO teams (name, created_by)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, t.Name, t.CreatedBy).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
	`, t.ID, t.CreatedBy, domain.RoleAdmin)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *TeamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	var t domain.Team
	err := r.db.QueryRow(ctx, `
		SELECT id, name, created_by, created_at FROM teams WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Role returns the user's role on the team, or "" when the user is not a
// member.
func (r *TeamRepository) Role(ctx context.Context, teamID, userID string) (domain.TeamRole, error) {
	var role domain.TeamRole
	err := r.db.QueryRow(ctx, `
		SELECT role FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// AddMember inserts a membership row; an already existing membership is
// not an error.
func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID string, role domain.TeamRole) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, teamID, userID, role)
	return err
}

func (r *TeamRepository) UpdateMemberRole(ctx context.Context, teamID, userID string, role domain.TeamRole) error {
	_, err := r.db.Exec(ctx, `
		UPDATE team_members SET role = $1 WHERE team_id = $2 AND user_id = $3
	`, role, teamID, userID)
	return err
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID)
	return err
}

func (r *TeamRepository) ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error) {
	rows, err := r.db.Query(ctx, `
		SELECT team_id, user_id, role, created_at
		FROM team_members
		WHERE team_id = $1
		ORDER BY created_at
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.TeamMember
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}
