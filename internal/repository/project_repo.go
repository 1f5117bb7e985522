package repository

import (
	"context"
	"errors"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectRepository struct {
	db *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts the project and its creator as a project member in one
// transaction.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO projects (team_id, name, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, p.TeamID, p.Name, p.CreatedBy).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO project_members (project_id, user_id, role)
		VALUES ($1, $2, $3)
	`, p.ID, p.CreatedBy, domain.RoleAdmin)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	err := r.db.QueryRow(ctx, `
		SELECT id, team_id, name, created_by, created_at FROM projects WHERE id = $1
	`, id).Scan(&p.ID, &p.TeamID, &p.Name, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes the project, scoped by team id as well so a stale team
// id cannot delete another team's project.
func (r *ProjectRepository) Delete(ctx context.Context, projectID, teamID string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM projects WHERE id = $1 AND team_id = $2
	`, projectID, teamID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// TeamID resolves the owning team; "" when the project does not exist.
func (r *ProjectRepository) TeamID(ctx context.Context, projectID string) (string, error) {
	var teamID string
	err := r.db.QueryRow(ctx, `
		SELECT team_id FROM projects WHERE id = $1
	`, projectID).Scan(&teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return teamID, nil
}

func (r *ProjectRepository) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2
		)
	`, projectID, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ProjectRepository) MemberIDs(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id FROM project_members WHERE project_id = $1
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ProjectRepository) ListByTeam(ctx context.Context, teamID string) ([]*domain.Project, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, team_id, name, created_by, created_at
		FROM projects
		WHERE team_id = $1
		ORDER BY created_at
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &p)
	}
	return res, rows.Err()
}
