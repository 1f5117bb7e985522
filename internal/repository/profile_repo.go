package repository

import (
	"context"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Upsert keeps the local profile mirror in sync with the identity
// provider's claims.
func (r *ProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO profiles (id, email, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email
	`, p.ID, p.Email, p.DisplayName)
	return err
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.QueryRow(ctx, `
		SELECT id, email, display_name FROM profiles WHERE id = $1
	`, id).Scan(&p.ID, &p.Email, &p.DisplayName)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.QueryRow(ctx, `
		SELECT id, email, display_name FROM profiles WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&p.ID, &p.Email, &p.DisplayName)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchProjectMembers returns project members whose display name or email
// matches the prefix. Used for mention autocomplete; capped at limit.
func (r *ProfileRepository) SearchProjectMembers(ctx context.Context, projectID, query string, limit int) ([]*domain.Profile, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.email, p.display_name
		FROM profiles p
		JOIN project_members pm ON pm.user_id = p.id
		WHERE pm.project_id = $1
		  AND (p.display_name ILIKE $2 || '%' OR p.email ILIKE $2 || '%')
		ORDER BY p.display_name NULLS LAST, p.email
		LIMIT $3
	`, projectID, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.DisplayName); err != nil {
			return nil, err
		}
		res = append(res, &p)
	}
	return res, rows.Err()
}

// ResolveDisplayNames maps @mention handles to project member user ids.
func (r *ProfileRepository) ResolveDisplayNames(ctx context.Context, projectID string, names []string) (map[string]string, error) {
	if len(names) == 0 {
		return map[string]string{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT p.display_name, p.id
		FROM profiles p
		JOIN project_members pm ON pm.user_id = p.id
		WHERE pm.project_id = $1 AND p.display_name = ANY($2)
	`, projectID, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(names))
	for rows.Next() {
		var name, id string
		if err := rows.Scan(&name, &id); err != nil {
			return nil, err
		}
		out[name] = id
	}
	return out, rows.Err()
}
