package repository

import (
	"context"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WikiRepository struct {
	db *pgxpool.Pool
}

func NewWikiRepository(db *pgxpool.Pool) *WikiRepository {
	return &WikiRepository{db: db}
}

const wikiColumns = `id, project_id, title, body, created_by, updated_by, created_at, updated_at, deleted_at`

func scanWikiPage(row pgx.Row) (*domain.WikiPage, error) {
	var p domain.WikiPage
	err := row.Scan(&p.ID, &p.ProjectID, &p.Title, &p.Body, &p.CreatedBy,
		&p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *WikiRepository) Create(ctx context.Context, p *domain.WikiPage) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO wiki_pages (project_id, title, body, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, created_at, updated_at
	`, p.ProjectID, p.Title, p.Body, p.CreatedBy).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID returns the page; soft-deleted pages are not found.
func (r *WikiRepository) GetByID(ctx context.Context, id string) (*domain.WikiPage, error) {
	return scanWikiPage(r.db.QueryRow(ctx, `
		SELECT `+wikiColumns+` FROM wiki_pages
		WHERE id = $1 AND deleted_at IS NULL
	`, id))
}

// Update rewrites title and body and returns the previous body, so the
// caller can record a revision when the body actually changed.
func (r *WikiRepository) Update(ctx context.Context, id, title, body, editorID string) (prevBody string, page *domain.WikiPage, err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		SELECT body FROM wiki_pages WHERE id = $1 AND deleted_at IS NULL FOR UPDATE
	`, id).Scan(&prevBody)
	if err != nil {
		return "", nil, err
	}

	page, err = scanWikiPage(tx.QueryRow(ctx, `
		UPDATE wiki_pages
		SET title = $1, body = $2, updated_by = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+wikiColumns, title, body, editorID, id))
	if err != nil {
		return "", nil, err
	}
	return prevBody, page, tx.Commit(ctx)
}

// SoftDelete marks the page deleted; the row and its revisions stay.
func (r *WikiRepository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE wiki_pages SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *WikiRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.WikiPage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+wikiColumns+` FROM wiki_pages
		WHERE project_id = $1 AND deleted_at IS NULL
		ORDER BY updated_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.WikiPage
	for rows.Next() {
		p, err := scanWikiPage(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *WikiRepository) AddRevision(ctx context.Context, rev *domain.WikiRevision) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO wiki_revisions (page_id, body, edited_by)
		VALUES ($1, $2, $3)
		RETURNING id, edited_at
	`, rev.PageID, rev.Body, rev.EditedBy).Scan(&rev.ID, &rev.EditedAt)
}

func (r *WikiRepository) ListRevisions(ctx context.Context, pageID string) ([]*domain.WikiRevision, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, page_id, body, edited_by, edited_at
		FROM wiki_revisions
		WHERE page_id = $1
		ORDER BY edited_at DESC
	`, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.WikiRevision
	for rows.Next() {
		var rev domain.WikiRevision
		if err := rows.Scan(&rev.ID, &rev.PageID, &rev.Body, &rev.EditedBy, &rev.EditedAt); err != nil {
			return nil, err
		}
		res = append(res, &rev)
	}
	return res, rows.Err()
}
