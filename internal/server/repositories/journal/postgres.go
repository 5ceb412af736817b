// Package journal provides PostgreSQL-backed persistence for journal entries.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kinsync/internal/common"
	"github.com/dmitrijs2005/kinsync/internal/dbx"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) OwnerOf(ctx context.Context, id string) (string, error) {
	var workspaceID string
	err := r.db.QueryRowContext(ctx, `SELECT workspace_id FROM journal_entry WHERE id = $1`, id).Scan(&workspaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return workspaceID, nil
}

// Upsert writes the entry. created_at is only set on insert; author_id is
// kept from the first writer.
func (r *PostgresRepository) Upsert(ctx context.Context, e *models.JournalEntry) (int64, error) {
	query := `
		INSERT INTO journal_entry (id, workspace_id, author_id, raw_text, created_at, client_id, client_change_id)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()), $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET
			raw_text = EXCLUDED.raw_text,
			client_id = COALESCE(EXCLUDED.client_id, journal_entry.client_id),
			client_change_id = COALESCE(EXCLUDED.client_change_id, journal_entry.client_change_id),
			updated_at = now(),
			version = journal_entry.version + 1
			WHERE journal_entry.workspace_id = EXCLUDED.workspace_id
		RETURNING version
	`
	err := r.db.QueryRowContext(ctx, query,
		e.ID, e.WorkspaceID, e.AuthorID, e.RawText, e.CreatedAt, e.ClientID, e.ClientChangeID,
	).Scan(&e.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrTenantViolation
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return e.Version, nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, workspaceID, id string) (int64, error) {
	query := `
		UPDATE journal_entry
		SET deleted_at = COALESCE(deleted_at, now()), updated_at = now(), version = version + 1
		WHERE id = $1 AND workspace_id = $2
		RETURNING version
	`
	var version int64
	err := r.db.QueryRowContext(ctx, query, id, workspaceID).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return version, nil
}
