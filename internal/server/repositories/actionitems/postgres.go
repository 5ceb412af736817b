// Package actionitems provides PostgreSQL-backed persistence for action items.
package actionitems

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kinsync/internal/common"
	"github.com/dmitrijs2005/kinsync/internal/dbx"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
)

// PostgresRepository implements action item storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OwnerOf returns the workspace that owns action item id, or common.ErrNotFound.
func (r *PostgresRepository) OwnerOf(ctx context.Context, id string) (string, error) {
	var workspaceID string
	err := r.db.QueryRowContext(ctx, `SELECT workspace_id FROM action_item WHERE id = $1`, id).Scan(&workspaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return workspaceID, nil
}

// Upsert writes the item. A nil Status inserts "pending" and leaves an
// existing status unchanged on update. The contact and source entry are
// fixed at creation.
func (r *PostgresRepository) Upsert(ctx context.Context, a *models.ActionItem) (int64, error) {
	query := `
		INSERT INTO action_item (id, workspace_id, contact_id, source_entry_id, due_at, suggestion_reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, 'pending'))
		ON CONFLICT (id)
		DO UPDATE SET
			due_at = EXCLUDED.due_at,
			suggestion_reason = EXCLUDED.suggestion_reason,
			status = COALESCE($7, action_item.status),
			updated_at = now(),
			version = action_item.version + 1
			WHERE action_item.workspace_id = EXCLUDED.workspace_id
		RETURNING version
	`
	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.WorkspaceID, a.ContactID, a.SourceEntryID, a.DueAt, a.SuggestionReason, a.Status,
	).Scan(&a.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrTenantViolation
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return a.Version, nil
}

// SoftDelete stamps deleted_at (keeping an earlier stamp) and bumps the version.
func (r *PostgresRepository) SoftDelete(ctx context.Context, workspaceID, id string) (int64, error) {
	query := `
		UPDATE action_item
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
