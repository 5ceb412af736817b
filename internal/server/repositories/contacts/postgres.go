// Package contacts provides PostgreSQL-backed persistence for contacts.
package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kinsync/internal/common"
	"github.com/dmitrijs2005/kinsync/internal/dbx"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
)

// PostgresRepository implements contact storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OwnerOf returns the workspace that owns contact id, or common.ErrNotFound.
// Soft-deleted rows still have an owner.
func (r *PostgresRepository) OwnerOf(ctx context.Context, id string) (string, error) {
	var workspaceID string
	err := r.db.QueryRowContext(ctx, `SELECT workspace_id FROM contact WHERE id = $1`, id).Scan(&workspaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return workspaceID, nil
}

// Upsert creates the contact with version 1 or overwrites its mutable fields
// and bumps the version. A row owned by another workspace is left untouched
// and common.ErrTenantViolation is returned.
func (r *PostgresRepository) Upsert(ctx context.Context, c *models.Contact) (int64, error) {
	query := `
		INSERT INTO contact (id, workspace_id, name, avatar_url, notes, status, client_id, client_change_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			notes = EXCLUDED.notes,
			status = EXCLUDED.status,
			client_id = COALESCE(EXCLUDED.client_id, contact.client_id),
			client_change_id = COALESCE(EXCLUDED.client_change_id, contact.client_change_id),
			updated_at = now(),
			version = contact.version + 1
			WHERE contact.workspace_id = EXCLUDED.workspace_id
		RETURNING version
	`
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.WorkspaceID, c.Name, c.AvatarURL, c.Notes, c.Status, c.ClientID, c.ClientChangeID,
	).Scan(&c.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrTenantViolation
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return c.Version, nil
}

// SoftDelete stamps deleted_at (keeping an earlier stamp) and bumps the version.
// Returns common.ErrNotFound when workspaceID has no such contact.
func (r *PostgresRepository) SoftDelete(ctx context.Context, workspaceID, id string) (int64, error) {
	query := `
		UPDATE contact
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
