// Package ledger provides the PostgreSQL-backed idempotency ledger: the
// append-only sync_change_log that both deduplicates pushes and feeds pulls.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kinsync/internal/dbx"
	"github.com/dmitrijs2005/kinsync/internal/server/cursor"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements the ledger over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, workspace_id, client_id, client_change_id, entity, entity_id, op, data, version, created_at`

// Append records entry and reports whether a new row was written.
//
// A false result with a nil error means (workspace, client, clientChangeId)
// was already recorded. Entries without a clientChangeId never conflict.
// On success entry.ID and entry.CreatedAt are filled in.
func (r *PostgresRepository) Append(ctx context.Context, entry *models.LedgerEntry) (bool, error) {
	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return false, fmt.Errorf("generate ledger id: %w", err)
		}
		entry.ID = id.String()
	}

	data := entry.Data
	if len(data) == 0 {
		data = []byte("{}")
	}

	query := `
		INSERT INTO sync_change_log (id, workspace_id, client_id, client_change_id, entity, entity_id, op, data, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (workspace_id, client_id, client_change_id) DO NOTHING
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.WorkspaceID, entry.ClientID, entry.ClientChangeID,
		entry.Entity, entry.EntityID, entry.Op, string(data), entry.Version,
	).Scan(&entry.CreatedAt)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows), dbx.IsUniqueViolation(err):
		return false, nil
	default:
		return false, fmt.Errorf("db error: %w", err)
	}
}

// SetVersion stores the entity version produced after the entry was appended.
func (r *PostgresRepository) SetVersion(ctx context.Context, id string, version int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sync_change_log SET version = $2 WHERE id = $1`, id, version)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// ListSince returns up to limit entries of workspaceID strictly after pos,
// ordered by (created_at, id). A nil pos lists from the beginning; a pos
// without an ID compares on created_at only.
func (r *PostgresRepository) ListSince(ctx context.Context, workspaceID string, pos *cursor.Position, limit int) ([]*models.LedgerEntry, error) {
	var (
		rows *sql.Rows
		err  error
	)

	switch {
	case pos == nil:
		rows, err = r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM sync_change_log
			WHERE workspace_id = $1
			ORDER BY created_at ASC, id ASC
			LIMIT $2`, workspaceID, limit)
	case pos.ID == "":
		rows, err = r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM sync_change_log
			WHERE workspace_id = $1 AND created_at > $2
			ORDER BY created_at ASC, id ASC
			LIMIT $3`, workspaceID, pos.CreatedAt, limit)
	default:
		rows, err = r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM sync_change_log
			WHERE workspace_id = $1 AND (created_at, id) > ($2::timestamptz, $3::uuid)
			ORDER BY created_at ASC, id ASC
			LIMIT $4`, workspaceID, pos.CreatedAt, pos.ID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select changes: %w", err)
	}
	defer rows.Close()

	result := make([]*models.LedgerEntry, 0)
	for rows.Next() {
		var (
			item models.LedgerEntry
			data []byte
		)
		if err := rows.Scan(
			&item.ID, &item.WorkspaceID, &item.ClientID, &item.ClientChangeID,
			&item.Entity, &item.EntityID, &item.Op, &data, &item.Version, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		item.Data = data
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
