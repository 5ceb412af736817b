// Package syncstate stores the per-device sync cursor bookkeeping.
package syncstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kinsync/internal/dbx"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Touch creates or overwrites the cursor row for (workspace, user, client).
func (r *PostgresRepository) Touch(ctx context.Context, workspaceID, userID, clientID, lastCursor string) error {
	query := `
		INSERT INTO sync_state (workspace_id, user_id, client_id, last_cursor, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (workspace_id, user_id, client_id)
		DO UPDATE SET last_cursor = EXCLUDED.last_cursor, updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, workspaceID, userID, clientID, lastCursor); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get returns the stored state, or nil with no error when the device never synced.
func (r *PostgresRepository) Get(ctx context.Context, workspaceID, userID, clientID string) (*models.SyncState, error) {
	query := `
		SELECT workspace_id, user_id, client_id, last_cursor, updated_at FROM sync_state
		WHERE workspace_id = $1 AND user_id = $2 AND client_id = $3
	`
	s := &models.SyncState{}
	err := r.db.QueryRowContext(ctx, query, workspaceID, userID, clientID).
		Scan(&s.WorkspaceID, &s.UserID, &s.ClientID, &s.LastCursor, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
