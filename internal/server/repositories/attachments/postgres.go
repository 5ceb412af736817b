// Package attachments records object-storage uploads issued to clients.
package attachments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kinsync/internal/common"
	"github.com/dmitrijs2005/kinsync/internal/dbx"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
)

// PostgresRepository implements attachment storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a pending attachment row.
func (r *PostgresRepository) Create(ctx context.Context, a *models.Attachment) error {
	if a.UploadStatus == "" {
		a.UploadStatus = models.UploadPending
	}
	query := `
		INSERT INTO attachment (storage_key, workspace_id, uploaded_by, upload_status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, a.StorageKey, a.WorkspaceID, a.UploadedBy, a.UploadStatus).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// MarkUploaded sets upload_status='completed'. Exactly one row of
// workspaceID must match, otherwise common.ErrNotFound.
func (r *PostgresRepository) MarkUploaded(ctx context.Context, workspaceID, key string) error {
	query := `UPDATE attachment SET upload_status = 'completed' WHERE storage_key = $1 AND workspace_id = $2`
	result, err := r.db.ExecContext(ctx, query, key, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to mark uploaded: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	switch ra {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
}

// Get returns the attachment with key inside workspaceID, or common.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, workspaceID, key string) (*models.Attachment, error) {
	query := `
		SELECT storage_key, workspace_id, uploaded_by, upload_status, created_at FROM attachment
		WHERE storage_key = $1 AND workspace_id = $2
	`
	a := &models.Attachment{}
	err := r.db.QueryRowContext(ctx, query, key, workspaceID).
		Scan(&a.StorageKey, &a.WorkspaceID, &a.UploadedBy, &a.UploadStatus, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select attachment: %w", err)
	}
	return a, nil
}
