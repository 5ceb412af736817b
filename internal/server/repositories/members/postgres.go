// Package members reads workspace membership, the tenant check behind every sync route.
package members

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

// Get returns the membership of userID in workspaceID, or common.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, workspaceID, userID string) (*models.Member, error) {
	query := `
		SELECT workspace_id, user_id, role FROM workspace_member
		WHERE workspace_id = $1 AND user_id = $2
	`
	m := &models.Member{}
	err := r.db.QueryRowContext(ctx, query, workspaceID, userID).Scan(&m.WorkspaceID, &m.UserID, &m.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}
