package ledger

import (
	"context"

	"github.com/dmitrijs2005/kinsync/internal/server/cursor"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, entry *models.LedgerEntry) (bool, error)
	SetVersion(ctx context.Context, id string, version int64) error
	ListSince(ctx context.Context, workspaceID string, pos *cursor.Position, limit int) ([]*models.LedgerEntry, error)
}
