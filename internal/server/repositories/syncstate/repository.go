package syncstate

import (
	"context"

	"github.com/dmitrijs2005/kinsync/internal/server/models"
)

type Repository interface {
	Touch(ctx context.Context, workspaceID, userID, clientID, lastCursor string) error
	Get(ctx context.Context, workspaceID, userID, clientID string) (*models.SyncState, error)
}
