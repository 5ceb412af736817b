package members

import (
	"context"

	"github.com/dmitrijs2005/kinsync/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, workspaceID, userID string) (*models.Member, error)
}
