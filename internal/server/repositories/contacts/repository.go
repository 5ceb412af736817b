package contacts

import (
	"context"

	"github.com/dmitrijs2005/kinsync/internal/server/models"
)

type Repository interface {
	OwnerOf(ctx context.Context, id string) (string, error)
	Upsert(ctx context.Context, contact *models.Contact) (int64, error)
	SoftDelete(ctx context.Context, workspaceID, id string) (int64, error)
}
