package attachments

import (
	"context"

	"github.com/dmitrijs2005/kinsync/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Attachment) error
	MarkUploaded(ctx context.Context, workspaceID, key string) error
	Get(ctx context.Context, workspaceID, key string) (*models.Attachment, error)
}
