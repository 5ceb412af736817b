// Package outbox persists pending HTTP calls on the client until the server
// acknowledges them.
package outbox

import (
	"context"

	"github.com/dmitrijs2005/kinsync/internal/client/models"
)

// Repository is an ordered queue of outbox items. List returns items in
// insertion order. Replace swaps the whole content for items, keeping their
// order.
type Repository interface {
	Append(ctx context.Context, item *models.OutboxItem) error
	List(ctx context.Context) ([]*models.OutboxItem, error)
	Replace(ctx context.Context, items []*models.OutboxItem) error
}
