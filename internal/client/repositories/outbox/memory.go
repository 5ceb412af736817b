package outbox

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/kinsync/internal/client/models"
)

// MemoryRepository is a process-local outbox.
type MemoryRepository struct {
	mu    sync.Mutex
	items []*models.OutboxItem
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Append(_ context.Context, item *models.OutboxItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *item
	r.items = append(r.items, &cp)
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.OutboxItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.OutboxItem, len(r.items))
	for i, item := range r.items {
		cp := *item
		out[i] = &cp
	}
	return out, nil
}

func (r *MemoryRepository) Replace(_ context.Context, items []*models.OutboxItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make([]*models.OutboxItem, len(items))
	for i, item := range items {
		cp := *item
		r.items[i] = &cp
	}
	return nil
}
