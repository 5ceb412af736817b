package models

import (
	"time"

	"github.com/goccy/go-json"
)

// Outbox item kinds. The kind labels what produced the item; delivery does
// not depend on it.
const (
	KindSyncPush      = "sync_push"
	KindContactCreate = "contact_create"
	KindContactUpdate = "contact_update"
	KindJournalCreate = "journal_create"
)

// OutboxItem is a pending HTTP call recorded while offline (or before the
// server confirmed it). It is removed once the call returns 2xx.
type OutboxItem struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	URL       string          `json:"url"`
	Method    string          `json:"method"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
