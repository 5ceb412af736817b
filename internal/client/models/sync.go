package models

import (
	"time"

	"github.com/goccy/go-json"
)

// Entities and operations understood by the server.
const (
	EntityContact      = "contact"
	EntityJournalEntry = "journal_entry"
	EntityActionItem   = "action_item"

	OpUpsert = "upsert"
	OpDelete = "delete"
)

// Change is one local mutation to be pushed.
type Change struct {
	Entity         string         `json:"entity"`
	Op             string         `json:"op"`
	Data           map[string]any `json:"data"`
	ClientChangeID string         `json:"clientChangeId,omitempty"`
}

// PushRequest is the body of POST /v1/sync/push.
type PushRequest struct {
	ClientID string   `json:"clientId"`
	Changes  []Change `json:"changes"`
}

// LedgerEntry is one accepted change as returned by pull.
type LedgerEntry struct {
	ID             string          `json:"id"`
	ClientID       string          `json:"client_id"`
	ClientChangeID *string         `json:"client_change_id"`
	Entity         string          `json:"entity"`
	EntityID       string          `json:"entity_id"`
	Op             string          `json:"op"`
	Data           json.RawMessage `json:"data"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PullResponse is one page of GET /v1/sync/pull.
type PullResponse struct {
	Changes    []LedgerEntry `json:"changes"`
	NextCursor string        `json:"nextCursor"`
}

// SyncState is the server's bookkeeping for this device.
type SyncState struct {
	WorkspaceID string    `json:"workspace_id"`
	UserID      string    `json:"user_id"`
	ClientID    string    `json:"client_id"`
	LastCursor  string    `json:"last_cursor"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UploadTask is where to PUT an attachment.
type UploadTask struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
