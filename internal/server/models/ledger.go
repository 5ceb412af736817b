package models

import (
	"time"

	"github.com/goccy/go-json"
)

// LedgerEntry is a persisted, accepted Change. It is the unit returned by pull.
type LedgerEntry struct {
	ID             string          `json:"id"`
	WorkspaceID    string          `json:"workspace_id"`
	ClientID       string          `json:"client_id"`
	ClientChangeID *string         `json:"client_change_id"`
	Entity         string          `json:"entity"`
	EntityID       string          `json:"entity_id"`
	Op             string          `json:"op"`
	Data           json.RawMessage `json:"data"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
}
