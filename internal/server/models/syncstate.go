package models

import "time"

// SyncState is the server's bookkeeping for one (workspace, user, client).
type SyncState struct {
	WorkspaceID string    `json:"workspace_id"`
	UserID      string    `json:"user_id"`
	ClientID    string    `json:"client_id"`
	LastCursor  string    `json:"last_cursor"`
	UpdatedAt   time.Time `json:"updated_at"`
}
