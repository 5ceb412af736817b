package models

import "time"

type JournalEntry struct {
	ID          string
	WorkspaceID string
	AuthorID    string
	RawText     string
	// CreatedAt is taken from the client when present so offline entries keep their authoring time.
	CreatedAt      *time.Time
	ClientID       *string
	ClientChangeID *string
	Version        int64
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}
