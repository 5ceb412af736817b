package models

import "time"

// ActionItem is a follow-up derived from a journal entry about a contact.
// WorkspaceID is denormalised from the contact it belongs to.
type ActionItem struct {
	ID               string
	WorkspaceID      string
	ContactID        string
	SourceEntryID    string
	DueAt            *time.Time
	SuggestionReason *string
	Status           *string
	Version          int64
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}
