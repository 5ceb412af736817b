package models

import "time"

// DefaultContactName is used when an upsert carries no usable name.
const DefaultContactName = "联系人"

type Contact struct {
	ID             string
	WorkspaceID    string
	Name           string
	AvatarURL      *string
	Notes          *string
	Status         *string
	ClientID       *string
	ClientChangeID *string
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}
