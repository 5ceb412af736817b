package models

import "time"

// Upload states of an attachment.
const (
	UploadPending   = "pending"
	UploadCompleted = "completed"
)

// Attachment is a binary object (e.g. a contact avatar) stored in object
// storage. Contacts reference it by StorageKey.
type Attachment struct {
	StorageKey   string
	WorkspaceID  string
	UploadedBy   string
	UploadStatus string
	CreatedAt    time.Time
}

// UploadTask tells the client where to PUT the object.
type UploadTask struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
