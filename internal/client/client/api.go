package client

import (
	"context"

	"github.com/dmitrijs2005/kinsync/internal/client/models"
)

// Client is the sync server API as seen by the client services.
type Client interface {
	// HasToken reports whether requests will be authenticated.
	HasToken() bool
	Ping(ctx context.Context) error
	// Do sends a raw request and returns the HTTP status. The error is
	// non-nil only when no response was received.
	Do(ctx context.Context, method, target string, body []byte) (int, error)
	Push(ctx context.Context, clientID string, changes []models.Change) error
	Pull(ctx context.Context, cursor, clientID string) (*models.PullResponse, error)
	State(ctx context.Context, clientID string) (*models.SyncState, error)
	RequestUpload(ctx context.Context) (*models.UploadTask, error)
	CompleteUpload(ctx context.Context, key string) error
	DownloadURL(ctx context.Context, key string) (string, error)
}
