// Package metadata stores small client-side key/value settings, such as the
// device id and the last pull cursor.
package metadata

import "context"

// Well-known keys.
const (
	KeyClientID   = "client_id"
	KeyPullCursor = "pull_cursor"
)

type Repository interface {
	// Get returns the value of key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
}
