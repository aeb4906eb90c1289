package ports

import (
	"context"
	"time"
)

// SessionStore keeps serialized per-user session state between requests
type SessionStore interface {
	// Load returns the stored bytes, or nil with no error when absent
	Load(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
