// Package kvstore provides the TTL key-value stores that hold pending
// authorization state and sessions. Values are opaque JSON text.
package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidEntry reports a Put the store refused before reaching the backend.
var ErrInvalidEntry = errors.New("invalid store entry")

// Store is an eventually consistent key-value store with per-key expiry.
// A missing key is reported with found == false and a nil error. Backend
// failures wrap errors.ErrStoreUnavailable; an empty key or a non-positive
// ttl is rejected with ErrInvalidEntry.
type Store interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Delete(ctx context.Context, key string) error
}
