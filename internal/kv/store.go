// Package kv abstracts the TTL-capable key-value store that holds sessions,
// refresh tokens and backup registries.
package kv

import (
	"context"
	"time"
)

// Store entries expire at the store level when a ttl is given; callers that
// embed their own expiry timestamps still re-check them client-side as a
// backstop.
type Store interface {
	// Get returns ("", false, nil) when the key doesn't exist.
	Get(ctx context.Context, key string) (string, bool, error)

	// GetJSON unmarshals the value into v and reports whether the key existed.
	GetJSON(ctx context.Context, key string, v any) (bool, error)

	// Put stores value under key. A zero ttl means no expiry.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	PutJSON(ctx context.Context, key string, v any, ttl time.Duration) error

	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
}
