// Package blob abstracts the flat key->bytes object store that holds mail
// body content, attachment payloads and backup documents.
package blob

import "context"

// Store is a flat keyspace. Paths are opaque strings constructed by the
// callers; no directory semantics are required.
type Store interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error

	// Get returns (nil, false, nil) when the object doesn't exist. Only
	// transport/store failures are reported as errors.
	Get(ctx context.Context, path string) ([]byte, bool, error)

	// Delete is idempotent, deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error
}
