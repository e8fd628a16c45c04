// Package blobstore provides the client for the remote blob store the
// gateway writes encrypted objects to. The store is an opaque collaborator
// offering put, list, get and delete over a flat key namespace.
package blobstore

import "context"

// RemoteStore is the durable I/O surface used by the storage gateway.
// Implementations must be safe for concurrent use.
type RemoteStore interface {
	// Put writes data under key and returns a URL-style locator for it.
	Put(ctx context.Context, key string, data []byte) (string, error)

	// Get fetches the blob stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys in the store. The listing is assumed to be a
	// complete result set per call; no pagination.
	List(ctx context.Context) ([]string, error)

	// Delete removes the blob stored under key.
	Delete(ctx context.Context, key string) error
}
