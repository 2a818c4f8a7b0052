// Package storage holds uploaded photo bytes. The rest of the system
// treats blobs as opaque and refers to them only by generated key.
package storage

import (
	"context"
	"io"
)

// Store is the contract the photo services program against.
type Store interface {
	// Save writes the blob under key with the given content type.
	Save(ctx context.Context, key, contentType string, body io.Reader) error

	// Open returns the blob's bytes and content type. The caller closes
	// the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)

	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
