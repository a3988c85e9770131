// Package storage keeps payment proofs and ID card photos outside the
// database. Rows only hold the object key.
package storage

import (
	"context"
	"io"
)

// BlobStore stores opaque uploads and hands out short-lived read links.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	URL(ctx context.Context, key string) (string, error)
}
