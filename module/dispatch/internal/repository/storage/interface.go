package storage

import (
	"context"
	"io"
)

type AttachmentStore interface {
	// Put writes r under key and returns the number of bytes stored.
	Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
