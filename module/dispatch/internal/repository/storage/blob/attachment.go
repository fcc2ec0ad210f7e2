package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/Bytix-in/Prana-AI/module/dispatch/internal/repository/storage"
)

var _ storage.AttachmentStore = (*AttachmentStore)(nil)

// ErrNotFound is returned by Open when no object exists under the key.
var ErrNotFound = errors.New("attachment not found")

type AttachmentStore struct {
	bucket *blob.Bucket
}

func NewAttachmentStore(bucket *blob.Bucket) *AttachmentStore {
	return &AttachmentStore{bucket: bucket}
}

func (s *AttachmentStore) Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return 0, fmt.Errorf("open writer %s: %w", key, err)
	}

	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return 0, fmt.Errorf("write %s: %w", key, err)
	}

	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("close writer %s: %w", key, err)
	}
	return n, nil
}

func (s *AttachmentStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("open reader %s: %w", key, err)
	}
	return r, nil
}
