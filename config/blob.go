package config

import (
	"context"
	"fmt"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// NewReportsBucket opens the bucket that stores medical reports. Supported
// schemes are mem:// and file:///path.
func NewReportsBucket(ctx context.Context, cfg *Config) (*blob.Bucket, error) {
	bucket, err := blob.OpenBucket(ctx, cfg.ReportsBucketURL)
	if err != nil {
		return nil, fmt.Errorf("open reports bucket: %w", err)
	}
	return bucket, nil
}
