package storage

import (
	"context"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"

	"github.com/oksasatya/go-ddd-postboard/pkg/helpers"
)

const uploadTimeout = 30 * time.Second

// SnapshotBucket stores exported snapshots in a GCS bucket.
type SnapshotBucket struct {
	client *gcs.Client
	bucket string
}

func NewSnapshotBucket(client *gcs.Client, bucket string) *SnapshotBucket {
	return &SnapshotBucket{client: client, bucket: bucket}
}

func (b *SnapshotBucket) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	c, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()
	return helpers.UploadObject(c, b.client, b.bucket, name, contentType, r)
}
