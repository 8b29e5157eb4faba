package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
)

// GCSPublisher uploads to a Google Cloud Storage bucket.
type GCSPublisher struct {
	client *gcs.Client
	loc    Location
}

// NewGCSPublisher creates a client using Application Default Credentials.
func NewGCSPublisher(ctx context.Context, loc Location) (*GCSPublisher, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSPublisher{client: client, loc: loc}, nil
}

// Publish streams localPath into <prefix>/<name>, overwriting any previous object.
func (p *GCSPublisher) Publish(ctx context.Context, localPath, name string) (string, error) {
	key := p.loc.ObjectKey(name)
	dest := fmt.Sprintf("gs://%s/%s", p.loc.Bucket, key)

	f, err := os.Open(localPath)
	if err != nil {
		return "", &PublishError{Destination: dest, Message: "failed to open artifact", Cause: err}
	}
	defer func() { _ = f.Close() }()

	writer := p.client.Bucket(p.loc.Bucket).Object(key).NewWriter(ctx)
	writer.ContentType = ContentTypePDF

	if _, err := io.Copy(writer, f); err != nil {
		_ = writer.Close()
		return "", &PublishError{Destination: dest, Message: "failed to copy content", Cause: err}
	}
	if err := writer.Close(); err != nil {
		return "", &PublishError{Destination: dest, Message: "failed to finalize write", Cause: err}
	}
	return dest, nil
}

// Close releases the storage client
func (p *GCSPublisher) Close() error {
	return p.client.Close()
}
