package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalPublisher copies artifacts into a directory.
type LocalPublisher struct {
	dir string
}

// NewLocalPublisher publishes into loc.Prefix
func NewLocalPublisher(loc Location) *LocalPublisher {
	return &LocalPublisher{dir: loc.Prefix}
}

// Publish copies localPath to <dir>/<name>.
func (p *LocalPublisher) Publish(ctx context.Context, localPath, name string) (string, error) {
	dest := filepath.Join(p.dir, filepath.FromSlash(name))
	if err := ctx.Err(); err != nil {
		return "", &PublishError{Destination: dest, Message: "cancelled", Cause: err}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", &PublishError{Destination: dest, Message: "failed to create directory", Cause: err}
	}

	in, err := os.Open(localPath)
	if err != nil {
		return "", &PublishError{Destination: dest, Message: "failed to open artifact", Cause: err}
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return "", &PublishError{Destination: dest, Message: "failed to create file", Cause: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return "", &PublishError{Destination: dest, Message: "failed to copy content", Cause: err}
	}
	if err := out.Close(); err != nil {
		return "", &PublishError{Destination: dest, Message: "failed to close file", Cause: err}
	}
	return fmt.Sprintf("file://%s", filepath.ToSlash(dest)), nil
}

// Close is a no-op
func (p *LocalPublisher) Close() error {
	return nil
}
