// Package storage publishes compiled artifacts to object storage.
//
// Destinations are URLs: s3://bucket/prefix (any S3-compatible endpoint),
// gs://bucket/prefix (Google Cloud Storage) or file:///dir for a local copy.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ContentTypePDF is set on every uploaded artifact
const ContentTypePDF = "application/pdf"

// Publisher uploads a local file and returns where it landed.
type Publisher interface {
	Publish(ctx context.Context, localPath, name string) (string, error)
	Close() error
}

// Options carries credentials and endpoint overrides for S3-compatible stores.
// Empty fields fall back to the SDK's default credential chain.
type Options struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Location is a parsed publish destination
type Location struct {
	Scheme string
	Bucket string
	Prefix string
}

// ParseLocation splits a destination URL into scheme, bucket and key prefix.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("invalid publish URL %q: %w", raw, err)
	}

	loc := Location{Scheme: u.Scheme}
	switch u.Scheme {
	case "s3", "gs":
		if u.Host == "" {
			return Location{}, fmt.Errorf("publish URL %q has no bucket", raw)
		}
		loc.Bucket = u.Host
		loc.Prefix = strings.Trim(u.Path, "/")
	case "file":
		if u.Path == "" {
			return Location{}, fmt.Errorf("publish URL %q has no directory", raw)
		}
		loc.Prefix = u.Path
	default:
		return Location{}, fmt.Errorf("unsupported publish scheme %q (want s3, gs or file)", u.Scheme)
	}
	return loc, nil
}

// ObjectKey joins the prefix and the object name.
func (l Location) ObjectKey(name string) string {
	if l.Prefix == "" {
		return name
	}
	return path.Join(l.Prefix, name)
}

// NewPublisher creates the publisher for a destination URL.
func NewPublisher(ctx context.Context, raw string, opts Options) (Publisher, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}

	switch loc.Scheme {
	case "s3":
		return NewS3Publisher(ctx, loc, opts)
	case "gs":
		return NewGCSPublisher(ctx, loc)
	default:
		return NewLocalPublisher(loc), nil
	}
}
