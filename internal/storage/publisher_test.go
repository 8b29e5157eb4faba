package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Location
		wantErr bool
	}{
		{
			name: "s3 with prefix",
			raw:  "s3://resumes/tailored/2026",
			want: Location{Scheme: "s3", Bucket: "resumes", Prefix: "tailored/2026"},
		},
		{
			name: "gs bucket only",
			raw:  "gs://resumes",
			want: Location{Scheme: "gs", Bucket: "resumes"},
		},
		{
			name: "gs trailing slash",
			raw:  "gs://resumes/out/",
			want: Location{Scheme: "gs", Bucket: "resumes", Prefix: "out"},
		},
		{
			name: "file directory",
			raw:  "file:///tmp/published",
			want: Location{Scheme: "file", Prefix: "/tmp/published"},
		},
		{name: "missing bucket", raw: "s3:///key", wantErr: true},
		{name: "unsupported scheme", raw: "ftp://host/dir", wantErr: true},
		{name: "no scheme", raw: "just/a/path", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocation(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "resume.pdf", Location{}.ObjectKey("resume.pdf"))
	assert.Equal(t, "out/run-1/resume.pdf", Location{Prefix: "out"}.ObjectKey("run-1/resume.pdf"))
}

func TestNewPublisher_Unsupported(t *testing.T) {
	_, err := NewPublisher(context.Background(), "ftp://host/dir", Options{})
	assert.Error(t, err)
}

func TestLocalPublisher(t *testing.T) {
	src := filepath.Join(t.TempDir(), "resume_targeted.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0644))
	dir := t.TempDir()

	pub, err := NewPublisher(context.Background(), "file://"+filepath.ToSlash(dir), Options{})
	require.NoError(t, err)
	defer func() { _ = pub.Close() }()

	dest, err := pub.Publish(context.Background(), src, "run-1/resume_targeted.pdf")
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.ToSlash(filepath.Join(dir, "run-1", "resume_targeted.pdf")), dest)

	data, err := os.ReadFile(filepath.Join(dir, "run-1", "resume_targeted.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestLocalPublisher_MissingSource(t *testing.T) {
	pub := NewLocalPublisher(Location{Scheme: "file", Prefix: t.TempDir()})

	_, err := pub.Publish(context.Background(), "/nonexistent/resume.pdf", "resume.pdf")
	require.Error(t, err)

	var publishErr *PublishError
	require.True(t, errors.As(err, &publishErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
