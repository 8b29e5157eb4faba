package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body>
			<header>Acme Careers</header>
			<main><h1>Site Reliability Engineer</h1><ul><li>Linux</li><li>Prometheus</li></ul></main>
			<form id="application-form">Apply now</form>
		</body></html>`))
	}))
	defer server.Close()

	jd, err := FromURL(context.Background(), server.URL, URLOptions{})
	require.NoError(t, err)
	assert.Contains(t, jd.Text, "Site Reliability Engineer")
	assert.Contains(t, jd.Text, "- Linux\n- Prometheus")
	assert.NotContains(t, jd.Text, "Acme Careers")
	assert.NotContains(t, jd.Text, "Apply now")
	assert.Equal(t, server.URL, jd.Metadata.Source)
	assert.Equal(t, FormatHTML, jd.Metadata.Format)
	assert.Equal(t, "unknown", jd.Metadata.Platform)
	assert.False(t, jd.Metadata.Browser)
}

func TestFromURL_PlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("Data Engineer\n\nSpark   and Airflow"))
	}))
	defer server.Close()

	jd, err := FromURL(context.Background(), server.URL, URLOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Data Engineer\n\nSpark and Airflow", jd.Text)
	assert.Equal(t, FormatText, jd.Metadata.Format)
}

func TestFromURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := FromURL(context.Background(), server.URL, URLOptions{})
	require.Error(t, err)

	var ingestErr *Error
	require.True(t, errors.As(err, &ingestErr))
	assert.Contains(t, err.Error(), "404")
}

func TestFromURL_InvalidURL(t *testing.T) {
	_, err := FromURL(context.Background(), "not-a-url", URLOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestFromURL_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><script>render()</script></body></html>`))
	}))
	defer server.Close()

	_, err := FromURL(context.Background(), server.URL, URLOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text found")
}
