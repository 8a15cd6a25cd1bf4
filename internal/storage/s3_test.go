package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"alcyxob/fitness-programs/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Presigning is computed locally, so no S3 endpoint has to be reachable.
func newTestStorage(t *testing.T) FileStorage {
	t.Helper()
	fs, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "test-access",
		SecretAccessKey: "test-secret",
		BucketName:      "fitness-media",
	}, nil)
	require.NoError(t, err)
	return fs
}

func TestS3Storage_PresignedUploadURL(t *testing.T) {
	fs := newTestStorage(t)

	raw, err := fs.GeneratePresignedUploadURL(context.Background(), "exercises/p/e/clip.mp4", "video/mp4", 5*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/fitness-media/exercises/p/e/clip.mp4"), u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestS3Storage_PresignedDownloadURLDefaultsExpiry(t *testing.T) {
	fs := newTestStorage(t)

	raw, err := fs.GeneratePresignedDownloadURL(context.Background(), "exercises/p/e/clip.mp4", 0)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}

func TestS3Storage_RequiresKey(t *testing.T) {
	fs := newTestStorage(t)

	_, err := fs.GeneratePresignedUploadURL(context.Background(), "", "video/mp4", 0)
	assert.ErrorIs(t, err, ErrObjectKeyRequired)
	assert.ErrorIs(t, fs.DeleteObject(context.Background(), ""), ErrObjectKeyRequired)
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "http://minio:9000", endpointURL("http://minio:9000", true))
	assert.Equal(t, "https://minio:9000", endpointURL("minio:9000", true))
	assert.Equal(t, "http://minio:9000", endpointURL("minio:9000", false))
}
