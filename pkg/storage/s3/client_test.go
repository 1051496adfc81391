package s3

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint string) config.StorageConfig {
	return config.StorageConfig{
		Provider:    config.StorageProviderS3,
		Bucket:      "media",
		S3Endpoint:  endpoint,
		S3Region:    "us-east-1",
		S3AccessKey: "ak",
		S3SecretKey: "sk",
	}
}

func TestUploadUsesPathStyle(t *testing.T) {
	var method, path, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path, contentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL + "/"))
	require.NoError(t, err)

	body := []byte("webp-bytes")
	url, err := client.Upload(context.Background(), storage.Object{
		Key:         "profiles/users/u1/a.webp",
		ContentType: "image/webp",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/media/profiles/users/u1/a.webp", path)
	assert.Equal(t, "image/webp", contentType)
	assert.Equal(t, srv.URL+"/media/profiles/users/u1/a.webp", url)

	key, ok := client.KeyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "profiles/users/u1/a.webp", key)
}

func TestKeyFromPublicURL(t *testing.T) {
	cfg := testConfig("https://s3.example.com")
	cfg.PublicURL = "https://cdn.example.com/"
	client, err := NewClient(cfg)
	require.NoError(t, err)

	key, ok := client.KeyFromURL("https://cdn.example.com/profiles/x.png")
	assert.True(t, ok)
	assert.Equal(t, "profiles/x.png", key)

	key, ok = client.KeyFromURL("https://s3.example.com/media/profiles/y.png")
	assert.True(t, ok)
	assert.Equal(t, "profiles/y.png", key)

	_, ok = client.KeyFromURL("https://other.example.com/y.png")
	assert.False(t, ok)
}

func TestUploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), storage.Object{
		Key:  "k.png",
		Body: strings.NewReader("x"),
	})
	assert.Error(t, err)
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(config.StorageConfig{Bucket: "media"})
	assert.Error(t, err)
}
