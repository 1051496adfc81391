package gcs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, publicURL string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.StorageConfig{Bucket: "test-bucket", PublicURL: publicURL}
	client, err := NewClient(context.Background(), cfg, nil,
		option.WithEndpoint(srv.URL+"/storage/v1/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return client
}

func TestUploadReturnsPublicURL(t *testing.T) {
	var gotPath, gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"name": "profiles/a.png", "bucket": "test-bucket"})
	}, "")

	url, err := client.Upload(context.Background(), storage.Object{
		Key:         "profiles/a.png",
		ContentType: "image/png",
		Body:        bytes.NewReader([]byte("png-bytes")),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://storage.googleapis.com/test-bucket/profiles/a.png", url)
	assert.True(t, strings.HasSuffix(gotPath, "/b/test-bucket/o"), gotPath)
	assert.Contains(t, gotBody, "png-bytes")

	key, ok := client.KeyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "profiles/a.png", key)
}

func TestUploadRequiresBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}, "https://cdn.example.com")

	_, err := client.Upload(context.Background(), storage.Object{Key: "k"})
	assert.Error(t, err)
}

func TestUploadSurfacesAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
	}, "")

	_, err := client.Upload(context.Background(), storage.Object{
		Key:         "profiles/a.png",
		ContentType: "image/png",
		Body:        strings.NewReader("x"),
	})
	assert.Error(t, err)
}

func TestDeleteMissingObject(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"gone"}}`))
	}, "")

	err := client.Delete(context.Background(), "profiles/a.png")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNewClientRequiresBucket(t *testing.T) {
	_, err := NewClient(context.Background(), config.StorageConfig{}, nil, option.WithoutAuthentication())
	assert.Error(t, err)
}
