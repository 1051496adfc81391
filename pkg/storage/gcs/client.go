package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gcsapi "google.golang.org/api/storage/v1"
)

const publicHost = "https://storage.googleapis.com"

// Client uploads objects to a single Cloud Storage bucket.
type Client struct {
	svc       *gcsapi.Service
	bucket    string
	publicURL string
	logg      *logger.Logger
}

var _ storage.Uploader = (*Client)(nil)

// NewClient builds a client from service account JSON, a credentials file, or
// application default credentials, in that order.
func NewClient(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger, extra ...option.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	opts := append(clientOptions(cfg), extra...)
	svc, err := gcsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs service: %w", err)
	}

	publicURL := strings.TrimSpace(cfg.PublicURL)
	if publicURL == "" {
		publicURL = publicHost + "/" + cfg.Bucket
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.Bucket), "gcs client initialized")
	}
	return &Client{svc: svc, bucket: cfg.Bucket, publicURL: strings.TrimRight(publicURL, "/"), logg: logg}, nil
}

func clientOptions(cfg config.StorageConfig) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(cfg.GCPCredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.GCPCredentialsJSON)))
	case strings.TrimSpace(cfg.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(cfg.ApplicationCredentials))
	}
	return opts
}

// Upload writes obj to the bucket and returns its public URL.
func (c *Client) Upload(ctx context.Context, obj storage.Object) (string, error) {
	if obj.Body == nil || obj.Key == "" {
		return "", errors.New("object key and body are required")
	}
	meta := &gcsapi.Object{
		Name:         obj.Key,
		ContentType:  obj.ContentType,
		CacheControl: "public, max-age=86400",
	}
	_, err := c.svc.Objects.Insert(c.bucket, meta).
		Media(obj.Body, googleapi.ContentType(obj.ContentType)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("gcs upload %s/%s: %w", c.bucket, obj.Key, err)
	}
	return storage.JoinURL(c.publicURL, obj.Key), nil
}

// Delete removes key from the bucket.
func (c *Client) Delete(ctx context.Context, key string) error {
	err := c.svc.Objects.Delete(c.bucket, key).Context(ctx).Do()
	if isNotFound(err) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("gcs delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

func (c *Client) KeyFromURL(rawURL string) (string, bool) {
	return storage.TrimBase(c.publicURL, rawURL)
}

// Ping checks the bucket is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.svc.Buckets.Get(c.bucket).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gcs bucket %s: %w", c.bucket, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.Code == http.StatusNotFound
	}
	return false
}
