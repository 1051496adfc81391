// Package s3 stores objects in any S3-compatible bucket using path-style
// addressing.
package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type Client struct {
	s3        *awss3.Client
	bucket    string
	endpoint  string
	publicURL string
}

var _ storage.Uploader = (*Client)(nil)

// NewClient builds a client with static credentials from cfg.
func NewClient(cfg config.StorageConfig) (*Client, error) {
	if cfg.Bucket == "" || cfg.S3Endpoint == "" || cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, errors.New("s3 storage requires bucket, endpoint and credentials")
	}
	endpoint := strings.TrimRight(cfg.S3Endpoint, "/")

	client := awss3.New(awss3.Options{
		Region:       cfg.S3Region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		UsePathStyle: true,
	})

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = endpoint + "/" + cfg.Bucket
	}
	return &Client{s3: client, bucket: cfg.Bucket, endpoint: endpoint, publicURL: publicURL}, nil
}

// Upload stores obj with a public-read ACL and returns its URL.
func (c *Client) Upload(ctx context.Context, obj storage.Object) (string, error) {
	if obj.Body == nil || obj.Key == "" {
		return "", errors.New("object key and body are required")
	}
	input := &awss3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(obj.Key),
		Body:        obj.Body,
		ContentType: aws.String(obj.ContentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	}
	if obj.Size > 0 {
		input.ContentLength = aws.Int64(obj.Size)
	}
	if _, err := c.s3.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3 upload %s/%s: %w", c.bucket, obj.Key, err)
	}
	return storage.JoinURL(c.publicURL, obj.Key), nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// KeyFromURL accepts both the configured public URL and the path-style
// endpoint URL.
func (c *Client) KeyFromURL(rawURL string) (string, bool) {
	if key, ok := storage.TrimBase(c.publicURL, rawURL); ok {
		return key, true
	}
	return storage.TrimBase(c.endpoint+"/"+c.bucket, rawURL)
}

func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.s3.HeadBucket(ctx, &awss3.HeadBucketInput{Bucket: aws.String(c.bucket)}); err != nil {
		return fmt.Errorf("s3 bucket %s: %w", c.bucket, err)
	}
	return nil
}
