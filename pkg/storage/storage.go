// Package storage defines the object storage surface used for profile and
// product images. Concrete backends live in the gcs and s3 subpackages.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Delete when the object is already gone.
var ErrNotFound = errors.New("object not found")

// Object is a single upload.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader stores objects and returns the URL they are served from.
type Uploader interface {
	Upload(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL maps a URL previously returned by Upload back to its key.
	KeyFromURL(rawURL string) (string, bool)
	Ping(ctx context.Context) error
}

// ObjectKey builds a collision-free key under prefix/scope for the given
// owner, keeping ext (with or without the leading dot).
func ObjectKey(prefix, scope string, owner uuid.UUID, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	name := uuid.NewString()
	if ext != "" {
		name = fmt.Sprintf("%s.%s", name, ext)
	}
	return path.Join(strings.Trim(prefix, "/"), strings.Trim(scope, "/"), owner.String(), name)
}

// JoinURL appends key to base, trimming duplicate slashes.
func JoinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// TrimBase returns the key when rawURL lives under base.
func TrimBase(base, rawURL string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if base == "" || !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	key := rawURL[len(prefix):]
	return key, key != ""
}
