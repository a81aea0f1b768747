// Package storage keeps uploaded package images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var ErrBlobNotFound = errors.New("blob not found")

// BlobStore stores opaque blobs by slash-separated path.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, string, error)
}

// ImagePath names an uploaded image by its upload time.
func ImagePath(now time.Time) string {
	return fmt.Sprintf("images/%d", now.UnixMilli())
}

// CleanPath normalizes a blob path and rejects anything escaping the root.
func CleanPath(p string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(p))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("invalid blob path %q", p)
	}
	return cleaned, nil
}

func publicURL(baseURL, p string) string {
	return strings.TrimRight(baseURL, "/") + "/blobs/" + p
}
