package storage

import (
	"context"
	"io"
)

// AllowImage lists the upload extensions the system accepts.
var AllowImage = []string{".jpg", ".jpeg", ".png"}

// Storage is the binary object store for uploaded receipt images. The local
// disk implementation is the default; S3 is used when a bucket is configured.
type Storage interface {
	Save(ctx context.Context, fileName string, data []byte) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Allowed reports whether ext (lower-cased, with leading dot) is an accepted
// image extension.
func Allowed(ext string) bool {
	for _, allowed := range AllowImage {
		if ext == allowed {
			return true
		}
	}
	return false
}
