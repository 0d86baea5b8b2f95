package storage

import (
	"context"
	"io"
)

// Uploader forwards file content to an external object store and returns the
// stored object key. This core never reads the bytes back.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}
