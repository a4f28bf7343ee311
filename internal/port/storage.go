package port

import (
	"context"
	"io"
)

// UploadInput describes one object write. Generated documents set FileName
// so downloads keep the "<template>_<yyyy-mm>.odt" name.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
	FileName    string
}

type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage holds templates and generated documents. Buckets are passed
// per call: templates and outputs usually live in different buckets.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	// Download returns the object bytes, or an error wrapping
	// domain.ErrNotFound when the key does not exist.
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
