package templates

import (
	"context"
	"errors"
	"fmt"

	"billdoc/internal/domain"
	"billdoc/internal/port"
)

// S3Source loads templates from an object storage bucket under a key prefix.
type S3Source struct {
	storage port.ObjectStorage
	bucket  string
	prefix  string
}

// NewS3Source creates an S3Source.
func NewS3Source(storage port.ObjectStorage, bucket, prefix string) *S3Source {
	return &S3Source{storage: storage, bucket: bucket, prefix: prefix}
}

func (s *S3Source) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	data, err := s.storage.Download(ctx, s.bucket, s.prefix+name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("downloading template %s: %w", name, err)
	}

	if err := checkArchive(name, data); err != nil {
		return nil, err
	}
	return data, nil
}
