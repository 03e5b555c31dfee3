package gateway

import (
	"context"
	"io"
	"strings"

	"github.com/kotoba-app/kotoba/pkg/storage"
)

// Upload streams a body directly into the backend under key, overwriting any
// existing object. No chunking and no retry; a transport failure surfaces to
// the caller, who may safely repeat the whole call since overwrite-by-key is
// idempotent.
func (s *Service) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return storage.NewError(storage.KindInvalidInput, "key is required")
	}
	if strings.HasSuffix(key, storage.Delimiter) {
		return storage.NewError(storage.KindInvalidInput, "key denotes a directory marker")
	}
	if err := s.requireStore(); err != nil {
		return err
	}
	if contentType == "" {
		contentType = DefaultContentType
	}
	if s.uploadRules != nil {
		if err := s.uploadRules.Validate(size, contentType); err != nil {
			return storage.WrapError(storage.KindInvalidInput, "upload rejected", err)
		}
	}

	return s.store.PutObject(ctx, key, body, contentType, size)
}

// Fetch retrieves a stored object for the same-origin display URL fallback.
func (s *Service) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, storage.NewError(storage.KindInvalidInput, "key is required")
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	return s.store.GetObject(ctx, key)
}
