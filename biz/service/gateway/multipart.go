package gateway

import (
	"context"
	"io"
	"strings"

	"github.com/kotoba-app/kotoba/biz/model/api"
	"github.com/kotoba-app/kotoba/pkg/storage"
)

// Multipart sessions are backend-resident only: every call resumes the
// session by its uploadId, so a process restart loses nothing and no
// in-memory session registry exists. Abandoned sessions are left to the
// backend's own lifecycle policy.

// InitMultipart starts a multipart session for key and returns the
// backend-issued upload ID.
func (s *Service) InitMultipart(ctx context.Context, key, contentType string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", storage.NewError(storage.KindInvalidInput, "key is required")
	}
	if err := s.requireStore(); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = DefaultContentType
	}

	return s.store.CreateMultipartUpload(ctx, key, contentType)
}

// UploadMultipartPart resumes the session and uploads one chunk, returning
// its integrity tag. Parts may arrive out of order and concurrently; only
// the final assembly list is ordered.
func (s *Service) UploadMultipartPart(ctx context.Context, key, uploadID string, partNumber int32, body io.Reader, size int64) (string, error) {
	if err := validateSession(key, uploadID); err != nil {
		return "", err
	}
	if partNumber < 1 {
		return "", storage.NewError(storage.KindInvalidInput, "partNumber must be a positive integer")
	}
	if err := s.requireStore(); err != nil {
		return "", err
	}

	return s.store.UploadPart(ctx, key, uploadID, partNumber, body, size)
}

// CompleteMultipart instructs the backend to assemble the final object from
// the given parts in the order submitted. It is the caller's responsibility
// to submit parts sorted ascending by partNumber.
func (s *Service) CompleteMultipart(ctx context.Context, key, uploadID string, parts []api.MultipartPart) error {
	if err := validateSession(key, uploadID); err != nil {
		return err
	}
	if len(parts) == 0 {
		return storage.NewError(storage.KindInvalidInput, "parts must not be empty")
	}

	completed := make([]storage.CompletedPart, 0, len(parts))
	for _, part := range parts {
		if part.PartNumber < 1 {
			return storage.NewError(storage.KindInvalidInput, "partNumber must be a positive integer")
		}
		completed = append(completed, storage.CompletedPart{
			PartNumber: part.PartNumber,
			ETag:       part.ETag,
		})
	}

	if err := s.requireStore(); err != nil {
		return err
	}
	return s.store.CompleteMultipartUpload(ctx, key, uploadID, completed)
}

// AbortMultipart discards the session and any uploaded-but-uncommitted
// parts. A session that is already gone surfaces as not found so callers
// can tell "already cleaned up" apart from "never existed".
func (s *Service) AbortMultipart(ctx context.Context, key, uploadID string) error {
	if err := validateSession(key, uploadID); err != nil {
		return err
	}
	if err := s.requireStore(); err != nil {
		return err
	}
	return s.store.AbortMultipartUpload(ctx, key, uploadID)
}

func validateSession(key, uploadID string) error {
	if strings.TrimSpace(key) == "" {
		return storage.NewError(storage.KindInvalidInput, "key is required")
	}
	if strings.TrimSpace(uploadID) == "" {
		return storage.NewError(storage.KindInvalidInput, "uploadId is required")
	}
	return nil
}
