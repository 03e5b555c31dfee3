// Package gateway implements the object storage gateway: upload target
// issuance, direct and multipart uploads, prefix listing, and guarded or
// recursive deletion. The gateway treats keys as opaque paths; what they
// mean belongs to the callers that write references back into the library.
package gateway

import (
	"github.com/kotoba-app/kotoba/pkg/storage"
	"github.com/kotoba-app/kotoba/pkg/validator"
)

const (
	// DefaultContentType is used whenever a caller omits the content type.
	DefaultContentType = "application/octet-stream"

	// uploadEndpoint is the same-origin target embedded in issued upload
	// URLs. It carries no cryptographic authority; the receiver validates
	// the key when the write arrives.
	uploadEndpoint = "/api/v1/storage/upload"

	// rawEndpoint is the same-origin fallback for display URLs when no
	// public base URL is configured.
	rawEndpoint = "/api/v1/storage/raw"
)

// Service orchestrates gateway operations against a storage backend.
type Service struct {
	store         storage.Storage
	publicBaseURL string
	uploadRules   *validator.UploadRules
}

// NewService creates a gateway service. store may be nil when no backend is
// configured; listing then degrades to empty results and writes are
// rejected. uploadRules may be nil to accept any direct upload.
func NewService(store storage.Storage, publicBaseURL string, uploadRules *validator.UploadRules) *Service {
	return &Service{
		store:         store,
		publicBaseURL: publicBaseURL,
		uploadRules:   uploadRules,
	}
}

func (s *Service) requireStore() error {
	if s.store == nil {
		return storage.NewError(storage.KindInvalidInput, "storage backend not configured")
	}
	return nil
}
