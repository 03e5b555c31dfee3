package validator

import (
	"errors"
	"strings"
)

// UploadRules defines constraints for the direct upload path. A zero
// AllowedMimeTypes map disables the content-type whitelist so arbitrary
// media can be stored.
type UploadRules struct {
	MaxFileSize      int64
	AllowedMimeTypes map[string]bool
}

// NewUploadRules builds UploadRules from a configured type list.
func NewUploadRules(maxSize int64, allowedTypes []string) *UploadRules {
	rules := &UploadRules{MaxFileSize: maxSize}
	if len(allowedTypes) > 0 {
		rules.AllowedMimeTypes = make(map[string]bool, len(allowedTypes))
		for _, t := range allowedTypes {
			rules.AllowedMimeTypes[normalizeMimeType(t)] = true
		}
	}
	return rules
}

// ValidateFileSize checks if the file size is within the allowed limit.
// A size of zero is allowed because streaming uploads may not declare a
// Content-Length up front.
func (r *UploadRules) ValidateFileSize(size int64) error {
	if size < 0 {
		return errors.New("invalid file size")
	}
	if r.MaxFileSize > 0 && size > r.MaxFileSize {
		return errors.New("file too large")
	}
	return nil
}

// ValidateMimeType checks if the MIME type is in the allowed whitelist.
func (r *UploadRules) ValidateMimeType(mimeType string) error {
	if r.AllowedMimeTypes == nil {
		return nil
	}
	normalized := normalizeMimeType(mimeType)
	if normalized == "" {
		return errors.New("missing content type")
	}
	if !r.AllowedMimeTypes[normalized] {
		return errors.New("unsupported file type: " + normalized)
	}
	return nil
}

// Validate performs full validation on an upload.
func (r *UploadRules) Validate(size int64, mimeType string) error {
	if err := r.ValidateFileSize(size); err != nil {
		return err
	}
	return r.ValidateMimeType(mimeType)
}

// normalizeMimeType lowercases and strips parameters
// (e.g. "text/plain; charset=utf-8" becomes "text/plain").
func normalizeMimeType(mimeType string) string {
	normalized := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(normalized, ";"); idx > 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	return normalized
}
