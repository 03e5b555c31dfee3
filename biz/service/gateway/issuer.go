package gateway

import (
	"net/url"
	"strings"

	"github.com/kotoba-app/kotoba/biz/model/api"
	"github.com/kotoba-app/kotoba/pkg/storage"
)

// IssueUploadTarget derives a same-origin upload URL for the given key. It
// performs no backend call and no signing; the key and content type travel
// as query parameters and are validated when the write arrives.
func (s *Service) IssueUploadTarget(path, contentType string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", storage.NewError(storage.KindInvalidInput, "path is required")
	}
	if contentType == "" {
		contentType = DefaultContentType
	}

	q := url.Values{}
	q.Set("key", path)
	q.Set("ct", contentType)
	return uploadEndpoint + "?" + q.Encode(), nil
}

// IssueUploadTargets applies IssueUploadTarget per item, filtering out any
// item missing a path and preserving the order of the valid ones.
func (s *Service) IssueUploadTargets(items []api.SignUploadRequest) ([]api.SignedUpload, error) {
	if len(items) == 0 {
		return nil, storage.NewError(storage.KindInvalidInput, "items is required")
	}

	urls := make([]api.SignedUpload, 0, len(items))
	for _, item := range items {
		target, err := s.IssueUploadTarget(item.Path, item.ContentType)
		if err != nil {
			continue
		}
		urls = append(urls, api.SignedUpload{Path: item.Path, URL: target})
	}
	return urls, nil
}
