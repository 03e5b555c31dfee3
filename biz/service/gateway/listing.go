package gateway

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kotoba-app/kotoba/biz/model/api"
	"github.com/kotoba-app/kotoba/pkg/storage"
)

// NormalizePrefix strips leading and trailing separators and re-appends
// exactly one trailing separator if the prefix is non-empty, so "foo",
// "/foo/" and "foo/" address the same subtree.
func NormalizePrefix(prefix string) string {
	trimmed := strings.Trim(strings.TrimSpace(prefix), storage.Delimiter)
	if trimmed == "" {
		return ""
	}
	return trimmed + storage.Delimiter
}

// ClampLimit resolves a raw limit parameter to [1, MaxListLimit].
// Out-of-range or non-numeric input silently falls back to the maximum.
func ClampLimit(raw string) int32 {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > storage.MaxListLimit {
		return storage.MaxListLimit
	}
	return int32(n)
}

// ListTree returns the one-level tree view under prefix: immediate child
// directories followed by immediate child files. When paged is false the
// whole single-level listing is returned with no cursor. Listing is
// advisory, so an unconfigured backend yields an empty tree rather than an
// error.
func (s *Service) ListTree(ctx context.Context, prefix string, paged bool, cursor string, limit int32) (*api.TreeListing, error) {
	listing := &api.TreeListing{Entries: []api.ListEntry{}}
	if s.store == nil {
		return listing, nil
	}

	norm := NormalizePrefix(prefix)

	var dirs, files []api.ListEntry
	for {
		page, err := s.store.List(ctx, storage.ListOptions{
			Prefix:    norm,
			Delimiter: storage.Delimiter,
			Cursor:    cursor,
			Limit:     limit,
		})
		if err != nil {
			return nil, err
		}

		for _, child := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(child, norm), storage.Delimiter)
			dirs = append(dirs, api.ListEntry{
				Key:  child,
				Name: name,
				Type: "directory",
			})
		}
		for _, obj := range page.Objects {
			// The prefix's own directory marker participates in listing
			// logic but is not an entry.
			if obj.Key == norm {
				continue
			}
			files = append(files, api.ListEntry{
				Key:      obj.Key,
				Name:     strings.TrimPrefix(obj.Key, norm),
				Type:     "file",
				Size:     obj.Size,
				Modified: formatModified(obj.LastModified),
				URL:      s.displayURL(obj.Key),
			})
		}

		if paged {
			listing.Cursor = page.NextCursor
			listing.Truncated = page.Truncated
			break
		}
		// Unpaginated mode drains every page so callers get the whole
		// single level at once.
		if !page.Truncated || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	listing.Entries = append(listing.Entries, dirs...)
	listing.Entries = append(listing.Entries, files...)

	return listing, nil
}

// ListFlat returns one cursor-paginated page of all keys under prefix,
// regardless of nesting depth. The prefix is taken literally. Flat mode is
// the deletion engine's discovery path, so backend errors surface instead
// of degrading.
func (s *Service) ListFlat(ctx context.Context, prefix, cursor string, limit int32) (*api.FlatListing, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	page, err := s.store.List(ctx, storage.ListOptions{
		Prefix: prefix,
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	listing := &api.FlatListing{
		Objects:   make([]api.FlatObject, 0, len(page.Objects)),
		Cursor:    page.NextCursor,
		Truncated: page.Truncated,
	}
	for _, obj := range page.Objects {
		listing.Objects = append(listing.Objects, api.FlatObject{
			Key:      obj.Key,
			Size:     obj.Size,
			Modified: formatModified(obj.LastModified),
		})
	}

	return listing, nil
}

// displayURL builds the display link for a listed file: the configured
// public base URL plus key, or the same-origin proxy path as fallback.
func (s *Service) displayURL(key string) string {
	if s.publicBaseURL != "" {
		return strings.TrimSuffix(s.publicBaseURL, storage.Delimiter) + storage.Delimiter + key
	}
	q := url.Values{}
	q.Set("key", key)
	return rawEndpoint + "?" + q.Encode()
}

func formatModified(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
