package gateway

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kotoba-app/kotoba/pkg/storage"
)

const (
	// DefaultDeleteConcurrency is used when the caller does not specify one.
	DefaultDeleteConcurrency = 20
	// MaxDeleteConcurrency caps the number of deletes in flight at once.
	MaxDeleteConcurrency = 100
)

// DeletionResult summarises a recursive prefix deletion. Per-key failures
// are counted rather than aborting the run; callers inspect Failed to decide
// whether to re-drive the operation.
type DeletionResult struct {
	Deleted     int64
	Failed      int64
	Concurrency int
}

// ClampConcurrency resolves a raw concurrency parameter to
// [1, MaxDeleteConcurrency], falling back to the default when absent or
// non-numeric.
func ClampConcurrency(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultDeleteConcurrency
	}
	if n < 1 {
		return 1
	}
	if n > MaxDeleteConcurrency {
		return MaxDeleteConcurrency
	}
	return n
}

// Delete removes a single object. Idempotent: deleting a nonexistent key is
// not an error.
func (s *Service) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return storage.NewError(storage.KindInvalidInput, "key is required")
	}
	if err := s.requireStore(); err != nil {
		return err
	}
	return s.store.DeleteObject(ctx, key)
}

// DeletePrefix handles a directory key (trailing separator). Without
// recursive it only guards: a bounded existence check refuses with a
// "not-empty" conflict if anything lives under the prefix, and deletes
// nothing either way. With recursive it drives cursor-paginated discovery
// and bounded-concurrency batch deletion until the prefix is empty.
//
// The prefix is always taken literally; an empty prefix is rejected before
// any backend call so a malformed request can never wipe the bucket root.
func (s *Service) DeletePrefix(ctx context.Context, prefix string, recursive bool, concurrency int) (*DeletionResult, error) {
	if strings.Trim(prefix, storage.Delimiter) == "" {
		return nil, storage.NewError(storage.KindInvalidInput, "key is required")
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	if !recursive {
		page, err := s.store.List(ctx, storage.ListOptions{Prefix: prefix, Limit: 2})
		if err != nil {
			return nil, err
		}
		if len(page.Objects) > 0 {
			return nil, storage.NewError(storage.KindConflict, "not-empty")
		}
		return &DeletionResult{}, nil
	}

	if concurrency < 1 || concurrency > MaxDeleteConcurrency {
		concurrency = DefaultDeleteConcurrency
	}

	var deleted, failed int64
	cursor := ""
	for {
		page, err := s.store.List(ctx, storage.ListOptions{
			Prefix: prefix,
			Cursor: cursor,
			Limit:  storage.MaxListLimit,
		})
		if err != nil {
			return nil, err
		}

		keys := make([]string, 0, len(page.Objects))
		for _, obj := range page.Objects {
			keys = append(keys, obj.Key)
		}

		// Batches of up to concurrency deletes run together; every outcome
		// in a batch is awaited before the next batch starts, capping
		// in-flight requests without serializing. A failed delete counts
		// toward Failed and never aborts the run: each key's delete is
		// independently idempotent, so partial progress is safe.
		for start := 0; start < len(keys); start += concurrency {
			end := start + concurrency
			if end > len(keys) {
				end = len(keys)
			}
			var g errgroup.Group
			for _, key := range keys[start:end] {
				key := key
				g.Go(func() error {
					if err := s.store.DeleteObject(ctx, key); err != nil {
						atomic.AddInt64(&failed, 1)
						return nil
					}
					atomic.AddInt64(&deleted, 1)
					return nil
				})
			}
			_ = g.Wait()
		}

		if !page.Truncated || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return &DeletionResult{
		Deleted:     deleted,
		Failed:      failed,
		Concurrency: concurrency,
	}, nil
}
