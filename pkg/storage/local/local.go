// Package local implements the local filesystem storage backend.
package local

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/kotoba-app/kotoba/pkg/storage"
)

// stagingDirName holds in-progress multipart sessions. It is excluded from
// listings so uncommitted parts never appear as objects.
const stagingDirName = ".multipart"

// Storage implements the storage.Storage interface using local filesystem.
type Storage struct {
	basePath string
}

// New creates a new local storage backend rooted at basePath.
func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "data/media"
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &Storage{basePath: basePath}, nil
}

// PutObject writes an object to the local filesystem.
func (s *Storage) PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	fullPath := s.keyToPath(key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return storage.WrapError(storage.KindBackend, "create directory", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return storage.WrapError(storage.KindBackend, "create file", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		os.Remove(fullPath)
		return storage.WrapError(storage.KindBackend, "write file", err)
	}

	return nil
}

// GetObject reads an object from the local filesystem.
func (s *Storage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.NewError(storage.KindNotFound, "object not found: "+key)
		}
		return nil, storage.WrapError(storage.KindBackend, "open file", err)
	}

	return f, nil
}

// DeleteObject removes an object. Deleting a nonexistent key is not an error.
func (s *Storage) DeleteObject(ctx context.Context, key string) error {
	fullPath := s.keyToPath(key)

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return storage.WrapError(storage.KindBackend, "delete file", err)
	}

	// Try to remove parent directory if empty
	os.Remove(filepath.Dir(fullPath))

	return nil
}

// ObjectExists checks if an object exists in the local filesystem.
func (s *Storage) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, storage.WrapError(storage.KindBackend, "stat file", err)
	}

	return true, nil
}

// List walks the tree under basePath and returns one page of keys matching
// opts, in ascending key order. The cursor is the last key consumed by the
// previous page.
func (s *Storage) List(ctx context.Context, opts storage.ListOptions) (*storage.ListPage, error) {
	objects, err := s.walkObjects()
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit < 1 || limit > storage.MaxListLimit {
		limit = storage.MaxListLimit
	}

	page := &storage.ListPage{}
	seenPrefixes := make(map[string]bool)
	var count int32
	var last string

	for _, obj := range objects {
		if opts.Prefix != "" && !strings.HasPrefix(obj.Key, opts.Prefix) {
			continue
		}
		if opts.Cursor != "" && obj.Key <= opts.Cursor {
			continue
		}

		var childPrefix string
		if opts.Delimiter != "" {
			rest := strings.TrimPrefix(obj.Key, opts.Prefix)
			if idx := strings.Index(rest, opts.Delimiter); idx >= 0 {
				childPrefix = opts.Prefix + rest[:idx+len(opts.Delimiter)]
			}
		}

		if count >= limit {
			// Keys already rolled up into the last emitted child prefix
			// are consumed so the next page does not repeat that prefix.
			if childPrefix != "" && seenPrefixes[childPrefix] {
				last = obj.Key
				continue
			}
			page.Truncated = true
			break
		}

		if childPrefix != "" {
			if !seenPrefixes[childPrefix] {
				seenPrefixes[childPrefix] = true
				page.CommonPrefixes = append(page.CommonPrefixes, childPrefix)
				count++
			}
			last = obj.Key
			continue
		}

		page.Objects = append(page.Objects, obj)
		count++
		last = obj.Key
	}

	if page.Truncated {
		page.NextCursor = last
	}

	return page, nil
}

// CreateMultipartUpload starts a multipart session in the staging directory.
func (s *Storage) CreateMultipartUpload(ctx context.Context, key, contentType string) (string, error) {
	uploadID := uuid.NewString()
	dir := s.sessionDir(uploadID)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", storage.WrapError(storage.KindBackend, "create session directory", err)
	}

	meta := key + "\n" + contentType + "\n"
	if err := os.WriteFile(filepath.Join(dir, "meta"), []byte(meta), 0o644); err != nil {
		os.RemoveAll(dir)
		return "", storage.WrapError(storage.KindBackend, "write session metadata", err)
	}

	return uploadID, nil
}

// UploadPart stores one part in the session's staging directory and returns
// its MD5 integrity tag.
func (s *Storage) UploadPart(ctx context.Context, key, uploadID string, partNumber int32, data io.Reader, size int64) (string, error) {
	if err := s.checkSession(uploadID); err != nil {
		return "", err
	}

	f, err := os.Create(s.partPath(uploadID, partNumber))
	if err != nil {
		return "", storage.WrapError(storage.KindBackend, "create part file", err)
	}
	defer f.Close()

	sum := md5.New()
	if _, err := io.Copy(io.MultiWriter(f, sum), data); err != nil {
		return "", storage.WrapError(storage.KindBackend, "write part", err)
	}

	return hex.EncodeToString(sum.Sum(nil)), nil
}

// CompleteMultipartUpload concatenates the parts in the order given into the
// final object and discards the session.
func (s *Storage) CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []storage.CompletedPart) error {
	if err := s.checkSession(uploadID); err != nil {
		return err
	}
	if len(parts) == 0 {
		return storage.NewError(storage.KindInvalidInput, "parts must not be empty")
	}

	fullPath := s.keyToPath(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return storage.WrapError(storage.KindBackend, "create directory", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".assemble-*")
	if err != nil {
		return storage.WrapError(storage.KindBackend, "create assembly file", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	for _, part := range parts {
		src, err := os.Open(s.partPath(uploadID, part.PartNumber))
		if err != nil {
			if os.IsNotExist(err) {
				return storage.NewError(storage.KindInvalidInput, fmt.Sprintf("unknown part %d", part.PartNumber))
			}
			return storage.WrapError(storage.KindBackend, "open part", err)
		}
		_, err = io.Copy(tmp, src)
		src.Close()
		if err != nil {
			return storage.WrapError(storage.KindBackend, "assemble part", err)
		}
	}

	if err := tmp.Close(); err != nil {
		return storage.WrapError(storage.KindBackend, "close assembly file", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return storage.WrapError(storage.KindBackend, "finalize object", err)
	}

	os.RemoveAll(s.sessionDir(uploadID))
	return nil
}

// AbortMultipartUpload discards the session and any uploaded parts. A
// session that is already gone surfaces as not found rather than silently
// succeeding.
func (s *Storage) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	if err := s.checkSession(uploadID); err != nil {
		return err
	}
	if err := os.RemoveAll(s.sessionDir(uploadID)); err != nil {
		return storage.WrapError(storage.KindBackend, "discard session", err)
	}
	return nil
}

// GenerateURL returns the same-origin proxy path for accessing the object.
func (s *Storage) GenerateURL(ctx context.Context, key string, fileName string) (string, error) {
	q := url.Values{}
	q.Set("key", key)
	return "/api/v1/storage/raw?" + q.Encode(), nil
}

// Type returns "local" as the storage type identifier.
func (s *Storage) Type() string {
	return "local"
}

// BasePath returns the base path of the storage.
func (s *Storage) BasePath() string {
	return s.basePath
}

// keyToPath converts an object key to a full filesystem path.
func (s *Storage) keyToPath(key string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(key))
}

func (s *Storage) sessionDir(uploadID string) string {
	return filepath.Join(s.basePath, stagingDirName, uploadID)
}

func (s *Storage) partPath(uploadID string, partNumber int32) string {
	return filepath.Join(s.sessionDir(uploadID), fmt.Sprintf("part-%05d", partNumber))
}

func (s *Storage) checkSession(uploadID string) error {
	if uploadID == "" {
		return storage.NewError(storage.KindInvalidInput, "uploadId is required")
	}
	if _, err := os.Stat(filepath.Join(s.sessionDir(uploadID), "meta")); err != nil {
		if os.IsNotExist(err) {
			return storage.NewError(storage.KindNotFound, "upload session not found: "+uploadID)
		}
		return storage.WrapError(storage.KindBackend, "stat session", err)
	}
	return nil
}

// walkObjects collects every stored object sorted by key. The staging
// directory is skipped.
func (s *Storage) walkObjects() ([]storage.ObjectInfo, error) {
	var objects []storage.ObjectInfo

	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == stagingDirName {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, storage.ObjectInfo{
			Key:          filepath.ToSlash(rel),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, storage.WrapError(storage.KindBackend, "walk storage directory", err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}
