package local

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/kotoba-app/kotoba/pkg/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func putObject(t *testing.T, s *Storage, key, content string) {
	t.Helper()
	if err := s.PutObject(context.Background(), key, strings.NewReader(content), "text/plain", int64(len(content))); err != nil {
		t.Fatalf("PutObject %s: %v", key, err)
	}
}

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	putObject(t, s, "decks/n5/audio.mp3", "payload")

	r, err := s.GetObject(ctx, "decks/n5/audio.mp3")
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	data, _ := io.ReadAll(r)
	r.Close()
	if string(data) != "payload" {
		t.Fatalf("unexpected content %q", data)
	}

	exists, err := s.ObjectExists(ctx, "decks/n5/audio.mp3")
	if err != nil || !exists {
		t.Fatalf("expected object to exist, got %v %v", exists, err)
	}

	if err := s.DeleteObject(ctx, "decks/n5/audio.mp3"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	// Idempotent: a second delete of the same key is not an error.
	if err := s.DeleteObject(ctx, "decks/n5/audio.mp3"); err != nil {
		t.Fatalf("repeated DeleteObject: %v", err)
	}

	if _, err := s.GetObject(ctx, "decks/n5/audio.mp3"); !storage.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListFlatPagination(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	for i := 0; i < 25; i++ {
		putObject(t, s, fmt.Sprintf("bulk/obj-%03d.bin", i), "x")
	}

	var pages [][]storage.ObjectInfo
	cursor := ""
	for {
		page, err := s.List(ctx, storage.ListOptions{Prefix: "bulk/", Cursor: cursor, Limit: 10})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		pages = append(pages, page.Objects)
		if !page.Truncated {
			break
		}
		cursor = page.NextCursor
	}

	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, want := range []int{10, 10, 5} {
		if len(pages[i]) != want {
			t.Fatalf("page %d: expected %d objects, got %d", i, want, len(pages[i]))
		}
	}
}

func TestListWithDelimiter(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	putObject(t, s, "decks/n5/clip.mp3", "a")
	putObject(t, s, "decks/n5/clip.vtt", "b")
	putObject(t, s, "decks/n4/clip.mp3", "c")
	putObject(t, s, "decks/readme.txt", "d")

	page, err := s.List(ctx, storage.ListOptions{Prefix: "decks/", Delimiter: "/"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(page.CommonPrefixes) != 2 {
		t.Fatalf("expected 2 child prefixes, got %v", page.CommonPrefixes)
	}
	if page.CommonPrefixes[0] != "decks/n4/" || page.CommonPrefixes[1] != "decks/n5/" {
		t.Fatalf("unexpected prefixes %v", page.CommonPrefixes)
	}
	if len(page.Objects) != 1 || page.Objects[0].Key != "decks/readme.txt" {
		t.Fatalf("unexpected objects %v", page.Objects)
	}
}

func TestListRespectsPrefixBoundary(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	putObject(t, s, "decks/n5/clip.mp3", "a")
	putObject(t, s, "other/file.txt", "b")

	page, err := s.List(ctx, storage.ListOptions{Prefix: "decks/"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, obj := range page.Objects {
		if !strings.HasPrefix(obj.Key, "decks/") {
			t.Fatalf("key %s escapes prefix", obj.Key)
		}
	}
	if len(page.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(page.Objects))
	}
}

func TestMultipartLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	uploadID, err := s.CreateMultipartUpload(ctx, "movies/ep01.mp4", "video/mp4")
	if err != nil {
		t.Fatalf("CreateMultipartUpload: %v", err)
	}

	var parts []storage.CompletedPart
	for i, chunk := range []string{"first-", "second-", "third"} {
		etag, err := s.UploadPart(ctx, "movies/ep01.mp4", uploadID, int32(i+1), strings.NewReader(chunk), int64(len(chunk)))
		if err != nil {
			t.Fatalf("UploadPart %d: %v", i+1, err)
		}
		if etag == "" {
			t.Fatalf("expected non-empty etag for part %d", i+1)
		}
		parts = append(parts, storage.CompletedPart{PartNumber: int32(i + 1), ETag: etag})
	}

	if err := s.CompleteMultipartUpload(ctx, "movies/ep01.mp4", uploadID, parts); err != nil {
		t.Fatalf("CompleteMultipartUpload: %v", err)
	}

	r, err := s.GetObject(ctx, "movies/ep01.mp4")
	if err != nil {
		t.Fatalf("GetObject after complete: %v", err)
	}
	data, _ := io.ReadAll(r)
	r.Close()
	if !bytes.Equal(data, []byte("first-second-third")) {
		t.Fatalf("assembled content mismatch: %q", data)
	}

	// The session is gone after completion.
	if err := s.AbortMultipartUpload(ctx, "movies/ep01.mp4", uploadID); !storage.IsNotFound(err) {
		t.Fatalf("expected not found after complete, got %v", err)
	}
}

func TestMultipartUnknownSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.UploadPart(ctx, "movies/ep01.mp4", "no-such-session", 1, strings.NewReader("x"), 1)
	if !storage.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := s.AbortMultipartUpload(ctx, "movies/ep01.mp4", "no-such-session"); !storage.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMultipartAbortDiscardsParts(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	uploadID, err := s.CreateMultipartUpload(ctx, "movies/ep02.mp4", "video/mp4")
	if err != nil {
		t.Fatalf("CreateMultipartUpload: %v", err)
	}
	if _, err := s.UploadPart(ctx, "movies/ep02.mp4", uploadID, 1, strings.NewReader("chunk"), 5); err != nil {
		t.Fatalf("UploadPart: %v", err)
	}

	if err := s.AbortMultipartUpload(ctx, "movies/ep02.mp4", uploadID); err != nil {
		t.Fatalf("AbortMultipartUpload: %v", err)
	}

	// Uncommitted parts never surface as objects.
	page, err := s.List(ctx, storage.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Objects) != 0 {
		t.Fatalf("expected empty listing, got %v", page.Objects)
	}
}
