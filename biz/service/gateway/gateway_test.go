package gateway_test

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/kotoba-app/kotoba/biz/model/api"
	"github.com/kotoba-app/kotoba/biz/service/gateway"
	"github.com/kotoba-app/kotoba/pkg/storage"
	"github.com/kotoba-app/kotoba/pkg/storage/local"
)

func newTestService(t *testing.T) (*gateway.Service, storage.Storage) {
	t.Helper()
	store, err := local.New(t.TempDir())
	if err != nil {
		t.Fatalf("local.New: %v", err)
	}
	return gateway.NewService(store, "", nil), store
}

func seedObject(t *testing.T, store storage.Storage, key, content string) {
	t.Helper()
	if err := store.PutObject(context.Background(), key, strings.NewReader(content), "text/plain", int64(len(content))); err != nil {
		t.Fatalf("PutObject %s: %v", key, err)
	}
}

func TestIssueUploadTarget(t *testing.T) {
	svc, _ := newTestService(t)

	target, err := svc.IssueUploadTarget("decks/n5/audio.mp3", "audio/mpeg")
	if err != nil {
		t.Fatalf("IssueUploadTarget: %v", err)
	}

	u, err := url.Parse(target)
	if err != nil {
		t.Fatalf("issued target is not a URL: %v", err)
	}
	if u.Path != "/api/v1/storage/upload" {
		t.Fatalf("unexpected path %s", u.Path)
	}
	q := u.Query()
	if q.Get("key") != "decks/n5/audio.mp3" {
		t.Fatalf("key did not round-trip: %q", q.Get("key"))
	}
	if q.Get("ct") != "audio/mpeg" {
		t.Fatalf("content type did not round-trip: %q", q.Get("ct"))
	}
}

func TestIssueUploadTargetDefaultsContentType(t *testing.T) {
	svc, _ := newTestService(t)

	target, err := svc.IssueUploadTarget("decks/n5/audio.mp3", "")
	if err != nil {
		t.Fatalf("IssueUploadTarget: %v", err)
	}
	u, _ := url.Parse(target)
	if ct := u.Query().Get("ct"); ct != "application/octet-stream" {
		t.Fatalf("expected octet-stream fallback, got %q", ct)
	}
}

func TestIssueUploadTargetEmptyPath(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.IssueUploadTarget("", "audio/mpeg"); !storage.IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestIssueUploadTargetsFiltersInvalid(t *testing.T) {
	svc, _ := newTestService(t)

	items := []api.SignUploadRequest{
		{Path: "a.mp3", ContentType: "audio/mpeg"},
		{Path: "", ContentType: "audio/mpeg"},
		{Path: "b.vtt", ContentType: "text/vtt"},
	}
	urls, err := svc.IssueUploadTargets(items)
	if err != nil {
		t.Fatalf("IssueUploadTargets: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 issued targets, got %d", len(urls))
	}
	// Issued targets keep the caller's ordering for the valid entries.
	if urls[0].Path != "a.mp3" || urls[1].Path != "b.vtt" {
		t.Fatalf("order not preserved: %v", urls)
	}

	if _, err := svc.IssueUploadTargets(nil); !storage.IsInvalidInput(err) {
		t.Fatalf("empty batch should be rejected, got %v", err)
	}
}

func TestUploadRejectsDirectoryMarker(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Upload(context.Background(), "decks/n5/", "text/plain", strings.NewReader("x"), 1)
	if !storage.IsInvalidInput(err) {
		t.Fatalf("expected invalid input for trailing separator, got %v", err)
	}
}

func TestUploadAndFetch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Upload(ctx, "decks/n5/audio.mp3", "audio/mpeg", strings.NewReader("sound"), 5); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	r, err := svc.Fetch(ctx, "decks/n5/audio.mp3")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, _ := io.ReadAll(r)
	r.Close()
	if string(data) != "sound" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct {
		raw  string
		want int32
	}{
		{"10", 10},
		{"1000", 1000},
		{"5000", storage.MaxListLimit},
		{"0", storage.MaxListLimit},
		{"-3", storage.MaxListLimit},
		{"abc", storage.MaxListLimit},
		{"", storage.MaxListLimit},
	}
	for _, tc := range cases {
		if got := gateway.ClampLimit(tc.raw); got != tc.want {
			t.Errorf("ClampLimit(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizePrefix(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"/", ""},
		{"decks", "decks/"},
		{"decks/", "decks/"},
		{"/decks/n5//", "decks/n5/"},
	}
	for _, tc := range cases {
		if got := gateway.NormalizePrefix(tc.in); got != tc.want {
			t.Errorf("NormalizePrefix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClampConcurrency(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"", gateway.DefaultDeleteConcurrency},
		{"abc", gateway.DefaultDeleteConcurrency},
		{"30", 30},
		{"0", 1},
		{"500", gateway.MaxDeleteConcurrency},
	}
	for _, tc := range cases {
		if got := gateway.ClampConcurrency(tc.raw); got != tc.want {
			t.Errorf("ClampConcurrency(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestListTree(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	seedObject(t, store, "decks/n5/clip.mp3", "a")
	seedObject(t, store, "decks/n4/clip.mp3", "b")
	seedObject(t, store, "decks/readme.txt", "c")

	listing, err := svc.ListTree(ctx, "decks", false, "", 0)
	if err != nil {
		t.Fatalf("ListTree: %v", err)
	}
	if len(listing.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %v", listing.Entries)
	}
	// Directories come before files.
	if listing.Entries[0].Type != "directory" || listing.Entries[1].Type != "directory" {
		t.Fatalf("expected folders first: %v", listing.Entries)
	}
	if listing.Entries[0].Name != "n4" || listing.Entries[1].Name != "n5" {
		t.Fatalf("unexpected folder names: %v", listing.Entries)
	}
	file := listing.Entries[2]
	if file.Type != "file" || file.Name != "readme.txt" || file.Key != "decks/readme.txt" {
		t.Fatalf("unexpected file entry: %+v", file)
	}
}

func TestListTreeNilStore(t *testing.T) {
	svc := gateway.NewService(nil, "", nil)

	listing, err := svc.ListTree(context.Background(), "decks", false, "", 0)
	if err != nil {
		t.Fatalf("ListTree on nil store: %v", err)
	}
	if len(listing.Entries) != 0 {
		t.Fatalf("expected empty listing, got %v", listing.Entries)
	}

	if _, err := svc.ListFlat(context.Background(), "decks/", "", 0); !storage.IsInvalidInput(err) {
		t.Fatalf("flat listing should surface missing backend, got %v", err)
	}
}

func TestListFlatPagination(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		seedObject(t, store, fmt.Sprintf("bulk/obj-%03d.bin", i), "x")
	}

	seen := make(map[string]bool)
	cursor := ""
	pages := 0
	for {
		listing, err := svc.ListFlat(ctx, "bulk/", cursor, 10)
		if err != nil {
			t.Fatalf("ListFlat: %v", err)
		}
		pages++
		for _, obj := range listing.Objects {
			if seen[obj.Key] {
				t.Fatalf("key %s returned twice", obj.Key)
			}
			seen[obj.Key] = true
		}
		if !listing.Truncated {
			break
		}
		cursor = listing.Cursor
	}

	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}
	if len(seen) != 25 {
		t.Fatalf("expected 25 distinct keys, got %d", len(seen))
	}
}

func TestMultipartThroughService(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	uploadID, err := svc.InitMultipart(ctx, "movies/ep01.mp4", "video/mp4")
	if err != nil {
		t.Fatalf("InitMultipart: %v", err)
	}

	var parts []api.MultipartPart
	for i, chunk := range []string{"aaa", "bbb", "ccc"} {
		etag, err := svc.UploadMultipartPart(ctx, "movies/ep01.mp4", uploadID, int32(i+1), strings.NewReader(chunk), 3)
		if err != nil {
			t.Fatalf("UploadMultipartPart %d: %v", i+1, err)
		}
		parts = append(parts, api.MultipartPart{PartNumber: int32(i + 1), ETag: etag})
	}

	if err := svc.CompleteMultipart(ctx, "movies/ep01.mp4", uploadID, parts); err != nil {
		t.Fatalf("CompleteMultipart: %v", err)
	}

	r, err := svc.Fetch(ctx, "movies/ep01.mp4")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, _ := io.ReadAll(r)
	r.Close()
	if string(data) != "aaabbbccc" {
		t.Fatalf("assembled content mismatch: %q", data)
	}
}

func TestMultipartCompleteValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	uploadID, err := svc.InitMultipart(ctx, "movies/ep02.mp4", "video/mp4")
	if err != nil {
		t.Fatalf("InitMultipart: %v", err)
	}

	if err := svc.CompleteMultipart(ctx, "movies/ep02.mp4", uploadID, nil); !storage.IsInvalidInput(err) {
		t.Fatalf("empty part list should be rejected, got %v", err)
	}

	err = svc.CompleteMultipart(ctx, "movies/ep02.mp4", "unknown-session", []api.MultipartPart{{PartNumber: 1, ETag: "x"}})
	if !storage.IsNotFound(err) {
		t.Fatalf("unknown session should be not found, got %v", err)
	}

	if _, err := svc.UploadMultipartPart(ctx, "movies/ep02.mp4", uploadID, 0, strings.NewReader("x"), 1); !storage.IsInvalidInput(err) {
		t.Fatalf("part number 0 should be rejected, got %v", err)
	}
}

func TestDeletePrefixGuard(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	seedObject(t, store, "decks/n5/clip.mp3", "a")

	_, err := svc.DeletePrefix(ctx, "decks/n5/", false, 0)
	if !storage.IsConflict(err) {
		t.Fatalf("expected not-empty conflict, got %v", err)
	}

	// The guard must not have deleted anything.
	exists, err := store.ObjectExists(ctx, "decks/n5/clip.mp3")
	if err != nil || !exists {
		t.Fatalf("object should have survived the guard, got %v %v", exists, err)
	}

	// An empty directory passes the guard and nothing is deleted.
	res, err := svc.DeletePrefix(ctx, "decks/empty/", false, 0)
	if err != nil {
		t.Fatalf("empty prefix guard: %v", err)
	}
	if res.Deleted != 0 {
		t.Fatalf("guard deleted %d objects", res.Deleted)
	}
}

func TestDeletePrefixRootRejected(t *testing.T) {
	svc, _ := newTestService(t)

	for _, prefix := range []string{"", "/", "//"} {
		if _, err := svc.DeletePrefix(context.Background(), prefix, true, 0); !storage.IsInvalidInput(err) {
			t.Fatalf("prefix %q should be rejected, got %v", prefix, err)
		}
	}
}

func TestDeletePrefixRecursive(t *testing.T) {
	if testing.Short() {
		t.Skip("bulk deletion test in short mode")
	}
	svc, store := newTestService(t)
	ctx := context.Background()

	// More objects than one listing page so deletion spans page boundaries.
	const total = 2500
	for i := 0; i < total; i++ {
		seedObject(t, store, fmt.Sprintf("bulk/obj-%04d.bin", i), "x")
	}
	seedObject(t, store, "keep/other.bin", "y")

	res, err := svc.DeletePrefix(ctx, "bulk/", true, 30)
	if err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}
	if res.Deleted != total {
		t.Fatalf("expected %d deletions, got %d (failed %d)", total, res.Deleted, res.Failed)
	}
	if res.Concurrency != 30 {
		t.Fatalf("expected concurrency 30, got %d", res.Concurrency)
	}

	page, err := store.List(ctx, storage.ListOptions{Prefix: "bulk/"})
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	if len(page.Objects) != 0 {
		t.Fatalf("expected empty prefix, %d objects remain", len(page.Objects))
	}

	// Objects outside the prefix are untouched.
	exists, err := store.ObjectExists(ctx, "keep/other.bin")
	if err != nil || !exists {
		t.Fatalf("sibling object should survive, got %v %v", exists, err)
	}
}

func TestDeleteSingleIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	seedObject(t, store, "decks/n5/clip.mp3", "a")

	if err := svc.Delete(ctx, "decks/n5/clip.mp3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, "decks/n5/clip.mp3"); err != nil {
		t.Fatalf("repeated Delete: %v", err)
	}
	if err := svc.Delete(ctx, ""); !storage.IsInvalidInput(err) {
		t.Fatalf("empty key should be rejected, got %v", err)
	}
}
