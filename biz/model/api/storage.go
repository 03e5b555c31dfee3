// Package api provides the request and response models for the HTTP
// surface. Bodies are bound into these structs and validated before any
// backend call is made.
package api

// SignUploadRequest asks for an upload target for a single key.
type SignUploadRequest struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType,omitempty"`
}

// SignUploadResponse carries the issued upload URL.
type SignUploadResponse struct {
	URL string `json:"url"`
}

// SignUploadBatchRequest asks for upload targets for several keys at once,
// collapsing what would be N round trips into one.
type SignUploadBatchRequest struct {
	Items []SignUploadRequest `json:"items"`
}

// SignedUpload pairs an input path with its issued URL.
type SignedUpload struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// SignUploadBatchResponse carries one URL per valid input item, in order.
type SignUploadBatchResponse struct {
	URLs []SignedUpload `json:"urls"`
}

// UploadResponse acknowledges a direct upload.
type UploadResponse struct {
	OK  bool   `json:"ok"`
	Key string `json:"key"`
}

// MultipartInitRequest starts a multipart upload session.
type MultipartInitRequest struct {
	Key         string `json:"key"`
	ContentType string `json:"contentType,omitempty"`
}

// MultipartInitResponse carries the backend-issued session handle.
type MultipartInitResponse struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
}

// MultipartPartResponse acknowledges one uploaded part.
type MultipartPartResponse struct {
	ETag       string `json:"etag"`
	PartNumber int32  `json:"partNumber"`
}

// MultipartPart identifies one uploaded part at completion time.
type MultipartPart struct {
	PartNumber int32  `json:"partNumber"`
	ETag       string `json:"etag"`
}

// MultipartCompleteRequest assembles the final object. Parts must be
// submitted sorted ascending by partNumber; the coordinator does not
// re-sort.
type MultipartCompleteRequest struct {
	Key      string          `json:"key"`
	UploadID string          `json:"uploadId"`
	Parts    []MultipartPart `json:"parts"`
}

// MultipartAbortRequest discards a session and its uploaded parts.
type MultipartAbortRequest struct {
	Key      string `json:"key"`
	UploadID string `json:"uploadId"`
}

// OKResponse is the minimal success acknowledgement.
type OKResponse struct {
	OK  bool   `json:"ok"`
	Key string `json:"key,omitempty"`
}

// ListEntry is one row of a tree-mode listing: an immediate child directory
// or file under the requested prefix.
type ListEntry struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Type     string `json:"type"` // "directory" or "file"
	Size     int64  `json:"size,omitempty"`
	Modified string `json:"modified,omitempty"`
	URL      string `json:"url,omitempty"`
}

// TreeListing is the tree-mode response. Cursor and Truncated are only set
// by the paginated variant.
type TreeListing struct {
	Entries   []ListEntry `json:"entries"`
	Cursor    string      `json:"cursor,omitempty"`
	Truncated bool        `json:"truncated,omitempty"`
}

// FlatObject is the minimal projection returned by flat-mode listings.
type FlatObject struct {
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	Modified string `json:"modified,omitempty"`
}

// FlatListing is the flat-mode response, always cursor-paginated.
type FlatListing struct {
	Objects   []FlatObject `json:"objects"`
	Cursor    string       `json:"cursor,omitempty"`
	Truncated bool         `json:"truncated"`
}

// DeleteResponse acknowledges a recursive prefix deletion.
type DeleteResponse struct {
	OK          bool  `json:"ok"`
	Deleted     int64 `json:"deleted"`
	Failed      int64 `json:"failed,omitempty"`
	Concurrency int   `json:"concurrency"`
}
