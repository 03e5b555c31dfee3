package api

// RegisterMediaRequest records a key reference in the media library after a
// successful storage operation. The storage gateway itself never consults
// the library; callers write back references once their upload completes.
type RegisterMediaRequest struct {
	Key         string `json:"key"`
	DeckKey     string `json:"deck_key"`
	FileName    string `json:"file_name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
	Remark      string `json:"remark,omitempty"`
}

// MediaAsset is the API projection of a library media record.
type MediaAsset struct {
	FileID      string `json:"file_id"`
	DeckKey     string `json:"deck_key"`
	Key         string `json:"key"`
	FileName    string `json:"file_name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
	URL         string `json:"url,omitempty"`
	Remark      string `json:"remark,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}
