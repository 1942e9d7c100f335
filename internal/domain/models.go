package domain

import "time"

// Media kinds reported in the "type" field of a successful extraction.
const (
	KindVideo    = "video"
	KindImage    = "image"
	KindCarousel = "carousel"
)

// MediaSource is one retrievable rendition of a media asset.
type MediaSource struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

// MediaItem is one logical piece of content: a photo, a video, or one
// slide of a carousel. Items with zero sources are never emitted.
type MediaItem struct {
	IsVideo   bool          `json:"is_video"`
	Thumbnail *string       `json:"thumbnail"`
	Sources   []MediaSource `json:"srcs"`
}

// ExtractResult is the envelope returned by the /api endpoint.
// Kind is "carousel" exactly when len(Items) > 1.
type ExtractResult struct {
	OK    bool        `json:"ok"`
	Kind  string      `json:"type,omitempty"`
	Items []MediaItem `json:"items,omitempty"`
	Error string      `json:"error,omitempty"`
}

// ExtractionRecord is the audit row persisted per extraction attempt
// when a Postgres store is configured.
type ExtractionRecord struct {
	URL         string    `json:"url"`
	Status      string    `json:"status"` // "ok" or "failed"
	Kind        string    `json:"kind,omitempty"`
	SourceCount int       `json:"source_count"`
	FailReason  string    `json:"fail_reason,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}
