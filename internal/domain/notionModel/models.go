package notionModel

import "time"

type SourceType string

const (
	SourcePage         SourceType = "page"
	SourceDatabasePage SourceType = "database_page"
	SourceUpload       SourceType = "upload"
)

// Page is the flattened form of one Notion page (or one uploaded document):
// the rendered plain text of its blocks plus the metadata needed for citations.
type Page struct {
	ID         string     `json:"page_id"`
	RootPageID string     `json:"root_page_id"`
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Source     SourceType `json:"source_type"`
	Content    string     `json:"content"`
	FetchedAt  time.Time  `json:"fetched_at"`
}

// Chunk is one fixed-size window of a page's content. Boundaries are
// deterministic, so re-syncing unchanged content reproduces the same ids
// and the upsert overwrites in place.
type Chunk struct {
	Page      Page   `json:"-"`
	ChunkID   string `json:"chunk_id"`
	Ordinal   int    `json:"ordinal"`
	Text      string `json:"content"`
	SpanStart int    `json:"span_start"`
	SpanEnd   int    `json:"span_end"`
}

// QueryMatch is one retrieval hit, ordered by descending similarity.
type QueryMatch struct {
	ChunkID string  `json:"chunk_id"`
	PageID  string  `json:"page_id"`
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Text    string  `json:"content"`
	Score   float32 `json:"score"`
}

// Citation is the per-source attribution attached to a generated answer.
type Citation struct {
	Label  int     `json:"label"`
	Title  string  `json:"title"`
	URL    string  `json:"url"`
	PageID string  `json:"page_id"`
	Score  float32 `json:"score"`
}
