package domain

import (
	"time"
)

// ContentType labels the ingestion source shape. The set is open: crawlers may
// introduce new types without a schema change.
type ContentType string

const (
	TypeArticle    ContentType = "article"
	TypePodcast    ContentType = "podcast"
	TypeKeyTerm    ContentType = "keyterm"
	TypeFinancial  ContentType = "financial"
	TypeXPost      ContentType = "xpost"
	TypeReddit     ContentType = "reddit"
	TypeEvent      ContentType = "event"
	TypePolymarket ContentType = "polymarket"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusPublished Status = "published"
)

// ContentItem is the working entity of the ingestion pipeline. It is built by
// an upstream crawler and never mutated in place by the pipeline except to
// attach the derived fields (Fingerprint, QualityScore, AIMetadata) before
// persistence.
type ContentItem struct {
	ID           int64          `json:"id,omitempty"`
	Type         ContentType    `json:"type"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	Summary      string         `json:"summary,omitempty"`
	SourceURL    string         `json:"sourceUrl"`
	SourceID     string         `json:"sourceId,omitempty"`
	PublishDate  string         `json:"publishDate,omitempty"`
	Status       Status         `json:"status,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
	Fingerprint  string         `json:"fingerprint,omitempty"`
	QualityScore int            `json:"qualityScore,omitempty"`
	AIMetadata   *AIMetadata    `json:"aiMetadata,omitempty"`
	CreatedAt    time.Time      `json:"createdAt,omitempty"`
	UpdatedAt    time.Time      `json:"updatedAt,omitempty"`
}

// AIMetadata carries best-effort enrichment output. Any field may be empty
// when the corresponding external call failed.
type AIMetadata struct {
	Summary    string   `json:"summary,omitempty"`
	Entities   []string `json:"entities,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
}

// IndexEntry mirrors one persisted content row in the deduplication index.
// Every content row has exactly one entry; the index is the dedup source of
// truth.
type IndexEntry struct {
	ContentID    int64     `json:"contentId"`
	Fingerprint  string    `json:"fingerprint"`
	QualityScore int       `json:"qualityScore"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// publishDateLayouts are the accepted shapes for crawler-supplied dates,
// tried in order.
var publishDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePublishDate parses a crawler-supplied date string.
func ParsePublishDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range publishDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
