// Package storage defines the persistence contracts the pipeline runs
// against. Backends live in subpackages (pg, inmem); the pipeline itself is
// storage-agnostic.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/asapdigest/content-pipeline/internal/domain"
)

var (
	// ErrNotFound is returned on point lookups that match nothing.
	ErrNotFound = errors.New("storage: not found")

	// ErrFingerprintConflict is returned when an index insert or update
	// violates the unique fingerprint constraint. The constraint is the
	// authoritative duplicate guard; the application-level check is only
	// an early exit.
	ErrFingerprintConflict = errors.New("storage: fingerprint already indexed")
)

// ContentRepository stores content rows.
type ContentRepository interface {
	Insert(ctx context.Context, item domain.ContentItem) (int64, error)
	Update(ctx context.Context, item domain.ContentItem) error
	// Delete reports whether a row was actually removed; deleting a
	// missing id is not an error.
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.ContentItem, error)

	// ListAfter returns up to limit rows with id > afterID, ordered by id.
	// Used for paged full-table scans (reindexing).
	ListAfter(ctx context.Context, afterID int64, limit int) ([]domain.ContentItem, error)
	// ListRecent returns the newest rows first.
	ListRecent(ctx context.Context, limit int) ([]domain.ContentItem, error)
	// ListCreatedSince returns rows created at or after the cutoff.
	ListCreatedSince(ctx context.Context, cutoff time.Time, limit int) ([]domain.ContentItem, error)

	CountByStatus(ctx context.Context) (map[domain.Status]int64, error)
	CountByType(ctx context.Context) (map[domain.ContentType]int64, error)
	// ScoreHistogram buckets quality scores by bucketSize (e.g. 20 ->
	// "0-19", "20-39", ...).
	ScoreHistogram(ctx context.Context, bucketSize int) (map[string]int64, error)
}

// IndexRepository stores the fingerprint index, the deduplication source of
// truth. Every content row has exactly one entry.
type IndexRepository interface {
	// Insert adds an entry; returns ErrFingerprintConflict when the
	// fingerprint is already indexed.
	Insert(ctx context.Context, entry domain.IndexEntry) error
	// Update replaces the fingerprint/score of an existing entry.
	Update(ctx context.Context, entry domain.IndexEntry) error
	// Delete reports whether an entry was removed; idempotent.
	Delete(ctx context.Context, contentID int64) (bool, error)

	FindByFingerprint(ctx context.Context, fingerprint string) (*domain.IndexEntry, error)
	FindByContentID(ctx context.Context, contentID int64) (*domain.IndexEntry, error)

	// DeleteOrphans removes entries whose content row no longer exists and
	// returns how many were dropped. Recovery tool for index drift.
	DeleteOrphans(ctx context.Context) (int64, error)
}
