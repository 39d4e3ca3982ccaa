// Package dedup owns fingerprint generation and the consistency of the
// content index. Duplicate detection is advisory: lookups report the
// colliding id and leave the reject/proceed decision to the caller.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asapdigest/content-pipeline/internal/domain"
	"github.com/asapdigest/content-pipeline/internal/storage"
)

type Deduplicator struct {
	content storage.ContentRepository
	index   storage.IndexRepository
}

func New(content storage.ContentRepository, index storage.IndexRepository) *Deduplicator {
	return &Deduplicator{content: content, index: index}
}

// IsDuplicate looks up the fingerprint in the index and returns the colliding
// content id, or 0 when there is none. excludeID skips a given row so an item
// being updated never collides with itself.
func (d *Deduplicator) IsDuplicate(ctx context.Context, fingerprint string, excludeID int64) (int64, error) {
	entry, err := d.index.FindByFingerprint(ctx, fingerprint)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("fingerprint lookup: %w", err)
	}
	if excludeID != 0 && entry.ContentID == excludeID {
		return 0, nil
	}
	return entry.ContentID, nil
}

// AddToIndex inserts the index entry for a freshly persisted content row.
// A storage.ErrFingerprintConflict means another writer indexed the same
// fingerprint between the duplicate check and this insert; the caller must
// treat any error here as fatal to the enclosing save and roll back the
// content row to keep content and index in lockstep.
func (d *Deduplicator) AddToIndex(ctx context.Context, contentID int64, fingerprint string, qualityScore int) error {
	now := time.Now()
	err := d.index.Insert(ctx, domain.IndexEntry{
		ContentID:    contentID,
		Fingerprint:  fingerprint,
		QualityScore: qualityScore,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("index insert for content %d: %w", contentID, err)
	}
	return nil
}

// RemoveFromIndex deletes the entry for a content id. Removing a missing id
// is not an error.
func (d *Deduplicator) RemoveFromIndex(ctx context.Context, contentID int64) (bool, error) {
	removed, err := d.index.Delete(ctx, contentID)
	if err != nil {
		return false, fmt.Errorf("index delete for content %d: %w", contentID, err)
	}
	return removed, nil
}

// UpdateIndex replaces the fingerprint/score of an existing entry on content
// update.
func (d *Deduplicator) UpdateIndex(ctx context.Context, contentID int64, fingerprint string, qualityScore int) error {
	err := d.index.Update(ctx, domain.IndexEntry{
		ContentID:    contentID,
		Fingerprint:  fingerprint,
		QualityScore: qualityScore,
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("index update for content %d: %w", contentID, err)
	}
	return nil
}

// DuplicateDetails describes one side of a detected collision, surfaced to
// callers (e.g. a moderation UI) alongside the duplicate error.
type DuplicateDetails struct {
	ContentID    int64              `json:"contentId"`
	Title        string             `json:"title"`
	Type         domain.ContentType `json:"type"`
	SourceURL    string             `json:"sourceUrl"`
	Status       domain.Status      `json:"status"`
	Fingerprint  string             `json:"fingerprint"`
	QualityScore int                `json:"qualityScore"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// GetDuplicateDetails loads the colliding row and its index entry.
func (d *Deduplicator) GetDuplicateDetails(ctx context.Context, contentID int64) (*DuplicateDetails, error) {
	item, err := d.content.GetByID(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("load content %d: %w", contentID, err)
	}

	details := &DuplicateDetails{
		ContentID: item.ID,
		Title:     item.Title,
		Type:      item.Type,
		SourceURL: item.SourceURL,
		Status:    item.Status,
		CreatedAt: item.CreatedAt,
	}

	entry, err := d.index.FindByContentID(ctx, contentID)
	if err == nil {
		details.Fingerprint = entry.Fingerprint
		details.QualityScore = entry.QualityScore
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load index entry %d: %w", contentID, err)
	}

	return details, nil
}

// GetSimilarContent returns persisted items sharing the exact fingerprint.
// With the unique index constraint in place this is at most one row, but the
// contract stays a slice so fuzzy results can be merged in by callers.
func (d *Deduplicator) GetSimilarContent(ctx context.Context, fingerprint string, limit int) ([]domain.ContentItem, error) {
	if limit <= 0 {
		return nil, nil
	}
	entry, err := d.index.FindByFingerprint(ctx, fingerprint)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fingerprint lookup: %w", err)
	}

	item, err := d.content.GetByID(ctx, entry.ContentID)
	if errors.Is(err, storage.ErrNotFound) {
		// Orphaned index entry; reindexing repairs these.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load content %d: %w", entry.ContentID, err)
	}
	return []domain.ContentItem{*item}, nil
}

// FindPotentialDuplicates scans recent items for field-level similarity to
// the candidate. Fuzzy, not fingerprint-based: used to top up results when
// exact matches are scarce.
func (d *Deduplicator) FindPotentialDuplicates(ctx context.Context, item domain.ContentItem, limit int) ([]domain.ContentItem, error) {
	if limit <= 0 {
		return nil, nil
	}

	candidates, err := d.content.ListRecent(ctx, fuzzyScanLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent content: %w", err)
	}

	var matches []domain.ContentItem
	for _, c := range candidates {
		if c.ID == item.ID && item.ID != 0 {
			continue
		}
		if Similarity(item, c) >= fuzzyThreshold {
			matches = append(matches, c)
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches, nil
}
