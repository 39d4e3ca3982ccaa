// Package inmem provides map-backed repository implementations, used in
// tests and local development in place of Postgres.
package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/asapdigest/content-pipeline/internal/domain"
	"github.com/asapdigest/content-pipeline/internal/storage"
)

type ContentRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]domain.ContentItem

	// FailInsert/FailUpdate force infrastructure errors, for exercising
	// the compensation paths.
	FailInsert error
	FailUpdate error
}

func NewContentRepository() *ContentRepository {
	return &ContentRepository{rows: make(map[int64]domain.ContentItem)}
}

func (r *ContentRepository) Insert(_ context.Context, item domain.ContentItem) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailInsert != nil {
		return 0, r.FailInsert
	}
	r.nextID++
	item.ID = r.nextID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	item.UpdatedAt = item.CreatedAt
	r.rows[item.ID] = item
	return item.ID, nil
}

func (r *ContentRepository) Update(_ context.Context, item domain.ContentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailUpdate != nil {
		return r.FailUpdate
	}
	existing, ok := r.rows[item.ID]
	if !ok {
		return storage.ErrNotFound
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now()
	r.rows[item.ID] = item
	return nil
}

func (r *ContentRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (r *ContentRepository) GetByID(_ context.Context, id int64) (*domain.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.rows[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &item, nil
}

func (r *ContentRepository) ListAfter(_ context.Context, afterID int64, limit int) ([]domain.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.sortedByID()
	var page []domain.ContentItem
	for _, item := range items {
		if item.ID <= afterID {
			continue
		}
		page = append(page, item)
		if len(page) >= limit {
			break
		}
	}
	return page, nil
}

func (r *ContentRepository) ListRecent(_ context.Context, limit int) ([]domain.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.sortedByID()
	// Newest first: ids are monotonic.
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *ContentRepository) ListCreatedSince(_ context.Context, cutoff time.Time, limit int) ([]domain.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []domain.ContentItem
	for _, item := range r.sortedByID() {
		if item.CreatedAt.Before(cutoff) {
			continue
		}
		items = append(items, item)
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (r *ContentRepository) CountByStatus(_ context.Context) (map[domain.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domain.Status]int64)
	for _, item := range r.rows {
		counts[item.Status]++
	}
	return counts, nil
}

func (r *ContentRepository) CountByType(_ context.Context) (map[domain.ContentType]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domain.ContentType]int64)
	for _, item := range r.rows {
		counts[item.Type]++
	}
	return counts, nil
}

func (r *ContentRepository) ScoreHistogram(_ context.Context, bucketSize int) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if bucketSize <= 0 {
		bucketSize = 20
	}
	hist := make(map[string]int64)
	for _, item := range r.rows {
		hist[storage.HistogramBucket(item.QualityScore, bucketSize)]++
	}
	return hist, nil
}

func (r *ContentRepository) sortedByID() []domain.ContentItem {
	items := make([]domain.ContentItem, 0, len(r.rows))
	for _, item := range r.rows {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

type IndexRepository struct {
	mu      sync.RWMutex
	entries map[int64]domain.IndexEntry

	content *ContentRepository

	// FailInsert forces the next Insert to fail, for exercising the
	// rollback path.
	FailInsert error
	FailUpdate error
}

// NewIndexRepository builds an index over the given content repository;
// content is consulted for orphan detection.
func NewIndexRepository(content *ContentRepository) *IndexRepository {
	return &IndexRepository{
		entries: make(map[int64]domain.IndexEntry),
		content: content,
	}
}

func (r *IndexRepository) Insert(_ context.Context, entry domain.IndexEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailInsert != nil {
		return r.FailInsert
	}
	for _, e := range r.entries {
		if e.Fingerprint == entry.Fingerprint {
			return storage.ErrFingerprintConflict
		}
	}
	r.entries[entry.ContentID] = entry
	return nil
}

func (r *IndexRepository) Update(_ context.Context, entry domain.IndexEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailUpdate != nil {
		return r.FailUpdate
	}
	existing, ok := r.entries[entry.ContentID]
	if !ok {
		return storage.ErrNotFound
	}
	for id, e := range r.entries {
		if id != entry.ContentID && e.Fingerprint == entry.Fingerprint {
			return storage.ErrFingerprintConflict
		}
	}
	entry.CreatedAt = existing.CreatedAt
	r.entries[entry.ContentID] = entry
	return nil
}

func (r *IndexRepository) Delete(_ context.Context, contentID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[contentID]; !ok {
		return false, nil
	}
	delete(r.entries, contentID)
	return true, nil
}

func (r *IndexRepository) FindByFingerprint(_ context.Context, fingerprint string) (*domain.IndexEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.Fingerprint == fingerprint {
			entry := e
			return &entry, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *IndexRepository) FindByContentID(_ context.Context, contentID int64) (*domain.IndexEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[contentID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &entry, nil
}

func (r *IndexRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id := range r.entries {
		if _, err := r.content.GetByID(ctx, id); err != nil {
			delete(r.entries, id)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of index entries; test helper.
func (r *IndexRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
