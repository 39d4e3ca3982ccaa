// Package processor sequences the content ingestion pipeline: validation,
// fingerprint deduplication, quality scoring, best-effort AI enrichment and
// persistence. Stages short-circuit on the first business-rule failure;
// enrichment never aborts an item.
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/asapdigest/content-pipeline/internal/dedup"
	"github.com/asapdigest/content-pipeline/internal/domain"
	"github.com/asapdigest/content-pipeline/internal/enrich"
	"github.com/asapdigest/content-pipeline/internal/errlog"
	"github.com/asapdigest/content-pipeline/internal/events"
	"github.com/asapdigest/content-pipeline/internal/scorer"
	"github.com/asapdigest/content-pipeline/internal/storage"
	"github.com/asapdigest/content-pipeline/internal/validator"
)

const (
	// DefaultAutoRejectScore is the heuristic score below which an item is
	// rejected before persistence.
	DefaultAutoRejectScore = 20
	// DefaultMinimumScore is the non-fatal floor: items below it persist
	// with improvement warnings attached.
	DefaultMinimumScore = 40

	statsRecentLimit    = 10
	statsHistogramWidth = 20
)

type Processor struct {
	validator *validator.Validator
	dedup     *dedup.Deduplicator
	heuristic *scorer.Heuristic
	content   storage.ContentRepository
	log       *errlog.Logger
	events    events.Publisher

	enricher enrich.Service // nil disables enrichment and AI scoring
	aiScorer *scorer.AIScorer
	taxonomy []string

	autoRejectScore int
	minimumScore    int
}

type Option func(*Processor)

// WithEnricher enables best-effort AI enrichment with the given taxonomy for
// classification.
func WithEnricher(svc enrich.Service, taxonomy []string) Option {
	return func(p *Processor) {
		p.enricher = svc
		p.taxonomy = taxonomy
	}
}

func WithEvents(pub events.Publisher) Option {
	return func(p *Processor) { p.events = pub }
}

func WithAutoRejectScore(score int) Option {
	return func(p *Processor) { p.autoRejectScore = score }
}

func WithMinimumScore(score int) Option {
	return func(p *Processor) { p.minimumScore = score }
}

func New(content storage.ContentRepository, index storage.IndexRepository, log *errlog.Logger, opts ...Option) *Processor {
	p := &Processor{
		validator:       validator.New(),
		dedup:           dedup.New(content, index),
		heuristic:       scorer.NewHeuristic(),
		content:         content,
		log:             log,
		events:          events.NopPublisher{},
		autoRejectScore: DefaultAutoRejectScore,
		minimumScore:    DefaultMinimumScore,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.enricher != nil {
		p.aiScorer = scorer.NewAIScorer(p.enricher, log)
	}
	return p
}

// Deduplicator exposes the underlying dedup component for maintenance
// tooling (reindex, reports).
func (p *Processor) Deduplicator() *dedup.Deduplicator {
	return p.dedup
}

// Process runs an item through validation, duplicate detection, scoring and
// enrichment. excludeID skips one content id during the duplicate check, for
// re-processing an existing row. The returned Result is ready for Save.
func (p *Processor) Process(ctx context.Context, item domain.ContentItem, excludeID int64) *Result {
	valid, vres := p.validator.Validate(item)
	if !valid {
		p.log.Log(ctx, "content_processing/validation_failed", "validation",
			fmt.Sprintf("item %q failed validation", item.Title),
			map[string]any{"errors": vres.Errors}, errlog.SeverityWarning)
		res := failure(vres.Errors)
		res.Warnings = vres.Warnings
		return res
	}

	fingerprint := dedup.GenerateFingerprint(item)

	dupID, err := p.dedup.IsDuplicate(ctx, fingerprint, excludeID)
	if err != nil {
		p.log.Log(ctx, "content_processing/duplicate", "storage", err.Error(),
			map[string]any{"fingerprint": fingerprint}, errlog.SeverityError)
		return failure(map[string]string{"internal": "duplicate check failed"})
	}
	if dupID != 0 {
		return p.duplicateResult(ctx, item, dupID)
	}

	quality := p.heuristic.Score(item, 0)
	if quality.Score < p.autoRejectScore {
		p.log.Log(ctx, "content_processing/quality_score", "auto_reject",
			fmt.Sprintf("score %d below auto-reject threshold %d", quality.Score, p.autoRejectScore),
			map[string]any{"title": item.Title}, errlog.SeverityWarning)
		res := failure(map[string]string{
			"quality_score": fmt.Sprintf("quality score %d is below the auto-reject threshold %d", quality.Score, p.autoRejectScore),
		})
		res.Quality = quality
		return res
	}

	res := &Result{
		Success:     true,
		Warnings:    vres.Warnings,
		Fingerprint: fingerprint,
		Quality:     quality,
	}

	item.Fingerprint = fingerprint
	item.QualityScore = quality.Score
	if item.Status == "" {
		item.Status = domain.StatusPending
	}
	if p.enricher != nil {
		item.AIMetadata = p.enrichItem(ctx, item, res)
		assessment := p.aiScorer.Score(ctx, item.Content)
		res.AIQuality = &assessment
	}
	res.Item = item

	if quality.Score < p.minimumScore {
		if res.Warnings == nil {
			res.Warnings = make(map[string]string)
		}
		res.Warnings["quality_score"] = fmt.Sprintf(
			"quality score %d is below the recommended minimum %d; consider a longer body, a summary, and paragraph breaks",
			quality.Score, p.minimumScore)
	}

	return res
}

func (p *Processor) duplicateResult(ctx context.Context, item domain.ContentItem, dupID int64) *Result {
	res := failure(map[string]string{
		"duplicate": fmt.Sprintf("content duplicates existing item %d", dupID),
	})

	details, err := p.dedup.GetDuplicateDetails(ctx, dupID)
	if err != nil {
		p.log.Log(ctx, "content_processing/duplicate", "storage", err.Error(),
			map[string]any{"duplicate_of": dupID}, errlog.SeverityError)
	} else {
		res.Duplicate = details
	}

	p.log.Log(ctx, "content_processing/duplicate", "duplicate",
		fmt.Sprintf("item %q duplicates content %d", item.Title, dupID),
		map[string]any{"duplicate_of": dupID}, errlog.SeverityWarning)
	return res
}

// enrichItem fans the enrichment sub-calls out sequentially; each failure is
// logged as a warning on the result and leaves that field empty.
func (p *Processor) enrichItem(ctx context.Context, item domain.ContentItem, res *Result) *domain.AIMetadata {
	if res.Warnings == nil {
		res.Warnings = make(map[string]string)
	}
	meta := &domain.AIMetadata{}

	degrade := func(field string, err error) {
		res.Warnings["enrich_"+field] = err.Error()
		p.log.Log(ctx, "content_processing/enrichment", field, err.Error(),
			map[string]any{"title": item.Title}, errlog.SeverityWarning)
	}

	if summary, err := p.enricher.Summarize(ctx, item.Content); err != nil {
		degrade("summary", err)
	} else {
		meta.Summary = summary
	}

	if entities, err := p.enricher.ExtractEntities(ctx, item.Content); err != nil {
		degrade("entities", err)
	} else {
		meta.Entities = entities
	}

	taxonomy := p.taxonomy
	if len(taxonomy) == 0 {
		taxonomy = enrich.DefaultTaxonomy
	}
	if categories, err := p.enricher.Classify(ctx, item.Content, taxonomy); err != nil {
		degrade("categories", err)
	} else {
		meta.Categories = categories
	}

	if keywords, err := p.enricher.GenerateKeywords(ctx, item.Content); err != nil {
		degrade("keywords", err)
	} else {
		meta.Keywords = keywords
	}

	return meta
}

// ProcessBatch runs items through the pipeline on a bounded worker pool.
// Items share no mutable state, so batch-level parallelism is safe; the
// index uniqueness constraint arbitrates racing duplicates at Save time.
func (p *Processor) ProcessBatch(ctx context.Context, items []domain.ContentItem, workers int) []*Result {
	if workers <= 0 {
		workers = 1
	}

	results := make([]*Result, len(items))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.Process(ctx, items[i], 0)
			}
		}()
	}

	for i := range items {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return results
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

// Save persists a successful Process result. updateID == 0 inserts a new
// row; otherwise the existing row is updated in place. Both paths keep the
// content table and the fingerprint index in lockstep: a failed index write
// rolls the content write back before reporting.
func (p *Processor) Save(ctx context.Context, res *Result, updateID int64) *SaveResult {
	if res == nil || !res.Success {
		return &SaveResult{Errors: map[string]string{"process": "item has not been successfully processed"}}
	}

	if updateID == 0 {
		return p.saveNew(ctx, res)
	}
	return p.saveUpdate(ctx, res, updateID)
}

func (p *Processor) saveNew(ctx context.Context, res *Result) *SaveResult {
	item := res.Item
	id, err := p.content.Insert(ctx, item)
	if err != nil {
		p.log.Log(ctx, "content_processing/save", "storage", err.Error(),
			map[string]any{"title": item.Title}, errlog.SeverityError)
		return &SaveResult{Errors: map[string]string{"internal": "failed to save content"}}
	}

	if err := p.dedup.AddToIndex(ctx, id, res.Fingerprint, res.Quality.Score); err != nil {
		// Roll the content row back so content and index stay in
		// lockstep.
		if _, delErr := p.content.Delete(ctx, id); delErr != nil {
			p.log.Log(ctx, "content_processing/save", "consistency",
				fmt.Sprintf("index insert failed and rollback failed: %v / %v", err, delErr),
				map[string]any{"content_id": id}, errlog.SeverityCritical)
		} else {
			p.log.Log(ctx, "content_processing/save", "index",
				err.Error(), map[string]any{"content_id": id}, errlog.SeverityError)
		}

		if errors.Is(err, storage.ErrFingerprintConflict) {
			// A racing writer indexed the same fingerprint after our
			// early check; same business outcome as a detected
			// duplicate.
			return &SaveResult{Errors: map[string]string{"duplicate": "content was indexed concurrently by another writer"}}
		}
		return &SaveResult{Errors: map[string]string{"internal": "failed to index content"}}
	}

	item.ID = id
	_ = p.events.Publish(ctx, events.New(events.ContentAdded, item))

	return &SaveResult{Success: true, ContentID: id}
}

func (p *Processor) saveUpdate(ctx context.Context, res *Result, updateID int64) *SaveResult {
	previous, err := p.content.GetByID(ctx, updateID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &SaveResult{Errors: map[string]string{"update": fmt.Sprintf("content %d does not exist", updateID)}}
		}
		p.log.Log(ctx, "content_processing/save", "storage", err.Error(),
			map[string]any{"content_id": updateID}, errlog.SeverityError)
		return &SaveResult{Errors: map[string]string{"internal": "failed to load content for update"}}
	}

	item := res.Item
	item.ID = updateID
	if err := p.content.Update(ctx, item); err != nil {
		p.log.Log(ctx, "content_processing/save", "storage", err.Error(),
			map[string]any{"content_id": updateID}, errlog.SeverityError)
		return &SaveResult{Errors: map[string]string{"internal": "failed to update content"}}
	}

	if err := p.dedup.UpdateIndex(ctx, updateID, res.Fingerprint, res.Quality.Score); err != nil {
		// Restore the previous row so content and index stay consistent.
		if restoreErr := p.content.Update(ctx, *previous); restoreErr != nil {
			p.log.Log(ctx, "content_processing/save", "consistency",
				fmt.Sprintf("index update failed and restore failed: %v / %v", err, restoreErr),
				map[string]any{"content_id": updateID}, errlog.SeverityCritical)
		} else {
			p.log.Log(ctx, "content_processing/save", "index",
				err.Error(), map[string]any{"content_id": updateID}, errlog.SeverityError)
		}

		if errors.Is(err, storage.ErrFingerprintConflict) {
			return &SaveResult{Errors: map[string]string{"duplicate": "updated content duplicates another indexed item"}}
		}
		return &SaveResult{Errors: map[string]string{"internal": "failed to update content index"}}
	}

	item.CreatedAt = previous.CreatedAt
	_ = p.events.Publish(ctx, events.New(events.ContentUpdated, item))

	return &SaveResult{Success: true, ContentID: updateID}
}

// Delete removes a content row and its index entry, index first. The row is
// fetched beforehand so deletion subscribers receive the removed payload.
// Deleting a missing id returns false without error.
func (p *Processor) Delete(ctx context.Context, id int64) (bool, error) {
	item, err := p.content.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		p.log.Log(ctx, "content_processing/delete", "storage", err.Error(),
			map[string]any{"content_id": id}, errlog.SeverityError)
		return false, fmt.Errorf("load content %d: %w", id, err)
	}

	if _, err := p.dedup.RemoveFromIndex(ctx, id); err != nil {
		p.log.Log(ctx, "content_processing/delete", "index", err.Error(),
			map[string]any{"content_id": id}, errlog.SeverityError)
		return false, err
	}

	removed, err := p.content.Delete(ctx, id)
	if err != nil {
		p.log.Log(ctx, "content_processing/delete", "storage", err.Error(),
			map[string]any{"content_id": id}, errlog.SeverityCritical)
		return false, fmt.Errorf("delete content %d: %w", id, err)
	}
	if removed {
		_ = p.events.Publish(ctx, events.New(events.ContentDeleted, *item))
	}
	return removed, nil
}

// GetContent fetches one persisted item, or nil when it does not exist.
func (p *Processor) GetContent(ctx context.Context, id int64) (*domain.ContentItem, error) {
	item, err := p.content.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return item, err
}

// FindSimilarContent merges exact-fingerprint matches with fuzzy matches,
// de-duplicated by id, up to limit.
func (p *Processor) FindSimilarContent(ctx context.Context, item domain.ContentItem, limit int) ([]domain.ContentItem, error) {
	if limit <= 0 {
		return nil, nil
	}

	exact, err := p.dedup.GetSimilarContent(ctx, dedup.GenerateFingerprint(item), limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(exact))
	merged := make([]domain.ContentItem, 0, limit)
	for _, m := range exact {
		if !seen[m.ID] {
			seen[m.ID] = true
			merged = append(merged, m)
		}
	}
	if len(merged) >= limit {
		return merged[:limit], nil
	}

	fuzzy, err := p.dedup.FindPotentialDuplicates(ctx, item, limit)
	if err != nil {
		return nil, err
	}
	for _, m := range fuzzy {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		merged = append(merged, m)
		if len(merged) >= limit {
			break
		}
	}
	return merged, nil
}

// GetContentStats reports counts by status and type, a quality-score
// histogram and the most recent items.
func (p *Processor) GetContentStats(ctx context.Context) (*Stats, error) {
	byStatus, err := p.content.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	byType, err := p.content.CountByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	histogram, err := p.content.ScoreHistogram(ctx, statsHistogramWidth)
	if err != nil {
		return nil, fmt.Errorf("score histogram: %w", err)
	}
	recent, err := p.content.ListRecent(ctx, statsRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	return &Stats{
		Total:          total,
		ByStatus:       byStatus,
		ByType:         byType,
		ScoreHistogram: histogram,
		Recent:         recent,
	}, nil
}

// ReindexContent rebuilds the fingerprint index in pages of batchSize.
func (p *Processor) ReindexContent(ctx context.Context, batchSize int) (*dedup.ReindexReport, error) {
	return p.dedup.ReindexContent(ctx, batchSize)
}

// GenerateDuplicateReport aggregates potential duplicates over a lookback
// window.
func (p *Processor) GenerateDuplicateReport(ctx context.Context, opts dedup.ReportOptions) (*dedup.DuplicateReport, error) {
	return p.dedup.GenerateDuplicateReport(ctx, opts)
}
