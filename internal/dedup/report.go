package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asapdigest/content-pipeline/internal/domain"
	"github.com/asapdigest/content-pipeline/internal/storage"
)

const (
	defaultReportWindow = 7 * 24 * time.Hour
	defaultReportLimit  = 1000
	defaultBatchSize    = 100
)

// ReportOptions bound a duplicate report. Zero values fall back to a 7-day
// window over at most 1000 rows.
type ReportOptions struct {
	Window time.Duration `json:"window"`
	Limit  int           `json:"limit"`
}

type DuplicateGroup struct {
	ContentIDs []int64 `json:"contentIds"`
	Titles     []string
	Similarity float64 `json:"similarity"`
}

type DuplicateReport struct {
	Window      time.Duration    `json:"window"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Scanned     int              `json:"scanned"`
	Groups      []DuplicateGroup `json:"groups"`
}

// GenerateDuplicateReport scans content created inside the lookback window
// and groups rows whose field similarity crosses the fuzzy threshold. Exact
// fingerprint duplicates never persist (the index rejects them), so the
// report surfaces the near-misses a moderator should review.
func (d *Deduplicator) GenerateDuplicateReport(ctx context.Context, opts ReportOptions) (*DuplicateReport, error) {
	if opts.Window <= 0 {
		opts.Window = defaultReportWindow
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultReportLimit
	}

	cutoff := time.Now().Add(-opts.Window)
	items, err := d.content.ListCreatedSince(ctx, cutoff, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("list content since %s: %w", cutoff.Format(time.RFC3339), err)
	}

	report := &DuplicateReport{
		Window:      opts.Window,
		GeneratedAt: time.Now(),
		Scanned:     len(items),
	}

	grouped := make(map[int64]bool, len(items))
	for i := range items {
		if grouped[items[i].ID] {
			continue
		}
		group := DuplicateGroup{
			ContentIDs: []int64{items[i].ID},
			Titles:     []string{items[i].Title},
		}
		for j := i + 1; j < len(items); j++ {
			if grouped[items[j].ID] {
				continue
			}
			sim := Similarity(items[i], items[j])
			if sim >= fuzzyThreshold {
				group.ContentIDs = append(group.ContentIDs, items[j].ID)
				group.Titles = append(group.Titles, items[j].Title)
				if sim > group.Similarity {
					group.Similarity = sim
				}
				grouped[items[j].ID] = true
			}
		}
		if len(group.ContentIDs) > 1 {
			grouped[items[i].ID] = true
			report.Groups = append(report.Groups, group)
		}
	}

	return report, nil
}

// ReindexReport summarizes one reindex run. LastID is a resume cursor: a run
// that failed partway can be restarted and skipped ahead.
type ReindexReport struct {
	Scanned        int   `json:"scanned"`
	Inserted       int   `json:"inserted"`
	Updated        int   `json:"updated"`
	Conflicts      int   `json:"conflicts"`
	OrphansRemoved int64 `json:"orphansRemoved"`
	LastID         int64 `json:"lastId"`
}

// ReindexContent rebuilds the fingerprint index from the content table in
// bounded pages, then drops orphaned index entries. Recovery tool for
// content/index drift.
func (d *Deduplicator) ReindexContent(ctx context.Context, batchSize int) (*ReindexReport, error) {
	return d.ReindexContentFrom(ctx, batchSize, 0)
}

// ReindexContentFrom resumes a reindex after the given content id.
func (d *Deduplicator) ReindexContentFrom(ctx context.Context, batchSize int, afterID int64) (*ReindexReport, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	report := &ReindexReport{LastID: afterID}
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		page, err := d.content.ListAfter(ctx, report.LastID, batchSize)
		if err != nil {
			return report, fmt.Errorf("list content after %d: %w", report.LastID, err)
		}
		if len(page) == 0 {
			break
		}

		for _, item := range page {
			report.Scanned++
			report.LastID = item.ID

			fp := GenerateFingerprint(item)
			entry := domain.IndexEntry{
				ContentID:    item.ID,
				Fingerprint:  fp,
				QualityScore: item.QualityScore,
				UpdatedAt:    time.Now(),
			}

			_, err := d.index.FindByContentID(ctx, item.ID)
			switch {
			case err == nil:
				err = d.index.Update(ctx, entry)
				if err == nil {
					report.Updated++
				}
			case errors.Is(err, storage.ErrNotFound):
				entry.CreatedAt = time.Now()
				err = d.index.Insert(ctx, entry)
				if err == nil {
					report.Inserted++
				}
			}
			if errors.Is(err, storage.ErrFingerprintConflict) {
				// Two rows canonicalize to the same fingerprint;
				// keep the first and report the clash.
				report.Conflicts++
				continue
			}
			if err != nil {
				return report, fmt.Errorf("reindex content %d: %w", item.ID, err)
			}
		}
	}

	removed, err := d.index.DeleteOrphans(ctx)
	if err != nil {
		return report, fmt.Errorf("remove orphaned index entries: %w", err)
	}
	report.OrphansRemoved = removed

	return report, nil
}
