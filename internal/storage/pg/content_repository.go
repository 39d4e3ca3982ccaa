// Package pg implements the storage repositories on PostgreSQL. The unique
// constraint on content_index.fingerprint is the authoritative duplicate
// guard; see migrations/001_content.sql.
package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asapdigest/content-pipeline/internal/domain"
	"github.com/asapdigest/content-pipeline/internal/storage"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var contentColumns = []string{
	"id", "type", "title", "content", "summary", "source_url", "source_id",
	"publish_date", "status", "extra", "fingerprint", "quality_score",
	"ai_metadata", "created_at", "updated_at",
}

type ContentRepository struct {
	db *pgxpool.Pool
}

func NewContentRepository(pool *ConnectionPool) *ContentRepository {
	return &ContentRepository{db: pool.conn}
}

func (r *ContentRepository) Insert(ctx context.Context, item domain.ContentItem) (int64, error) {
	if item.Status == "" {
		item.Status = domain.StatusPending
	}
	now := time.Now()

	extraJSON, aiJSON, err := marshalItemJSON(item)
	if err != nil {
		return 0, err
	}

	query, args, err := psql.Insert("content").
		Columns("type", "title", "content", "summary", "source_url", "source_id",
			"publish_date", "status", "extra", "fingerprint", "quality_score",
			"ai_metadata", "created_at", "updated_at").
		Values(item.Type, item.Title, item.Content, item.Summary, item.SourceURL,
			item.SourceID, item.PublishDate, item.Status, extraJSON,
			item.Fingerprint, item.QualityScore, aiJSON, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert content: %w", err)
	}
	return id, nil
}

func (r *ContentRepository) Update(ctx context.Context, item domain.ContentItem) error {
	extraJSON, aiJSON, err := marshalItemJSON(item)
	if err != nil {
		return err
	}

	query, args, err := psql.Update("content").
		Set("type", item.Type).
		Set("title", item.Title).
		Set("content", item.Content).
		Set("summary", item.Summary).
		Set("source_url", item.SourceURL).
		Set("source_id", item.SourceID).
		Set("publish_date", item.PublishDate).
		Set("status", item.Status).
		Set("extra", extraJSON).
		Set("fingerprint", item.Fingerprint).
		Set("quality_score", item.QualityScore).
		Set("ai_metadata", aiJSON).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": item.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update content %d: %w", item.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *ContentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete content %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ContentRepository) GetByID(ctx context.Context, id int64) (*domain.ContentItem, error) {
	query, args, err := psql.Select(contentColumns...).
		From("content").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	item, err := scanContent(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select content %d: %w", id, err)
	}
	return item, nil
}

func (r *ContentRepository) ListAfter(ctx context.Context, afterID int64, limit int) ([]domain.ContentItem, error) {
	return r.list(ctx, psql.Select(contentColumns...).
		From("content").
		Where(sq.Gt{"id": afterID}).
		OrderBy("id ASC").
		Limit(uint64(limit)))
}

func (r *ContentRepository) ListRecent(ctx context.Context, limit int) ([]domain.ContentItem, error) {
	return r.list(ctx, psql.Select(contentColumns...).
		From("content").
		OrderBy("created_at DESC, id DESC").
		Limit(uint64(limit)))
}

func (r *ContentRepository) ListCreatedSince(ctx context.Context, cutoff time.Time, limit int) ([]domain.ContentItem, error) {
	return r.list(ctx, psql.Select(contentColumns...).
		From("content").
		Where(sq.GtOrEq{"created_at": cutoff}).
		OrderBy("created_at DESC, id DESC").
		Limit(uint64(limit)))
}

func (r *ContentRepository) list(ctx context.Context, builder sq.SelectBuilder) ([]domain.ContentItem, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentItem
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *ContentRepository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	counts := make(map[domain.Status]int64)
	err := r.countGrouped(ctx, "status", func(key string, n int64) {
		counts[domain.Status(key)] = n
	})
	return counts, err
}

func (r *ContentRepository) CountByType(ctx context.Context) (map[domain.ContentType]int64, error) {
	counts := make(map[domain.ContentType]int64)
	err := r.countGrouped(ctx, "type", func(key string, n int64) {
		counts[domain.ContentType(key)] = n
	})
	return counts, err
}

func (r *ContentRepository) countGrouped(ctx context.Context, column string, collect func(string, int64)) error {
	query, args, err := psql.Select(column, "COUNT(*)").
		From("content").
		GroupBy(column).
		ToSql()
	if err != nil {
		return fmt.Errorf("build count: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("count by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scan count: %w", err)
		}
		collect(key, n)
	}
	return rows.Err()
}

func (r *ContentRepository) ScoreHistogram(ctx context.Context, bucketSize int) (map[string]int64, error) {
	if bucketSize <= 0 {
		bucketSize = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT quality_score, COUNT(*) FROM content GROUP BY quality_score`)
	if err != nil {
		return nil, fmt.Errorf("score histogram: %w", err)
	}
	defer rows.Close()

	hist := make(map[string]int64)
	for rows.Next() {
		var score int
		var n int64
		if err := rows.Scan(&score, &n); err != nil {
			return nil, fmt.Errorf("scan histogram: %w", err)
		}
		hist[storage.HistogramBucket(score, bucketSize)] += n
	}
	return hist, rows.Err()
}

func marshalItemJSON(item domain.ContentItem) (extra, ai []byte, err error) {
	if item.Extra != nil {
		if extra, err = json.Marshal(item.Extra); err != nil {
			return nil, nil, fmt.Errorf("marshal extra: %w", err)
		}
	}
	if item.AIMetadata != nil {
		if ai, err = json.Marshal(item.AIMetadata); err != nil {
			return nil, nil, fmt.Errorf("marshal ai metadata: %w", err)
		}
	}
	return extra, ai, nil
}

func scanContent(row pgx.Row) (*domain.ContentItem, error) {
	var item domain.ContentItem
	var extraJSON, aiJSON []byte

	err := row.Scan(
		&item.ID, &item.Type, &item.Title, &item.Content, &item.Summary,
		&item.SourceURL, &item.SourceID, &item.PublishDate, &item.Status,
		&extraJSON, &item.Fingerprint, &item.QualityScore, &aiJSON,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(extraJSON) > 0 {
		if err := json.Unmarshal(extraJSON, &item.Extra); err != nil {
			return nil, fmt.Errorf("unmarshal extra: %w", err)
		}
	}
	if len(aiJSON) > 0 {
		item.AIMetadata = &domain.AIMetadata{}
		if err := json.Unmarshal(aiJSON, item.AIMetadata); err != nil {
			return nil, fmt.Errorf("unmarshal ai metadata: %w", err)
		}
	}
	return &item, nil
}
