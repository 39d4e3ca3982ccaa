package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asapdigest/content-pipeline/internal/domain"
	"github.com/asapdigest/content-pipeline/internal/storage"
)

// uniqueViolation is the Postgres error code raised when the unique
// fingerprint constraint rejects a write.
const uniqueViolation = "23505"

type IndexRepository struct {
	db *pgxpool.Pool
}

func NewIndexRepository(pool *ConnectionPool) *IndexRepository {
	return &IndexRepository{db: pool.conn}
}

func (r *IndexRepository) Insert(ctx context.Context, entry domain.IndexEntry) error {
	now := time.Now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = now
	}

	query, args, err := psql.Insert("content_index").
		Columns("content_id", "fingerprint", "quality_score", "created_at", "updated_at").
		Values(entry.ContentID, entry.Fingerprint, entry.QualityScore, entry.CreatedAt, entry.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build index insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrFingerprintConflict
		}
		return fmt.Errorf("insert index entry %d: %w", entry.ContentID, err)
	}
	return nil
}

func (r *IndexRepository) Update(ctx context.Context, entry domain.IndexEntry) error {
	query, args, err := psql.Update("content_index").
		Set("fingerprint", entry.Fingerprint).
		Set("quality_score", entry.QualityScore).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"content_id": entry.ContentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build index update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrFingerprintConflict
		}
		return fmt.Errorf("update index entry %d: %w", entry.ContentID, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *IndexRepository) Delete(ctx context.Context, contentID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM content_index WHERE content_id = $1`, contentID)
	if err != nil {
		return false, fmt.Errorf("delete index entry %d: %w", contentID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *IndexRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*domain.IndexEntry, error) {
	return r.findBy(ctx, sq.Eq{"fingerprint": fingerprint})
}

func (r *IndexRepository) FindByContentID(ctx context.Context, contentID int64) (*domain.IndexEntry, error) {
	return r.findBy(ctx, sq.Eq{"content_id": contentID})
}

func (r *IndexRepository) findBy(ctx context.Context, where sq.Eq) (*domain.IndexEntry, error) {
	query, args, err := psql.Select("content_id", "fingerprint", "quality_score", "created_at", "updated_at").
		From("content_index").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build index select: %w", err)
	}

	var entry domain.IndexEntry
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&entry.ContentID, &entry.Fingerprint, &entry.QualityScore,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select index entry: %w", err)
	}
	return &entry, nil
}

func (r *IndexRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM content_index ci WHERE NOT EXISTS (SELECT 1 FROM content c WHERE c.id = ci.content_id)`)
	if err != nil {
		return 0, fmt.Errorf("delete orphaned index entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
