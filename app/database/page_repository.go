package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lysyi3m/html-comb/app/cache"
)

var _ cache.Store = (*PageRepository)(nil)

// PageRepository stores cached page bodies in the page_cache table.
type PageRepository struct {
	db *DB
}

func NewPageRepository(db *DB) *PageRepository {
	return &PageRepository{db: db}
}

func (r *PageRepository) Load(ctx context.Context, urlHash string) (*cache.Entry, error) {
	var entry cache.Entry
	err := r.db.GetContext(ctx, &entry, r.db.Rebind(`
		SELECT url_hash, stored_at, body
		FROM page_cache
		WHERE url_hash = ?
	`), urlHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page %s: %w", urlHash, err)
	}

	return &entry, nil
}

func (r *PageRepository) Save(ctx context.Context, entry cache.Entry) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO page_cache (url_hash, stored_at, body)
		VALUES (?, ?, ?)
		ON CONFLICT (url_hash) DO UPDATE SET
			stored_at = excluded.stored_at,
			body = excluded.body
	`), entry.URLHash, entry.StoredAt, entry.Body)
	if err != nil {
		return fmt.Errorf("failed to upsert page %s: %w", entry.URLHash, err)
	}

	return nil
}

func (r *PageRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM page_cache WHERE stored_at < ?
	`), before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune pages: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned pages: %w", err)
	}
	return removed, nil
}

func (r *PageRepository) GetPageCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM page_cache`); err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}

func (r *PageRepository) Close() error {
	return r.db.Close()
}
