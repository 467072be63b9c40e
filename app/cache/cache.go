package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/lysyi3m/html-comb/app/site"
)

// Entry is a cached page body keyed by the hash of its URL.
type Entry struct {
	URLHash  string `db:"url_hash"`
	StoredAt int64  `db:"stored_at"` // epoch seconds
	Body     string `db:"body"`
}

// Store persists cache entries. Load returns ErrNotFound for unknown keys.
type Store interface {
	Load(ctx context.Context, urlHash string) (*Entry, error)
	Save(ctx context.Context, entry Entry) error
	Prune(ctx context.Context, before time.Time) (int64, error)
	Close() error
}

var ErrNotFound = errors.New("cache entry not found")

func HashURL(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])
}

// ContentCache stores fetched page bodies and decides their freshness from
// the refresh window declared by each site. Origin cache headers are ignored.
type ContentCache struct {
	store Store
	now   func() time.Time
}

func NewContentCache(store Store) *ContentCache {
	return &ContentCache{store: store, now: time.Now}
}

// WithClock replaces the wall clock, mainly for tests.
func (c *ContentCache) WithClock(now func() time.Time) *ContentCache {
	c.now = now
	return c
}

func (c *ContentCache) IsValid(ctx context.Context, spec site.Spec) (bool, error) {
	_, fresh, err := c.Lookup(ctx, spec)
	return fresh, err
}

func (c *ContentCache) Get(ctx context.Context, url string) (string, bool, error) {
	entry, err := c.load(ctx, url)
	if err != nil || entry == nil {
		return "", false, err
	}
	return entry.Body, true, nil
}

// Lookup reads the entry for spec.URL once and reports whether it is still
// within the refresh window. body is empty unless fresh is true.
func (c *ContentCache) Lookup(ctx context.Context, spec site.Spec) (string, bool, error) {
	entry, err := c.load(ctx, spec.URL)
	if err != nil || entry == nil {
		return "", false, err
	}
	if c.now().Unix()-entry.StoredAt >= int64(spec.Refresh) {
		return "", false, nil
	}
	return entry.Body, true, nil
}

// load returns a nil entry without error on a miss.
func (c *ContentCache) load(ctx context.Context, url string) (*Entry, error) {
	entry, err := c.store.Load(ctx, HashURL(url))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cache entry: %w", err)
	}
	return entry, nil
}

func (c *ContentCache) Put(ctx context.Context, url, body string) error {
	entry := Entry{
		URLHash:  HashURL(url),
		StoredAt: c.now().Unix(),
		Body:     body,
	}
	if err := c.store.Save(ctx, entry); err != nil {
		return fmt.Errorf("failed to save cache entry: %w", err)
	}
	return nil
}
