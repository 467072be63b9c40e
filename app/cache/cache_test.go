package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lysyi3m/html-comb/app/site"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestHashURL(t *testing.T) {
	url1 := "https://example.com/events"
	url2 := "https://example.com/events?page=2"

	if HashURL(url1) != HashURL(url1) {
		t.Error("Expected same hash for same URL")
	}
	if HashURL(url1) == HashURL(url2) {
		t.Error("Expected different hashes for different URLs")
	}
	if len(HashURL(url1)) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(HashURL(url1)))
	}
}

func TestContentCacheValidity(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cache := NewContentCache(NewMemoryStore()).WithClock(clock.Now)
	spec := site.Spec{URL: "https://example.com/events", Refresh: 300}

	valid, err := cache.IsValid(ctx, spec)
	if err != nil {
		t.Fatal(err)
	}
	if valid {
		t.Error("Expected cache to be invalid before any Put")
	}

	if err := cache.Put(ctx, spec.URL, "<html>v1</html>"); err != nil {
		t.Fatal(err)
	}

	valid, err = cache.IsValid(ctx, spec)
	if err != nil {
		t.Fatal(err)
	}
	if !valid {
		t.Error("Expected cache to be valid right after Put")
	}

	clock.Advance(299 * time.Second)
	if valid, _ := cache.IsValid(ctx, spec); !valid {
		t.Error("Expected cache to be valid inside the refresh window")
	}

	clock.Advance(time.Second)
	if valid, _ := cache.IsValid(ctx, spec); valid {
		t.Error("Expected cache to be stale once now - storedAt >= refresh")
	}
}

func TestContentCacheZeroRefreshIsAlwaysStale(t *testing.T) {
	ctx := context.Background()
	cache := NewContentCache(NewMemoryStore())
	spec := site.Spec{URL: "https://example.com/live", Refresh: 0}

	if err := cache.Put(ctx, spec.URL, "body"); err != nil {
		t.Fatal(err)
	}
	if valid, _ := cache.IsValid(ctx, spec); valid {
		t.Error("Expected zero refresh window to never be valid")
	}
}

func TestContentCacheGetAndOverwrite(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := NewMemoryStore()
	cache := NewContentCache(store).WithClock(clock.Now)
	url := "https://example.com/events"

	if _, ok, err := cache.Get(ctx, url); ok || err != nil {
		t.Errorf("Expected miss, got ok=%v err=%v", ok, err)
	}

	if err := cache.Put(ctx, url, "first"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Hour)
	if err := cache.Put(ctx, url, "second"); err != nil {
		t.Fatal(err)
	}

	body, ok, err := cache.Get(ctx, url)
	if err != nil || !ok {
		t.Fatalf("Expected hit, got ok=%v err=%v", ok, err)
	}
	if body != "second" {
		t.Errorf("Expected overwritten body 'second', got %q", body)
	}

	entry, err := store.Load(ctx, HashURL(url))
	if err != nil {
		t.Fatal(err)
	}
	if entry.StoredAt != clock.now.Unix() {
		t.Errorf("Expected storedAt %d, got %d", clock.now.Unix(), entry.StoredAt)
	}
}

type countingStore struct {
	*MemoryStore
	loads int
}

func (s *countingStore) Load(ctx context.Context, urlHash string) (*Entry, error) {
	s.loads++
	return s.MemoryStore.Load(ctx, urlHash)
}

func TestContentCacheLookup(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := &countingStore{MemoryStore: NewMemoryStore()}
	cache := NewContentCache(store).WithClock(clock.Now)
	spec := site.Spec{URL: "https://example.com/events", Refresh: 60}

	if err := cache.Put(ctx, spec.URL, "body"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		advance time.Duration
		body    string
		fresh   bool
	}{
		{"fresh", 0, "body", true},
		{"last second of the window", 59 * time.Second, "body", true},
		{"stale", time.Second, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.Advance(tt.advance)
			store.loads = 0

			body, fresh, err := cache.Lookup(ctx, spec)
			if err != nil {
				t.Fatal(err)
			}
			if body != tt.body || fresh != tt.fresh {
				t.Errorf("Expected (%q, %v), got (%q, %v)", tt.body, tt.fresh, body, fresh)
			}
			if store.loads != 1 {
				t.Errorf("Expected 1 store read, got %d", store.loads)
			}
		})
	}

	body, fresh, err := cache.Lookup(ctx, site.Spec{URL: "https://example.com/missing", Refresh: 60})
	if err != nil || fresh || body != "" {
		t.Errorf("Expected clean miss, got (%q, %v, %v)", body, fresh, err)
	}
}

func TestMemoryStorePageCount(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, hash := range []string{"a", "b", "a"} {
		if err := store.Save(ctx, Entry{URLHash: hash, StoredAt: 1, Body: hash}); err != nil {
			t.Fatal(err)
		}
	}

	count, err := store.GetPageCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("Expected 2 pages, got %d", count)
	}
}

type failingStore struct {
	MemoryStore
}

func (s *failingStore) Load(ctx context.Context, urlHash string) (*Entry, error) {
	return nil, errors.New("disk on fire")
}

func (s *failingStore) Save(ctx context.Context, entry Entry) error {
	return errors.New("disk on fire")
}

func TestContentCacheStorageErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	cache := NewContentCache(&failingStore{})
	spec := site.Spec{URL: "https://example.com", Refresh: 60}

	if _, err := cache.IsValid(ctx, spec); err == nil {
		t.Error("Expected IsValid to surface storage error")
	}
	if _, _, err := cache.Get(ctx, spec.URL); err == nil {
		t.Error("Expected Get to surface storage error")
	}
	if _, _, err := cache.Lookup(ctx, spec); err == nil {
		t.Error("Expected Lookup to surface storage error")
	}
	if err := cache.Put(ctx, spec.URL, "body"); err == nil {
		t.Error("Expected Put to surface storage error")
	}
}

func TestJanitorPrunesOldEntries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)

	store.Save(ctx, Entry{URLHash: "old", StoredAt: now.Add(-2 * time.Hour).Unix(), Body: "old"})
	store.Save(ctx, Entry{URLHash: "fresh", StoredAt: now.Add(-10 * time.Minute).Unix(), Body: "fresh"})

	janitor := NewJanitor(store, time.Hour, time.Minute)
	janitor.now = func() time.Time { return now }

	removed, err := janitor.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed entry, got %d", removed)
	}
	if _, err := store.Load(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected old entry to be pruned, got %v", err)
	}
	if _, err := store.Load(ctx, "fresh"); err != nil {
		t.Errorf("Expected fresh entry to be kept, got %v", err)
	}
}

func TestJanitorStartStop(t *testing.T) {
	janitor := NewJanitor(NewMemoryStore(), time.Hour, 10*time.Millisecond)
	janitor.Start()
	time.Sleep(30 * time.Millisecond)
	janitor.Stop()
}

func TestRedisStoreKey(t *testing.T) {
	store := &RedisStore{}

	key := store.Key(HashURL("https://example.com"))
	if len(key) <= len("page:") || key[:5] != "page:" {
		t.Errorf("Expected key with 'page:' prefix, got %s", key)
	}
	if store.Key("abc") != store.Key("abc") {
		t.Error("Expected consistent key generation")
	}
}
