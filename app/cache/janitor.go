package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Janitor periodically removes entries older than maxAge. Without a janitor
// the cache grows by one entry per distinct URL and never shrinks.
type Janitor struct {
	store    Store
	maxAge   time.Duration
	interval time.Duration
	now      func() time.Time
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewJanitor(store Store, maxAge, interval time.Duration) *Janitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Janitor{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (j *Janitor) Start() {
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-j.ctx.Done():
				return
			case <-ticker.C:
				if _, err := j.Run(j.ctx); err != nil {
					slog.Error("Cache prune failed", "error", err)
				}
			}
		}
	}()
}

func (j *Janitor) Stop() {
	j.cancel()
	j.wg.Wait()
}

// Run prunes once and returns the number of removed entries.
func (j *Janitor) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().Add(-j.maxAge)

	removed, err := j.store.Prune(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	slog.Debug("Cache pruned", "removed", removed, "cutoff", cutoff.Format(time.RFC3339))
	return removed, nil
}
