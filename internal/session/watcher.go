package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"newsdesk/internal/domain"
)

const (
	DefaultInterval = 5 * time.Second

	reconcileTimeout = 30 * time.Second
)

// Watcher re-derives the user cache when it goes missing: on every tick if
// the cache is empty, and immediately when another writer clears it.
type Watcher struct {
	reconciler *Reconciler
	cache      Cache
	interval   time.Duration
	clock      clockwork.Clock
	logger     *slog.Logger

	once   sync.Once
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewWatcher(reconciler *Reconciler, cache Cache, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		reconciler: reconciler,
		cache:      cache,
		interval:   interval,
		clock:      clock,
		logger:     logger.With("component", "watcher"),
	}
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("session watcher started", "interval", w.interval)

	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	changes := w.cache.Changes()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("session watcher stopped")
			return ctx.Err()
		case <-ticker.Chan():
			w.tick(ctx)
		case change, ok := <-changes:
			if !ok {
				w.logger.Warn("cache change feed closed, polling only")
				changes = nil
				continue
			}
			w.onChange(ctx, change)
		}
	}
}

// Initialize starts Run in the background once; later calls are no-ops.
func (w *Watcher) Initialize(ctx context.Context) {
	w.once.Do(func() {
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})

		w.mu.Lock()
		w.cancel = cancel
		w.done = done
		w.mu.Unlock()

		go func() {
			defer close(done)
			_ = w.Run(runCtx)
		}()
	})
}

// Stop cancels a watcher started with Initialize and waits for it to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *Watcher) tick(ctx context.Context) {
	if !w.reconciler.cacheEmpty(ctx) {
		return
	}
	w.reinitialize(ctx, "poll")
}

func (w *Watcher) onChange(ctx context.Context, change domain.CacheChange) {
	if !change.Cleared() {
		return
	}
	w.logger.Info("user cache cleared externally", "key", change.Key)
	w.reinitialize(ctx, "external_clear")
}

func (w *Watcher) reinitialize(ctx context.Context, trigger string) {
	reqCtx, cancel := context.WithTimeout(ctx, reconcileTimeout)
	defer cancel()

	restored := w.reconciler.ReinitializeUserData(reqCtx)
	w.logger.Debug("reconciled user cache", "trigger", trigger, "restored", restored)
}
