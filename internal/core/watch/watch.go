// Package watch polls a file for changes and runs a reload action once the
// file has been quiet for a debounce window.
package watch

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/livescene/internal/core/observability/log"
)

// Detector maps the watched file to a version token. Two different tokens
// mean the file changed.
type Detector func(ctx context.Context, path string) (uint64, error)

type Options struct {
	// Interval is the polling period. Default: 500ms.
	Interval time.Duration
	// Debounce restarts on every new version seen. 0 fires immediately.
	Debounce time.Duration
	// Detector defaults to ContentHash.
	Detector Detector
	Logger   log.Log
}

func (o *Options) defaults() {
	if o.Interval <= 0 {
		o.Interval = 500 * time.Millisecond
	}
	if o.Detector == nil {
		o.Detector = ContentHash
	}
	o.Logger = log.OrNop(o.Logger)
}

// Watcher is safe for concurrent use; only one OnChange loop should run.
type Watcher struct {
	path atomic.Pointer[string]
	opts Options

	version atomic.Uint64

	checks   atomic.Int64
	changes  atomic.Int64
	errors   atomic.Int64
	reloads  atomic.Int64
	reloadNs atomic.Int64
}

type Stats struct {
	Checks          int64
	ChangesDetected int64
	Errors          int64
	Reloads         int64
	AvgReloadTime   time.Duration
}

func New(path string, opts Options) *Watcher {
	opts.defaults()
	opts.Logger = opts.Logger.With(log.String("component", "watch"))
	w := &Watcher{opts: opts}
	w.path.Store(&path)
	return w
}

func (w *Watcher) Path() string { return *w.path.Load() }

// Retarget switches the watched file. The loop takes the new file's current
// content as already handled and drops any pending change of the old file.
func (w *Watcher) Retarget(path string) {
	w.path.Store(&path)
}

func (w *Watcher) Stats() Stats {
	s := Stats{
		Checks:          w.checks.Load(),
		ChangesDetected: w.changes.Load(),
		Errors:          w.errors.Load(),
		Reloads:         w.reloads.Load(),
	}
	if s.Reloads > 0 {
		s.AvgReloadTime = time.Duration(w.reloadNs.Load() / s.Reloads)
	}
	return s
}

// Version is the token of the last successfully handled change.
func (w *Watcher) Version() uint64 { return w.version.Load() }

// OnChange blocks until ctx is done. The token seen at start is taken as
// already handled. When action fails the token is not recorded, so the same
// content is retried on a later change or poll.
func (w *Watcher) OnChange(ctx context.Context, action func() error) {
	logger := w.opts.Logger

	watching := w.Path()
	w.baseline(ctx, watching)

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	var (
		debounce   *time.Timer
		debounceCh <-chan time.Time
		pending    uint64
		hasPending bool
	)

	logger.Info("Watching",
		log.String("path", watching),
		log.Duration("interval", w.opts.Interval),
		log.Duration("debounce", w.opts.Debounce),
	)

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("Watch stopped")
			return

		case <-ticker.C:
			if p := w.Path(); p != watching {
				logger.Info("Watch retargeted", log.String("from", watching), log.String("path", p))
				watching = p
				if debounce != nil {
					debounce.Stop()
				}
				debounceCh, hasPending = nil, false
				w.baseline(ctx, watching)
				continue
			}
			w.checks.Add(1)
			cur, err := w.opts.Detector(ctx, watching)
			if err != nil {
				w.errors.Add(1)
				logger.Debug("Version check failed", log.Error(err))
				continue
			}
			if cur == w.version.Load() || (hasPending && cur == pending) {
				continue
			}
			w.changes.Add(1)
			pending, hasPending = cur, true

			if w.opts.Debounce <= 0 {
				w.fire(action, pending)
				hasPending = false
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(w.opts.Debounce)
			debounceCh = debounce.C
			logger.Debug("Change detected, debouncing", log.Uint64("pending", cur))

		case <-debounceCh:
			debounceCh = nil
			if hasPending {
				w.fire(action, pending)
				hasPending = false
			}
		}
	}
}

func (w *Watcher) baseline(ctx context.Context, path string) {
	v, err := w.opts.Detector(ctx, path)
	if err != nil {
		w.opts.Logger.Warn("Initial version check failed", log.String("path", path), log.Error(err))
		return
	}
	w.version.Store(v)
}

func (w *Watcher) fire(action func() error, ver uint64) {
	logger := w.opts.Logger
	start := time.Now()
	if err := action(); err != nil {
		w.errors.Add(1)
		logger.Error("Reload failed", log.Error(err), log.Uint64("version", ver))
		return
	}
	elapsed := time.Since(start)
	w.reloads.Add(1)
	w.reloadNs.Add(int64(elapsed))
	w.version.Store(ver)
	logger.Info("Reload complete", log.Uint64("version", ver), log.Duration("duration", elapsed))
}

// ContentHash hashes the whole file. Saving identical bytes is not a change.
func ContentHash(_ context.Context, path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}

// ModTime uses the modification time and size, avoiding a full read.
func ModTime(_ context.Context, path string) (uint64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(fi.ModTime().UnixNano()) ^ uint64(fi.Size())<<1, nil
}
