// Package engine drives a scene world: the tick loop and file triggered
// reloads, run together under one errgroup.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeusync/livescene/internal/config"
	"github.com/zeusync/livescene/internal/core/observability/log"
	"github.com/zeusync/livescene/internal/core/watch"
	"github.com/zeusync/livescene/internal/core/world"
	"golang.org/x/sync/errgroup"
)

var ErrInitialLoad = errors.New("initial scene load failed")

type reloadRequest struct {
	done chan error
}

// Engine owns the only goroutine allowed to touch its world.
type Engine struct {
	cfg     *config.Config
	world   *world.World
	watcher *watch.Watcher
	logger  log.Log

	reloads chan reloadRequest
}

func New(cfg *config.Config, w *world.World, logger log.Log) *Engine {
	logger = log.OrNop(logger)
	e := &Engine{
		cfg:     cfg,
		world:   w,
		logger:  logger.With(log.String("component", "engine")),
		reloads: make(chan reloadRequest),
	}
	if cfg.Watch.Enabled {
		e.watcher = watch.New(cfg.Scene.Path, watch.Options{
			Interval: cfg.Watch.Interval,
			Debounce: cfg.Watch.Debounce,
			Logger:   logger,
		})
	}
	return e
}

func (e *Engine) World() *world.World { return e.world }

// Watcher is nil when watching is disabled.
func (e *Engine) Watcher() *watch.Watcher { return e.watcher }

// Run loads the configured scene and ticks until ctx is done. A failed
// initial load is returned; later reload failures keep the running scene.
// The world is torn down before Run returns.
func (e *Engine) Run(ctx context.Context) error {
	defer e.world.Teardown()

	if _, err := e.world.LoadFile(e.cfg.Scene.Path); err != nil {
		return fmt.Errorf("%w: %w", ErrInitialLoad, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	if e.watcher != nil {
		g.Go(func() error {
			e.watcher.OnChange(ctx, func() error { return e.Reload(ctx) })
			return nil
		})
	}
	g.Go(func() error { return e.loop(ctx) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	e.logger.Info("Engine stopped", log.Uint64("frames", e.world.Frame()))
	return err
}

// Reload asks the loop goroutine to reload the current scene file and waits
// for the outcome.
func (e *Engine) Reload(ctx context.Context) error {
	req := reloadRequest{done: make(chan error, 1)}
	select {
	case e.reloads <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) loop(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if err := e.world.Tick(); err != nil {
				e.logger.Warn("Tick failed", log.Uint64("frame", e.world.Frame()), log.Error(err))
			}
			e.follow()

		case req := <-e.reloads:
			path := e.world.Path()
			if path == "" {
				path = e.cfg.Scene.Path
			}
			_, err := e.world.LoadFile(path)
			req.done <- err
		}
	}
}

// follow points the watcher at the file the world last loaded, which moves
// after a queued scene switch.
func (e *Engine) follow() {
	if e.watcher == nil {
		return
	}
	if p := e.world.Path(); p != "" && p != e.watcher.Path() {
		e.watcher.Retarget(p)
	}
}
