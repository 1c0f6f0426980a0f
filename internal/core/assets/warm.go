package assets

import (
	"context"
	"sync/atomic"

	"github.com/zeusync/livescene/internal/core/scene"
	"golang.org/x/sync/errgroup"
)

type WarmStats struct {
	Requested int
	Failed    int
}

// Warm loads every asset a document references, at most workers at a time,
// so that spawning afterwards only hits memoized entries. Failures are only
// counted: the spawner reports them per entity when it asks again.
func Warm(ctx context.Context, caches Caches, doc *scene.Document, workers int) WarmStats {
	var jobs []func() error
	seen := make(map[string]struct{})
	add := func(kind, path string, load func(string) error) {
		key := kind + "\x00" + path
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		jobs = append(jobs, func() error { return load(path) })
	}

	for i := range doc.Entities {
		c := doc.Entities[i].Components
		if mr := c.MeshRenderer; mr != nil && caches.Meshes != nil && caches.Materials != nil {
			add("mesh", mr.Mesh, func(p string) error { _, err := caches.Meshes.GetOrLoad(p); return err })
			add("material", mr.Material, func(p string) error { _, err := caches.Materials.GetOrLoad(p); return err })
		}
		if gs := c.GaussianSplat; gs != nil && caches.Splats != nil {
			add("splat", gs.Source, func(p string) error { _, err := caches.Splats.GetOrLoad(p); return err })
		}
	}

	stats := WarmStats{Requested: len(jobs)}
	if len(jobs) == 0 {
		return stats
	}
	if workers <= 0 {
		workers = 1
	}

	var failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := job(); err != nil {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	stats.Failed = int(failed.Load())
	return stats
}
