// Package spawn turns resolved entity definitions into live entities.
package spawn

import (
	"github.com/zeusync/livescene/internal/core/assets"
	"github.com/zeusync/livescene/internal/core/components"
	"github.com/zeusync/livescene/internal/core/models"
	"github.com/zeusync/livescene/internal/core/observability/log"
	"github.com/zeusync/livescene/internal/core/scene"
)

type options struct {
	headless  bool
	exclusive bool
	extra     []Attacher
}

type Option func(*options)

// WithHeadless skips every slot that needs a GPU backed asset: no mesh,
// material or splat lookups happen.
func WithHeadless() Option {
	return func(o *options) { o.headless = true }
}

// WithExclusiveCameraLight drops point_light from entities that also declare
// a camera.
func WithExclusiveCameraLight() Option {
	return func(o *options) { o.exclusive = true }
}

// WithAttacher installs an additional attacher after the built in ones.
func WithAttacher(a Attacher) Option {
	return func(o *options) { o.extra = append(o.extra, a) }
}

type Spawner struct {
	store     *models.Store
	attachers []Attacher
	logger    log.Log
}

func New(store *models.Store, caches assets.Caches, logger log.Log, opts ...Option) *Spawner {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Spawner{
		store:  store,
		logger: log.OrNop(logger).With(log.String("component", "spawner")),
	}
	if !o.headless && caches.Meshes != nil && caches.Materials != nil {
		s.attachers = append(s.attachers, meshRendererAttacher(caches))
	}
	s.attachers = append(s.attachers, cameraAttacher(), pointLightAttacher(o.exclusive))
	if !o.headless && caches.Splats != nil {
		s.attachers = append(s.attachers, gaussianSplatAttacher(caches.Splats))
	}
	s.attachers = append(s.attachers, o.extra...)
	return s
}

// Spawn creates one entity from a resolved definition. Identity, Tags and
// Transform are always present. The entity is only created once every
// attacher has succeeded.
func (s *Spawner) Spawn(def scene.EntityDefinition) (models.Entity, error) {
	tr := scene.DefaultTransform()
	if def.Components.Transform != nil {
		tr = *def.Components.Transform
	}

	comps := make([]models.Component, 0, 3+len(s.attachers))
	comps = append(comps,
		&components.Identity{ID: def.ID},
		components.NewTags(def.Tags),
		components.NewTransform(tr),
	)

	for _, a := range s.attachers {
		c, err := a.Build(def)
		if err != nil {
			s.logger.Warn("Spawn aborted",
				log.String("entity", def.ID),
				log.String("attacher", a.Kind()),
				log.Error(err),
			)
			return models.NilEntity, err
		}
		if c != nil {
			comps = append(comps, c)
		}
	}

	e := s.store.Spawn(comps...)
	s.logger.Debug("Spawned entity",
		log.String("entity", def.ID),
		log.String("handle", e.String()),
		log.Int("components", len(comps)),
	)
	return e, nil
}

// Kinds lists the installed attachers in dispatch order.
func (s *Spawner) Kinds() []string {
	out := make([]string, len(s.attachers))
	for i, a := range s.attachers {
		out[i] = a.Kind()
	}
	return out
}
