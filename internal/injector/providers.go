package injector

import (
	"github.com/google/wire"
	"github.com/zeusync/livescene/internal/config"
	"github.com/zeusync/livescene/internal/core/assets"
	"github.com/zeusync/livescene/internal/core/events/bus"
	"github.com/zeusync/livescene/internal/core/observability/log"
	"github.com/zeusync/livescene/internal/core/world"
	"github.com/zeusync/livescene/internal/engine"
)

// ConfigPath is the -config flag value; empty means built in defaults.
type ConfigPath string

func ProvideConfig(path ConfigPath) (*config.Config, error) {
	return config.Load(string(path))
}

func ProvideLogger(cfg *config.Config) (*log.Logger, func()) {
	logger := log.NewWithOptions(cfg.LogOptions())
	return logger, func() { _ = logger.Sync() }
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

func ProvideCaches(cfg *config.Config, logger log.Log) assets.Caches {
	root := cfg.Root()
	return assets.Caches{
		Meshes:    assets.NewFileMeshCache(root, logger),
		Materials: assets.NewFileMaterialCache(root, logger),
		Splats:    assets.NewFileSplatCache(root, logger),
	}
}

var ProviderSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideEventBus,
	ProvideCaches,
	world.New,
	engine.New,
)
