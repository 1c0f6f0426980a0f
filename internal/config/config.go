// Package config is the runtime configuration of the scene daemon.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeusync/livescene/internal/core/observability/log"
	"github.com/zeusync/livescene/internal/core/scene"
	"github.com/zeusync/livescene/internal/core/systems/transform"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Scene     SceneConfig     `yaml:"scene"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Transform TransformConfig `yaml:"transform"`
	Watch     WatchConfig     `yaml:"watch"`
	Tick      TickConfig      `yaml:"tick"`
	Log       LogConfig       `yaml:"log"`
}

type SceneConfig struct {
	Path string `yaml:"path"`
	// ProjectRoot is the base for asset paths. Empty means the scene
	// file's directory.
	ProjectRoot string `yaml:"project_root"`
	Inheritance string `yaml:"inheritance"`
}

type SpawnConfig struct {
	Headless             bool `yaml:"headless"`
	ExclusiveCameraLight bool `yaml:"exclusive_camera_light"`
}

type TransformConfig struct {
	Hierarchy string `yaml:"hierarchy"`
}

type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Debounce time.Duration `yaml:"debounce"`
}

type TickConfig struct {
	Rate int `yaml:"rate"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Scene: SceneConfig{
			Path:        "scenes/main.yaml",
			Inheritance: scene.ResolveSingleLevel.String(),
		},
		Transform: TransformConfig{Hierarchy: transform.SinglePass.String()},
		Watch: WatchConfig{
			Enabled:  true,
			Interval: 500 * time.Millisecond,
			Debounce: 200 * time.Millisecond,
		},
		Tick: TickConfig{Rate: 60},
		Log:  LogConfig{Level: "info", Encoding: "json"},
	}
}

// Load reads path over the defaults. An empty path returns Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Scene.Path == "" {
		errs = append(errs, errors.New("scene.path is required"))
	}
	if _, err := scene.ParseResolveMode(c.Scene.Inheritance); err != nil {
		errs = append(errs, fmt.Errorf("scene.inheritance: %w", err))
	}
	if _, err := transform.ParseMode(c.Transform.Hierarchy); err != nil {
		errs = append(errs, fmt.Errorf("transform.hierarchy: %w", err))
	}
	if c.Watch.Enabled && c.Watch.Interval <= 0 {
		errs = append(errs, errors.New("watch.interval must be positive"))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, errors.New("watch.debounce must not be negative"))
	}
	if c.Tick.Rate <= 0 {
		errs = append(errs, errors.New("tick.rate must be positive"))
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.encoding %q is not json or console", c.Log.Encoding))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Root returns the directory asset paths are resolved against.
func (c *Config) Root() string {
	if c.Scene.ProjectRoot != "" {
		return c.Scene.ProjectRoot
	}
	return filepath.Dir(c.Scene.Path)
}

// TickInterval is the period of one tick at the configured rate.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Tick.Rate)
}

// ResolveMode and HierarchyMode assume Validate passed.

func (c *Config) ResolveMode() scene.ResolveMode {
	m, _ := scene.ParseResolveMode(c.Scene.Inheritance)
	return m
}

func (c *Config) HierarchyMode() transform.Mode {
	m, _ := transform.ParseMode(c.Transform.Hierarchy)
	return m
}

func (c *Config) LogOptions() log.Options {
	return log.Options{Level: log.ParseLevel(c.Log.Level), Encoding: c.Log.Encoding}
}
