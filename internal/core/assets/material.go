package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/livescene/internal/core/observability/log"
	"gopkg.in/yaml.v3"
)

// DefaultMaterialPath is the material used when content names none.
const DefaultMaterialPath = "assets/materials/default.yaml"

// Material is the decoded material file.
type Material struct {
	Path       string             `yaml:"-"`
	Shader     string             `yaml:"shader"`
	Properties MaterialProperties `yaml:"properties"`
	BlendMode  string             `yaml:"blend_mode"`
	CullMode   string             `yaml:"cull_mode"`
}

type MaterialProperties struct {
	BaseColor mgl32.Vec3 `yaml:"base_color"`
	Roughness float32    `yaml:"roughness"`
	Metallic  float32    `yaml:"metallic"`
	Emission  mgl32.Vec3 `yaml:"emission"`
	AlbedoMap string     `yaml:"albedo_map,omitempty"`
	NormalMap string     `yaml:"normal_map,omitempty"`
}

func DefaultMaterial() Material {
	return Material{
		Properties: MaterialProperties{
			BaseColor: mgl32.Vec3{0.8, 0.8, 0.8},
			Roughness: 0.5,
		},
		BlendMode: "opaque",
		CullMode:  "back",
	}
}

// FileMaterialCache decodes YAML material files relative to a project root.
// A missing file yields the default material; a malformed one is an error.
type FileMaterialCache struct {
	root   string
	logger log.Log

	mu        sync.Mutex
	byPath    map[string]MaterialHandle
	materials []Material
}

func NewFileMaterialCache(root string, logger log.Log) *FileMaterialCache {
	return &FileMaterialCache{
		root:   root,
		logger: log.OrNop(logger).With(log.String("cache", "material")),
		byPath: make(map[string]MaterialHandle),
	}
}

// GetOrLoad memoizes by path. The file is read without holding the lock;
// when two callers race on one path the first insert wins.
func (c *FileMaterialCache) GetOrLoad(path string) (MaterialHandle, error) {
	c.mu.Lock()
	h, ok := c.byPath[path]
	c.mu.Unlock()
	if ok {
		return h, nil
	}

	mat, err := c.load(path)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.byPath[path]; ok {
		return h, nil
	}
	c.materials = append(c.materials, mat)
	h = MaterialHandle(len(c.materials))
	c.byPath[path] = h
	return h, nil
}

func (c *FileMaterialCache) load(path string) (Material, error) {
	mat := DefaultMaterial()
	mat.Path = path

	full := filepath.Join(c.root, path)
	data, err := os.ReadFile(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		c.logger.Warn("Material file not found, using defaults", log.String("path", full))
		return mat, nil
	case err != nil:
		return Material{}, fmt.Errorf("material %q: %w: %w", path, ErrLoad, err)
	}

	if err = yaml.Unmarshal(data, &mat); err != nil {
		return Material{}, fmt.Errorf("material %q: %w: %w", path, ErrLoad, err)
	}
	mat.Path = path
	c.logger.Debug("Loaded material", log.String("path", path), log.String("shader", mat.Shader))
	return mat, nil
}

func (c *FileMaterialCache) Get(h MaterialHandle) (Material, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !h.IsValid() || int(h) > len(c.materials) {
		return Material{}, fmt.Errorf("material %d: %w", h, ErrUnknownHandle)
	}
	return c.materials[h-1], nil
}

// EnsureDefault loads DefaultMaterialPath, falling back to built in defaults
// when that file is unreadable.
func (c *FileMaterialCache) EnsureDefault() MaterialHandle {
	h, err := c.GetOrLoad(DefaultMaterialPath)
	if err == nil {
		return h
	}
	c.logger.Warn("Default material unreadable, using built in defaults", log.Error(err))

	c.mu.Lock()
	defer c.mu.Unlock()
	mat := DefaultMaterial()
	mat.Path = DefaultMaterialPath
	c.materials = append(c.materials, mat)
	h = MaterialHandle(len(c.materials))
	c.byPath[DefaultMaterialPath] = h
	return h
}
