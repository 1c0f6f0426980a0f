package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/livescene/internal/core/observability/log"
)

const ProceduralPrefix = "procedural:"

type MeshSource uint8

const (
	MeshFromFile MeshSource = iota
	MeshProcedural
	// MeshFallback is a procedural cube standing in for a missing file.
	MeshFallback
)

const (
	ShapeCube   = "cube"
	ShapeSphere = "sphere"
)

type Mesh struct {
	Path        string
	Source      MeshSource
	Shape       string
	Size        int
	Fingerprint uint64
}

// FileMeshCache resolves mesh paths against a project root. Paths prefixed
// with "procedural:" name a generated primitive instead of a file.
type FileMeshCache struct {
	root   string
	logger log.Log

	mu     sync.Mutex
	byPath map[string]MeshHandle
	meshes []Mesh
}

func NewFileMeshCache(root string, logger log.Log) *FileMeshCache {
	return &FileMeshCache{
		root:   root,
		logger: log.OrNop(logger).With(log.String("cache", "mesh")),
		byPath: make(map[string]MeshHandle),
	}
}

// GetOrLoad memoizes by path. The file is read without holding the lock;
// when two callers race on one path the first insert wins.
func (c *FileMeshCache) GetOrLoad(path string) (MeshHandle, error) {
	c.mu.Lock()
	h, ok := c.byPath[path]
	c.mu.Unlock()
	if ok {
		return h, nil
	}

	mesh, err := c.load(path)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.byPath[path]; ok {
		return h, nil
	}
	c.meshes = append(c.meshes, mesh)
	h = MeshHandle(len(c.meshes))
	c.byPath[path] = h
	return h, nil
}

func (c *FileMeshCache) load(path string) (Mesh, error) {
	if shape, ok := strings.CutPrefix(path, ProceduralPrefix); ok {
		switch shape {
		case ShapeCube, ShapeSphere:
			c.logger.Debug("Generating procedural mesh", log.String("shape", shape))
		default:
			c.logger.Warn("Unknown procedural shape, using cube", log.String("shape", shape))
			shape = ShapeCube
		}
		return Mesh{Path: path, Source: MeshProcedural, Shape: shape}, nil
	}

	full := filepath.Join(c.root, path)
	data, err := os.ReadFile(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		c.logger.Warn("Mesh file not found, using procedural cube", log.String("path", full))
		return Mesh{Path: path, Source: MeshFallback, Shape: ShapeCube}, nil
	case err != nil:
		return Mesh{}, fmt.Errorf("mesh %q: %w: %w", path, ErrLoad, err)
	}

	c.logger.Info("Loaded mesh", log.String("path", path), log.Int("bytes", len(data)))
	return Mesh{
		Path:        path,
		Source:      MeshFromFile,
		Size:        len(data),
		Fingerprint: xxhash.Sum64(data),
	}, nil
}

func (c *FileMeshCache) Get(h MeshHandle) (Mesh, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !h.IsValid() || int(h) > len(c.meshes) {
		return Mesh{}, fmt.Errorf("mesh %d: %w", h, ErrUnknownHandle)
	}
	return c.meshes[h-1], nil
}

// Invalidate forgets the path so the next GetOrLoad reads it again under a
// new handle. Handles already issued remain readable.
func (c *FileMeshCache) Invalidate(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.byPath[path]
	delete(c.byPath, path)
	return ok
}

func (c *FileMeshCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.meshes)
}
