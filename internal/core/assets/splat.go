package assets

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/zeusync/livescene/internal/core/observability/log"
)

// ProceduralSplatCount is the size of the stand in cloud used for a missing
// splat file.
const ProceduralSplatCount = 1400

type Splat struct {
	Path       string
	Count      int
	Procedural bool
	Properties []string
}

// FileSplatCache reads the header of 3DGS .ply files. Vertex payloads are
// left to the renderer.
type FileSplatCache struct {
	root   string
	logger log.Log

	mu     sync.Mutex
	byPath map[string]SplatHandle
	splats []Splat
}

func NewFileSplatCache(root string, logger log.Log) *FileSplatCache {
	return &FileSplatCache{
		root:   root,
		logger: log.OrNop(logger).With(log.String("cache", "splat")),
		byPath: make(map[string]SplatHandle),
	}
}

// GetOrLoad memoizes by path. The file is read without holding the lock;
// when two callers race on one path the first insert wins.
func (c *FileSplatCache) GetOrLoad(path string) (SplatHandle, error) {
	c.mu.Lock()
	h, ok := c.byPath[path]
	c.mu.Unlock()
	if ok {
		return h, nil
	}

	splat, err := c.load(path)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.byPath[path]; ok {
		return h, nil
	}
	c.splats = append(c.splats, splat)
	h = SplatHandle(len(c.splats))
	c.byPath[path] = h
	c.logger.Info("Loaded splat", log.String("path", path), log.Int("gaussians", splat.Count))
	return h, nil
}

func (c *FileSplatCache) load(path string) (Splat, error) {
	full := filepath.Join(c.root, path)
	f, err := os.Open(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		c.logger.Warn("Splat file not found, using procedural splat cloud", log.String("path", full))
		return Splat{Path: path, Count: ProceduralSplatCount, Procedural: true}, nil
	case err != nil:
		return Splat{}, fmt.Errorf("splat %q: %w: %w", path, ErrLoad, err)
	}
	defer func() { _ = f.Close() }()

	splat, err := readPLYHeader(f)
	if err != nil {
		return Splat{}, fmt.Errorf("splat %q: %w: %w", path, ErrLoad, err)
	}
	splat.Path = path
	return splat, nil
}

// readPLYHeader extracts the vertex count and vertex property names.
func readPLYHeader(r io.Reader) (Splat, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "ply" {
		return Splat{}, fmt.Errorf("%w: missing magic", ErrInvalidSplatPLY)
	}

	var (
		splat    Splat
		inVertex bool
		sawEnd   bool
	)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "element":
			inVertex = len(fields) == 3 && fields[1] == "vertex"
			if inVertex {
				n, err := strconv.Atoi(fields[2])
				if err != nil {
					return Splat{}, fmt.Errorf("%w: vertex count %q", ErrInvalidSplatPLY, fields[2])
				}
				splat.Count = n
			}
		case "property":
			if inVertex && len(fields) >= 3 {
				splat.Properties = append(splat.Properties, fields[len(fields)-1])
			}
		case "end_header":
			sawEnd = true
		}
		if sawEnd {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return Splat{}, err
	}
	if !sawEnd {
		return Splat{}, fmt.Errorf("%w: unterminated header", ErrInvalidSplatPLY)
	}
	if splat.Count <= 0 {
		return Splat{}, fmt.Errorf("%w: no vertices", ErrInvalidSplatPLY)
	}
	return splat, nil
}

func (c *FileSplatCache) Get(h SplatHandle) (Splat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !h.IsValid() || int(h) > len(c.splats) {
		return Splat{}, fmt.Errorf("splat %d: %w", h, ErrUnknownHandle)
	}
	return c.splats[h-1], nil
}

// Invalidate drops the path mapping; the next GetOrLoad reloads the file.
func (c *FileSplatCache) Invalidate(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.byPath[path]
	if ok {
		delete(c.byPath, path)
		c.logger.Info("Invalidated splat cache", log.String("path", path), log.Uint32("handle", uint32(h)))
	}
	return ok
}
