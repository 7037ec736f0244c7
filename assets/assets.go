// Package assets serves the benchmark's static pages, either from the bundle compiled into the
// binary or, during development, straight from a directory on disk.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/latency-benchmark/latency-server/framework/opt"

	"golang.org/x/exp/maps"
)

//go:embed html
var embedded embed.FS

// Asset is one static file.
type Asset struct {
	Path        string
	ContentType string
	Data        []byte
}

// ResourceProvider looks up a static file by its virtual path, such as "html/index.html".
type ResourceProvider interface {
	Resolve(virtualPath string) opt.Maybe[Asset]
}

// Bundle is an immutable in-memory set of assets. It is fully loaded when it is created, so
// lookups never touch the filesystem and are safe from any number of goroutines.
type Bundle struct {
	assets map[string]Asset
}

// EmbeddedBundle returns the pages compiled into the binary.
func EmbeddedBundle() (*Bundle, error) {
	return NewBundle(embedded)
}

// NewBundle reads every regular file in fsys into memory.
func NewBundle(fsys fs.FS) (*Bundle, error) {
	b := &Bundle{assets: make(map[string]Asset)}
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		b.assets[name] = Asset{Path: name, ContentType: ContentTypeFor(name), Data: data}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load asset bundle: %w", err)
	}
	return b, nil
}

func (b *Bundle) Resolve(virtualPath string) opt.Maybe[Asset] {
	if a, ok := b.assets[virtualPath]; ok {
		return opt.Some(a)
	}
	return opt.None[Asset]()
}

// Paths returns the virtual paths of all assets in sorted order.
func (b *Bundle) Paths() []string {
	paths := maps.Keys(b.assets)
	sort.Strings(paths)
	return paths
}

// Directory reads assets from disk on every request. Virtual paths are resolved relative to
// the base directory, and paths that would escape it are never found.
type Directory struct {
	fsys fs.FS
}

// NewDirectory creates a Directory rooted at dir.
func NewDirectory(dir string) *Directory {
	return &Directory{fsys: os.DirFS(dir)}
}

func (d *Directory) Resolve(virtualPath string) opt.Maybe[Asset] {
	if !fs.ValidPath(virtualPath) {
		return opt.None[Asset]()
	}
	info, err := fs.Stat(d.fsys, virtualPath)
	if err != nil || !info.Mode().IsRegular() {
		return opt.None[Asset]()
	}
	data, err := fs.ReadFile(d.fsys, virtualPath)
	if err != nil {
		return opt.None[Asset]()
	}
	return opt.Some(Asset{Path: virtualPath, ContentType: ContentTypeFor(virtualPath), Data: data})
}

// ContentTypeFor infers a content type from the file extension, falling back to text/plain.
func ContentTypeFor(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if t, ok := contentTypes[ext]; ok {
		return t
	}
	return defaultContentType
}

const defaultContentType = "text/plain"

var contentTypes = map[string]string{ //nolint:gochecknoglobals
	"css":   "text/css",
	"gif":   "image/gif",
	"htm":   "text/html",
	"html":  "text/html",
	"ico":   "image/x-icon",
	"jpeg":  "image/jpeg",
	"jpg":   "image/jpeg",
	"js":    "application/javascript",
	"json":  "application/json",
	"png":   "image/png",
	"svg":   "image/svg+xml",
	"txt":   "text/plain",
	"wasm":  "application/wasm",
	"webp":  "image/webp",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"xml":   "text/xml",
}
