// Package fonts resolves font identifiers used by text watermarks into
// font faces. The Go font family is always available; more fonts can be
// registered from TrueType/OpenType files.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Default is the font used when a text watermark names none.
const Default = "Go-Regular"

var ErrUnknownFont = errors.New("unknown font")

var builtin = map[string][]byte{
	"Go-Regular":     goregular.TTF,
	"Go-Bold":        gobold.TTF,
	"Go-Italic":      goitalic.TTF,
	"Go-Bold-Italic": gobolditalic.TTF,
	"Go-Medium":      gomedium.TTF,
	"Go-Mono":        gomono.TTF,
	"Go-Mono-Bold":   gomonobold.TTF,
}

type source struct {
	name string
	data []byte // builtin fonts
	path string // fonts registered from disk
}

// Registry maps font identifiers to fonts. Parsed fonts are cached;
// faces are created per call because a font.Face is not safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]source
	parsed  sync.Map
}

// NewRegistry returns a registry holding the Go font family.
func NewRegistry() *Registry {
	r := &Registry{sources: make(map[string]source, len(builtin))}
	for name, data := range builtin {
		r.sources[strings.ToLower(name)] = source{name: name, data: data}
	}
	return r
}

// AddFile registers the font file at path under name.
func (r *Registry) AddFile(name, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(name)
	r.sources[key] = source{name: name, path: path}
	r.parsed.Delete(key)
}

// AddDir registers every .ttf and .otf file of dir under its file name
// without extension, e.g. "Roboto-Regular".
func (r *Registry) AddDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read font dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}
		r.AddFile(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())), filepath.Join(dir, e.Name()))
	}
	return nil
}

// Names lists the registered identifiers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for _, s := range r.sources {
		names = append(names, s.name)
	}
	slices.Sort(names)
	return names
}

// Has reports whether name is registered. Lookups ignore case.
func (r *Registry) Has(name string) bool {
	if name == "" {
		name = Default
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sources[strings.ToLower(name)]
	return ok
}

// Face returns a new face of the named font at size points (72 DPI, so
// one point is one pixel). The caller closes it.
func (r *Registry) Face(name string, size float64) (font.Face, error) {
	f, err := r.font(name)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face %q: %w", name, err)
	}
	return face, nil
}

func (r *Registry) font(name string) (*opentype.Font, error) {
	if name == "" {
		name = Default
	}
	key := strings.ToLower(name)
	if v, ok := r.parsed.Load(key); ok {
		return v.(*opentype.Font), nil
	}

	r.mu.RLock()
	src, ok := r.sources[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFont, name)
	}
	data := src.data
	if data == nil {
		b, err := os.ReadFile(src.path)
		if err != nil {
			return nil, fmt.Errorf("read font %q: %w", name, err)
		}
		data = b
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %q: %w", name, err)
	}
	actual, _ := r.parsed.LoadOrStore(key, f)
	return actual.(*opentype.Font), nil
}
