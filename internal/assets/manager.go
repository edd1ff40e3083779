// Package assets locates the frontend build and serves it to the webview.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/petervdpas/tuffi/internal/util"
)

var log = logging.Logger("assets")

// ErrOutsideRoot is returned for paths that would escape the asset directory.
var ErrOutsideRoot = errors.New("path escapes asset directory")

const indexFile = "index.html"

// Manager reads frontend files from a base directory chosen at startup.
type Manager struct {
	base string
	dev  bool

	min   *minify.M
	mu    sync.Mutex
	cache map[string][]byte
}

// NewManager picks devDir when it exists (development), otherwise prodDir
// resolved against the executable's directory. Files are minified in
// production when minified is true.
func NewManager(devDir, prodDir string, minified bool) (*Manager, error) {
	if devDir != "" {
		if info, err := os.Stat(devDir); err == nil && info.IsDir() {
			log.Infof("serving development assets from %s", devDir)
			return &Manager{base: devDir, dev: true}, nil
		}
	}

	exeDir, err := util.ExecutableDir()
	if err != nil {
		return nil, fmt.Errorf("resolve executable dir: %w", err)
	}
	m := newManager(util.ResolvePath(exeDir, prodDir), minified)
	log.Infof("serving assets from %s (minify=%v)", m.base, minified)
	return m, nil
}

// NewManagerAt serves production-style from base.
func NewManagerAt(base string, minified bool) *Manager {
	return newManager(base, minified)
}

func newManager(base string, minified bool) *Manager {
	m := &Manager{base: base}
	if minified {
		m.min = minify.New()
		m.min.AddFunc("text/css", css.Minify)
		m.min.AddFunc("text/html", html.Minify)
		m.min.AddFunc("application/javascript", js.Minify)
		m.cache = make(map[string][]byte)
	}
	return m
}

// Base is the directory assets are read from.
func (m *Manager) Base() string { return m.base }

// Dev reports whether the development directory is in use.
func (m *Manager) Dev() bool { return m.dev }

// Load reads a file relative to the base directory.
func (m *Manager) Load(rel string) ([]byte, error) {
	p, err := m.resolve(rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// HTML returns the main document, minified in production.
func (m *Manager) HTML() ([]byte, error) {
	return m.load(indexFile, staticTypes[".html"])
}

func (m *Manager) resolve(rel string) (string, error) {
	rel = filepath.FromSlash(strings.TrimPrefix(rel, "/"))
	if rel == "" || filepath.IsAbs(rel) {
		return "", ErrOutsideRoot
	}
	clean := filepath.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return filepath.Join(m.base, clean), nil
}

// load reads rel and, in production, minifies text assets once.
func (m *Manager) load(rel, contentType string) ([]byte, error) {
	mt := minifyType(contentType)
	if m.min == nil || mt == "" {
		return m.Load(rel)
	}

	m.mu.Lock()
	data, ok := m.cache[rel]
	m.mu.Unlock()
	if ok {
		return data, nil
	}

	raw, err := m.Load(rel)
	if err != nil {
		return nil, err
	}
	out, err := m.min.Bytes(mt, raw)
	if err != nil {
		log.Warnf("minify %s: %v (using original)", rel, err)
		out = raw
	}

	m.mu.Lock()
	m.cache[rel] = out
	m.mu.Unlock()
	return out, nil
}
