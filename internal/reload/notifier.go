// Package reload watches the frontend build output and signals when the
// page should reload.
package reload

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("reload")

// DefaultExtensions are the asset types that trigger a reload.
var DefaultExtensions = []string{".js", ".css", ".html"}

// Notifier watches a directory tree and coalesces matching file events into
// a single pending-reload signal.
type Notifier struct {
	root    string
	exts    map[string]struct{}
	watcher *fsnotify.Watcher
	signals chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

// New creates a notifier for root. exts lists file extensions (with or
// without the leading dot); empty means DefaultExtensions.
func New(root string, exts []string) (*Notifier, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = struct{}{}
	}

	n := &Notifier{
		root:    root,
		exts:    set,
		watcher: watcher,
		signals: make(chan struct{}, 1),
		closed:  make(chan struct{}),
	}

	if err := n.addTree(root); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	return n, nil
}

// Start begins delivering signals. It returns immediately.
func (n *Notifier) Start() {
	go n.watchLoop()
	log.Infof("watching %s for %s changes", n.root, strings.Join(n.extList(), ", "))
}

// Signals yields one value whenever a reload is pending. Several file events
// in a row may collapse into a single signal.
func (n *Notifier) Signals() <-chan struct{} {
	return n.signals
}

// Matches reports whether a change to path should trigger a reload.
func (n *Notifier) Matches(path string) bool {
	_, ok := n.exts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Close stops watching. It is safe to call more than once.
func (n *Notifier) Close() error {
	var err error
	n.closeOnce.Do(func() {
		close(n.closed)
		err = n.watcher.Close()
	})
	return err
}

// addTree registers dir and every directory below it; fsnotify itself only
// watches a single level.
func (n *Notifier) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return n.watcher.Add(path)
	})
}

func (n *Notifier) watchLoop() {
	for {
		select {
		case <-n.closed:
			return
		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			n.handle(event)
		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("watcher error: %v", err)
		}
	}
}

func (n *Notifier) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := n.addTree(event.Name); err != nil {
				log.Warnf("watch new dir %s: %v", event.Name, err)
			}
			return
		}
	}

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !n.Matches(event.Name) {
		return
	}

	log.Infof("detected change in %s", event.Name)
	n.notify()
}

// notify marks a reload as pending without ever blocking.
func (n *Notifier) notify() {
	select {
	case n.signals <- struct{}{}:
	default:
	}
}

func (n *Notifier) extList() []string {
	out := make([]string, 0, len(n.exts))
	for e := range n.exts {
		out = append(out, e)
	}
	return out
}
