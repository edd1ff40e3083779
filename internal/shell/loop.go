// Package shell runs the cooperative loop that applies queued responses and
// reload requests to the web UI.
package shell

import (
	"context"
	"sync/atomic"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/petervdpas/tuffi/internal/util"
)

var log = logging.Logger("shell")

// ReloadScript asks the page to refresh itself. A dev bundle may install
// window.__HMR_RELOAD__ to swap modules instead of reloading the document.
const ReloadScript = "if (typeof window.__HMR_RELOAD__ === 'function') { window.__HMR_RELOAD__(); } else { window.location.reload(); }"

// DefaultTick is the polling interval used when Options.Tick is zero.
const DefaultTick = 16 * time.Millisecond

// Surface executes scripts in the page.
type Surface interface {
	EvaluateScript(js string) error
}

// Window is the native window hosting the surface.
type Window interface {
	RequestRedraw()
}

// Options tune the loop.
type Options struct {
	Tick time.Duration
}

// Loop drains the delivery queue and the reload channel once per tick. It is
// the only consumer of both.
type Loop struct {
	surface    Surface
	window     Window
	deliveries *util.Queue[string]
	reloads    <-chan struct{}
	tick       time.Duration

	closing atomic.Bool
}

// New wires a loop. reloads may be nil when live reload is disabled.
func New(surface Surface, window Window, deliveries *util.Queue[string], reloads <-chan struct{}, opts Options) *Loop {
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Loop{
		surface:    surface,
		window:     window,
		deliveries: deliveries,
		reloads:    reloads,
		tick:       tick,
	}
}

// RequestClose makes the loop exit on its next tick.
func (l *Loop) RequestClose() {
	l.closing.Store(true)
}

// Tick applies everything pending and reports whether the loop should keep
// running. It never blocks.
func (l *Loop) Tick() bool {
	if l.closing.Load() {
		return false
	}

	for l.reloadPending() {
		log.Infof("file change detected at %s, reloading", time.Now().Format(time.RFC3339))
		if err := l.surface.EvaluateScript(ReloadScript); err != nil {
			log.Errorf("failed to reload page: %v", err)
		}
		l.window.RequestRedraw()
	}

	for {
		js, ok := l.deliveries.TryPop()
		if !ok {
			break
		}
		if err := l.surface.EvaluateScript(js); err != nil {
			log.Errorf("failed to evaluate script: %v", err)
		}
		l.window.RequestRedraw()
	}

	return !l.closing.Load()
}

func (l *Loop) reloadPending() bool {
	if l.reloads == nil {
		return false
	}
	select {
	case _, ok := <-l.reloads:
		if !ok {
			l.reloads = nil
			return false
		}
		return true
	default:
		return false
	}
}

// Run ticks until a close is requested or ctx ends.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	for {
		if !l.Tick() {
			log.Debugf("close requested, leaving event loop")
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
