// app.go
package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	tuffiapp "github.com/petervdpas/tuffi/internal/app"
	"github.com/petervdpas/tuffi/internal/chrome"
	"github.com/petervdpas/tuffi/internal/proto"
	"github.com/petervdpas/tuffi/internal/shell"

	logging "github.com/ipfs/go-log/v2"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

var log = logging.Logger("app")

// App is bound to the Wails frontend and owns the window handles for the
// lifetime of the process.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	svc       *tuffiapp.Services
	look      chrome.Options
	newChrome func(context.Context) chrome.Chrome

	mu      sync.Mutex
	loop    *shell.Loop
	done    chan struct{}
	redraws atomic.Int64
}

func NewApp(svc *tuffiapp.Services, opts chrome.Options) *App {
	return &App{
		svc:  svc,
		look: opts,
		newChrome: func(ctx context.Context) chrome.Chrome {
			return chrome.NewRuntime(ctx)
		},
		done: make(chan struct{}),
	}
}

func (a *App) startup(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)

	a.style(a.newChrome(ctx))

	// The frontend posts raw request envelopes on the "ipc" event. Wails runs
	// each callback on its own goroutine.
	runtime.EventsOn(ctx, proto.MessageEvent, func(data ...interface{}) {
		for _, d := range data {
			raw, ok := d.(string)
			if !ok {
				raw = fmt.Sprint(d)
			}
			a.svc.Bridge.Receive(raw)
		}
	})

	a.mu.Lock()
	a.loop = a.svc.NewLoop(webview{a}, webview{a})
	loop := a.loop
	a.mu.Unlock()

	a.svc.StartWatching()

	go func() {
		defer close(a.done)
		if err := loop.Run(a.ctx); err != nil && a.ctx.Err() == nil {
			log.Errorf("event loop: %v", err)
		}
	}()
}

// style applies the configured look to a window that already exists.
func (a *App) style(c chrome.Chrome) {
	c.StyleWindow(a.look)
	c.SetTitles(a.look.Title)
}

func (a *App) beforeClose(ctx context.Context) (prevent bool) {
	a.mu.Lock()
	loop := a.loop
	a.mu.Unlock()
	if loop != nil {
		loop.RequestClose()
	}
	return false
}

func (a *App) shutdown(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
		<-a.done
	}
	a.svc.Close()
	log.Infof("shutdown complete (%d redraws requested)", a.redraws.Load())
}

// -------------------------
// Frontend API
// -------------------------

// PostMessage handles one raw request envelope. The response is delivered as
// a 'rust-response' DOM event; it is also returned for callers that await the
// binding directly.
func (a *App) PostMessage(raw string) proto.Response {
	return a.svc.Bridge.Receive(raw)
}

// -------------------------
// shell.Surface / shell.Window
// -------------------------

// webview adapts the Wails window to the event loop. It is kept off App so
// Wails does not bind these methods to the frontend.
type webview struct {
	a *App
}

func (w webview) EvaluateScript(js string) error {
	if w.a.ctx == nil {
		return fmt.Errorf("webview not ready")
	}
	runtime.WindowExecJS(w.a.ctx, js)
	return nil
}

// RequestRedraw is counted only; the webview repaints after script execution.
func (w webview) RequestRedraw() {
	w.a.redraws.Add(1)
}
