package app

import (
	"fmt"
	"os"
	"time"

	"github.com/petervdpas/tuffi/internal/assets"
	"github.com/petervdpas/tuffi/internal/bridge"
	"github.com/petervdpas/tuffi/internal/command"
	"github.com/petervdpas/tuffi/internal/config"
	"github.com/petervdpas/tuffi/internal/reload"
	"github.com/petervdpas/tuffi/internal/shell"
	"github.com/petervdpas/tuffi/internal/util"
)

// Services holds the components shared by the desktop and browser modes.
type Services struct {
	Cfg      config.Config
	Queue    *util.Queue[string]
	Bridge   *bridge.Bridge
	Assets   *assets.Manager
	Notifier *reload.Notifier // nil when watching is disabled or the root is missing
}

// NewServices builds the IPC bridge, asset manager and change notifier.
// Failing to locate assets is fatal for the caller; a missing watch root only
// disables live reload.
func NewServices(cfg config.Config) (*Services, error) {
	handler := command.NewHandler()
	dispatcher := command.Chain(
		command.Logging(),
		command.RateLimit(cfg.IPC.RateLimit, cfg.IPC.Burst),
	)(handler)

	q := util.NewQueue[string]()
	s := &Services{
		Cfg:    cfg,
		Queue:  q,
		Bridge: bridge.New(dispatcher, q),
	}

	am, err := assets.NewManager(cfg.Assets.DevDir, cfg.Assets.ProdDir, cfg.Assets.Minify)
	if err != nil {
		return nil, fmt.Errorf("asset manager: %w", err)
	}
	s.Assets = am

	if cfg.Watch.Enabled {
		root := cfg.WatchRoot()
		if info, statErr := os.Stat(root); statErr == nil && info.IsDir() {
			n, err := reload.New(root, cfg.Watch.Extensions)
			if err != nil {
				return nil, fmt.Errorf("file watcher: %w", err)
			}
			s.Notifier = n
		} else {
			log.Infof("live reload disabled: %s not found", root)
		}
	}

	log.Infof("ipc functions: %v", handler.Functions())
	return s, nil
}

// Reloads returns the reload signal channel, or nil without a notifier.
func (s *Services) Reloads() <-chan struct{} {
	if s.Notifier == nil {
		return nil
	}
	return s.Notifier.Signals()
}

// StartWatching begins delivering reload signals.
func (s *Services) StartWatching() {
	if s.Notifier != nil {
		s.Notifier.Start()
	}
}

// NewLoop wires the event loop to the given surface and window.
func (s *Services) NewLoop(surface shell.Surface, window shell.Window) *shell.Loop {
	return shell.New(surface, window, s.Queue, s.Reloads(), shell.Options{
		Tick: time.Duration(s.Cfg.Loop.TickMillis) * time.Millisecond,
	})
}

// Close stops the watcher and rejects further deliveries.
func (s *Services) Close() {
	s.Queue.Close()
	if s.Notifier != nil {
		if err := s.Notifier.Close(); err != nil {
			log.Warnf("close watcher: %v", err)
		}
	}
}
