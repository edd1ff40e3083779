package app

import (
	"context"
	"errors"
	"time"

	"github.com/petervdpas/tuffi/internal/config"
	"github.com/petervdpas/tuffi/internal/devserver"
)

type Options struct {
	Cfg         config.Config
	Addr        string
	OpenBrowser bool
}

// Run serves the UI to a browser and drives the event loop until ctx ends.
func Run(ctx context.Context, opt Options) error {
	svc, err := NewServices(opt.Cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	listenAddr, url := NormalizeLocalAddr(opt.Addr)
	srv := devserver.New(listenAddr, svc.Assets.Handler(), svc.Bridge)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	logBanner(url, svc)

	if opt.OpenBrowser {
		go func() {
			if err := WaitTCP(listenAddr, 5*time.Second); err != nil {
				log.Warnf("dev server not reachable: %v", err)
				return
			}
			if err := OpenBrowser(url); err != nil {
				log.Warnf("open browser: %v", err)
			}
		}()
	}

	svc.StartWatching()
	loop := svc.NewLoop(quietSurface{srv}, srv)

	err = loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// quietSurface drops scripts while no browser is connected; the dev server
// reports that as an error on every reload otherwise.
type quietSurface struct {
	srv *devserver.Server
}

func (q quietSurface) EvaluateScript(js string) error {
	err := q.srv.EvaluateScript(js)
	if errors.Is(err, devserver.ErrNoClients) {
		log.Debugf("no browser connected, script dropped")
		return nil
	}
	return err
}

func logBanner(url string, svc *Services) {
	log.Info("────────────────────────────────────────")
	log.Infof("Tuffi dev server: %s", url)
	log.Infof("Assets:           %s (dev=%v)", svc.Assets.Base(), svc.Assets.Dev())
	if svc.Notifier != nil {
		log.Infof("Live reload:      %s", svc.Cfg.WatchRoot())
	}
	log.Info("────────────────────────────────────────")
}
