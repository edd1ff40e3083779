// main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	stdlog "log"

	tuffiapp "github.com/petervdpas/tuffi/internal/app"
	"github.com/petervdpas/tuffi/internal/chrome"
	"github.com/petervdpas/tuffi/internal/config"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

var (
	showHelp    = flag.Bool("h", false, "Show help")
	version     = flag.Bool("version", false, "Show version")
	cfgPath     = flag.String("config", "tuffi.json", "Path to the configuration file")
	serveAddr   = flag.String("serve", "", "Serve the UI to a browser on this address instead of opening a window")
	openBrowser = flag.Bool("open", false, "With -serve, open the default browser")
)

// appVersion is set at build time via -ldflags "-X main.appVersion=x.y.z"
var appVersion = "dev"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("Tuffi v%s\n", appVersion)
		return
	}

	if *showHelp {
		showUsage()
		return
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}
	if err := tuffiapp.SetupLogging(cfg.Log); err != nil {
		stdlog.Fatalf("Invalid log configuration: %v", err)
	}

	addr := *serveAddr
	if addr == "" {
		addr = cfg.Dev.ServeAddr
	}
	if addr != "" {
		runBrowser(cfg, addr)
		return
	}

	runDesktopApp(cfg)
}

// loadConfig reads path, writing the defaults there when it does not exist.
func loadConfig(path string) (config.Config, error) {
	cfg, created, err := config.Ensure(path)
	if err != nil {
		return config.Config{}, err
	}
	if created {
		stdlog.Printf("Wrote default config to %s", path)
	}
	return cfg, nil
}

func runDesktopApp(cfg config.Config) {
	svc, err := tuffiapp.NewServices(cfg)
	if err != nil {
		stdlog.Fatalf("Startup failed: %v", err)
	}

	background := chrome.DarkGrey
	if bg, err := config.ParseColour(cfg.Window.Background); err == nil {
		background = chrome.RGBA{R: bg[0], G: bg[1], B: bg[2], A: bg[3]}
	}
	look := chrome.Options{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Resizable:  cfg.Window.Resizable,
		Borderless: cfg.Window.Borderless,
		Background: background,
	}

	app := NewApp(svc, look)

	opts := &options.App{
		AssetServer: &assetserver.Options{
			Handler: svc.Assets.Handler(),
		},

		OnStartup:     app.startup,
		OnBeforeClose: app.beforeClose,
		OnShutdown:    app.shutdown,
		Bind:          []any{app},
	}
	chrome.Apply(opts, look)

	if err := wails.Run(opts); err != nil {
		stdlog.Fatal(err)
	}
}

func runBrowser(cfg config.Config, addr string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		stdlog.Println("\nShutting down gracefully...")
		cancel()
	}()

	if err := tuffiapp.Run(ctx, tuffiapp.Options{
		Cfg:         cfg,
		Addr:        addr,
		OpenBrowser: *openBrowser,
	}); err != nil {
		stdlog.Fatalf("Dev server failed: %v", err)
	}
}

func showUsage() {
	fmt.Println("Tuffi - desktop web shell")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tuffi                       Run desktop application (default)")
	fmt.Println("  tuffi -serve :5174          Serve the UI to a browser instead")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -config <file>  Configuration file (default tuffi.json; created when missing)")
	fmt.Println("  -serve <addr>   Run without a native window, IPC over websocket")
	fmt.Println("  -open           With -serve, open the default browser")
	fmt.Println("  -h              Show this help message")
	fmt.Println("  -version        Show version information")
	fmt.Println()
	fmt.Println("Assets are read from frontend/dist when it exists, otherwise from")
	fmt.Println("the assets directory next to the executable. Changes to .js, .css")
	fmt.Println("and .html files under the watch root reload the page.")
}
