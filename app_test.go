package main

import (
	"os"
	"path/filepath"
	"testing"

	tuffiapp "github.com/petervdpas/tuffi/internal/app"
	"github.com/petervdpas/tuffi/internal/chrome"
	"github.com/petervdpas/tuffi/internal/config"
)

func TestLoadConfigMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuffi.json")
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Window.Title != config.Default().Window.Title {
		t.Fatalf("expected defaults, got %+v", cfg.Window)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if again, err := loadConfig(path); err != nil || again.Window.Title != cfg.Window.Title {
		t.Fatalf("reload of written config: %+v, %v", again.Window, err)
	}
}

func TestLoadConfigInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuffi.json")
	os.WriteFile(path, []byte(`{"window":{"width":-1}}`), 0o644)
	if _, err := loadConfig(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestPostMessage(t *testing.T) {
	cfg := config.Default()
	cfg.Assets.DevDir = t.TempDir()
	cfg.Watch.Enabled = false

	svc, err := tuffiapp.NewServices(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	app := NewApp(svc, chrome.Options{Title: "t"})
	resp := app.PostMessage(`{"function":"add","args":["2","3"]}`)
	if !resp.Success || resp.Data == nil || *resp.Data != "Sum: 5" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if svc.Queue.Len() != 1 {
		t.Fatalf("expected one queued delivery, got %d", svc.Queue.Len())
	}

	resp = app.PostMessage(`garbage`)
	if resp.Success || resp.Error == nil {
		t.Fatalf("expected failure, got %+v", resp)
	}
}

func TestWebviewNotReady(t *testing.T) {
	w := webview{a: &App{}}
	if err := w.EvaluateScript("x()"); err == nil {
		t.Fatal("expected error before startup")
	}
	w.RequestRedraw()
	if w.a.redraws.Load() != 1 {
		t.Fatal("redraw not counted")
	}
}

type recordingChrome struct {
	styled chrome.Options
	titles []string
}

func (c *recordingChrome) StyleWindow(o chrome.Options) { c.styled = o }
func (c *recordingChrome) SetTitles(title string) { c.titles = append(c.titles, title) }

func TestStyleAppliesLook(t *testing.T) {
	look := chrome.Options{Title: "Tuffi", Width: 600, Height: 300, Background: chrome.DarkGrey}
	app := NewApp(nil, look)

	rc := &recordingChrome{}
	app.style(rc)
	if rc.styled != look {
		t.Fatalf("styled with %+v, want %+v", rc.styled, look)
	}
	if len(rc.titles) != 1 || rc.titles[0] != "Tuffi" {
		t.Fatalf("titles %v", rc.titles)
	}
}
