package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/petervdpas/tuffi/internal/util"
)

type Config struct {
	Window Window `json:"window"`
	Assets Assets `json:"assets"`
	Watch  Watch  `json:"watch"`
	IPC    IPC    `json:"ipc"`
	Loop   Loop   `json:"loop"`
	Log    Log    `json:"log"`
	Dev    Dev    `json:"dev"`
}

type Window struct {
	Title      string `json:"title"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Resizable  bool   `json:"resizable"`
	Borderless bool   `json:"borderless"`

	// Background colour as "#rrggbb" or "#rrggbbaa".
	Background string `json:"background"`
}

type Assets struct {
	// Development build output. Used when it exists, relative to the working directory.
	DevDir string `json:"dev_dir"`

	// Fallback directory, relative to the executable.
	ProdDir string `json:"prod_dir"`

	// Minify JS/CSS/HTML when serving from ProdDir.
	Minify bool `json:"minify"`
}

type Watch struct {
	Enabled bool `json:"enabled"`

	// Directory watched recursively. Empty means assets.dev_dir.
	Root string `json:"root"`

	// File extensions that trigger a reload.
	Extensions []string `json:"extensions"`
}

type IPC struct {
	// Calls per second allowed through the handler. 0 disables limiting.
	RateLimit float64 `json:"rate_limit"`
	Burst     int     `json:"burst"`
}

type Loop struct {
	TickMillis int `json:"tick_ms"`
}

type Log struct {
	// Default level for all subsystems: debug, info, warn, error.
	Level string `json:"level"`

	// Per-subsystem overrides, e.g. {"ipc": "debug"}.
	Levels map[string]string `json:"levels"`
}

type Dev struct {
	// Address for the browser dev server (-serve). Empty disables it.
	ServeAddr string `json:"serve_addr"`
}

func Default() Config {
	return Config{
		Window: Window{
			Title:      "React GUI In Go",
			Width:      600,
			Height:     300,
			Resizable:  false,
			Borderless: true,
			Background: "#333333",
		},
		Assets: Assets{
			DevDir:  "frontend/dist",
			ProdDir: "assets",
			Minify:  true,
		},
		Watch: Watch{
			Enabled:    true,
			Root:       "",
			Extensions: []string{".js", ".css", ".html"},
		},
		IPC: IPC{
			RateLimit: 0,
			Burst:     20,
		},
		Loop: Loop{
			TickMillis: 16,
		},
		Log: Log{
			Level: "info",
		},
		Dev: Dev{
			ServeAddr: "",
		},
	}
}

var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
	"dpanic": true, "panic": true, "fatal": true,
}

func (c *Config) Validate() error {
	// Window
	if strings.TrimSpace(c.Window.Title) == "" {
		return errors.New("window.title is required")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.New("window.width and window.height must be > 0")
	}
	if _, err := ParseColour(c.Window.Background); err != nil {
		return fmt.Errorf("window.background: %w", err)
	}

	// Assets
	if strings.TrimSpace(c.Assets.DevDir) == "" && strings.TrimSpace(c.Assets.ProdDir) == "" {
		return errors.New("assets.dev_dir or assets.prod_dir is required")
	}

	// Watch
	if c.Watch.Enabled && len(c.Watch.Extensions) == 0 {
		return errors.New("watch.extensions must not be empty when watch is enabled")
	}

	// IPC
	if c.IPC.RateLimit < 0 {
		return errors.New("ipc.rate_limit must be >= 0")
	}
	if c.IPC.RateLimit > 0 && c.IPC.Burst <= 0 {
		return errors.New("ipc.burst must be > 0 when ipc.rate_limit is set")
	}

	// Loop
	if c.Loop.TickMillis < 1 || c.Loop.TickMillis > 1000 {
		return errors.New("loop.tick_ms must be 1..1000")
	}

	// Log
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level %q is not a known level", c.Log.Level)
	}
	for name, lvl := range c.Log.Levels {
		if !validLevels[strings.ToLower(lvl)] {
			return fmt.Errorf("log.levels.%s: %q is not a known level", name, lvl)
		}
	}

	// Dev
	if a := strings.TrimSpace(c.Dev.ServeAddr); a != "" {
		if _, _, err := net.SplitHostPort(a); err != nil {
			return fmt.Errorf("dev.serve_addr: %w", err)
		}
	}

	return nil
}

// WatchRoot is the directory to watch for reloads.
func (c *Config) WatchRoot() string {
	if r := strings.TrimSpace(c.Watch.Root); r != "" {
		return r
	}
	return c.Assets.DevDir
}

// ParseColour parses "#rrggbb" or "#rrggbbaa".
func ParseColour(s string) ([4]uint8, error) {
	var out [4]uint8
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return out, errors.New("colour must be #rrggbb or #rrggbbaa")
	}
	out[3] = 255
	for i := 0; i < len(s)/2; i++ {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return out, fmt.Errorf("invalid colour %q", s)
		}
		out[i] = uint8(v)
	}
	return out, nil
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	// Strip UTF-8 BOM if present (common when editing JSON on Windows).
	b = stripBOM(b)

	// Start from defaults so missing JSON fields remain initialized.
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// stripBOM removes a UTF-8 byte order mark if present.
func stripBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}

// Save validates cfg and writes it to path as indented JSON.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}
	return util.WriteJSONFile(path, cfg)
}

// Ensure loads path, writing the defaults there first when the file does not
// exist. created reports whether a new file was written.
func Ensure(path string) (cfg Config, created bool, err error) {
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		cfg, err = Load(path)
		return cfg, false, err
	case !os.IsNotExist(statErr):
		return Config{}, false, statErr
	}

	cfg = Default()
	if err := Save(path, cfg); err != nil {
		return Config{}, false, fmt.Errorf("write default config %s: %w", path, err)
	}
	return cfg, true, nil
}
