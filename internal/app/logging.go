package app

import (
	"fmt"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"github.com/petervdpas/tuffi/internal/config"
)

var log = logging.Logger("app")

// subsystems lists every logger name the shell registers.
var subsystems = []string{"app", "assets", "devserver", "ipc", "reload", "shell"}

// SetupLogging applies the configured default level to every subsystem, then
// the per-subsystem overrides.
func SetupLogging(c config.Log) error {
	level := strings.ToLower(c.Level)
	for _, name := range subsystems {
		if err := logging.SetLogLevel(name, level); err != nil {
			return fmt.Errorf("log level %s=%s: %w", name, level, err)
		}
	}
	for name, lvl := range c.Levels {
		if err := logging.SetLogLevel(name, strings.ToLower(lvl)); err != nil {
			return fmt.Errorf("log level %s=%s: %w", name, lvl, err)
		}
	}
	return nil
}
