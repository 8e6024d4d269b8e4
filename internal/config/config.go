// Package config loads the driver's startup settings: an optional TOML
// file plus CLI flag overrides. It is deliberately thin — the spec's
// Non-goals exclude persisting keyboard *state* — but the ambient stack
// still needs a config loader, so this exercises
// github.com/BurntSushi/toml the way the teacher's own corpus does
// (NoiseTorch's config.go: decode-file, write-defaults-if-absent).
package config

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the settings file's name within its config directory.
const FileName = "config.toml"

// Settings are the startup options the driver reads before the loop
// kernel starts folding events.
type Settings struct {
	// DebugEnabled seeds the initial debug-mode flag, matching what the
	// sm.puri.SqueekDebug DBus property would otherwise set at runtime.
	DebugEnabled bool `toml:"debug_enabled"`
	// PreferredOutputName is a compositor-specific output name hint. No
	// other package reads it: the reducer always prefers the first output
	// it is told about, whatever this holds.
	PreferredOutputName string `toml:"preferred_output"`
}

// defaults returns the settings used when no file exists yet.
func defaults() Settings {
	return Settings{DebugEnabled: false, PreferredOutputName: ""}
}

// Dir resolves the config directory: $XDG_CONFIG_HOME/squeekboard, or
// ~/.config/squeekboard when that's unset.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "squeekboard")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "squeekboard")
}

func filePath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, FileName)
}

// Load reads the settings file, creating it with defaults if absent.
// Read failures fall back to defaults rather than aborting startup —
// a bad or missing config file is a Surprise, not a fatal error.
func Load() Settings {
	path := filePath()
	if path == "" {
		return defaults()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		s := defaults()
		writeFile(path, s)
		return s
	}

	s := defaults()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return defaults()
	}
	return s
}

func writeFile(path string, s Settings) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(&s); err != nil {
		return
	}
	_ = os.WriteFile(path, buf.Bytes(), 0o644)
}

// ApplyFlags overrides s with any CLI flags the caller explicitly
// passed, matching the teacher's "file settings, flags override" order
// in cmd/paw's argument handling.
func ApplyFlags(s Settings, fs *flag.FlagSet, args []string) Settings {
	debug := fs.Bool("debug", s.DebugEnabled, "enable debug logging")
	output := fs.String("output", s.PreferredOutputName, "preferred output name")
	fs.Parse(args)

	s.DebugEnabled = *debug
	s.PreferredOutputName = *output
	return s
}
