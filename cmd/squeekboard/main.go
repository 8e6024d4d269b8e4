// Command squeekboard is the on-screen keyboard daemon's entry point.
// It wires the pure core (internal/loop, internal/visibility,
// internal/layout, internal/popover) to its
// imperative shell (internal/driver, internal/gtkshell) and external
// collaborators (internal/dbusdebug, internal/screensaver,
// internal/layoutfile, internal/keymap), per §5's wiring order. Grounded
// on the teacher's src/cmd/pawgui-gtk/main.go main() shape (gtk.Init ->
// build window -> wire callbacks -> gtk.Main) and the original project's
// main.rs top-level wiring order.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/squeekboard/squeekboard/internal/config"
	"github.com/squeekboard/squeekboard/internal/dbusdebug"
	"github.com/squeekboard/squeekboard/internal/driver"
	"github.com/squeekboard/squeekboard/internal/gtkshell"
	"github.com/squeekboard/squeekboard/internal/layout"
	"github.com/squeekboard/squeekboard/internal/logging"
	"github.com/squeekboard/squeekboard/internal/popover"
	"github.com/squeekboard/squeekboard/internal/screensaver"
	"github.com/squeekboard/squeekboard/internal/visibility"
)

var version = "dev" // set via -ldflags at build time

// loggingSink is the stand-in submission sink used until a real Wayland
// virtual-keyboard/input-method binding is wired in: Wayland protocol
// object management is explicitly out of scope per the core's own
// specification (§1), so this binary logs what it would have submitted
// to the compositor instead of fabricating a fake protocol client.
type loggingSink struct {
	logger     *logging.Logger
	activeMods map[layout.Modifier]bool
	// modForKey remembers which modifier HandleAddModifier bound to a
	// given key id, since HandleDropModifier's contract (mirroring the
	// original) is only given the id back, not the modifier itself.
	modForKey map[layout.KeyID]layout.Modifier
}

func newLoggingSink(logger *logging.Logger) *loggingSink {
	return &loggingSink{
		logger:     logger,
		activeMods: make(map[layout.Modifier]bool),
		modForKey:  make(map[layout.KeyID]layout.Modifier),
	}
}

func (s *loggingSink) HandlePress(id layout.KeyID, kind layout.SubmitKind, text string, keycodes []uint32, t time.Time) {
	if s.logger != nil {
		s.logger.Debug("press %+v kind=%v text=%q keycodes=%v", id, kind, text, keycodes)
	}
}

func (s *loggingSink) HandleRelease(id layout.KeyID, t time.Time) {
	if s.logger != nil {
		s.logger.Debug("release %+v", id)
	}
}

func (s *loggingSink) IsModifierActive(m layout.Modifier) bool {
	return s.activeMods[m]
}

func (s *loggingSink) HandleAddModifier(id layout.KeyID, m layout.Modifier, t time.Time) {
	s.activeMods[m] = true
	s.modForKey[id] = m
}

func (s *loggingSink) HandleDropModifier(id layout.KeyID, t time.Time) {
	if m, ok := s.modForKey[id]; ok {
		s.activeMods[m] = false
		delete(s.modForKey, id)
	}
}

func main() {
	versionFlag := flag.Bool("version", false, "print version and exit")
	resourceRoot := flag.String("resources", "/usr/share/squeekboard", "directory containing keyboards/*.yaml layout files")
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	outputFlag := flag.String("output", "", "preferred output name")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version)
		return
	}

	settings := config.Load()
	if *debugFlag {
		settings.DebugEnabled = true
	}
	if *outputFlag != "" {
		settings.PreferredOutputName = *outputFlag
	}

	logger := logging.New(settings.DebugEnabled)

	ui := make(chan visibility.Commands, 16)
	drv := driver.New(logger, ui)
	pop := popover.New()

	sink := newLoggingSink(logger)
	shell, err := gtkshell.New(*resourceRoot, sink, drv, pop, logger)
	if err != nil {
		logger.Bug("failed to build GTK shell: %v", err)
		os.Exit(1)
	}

	debugSvc, err := dbusdebug.Start(drv, logger, settings.DebugEnabled)
	if err != nil {
		logger.Surprise("dbus debug service unavailable: %v", err)
	}
	defer debugSvc.Close()

	watcher, err := screensaver.Watch(pop, logger)
	if err != nil {
		logger.Surprise("screensaver watcher unavailable: %v", err)
	}
	defer watcher.Close()

	go func() {
		for cmds := range ui {
			shell.ApplyCommands(cmds)
		}
	}()

	shell.Run()
}
