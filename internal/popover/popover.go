// Package popover holds the small piece of state the GTK UI thread reads
// when the user opens the keyboard's preferences popover. It is the one
// piece of application state that is not owned exclusively by the loop
// worker: the screensaver watcher and the command applier both write to
// it, so a mutex — not a channel — guards it, matching the "wrapped
// mutable state" collapse described for cross-actor shared records.
package popover

import "sync"

// State is a snapshot of the popover's two independent fields.
type State struct {
	// Overlay is the locally-defined layout id currently selected for
	// the overlay switcher, or "" when none is selected.
	Overlay string
	// SettingsActive reports whether the settings button should be
	// enabled; it is disabled while the screensaver is active.
	SettingsActive bool
}

// Popover is a single-slot, mutex-guarded actor. Writers serialize through
// the mutex; readers take a snapshot under the same mutex. Events applied
// out of order are harmless because Overlay and SettingsActive are
// independent fields.
type Popover struct {
	mu    sync.Mutex
	state State
}

// New creates a Popover with settings enabled and no overlay selected.
func New() *Popover {
	return &Popover{state: State{SettingsActive: true}}
}

// Snapshot returns a copy of the current state.
func (p *Popover) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetOverlay replaces the selected overlay name. Called by the main-loop
// command applier on every Commands.LayoutSelection, with that
// selection's overlay name ("" when it names none).
func (p *Popover) SetOverlay(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Overlay = name
}

// SetScreensaverActive flips SettingsActive to the logical negation of b.
// Called by the screensaver watcher thread on ActiveChanged(b).
func (p *Popover) SetScreensaverActive(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.SettingsActive = !active
}
