// Package screensaver subscribes to org.freedesktop.ScreenSaver's
// ActiveChanged signal and forwards it to the popover actor (component
// E), per §6. Built on github.com/godbus/dbus/v5's signal-match/channel
// idiom, the same library internal/dbusdebug uses for its service side.
package screensaver

import (
	"github.com/godbus/dbus/v5"

	"github.com/squeekboard/squeekboard/internal/logging"
	"github.com/squeekboard/squeekboard/internal/popover"
)

const (
	busName       = "org.freedesktop.ScreenSaver"
	objectPath    = dbus.ObjectPath("/org/freedesktop/ScreenSaver")
	interfaceName = "org.freedesktop.ScreenSaver"
	signalMember  = "ActiveChanged"
)

// Watcher owns the DBus connection and the goroutine draining its
// signal channel. Close stops the goroutine and disconnects.
type Watcher struct {
	conn   *dbus.Conn
	done   chan struct{}
	logger *logging.Logger
}

// Watch connects to the session bus, subscribes to ActiveChanged, and
// forwards every signal to pop.SetScreensaverActive. A connection
// failure is a Surprise, not fatal: callers may choose to run without
// screensaver awareness rather than abort startup.
func Watch(pop *popover.Popover, logger *logging.Logger) (*Watcher, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}

	matchRule := []dbus.MatchOption{
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(interfaceName),
		dbus.WithMatchMember(signalMember),
	}
	if err := conn.AddMatchSignal(matchRule...); err != nil {
		conn.Close()
		return nil, err
	}

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)

	w := &Watcher{conn: conn, done: make(chan struct{}), logger: logger}
	go w.run(signals, pop)
	return w, nil
}

func (w *Watcher) run(signals chan *dbus.Signal, pop *popover.Popover) {
	for {
		select {
		case sig, ok := <-signals:
			if !ok {
				return
			}
			active, ok := parseActiveChanged(sig)
			if !ok {
				if w.logger != nil {
					w.logger.Surprise("ignoring malformed %s signal", signalMember)
				}
				continue
			}
			pop.SetScreensaverActive(active)
		case <-w.done:
			return
		}
	}
}

// parseActiveChanged extracts the bool payload from an ActiveChanged
// signal, rejecting anything not matching the expected member/body
// shape (another application's signal leaking through a broad match,
// or a future protocol revision).
func parseActiveChanged(sig *dbus.Signal) (bool, bool) {
	if sig == nil || sig.Name != interfaceName+"."+signalMember {
		return false, false
	}
	if len(sig.Body) != 1 {
		return false, false
	}
	active, ok := sig.Body[0].(bool)
	return active, ok
}

// Close stops the watcher goroutine and disconnects from the bus.
func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	close(w.done)
	if w.conn != nil {
		return w.conn.Close()
	}
	return nil
}
