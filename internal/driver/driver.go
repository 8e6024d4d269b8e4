// Package driver is the imperative shell: it runs the loop kernel on a
// dedicated worker goroutine, feeds it events over a channel, and for
// every wake-up the kernel requests spawns a sleeper goroutine that
// re-enqueues a TimeoutReached event at the right wall-clock instant.
// It is the direct Go translation of event_loop::driver::Threaded, with
// glib::Sender replaced by a plain Go channel of Commands — this repo
// has no glib main loop, only the GTK UI thread reading from that
// channel.
package driver

import (
	"time"

	"github.com/squeekboard/squeekboard/internal/logging"
	"github.com/squeekboard/squeekboard/internal/loop"
	"github.com/squeekboard/squeekboard/internal/visibility"
)

// Threaded owns one worker goroutine and the channel feeding it. Send is
// cheap and safe to call from any goroutine, including the UI thread's
// touch callbacks and any DBus/screensaver watcher.
type Threaded struct {
	events chan visibility.Event
	logger *logging.Logger
}

// New starts the worker goroutine and returns a handle to it. ui
// receives one Commands value per folded event, in fold order.
func New(logger *logging.Logger, ui chan<- visibility.Commands) *Threaded {
	events := make(chan visibility.Event, 16)
	t := &Threaded{events: events, logger: logger}

	go t.run(events, ui)

	return t
}

// Send enqueues an event for the worker goroutine. It never blocks
// indefinitely under correct usage (the channel is buffered); a full
// buffer indicates the worker has stalled, which is itself a Bug.
func (t *Threaded) Send(ev visibility.Event) {
	select {
	case t.events <- ev:
	default:
		if t.logger != nil {
			t.logger.Bug("event queue full, dropping event")
		}
	}
}

func (t *Threaded) run(events chan visibility.Event, ui chan<- visibility.Commands) {
	now := time.Now()
	kernel := loop.New(now, t.logger)
	var lastWake *time.Time

	for ev := range events {
		now := time.Now()
		cmds, wake := kernel.Fold(ev, now)

		select {
		case ui <- cmds:
		default:
			if t.logger != nil {
				t.logger.Warning("UI channel full, dropping commands")
			}
		}

		if !sameWake(lastWake, wake) {
			if wake != nil {
				t.scheduleTimeoutWake(*wake)
			}
			lastWake = wake
		}
	}
}

// scheduleTimeoutWake spawns a sleeper goroutine that sends
// TimeoutReached(when) once wall time reaches it. Stale sleepers that
// fire after the kernel has since rescheduled or cancelled the wake are
// harmless: the kernel folds an unrecognized TimeoutReached to a no-op.
func (t *Threaded) scheduleTimeoutWake(when time.Time) {
	go func() {
		d := time.Until(when)
		if d > 0 {
			time.Sleep(d)
		}
		t.Send(visibility.NewTimeoutReachedEvent(when))
	}()
}

func sameWake(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
