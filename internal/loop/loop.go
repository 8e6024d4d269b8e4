// Package loop is the event-loop kernel: it holds the single writable
// copy of the visibility reducer's Application state plus the last
// scheduled wake-up, and folds one event at a time into a new state and
// a Commands value. It is deliberately thin — the concrete
// Application/Outcome types live in internal/visibility, so there is no
// generic actor-state abstraction to maintain; this system only ever
// has the one reducer.
package loop

import (
	"time"

	"github.com/squeekboard/squeekboard/internal/logging"
	"github.com/squeekboard/squeekboard/internal/visibility"
)

// Kernel is the pure-ish fold step: it keeps the previous Outcome around
// so DiffTo has something to compare against, and the most recently
// computed wake target (see NextWake). It does not compare wake targets;
// the driver does that before arming a new timer.
type Kernel struct {
	state       visibility.Application
	lastOutcome visibility.Outcome
	lastWake    *time.Time
	logger      *logging.Logger
}

// New creates a Kernel seeded with a fresh Application at now.
func New(now time.Time, logger *logging.Logger) *Kernel {
	state := visibility.NewApplication(now)
	return &Kernel{
		state:       state,
		lastOutcome: state.GetOutcome(now),
		logger:      logger,
	}
}

// Fold applies one event and returns the commands needed to move the UI
// from the previous outcome to the new one, plus the next wake-up
// target the driver should arm a sleeper for (nil means none pending).
func (k *Kernel) Fold(ev visibility.Event, now time.Time) (visibility.Commands, *time.Time) {
	next := k.state.ApplyEvent(ev, now, k.logger)

	if k.logger != nil {
		k.logger.SetDebugEnabled(next.DebugModeEnabled)
	}

	outcome := next.GetOutcome(now)
	cmds := visibility.DiffTo(k.lastOutcome, outcome)

	k.state = next
	k.lastOutcome = outcome
	k.lastWake = next.GetNextWake(now)

	return cmds, k.lastWake
}

// NextWake reports the most recently computed wake-up target.
func (k *Kernel) NextWake() *time.Time {
	return k.lastWake
}

// Outcome returns the most recently computed outcome, for callers (like
// the popover command applier) that need read access between folds.
func (k *Kernel) Outcome() visibility.Outcome {
	return k.lastOutcome
}
