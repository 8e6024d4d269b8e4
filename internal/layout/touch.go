package layout

import "time"

// SubmitKind distinguishes what a key submission sink is being asked to
// do.
type SubmitKind int

const (
	SubmitText SubmitKind = iota
	SubmitKeycodes
	SubmitErase
)

// KeyID is the stable identifier passed to a SubmissionSink, derived
// from a ButtonPosition so repeated presses of the same key produce a
// stable id across releases.
type KeyID ButtonPosition

// SubmissionSink is the external contract a Layout drives on press and
// release. Implementations forward to the virtual-keyboard/input-method
// protocol objects; this package only calls it.
type SubmissionSink interface {
	HandlePress(id KeyID, kind SubmitKind, text string, keycodes []uint32, t time.Time)
	HandleRelease(id KeyID, t time.Time)
	IsModifierActive(m Modifier) bool
	HandleAddModifier(id KeyID, m Modifier, t time.Time)
	HandleDropModifier(id KeyID, t time.Time)
}

// UIBackend is the thin per-gesture handle the touch callbacks carry:
// enough to place the preferences popover and to request a redraw. A
// nil UIBackend means "no UI available", matching the optional `ui`
// parameter in the original's release handlers.
type UIBackend interface {
	ShowPopover(bounds Bounds)
	RequestRedraw()
}

// PopoverGate reports whether the preferences popover is currently
// allowed to open (e.g. suppressed while the screensaver is active).
type PopoverGate interface {
	SettingsActive() bool
}

func keyID(pos ButtonPosition) KeyID { return KeyID(pos) }

// handlePressCleaner sends the press-time submission for the button at
// pos, if it has one.
func handlePressCleaner(shape *Data, sink SubmissionSink, t time.Time, pos ButtonPosition) {
	button, ok := shape.getButton(pos)
	if !ok {
		return
	}
	switch button.Action.Kind {
	case ActionSubmit:
		if button.Action.SubmitText != nil {
			sink.HandlePress(keyID(pos), SubmitText, *button.Action.SubmitText, button.Keycodes, t)
		} else {
			sink.HandlePress(keyID(pos), SubmitKeycodes, "", button.Keycodes, t)
		}
	case ActionErase:
		sink.HandlePress(keyID(pos), SubmitErase, "", button.Keycodes, t)
	}
}

// HandlePressKey presses the button at pos: it sends the press
// submission, then updates state. Pressing an already-pressed button is
// always logged as a Bug; whether the submission goes out again as well
// is controlled by SuppressDoubleSubmitOnRepress (off by default,
// preserving the original implementation's quirk of resubmitting).
func (l *Layout) HandlePressKey(sink SubmissionSink, t time.Time, pos ButtonPosition) {
	alreadyPressed := l.State.ActiveButtons.Get(pos).Pressed == Pressed

	if !alreadyPressed || !l.SuppressDoubleSubmitOnRepress {
		handlePressCleaner(&l.Shape, sink, t, pos)
	}

	if alreadyPressed {
		if l.logger != nil {
			l.logger.Bug("button %+v was already pressed", pos)
		}
	} else {
		l.State.ActiveButtons.insert(pos, KeyState{Pressed: Pressed})
	}
}

// handleReleaseCleaner sends the release-time submission/modifier/popover
// side effects for the button at pos and returns its action, for the
// view-transition machine to consume.
func handleReleaseCleaner(shape *Data, sink SubmissionSink, ui UIBackend, gate PopoverGate, t time.Time, pos ButtonPosition) Action {
	button, ok := shape.getButton(pos)
	if !ok {
		return Action{}
	}
	action := button.Action

	switch action.Kind {
	case ActionSubmit, ActionErase:
		sink.HandleRelease(keyID(pos), t)
	case ActionApplyModifier:
		id := keyID(pos)
		if sink.IsModifierActive(action.Modifier) {
			sink.HandleDropModifier(id, t)
		} else {
			sink.HandleAddModifier(id, action.Modifier, t)
		}
	case ActionShowPreferences:
		if ui != nil && gate != nil && gate.SettingsActive() {
			if place, ok := shape.findButtonPlace(pos); ok {
				ui.ShowPopover(Bounds{
					X:      place.Offset.X,
					Y:      place.Offset.Y,
					Width:  place.Button.Size.Width,
					Height: place.Button.Size.Height,
				})
			}
		}
	}
	return action
}

// HandleReleaseKey releases the button at pos: emits the release-time
// submission, runs the view-transition machine, and removes pos from
// the active-buttons map.
func (l *Layout) HandleReleaseKey(sink SubmissionSink, ui UIBackend, gate PopoverGate, t time.Time, pos ButtonPosition) {
	action := handleReleaseCleaner(&l.Shape, sink, ui, gate, t, pos)
	l.applyViewTransition(action)

	if !l.State.ActiveButtons.remove(pos) {
		if l.logger != nil {
			l.logger.Bug("no button to remove from pressed list: %+v", pos)
		}
	}
}

// ReleaseAll releases every currently-pressed button, e.g. on pointer-up
// with no specific position (Release-all(t) from §4.D). The pressed
// list is copied before iterating since releasing mutates it.
func (l *Layout) ReleaseAll(sink SubmissionSink, ui UIBackend, gate PopoverGate, t time.Time) {
	for _, pos := range l.State.ActiveButtons.Pressed() {
		l.HandleReleaseKey(sink, ui, gate, t, pos)
	}
}

// Press converts a widget-space point to a layout position, resolves
// the hit button, and presses it.
func (l *Layout) Press(widgetPoint Point, widgetToLayout Transformation, t time.Time, sink SubmissionSink) {
	point := widgetToLayout.Forward(widgetPoint)
	row, col, ok := l.FindIndexByPosition(point)
	if !ok {
		return
	}
	pos := ButtonPosition{ViewName: l.State.CurrentView, Row: row, PositionInRow: col}
	l.HandlePressKey(sink, t, pos)
}

// Drag implements the "slider over keys" behaviour from §4.D: pressed
// positions not under the current hit are released, and a new hit not
// already pressed is pressed.
func (l *Layout) Drag(widgetPoint Point, widgetToLayout Transformation, t time.Time, sink SubmissionSink, ui UIBackend, gate PopoverGate) {
	point := widgetToLayout.Forward(widgetPoint)
	pressed := l.State.ActiveButtons.Pressed()
	row, col, hit := l.FindIndexByPosition(point)

	if hit {
		current := ButtonPosition{ViewName: l.State.CurrentView, Row: row, PositionInRow: col}
		found := false
		for _, p := range pressed {
			if p == current {
				found = true
				continue
			}
			l.HandleReleaseKey(sink, ui, gate, t, p)
		}
		if !found {
			l.HandlePressKey(sink, t, current)
		}
	} else {
		for _, p := range pressed {
			l.HandleReleaseKey(sink, ui, gate, t, p)
		}
	}
}
