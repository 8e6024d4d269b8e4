package visibility

import (
	"time"

	"github.com/squeekboard/squeekboard/internal/logging"
)

// HidingTimeout is how long the keyboard stays up after the input method
// goes inactive, to absorb quick successive enable/disable events without
// visibly flickering.
const HidingTimeout = 200 * time.Millisecond

// librem5WidthPx / librem5WidthMM is the fallback pixels-per-millimeter
// used when an output's physical size is unknown: the Librem 5's panel.
// The remaining constants are the height-derivation parameters.
const (
	librem5WidthPx  = 720
	librem5WidthMM  = 65
	idealRows       = 4
	idealRowHeightX = 948 // millimeters * 100
	idealRowHeightY = 100
	wideMinWidthPx  = 540
	wideHeightNum   = 172
	wideHeightDen   = 540
	baseHeightNum   = 210
	baseHeightDen   = 360
)

// Application is the sole writer's state: §3's "Application state". It is
// copied by value on every ApplyEvent call, matching the reducer's
// functional-core discipline — inputs in, a new value out, no mutation of
// shared state.
type Application struct {
	IM                 InputMethod
	VisibilityOverride OverrideState
	PhysicalKeyboard   Presence
	DebugModeEnabled   bool
	// PreferredOutput is nil when no output is known yet.
	PreferredOutput *OutputID
	Outputs         map[OutputID]OutputState
	LayoutChoice    LayoutChoice
	// OverlayLayout is nil when no local overlay is selected.
	OverlayLayout *string
}

// NewApplication returns the conservative startup default: it shows the
// keyboard for a blink (IM considered inactive as of "now", with nothing
// forcing it hidden) rather than waiting on a system check before the
// first frame can be drawn.
func NewApplication(now time.Time) Application {
	return Application{
		IM:                 InactiveSince(now),
		VisibilityOverride: NotForced,
		PhysicalKeyboard:   Missing,
		DebugModeEnabled:   false,
		PreferredOutput:    nil,
		Outputs:            make(map[OutputID]OutputState),
		LayoutChoice: LayoutChoice{
			Name:   "us",
			Source: SourceXkb,
		},
		OverlayLayout: nil,
	}
}

// ApplyEvent folds one Event into the state and returns the next state.
// logger may be nil; when non-nil and debug mode is enabled it prints the
// event and the resulting state, mirroring the original's debug tracing.
func (a Application) ApplyEvent(ev Event, now time.Time, logger *logging.Logger) Application {
	if logger != nil && a.DebugModeEnabled {
		logger.Debug("received event: %+v", ev)
	}

	next := a.applyEvent(ev, now)

	if logger != nil && next.DebugModeEnabled {
		logger.Debug("state is now: %+v", next)
	}
	return next
}

func (a Application) applyEvent(ev Event, now time.Time) Application {
	switch ev.Kind {
	case EventDebug:
		a.DebugModeEnabled = ev.Debug == DebugEnable
		return a

	case EventTimeoutReached:
		// The reducer re-derives wake targets from state on every call, so
		// a stale or superseded TimeoutReached is simply a no-op.
		return a

	case EventVisibility:
		switch ev.Visibility {
		case ForceHidden:
			a.VisibilityOverride = ForcedHidden
		case ForceVisible:
			a.VisibilityOverride = ForcedVisible
		}
		return a

	case EventPhysicalKeyboard:
		a.PhysicalKeyboard = ev.PhysicalKeyboard
		return a

	case EventOutput:
		outputs := make(map[OutputID]OutputState, len(a.Outputs)+1)
		for id, s := range a.Outputs {
			outputs[id] = s
		}
		a.Outputs = outputs
		switch ev.OutputChange {
		case OutputAltered:
			a.Outputs[ev.OutputID] = ev.OutputNewState
			if a.PreferredOutput == nil {
				id := ev.OutputID
				a.PreferredOutput = &id
			}
		case OutputRemoved:
			delete(a.Outputs, ev.OutputID)
			if a.PreferredOutput != nil && *a.PreferredOutput == ev.OutputID {
				a.PreferredOutput = anyRemainingOutput(a.Outputs)
			}
		}
		return a

	case EventInputMethod:
		return a.applyInputMethodEvent(ev.InputMethod, now)

	case EventLayoutChoice:
		a.LayoutChoice = ev.LayoutChoice
		a.OverlayLayout = nil
		return a

	case EventOverlayChanged:
		name := ev.OverlayName
		a.OverlayLayout = &name
		return a

	default:
		return a
	}
}

// anyRemainingOutput picks an arbitrary output id from the map, or nil if
// the map is empty. Go's map iteration order is randomized, which matches
// the spec's "iteration order is implementation-defined; tests must not
// rely on a specific one".
func anyRemainingOutput(outputs map[OutputID]OutputState) *OutputID {
	for id := range outputs {
		return &id
	}
	return nil
}

// applyInputMethodEvent implements the IM-event folding table from §4.C,
// the critical anti-flicker logic.
func (a Application) applyInputMethodEvent(newIM InputMethod, now time.Time) Application {
	switch {
	case a.IM.IsActive() && newIM.IsActive():
		// Active -> Active: replace details, keep override.
		a.IM = newIM
		return a

	case !a.IM.IsActive() && newIM.IsActive():
		// Inactive -> Active: replace, reset override.
		a.IM = newIM
		a.VisibilityOverride = NotForced
		return a

	case a.IM.IsActive() && !newIM.IsActive() && a.VisibilityOverride == ForcedHidden:
		// Active -> Inactive while forced hidden: force an immediate hide
		// by backdating the inactive timestamp past the hiding timeout.
		a.IM = InactiveSince(now.Add(-2 * HidingTimeout))
		a.VisibilityOverride = NotForced
		return a

	case a.IM.IsActive() && !newIM.IsActive():
		// Active -> Inactive otherwise: replace, reset override.
		a.IM = InactiveSince(newIM.InactiveAt())
		a.VisibilityOverride = NotForced
		return a

	default:
		// Inactive -> Inactive: keep the older instant; the newer one is
		// necessarily not earlier, so it carries no new information.
		return a
	}
}

// Contents is the panel's visible content description.
type Contents struct {
	Name        string
	Arrangement ArrangementKind
	OverlayName string
	Purpose     ContentPurpose
}

// panelKind tags the Panel union.
type panelKind int

const (
	panelHidden panelKind = iota
	panelVisible
)

// Panel is Hidden | Visible{output, height, contents}.
type Panel struct {
	kind     panelKind
	output   OutputID
	height   int
	scale    int
	contents Contents
}

// Hidden reports whether this Panel is the Hidden variant.
func (p Panel) Hidden() bool {
	return p.kind == panelHidden
}

// Output, Height, Scale, Contents are only meaningful when !Hidden().
func (p Panel) Output() OutputID     { return p.output }
func (p Panel) Height() int          { return p.height }
func (p Panel) Scale() int           { return p.scale }
func (p Panel) Contents() Contents   { return p.contents }

var hiddenPanel = Panel{kind: panelHidden}

func visiblePanel(output OutputID, height, scale int, contents Contents) Panel {
	return Panel{kind: panelVisible, output: output, height: height, scale: scale, contents: contents}
}

// Outcome is the pure function of (state, now): what the panel should be
// doing right now, plus a copy of the input method for consumers that
// care (e.g. the layout engine's purpose-dependent view selection).
type Outcome struct {
	Panel Panel
	IM    InputMethod
}

// GetOutcome derives the current Outcome. Two calls with the same
// (Application, now) always return equal Outcomes.
func (a Application) GetOutcome(now time.Time) Outcome {
	return Outcome{
		Panel: a.getPanel(now),
		IM:    a.IM,
	}
}

func (a Application) getPanel(now time.Time) Panel {
	if a.PreferredOutput == nil {
		return hiddenPanel
	}
	output := *a.PreferredOutput
	outputState, ok := a.Outputs[output]

	height, scale, arrangement := 0, 1, ArrangementBase
	if ok {
		if h, s, ar, ok2 := getPreferredHeightAndArrangement(outputState); ok2 {
			height, scale, arrangement = h, s, ar
		}
	}

	name, overlay := a.layoutNames()
	purpose := PurposeNormal
	if a.IM.IsActive() {
		purpose = a.IM.Details().Purpose
	}

	visible := visiblePanel(output, height, scale, Contents{
		Name:        name,
		Arrangement: arrangement,
		OverlayName: overlay,
		Purpose:     purpose,
	})

	switch {
	case a.VisibilityOverride == ForcedHidden:
		return hiddenPanel
	case a.VisibilityOverride == ForcedVisible:
		return visible
	case a.PhysicalKeyboard == Present:
		return hiddenPanel
	case a.IM.IsActive():
		return visible
	default:
		since := a.IM.InactiveAt()
		if now.Before(since.Add(HidingTimeout)) {
			return visible
		}
		return hiddenPanel
	}
}

// layoutNames returns (layout name, overlay name) per §4.C: the layout
// name always comes from the system layout choice; the overlay name is
// the selected overlay, or "" when none is set.
func (a Application) layoutNames() (string, string) {
	if a.OverlayLayout != nil {
		return a.LayoutChoice.Name, *a.OverlayLayout
	}
	return a.LayoutChoice.Name, ""
}

// getPreferredHeightAndArrangement implements §4.C's height derivation.
func getPreferredHeightAndArrangement(output OutputState) (height, scale int, arrangement ArrangementKind, ok bool) {
	if output.Mode == nil {
		return 0, 1, ArrangementBase, false
	}
	scale = output.Scale
	if scale <= 0 {
		scale = 1
	}

	widthPx := output.Mode.Width
	heightPx := output.Mode.Height

	densityNum, densityDen := librem5WidthPx, librem5WidthMM
	if output.PhysicalSize != nil && output.PhysicalSize.Width != nil && int(*output.PhysicalSize.Width) > 0 {
		densityNum = widthPx
		densityDen = int(*output.PhysicalSize.Width)
	}

	// ideal_height = 9.48mm * 4 rows * density, rounded up.
	idealHeight := ceilDiv(idealRowHeightX*idealRows*densityNum, idealRowHeightY*densityDen)

	abstractWidth := ceilDiv(widthPx, scale)
	arrangement = ArrangementBase
	heightFracNum, heightFracDen := baseHeightNum, baseHeightDen
	if abstractWidth >= wideMinWidthPx {
		arrangement = ArrangementWide
		heightFracNum, heightFracDen = wideHeightNum, wideHeightDen
	}

	heightFromWidth := (heightFracNum * widthPx) / heightFracDen
	height = idealHeight
	if heightFromWidth < height {
		height = heightFromWidth
	}
	if halfHeight := heightPx / 2; halfHeight < height {
		height = halfHeight
	}
	return height, scale, arrangement, true
}

func ceilDiv(num, den int) int {
	if den == 0 {
		return 0
	}
	if num%den == 0 {
		return num / den
	}
	if (num < 0) == (den < 0) {
		return num/den + 1
	}
	return num / den
}

// GetNextWake returns the next instant at which GetOutcome could change,
// or nil if no scheduled change is pending. Only the anti-flicker hiding
// timeout produces a wake; every other transition is driven by an
// external Event.
func (a Application) GetNextWake(now time.Time) *time.Time {
	if a.VisibilityOverride != NotForced {
		return nil
	}
	if a.IM.IsActive() {
		return nil
	}
	deadline := a.IM.InactiveAt().Add(HidingTimeout)
	if now.Before(deadline) {
		return &deadline
	}
	return nil
}

// PanelVisibilityCommand tells the UI shell to show or hide the panel.
type PanelVisibilityCommand struct {
	Show   bool
	Output OutputID
	Height int
	Scale  int
}

// Commands is the set of outwardly-observable actions produced by
// comparing two consecutive Outcomes.
type Commands struct {
	PanelVisibility *PanelVisibilityCommand
	DBusVisibleSet  *bool
	// LayoutSelection is set only when the newly-visible contents differ
	// from what was previously shown, gating expensive filesystem lookups.
	LayoutSelection *Contents
}

// DiffTo computes the commands needed to move from old to new. Per §9c,
// panel_visibility and dbus_visible_set are always populated; receivers
// are expected to debounce no-op commands themselves.
func DiffTo(old, new Outcome) Commands {
	visible := !new.Panel.Hidden()
	dbusVisible := visible

	var panelCmd PanelVisibilityCommand
	if visible {
		panelCmd = PanelVisibilityCommand{
			Show:   true,
			Output: new.Panel.Output(),
			Height: new.Panel.Height(),
			Scale:  new.Panel.Scale(),
		}
	} else {
		panelCmd = PanelVisibilityCommand{Show: false}
	}

	var layoutSelection *Contents
	if visible {
		sameContents := !old.Panel.Hidden() && old.Panel.Contents() == new.Panel.Contents()
		if !sameContents {
			contents := new.Panel.Contents()
			layoutSelection = &contents
		}
	}

	return Commands{
		PanelVisibility: &panelCmd,
		DBusVisibleSet:  &dbusVisible,
		LayoutSelection: layoutSelection,
	}
}
