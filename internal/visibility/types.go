// Package visibility implements the pure visibility reducer (component C)
// together with the application state it operates on (component of the
// §3 data model). Given the current Application and a wall-clock instant,
// GetOutcome derives a single declarative Outcome ("hidden" or "visible on
// output O at height H with layout L"). DiffTo turns a pair of outcomes
// into the minimal set of commands needed to reach the new one.
package visibility

import "time"

// Presence reports whether a physical keyboard is attached.
type Presence int

const (
	Missing Presence = iota
	Present
)

// ContentHint carries input-method hints verbatim; the reducer never
// inspects its bits, only stores and forwards it.
type ContentHint uint32

// ContentPurpose is the input field's purpose, affecting layout choice.
type ContentPurpose int

const (
	PurposeNormal ContentPurpose = iota
	PurposeAlpha
	PurposeDigits
	PurposeNumber
	PurposePhone
	PurposeURL
	PurposeEmail
	PurposeTerminal
)

// InputMethodDetails accompanies an Active input method.
type InputMethodDetails struct {
	Hint    ContentHint
	Purpose ContentPurpose
}

// imKind distinguishes the two InputMethod variants.
type imKind int

const (
	imActive imKind = iota
	imInactiveSince
)

// InputMethod is Active{details} | InactiveSince(instant).
type InputMethod struct {
	kind    imKind
	details InputMethodDetails
	since   time.Time
}

// Active builds an InputMethod in the Active state.
func Active(d InputMethodDetails) InputMethod {
	return InputMethod{kind: imActive, details: d}
}

// InactiveSince builds an InputMethod in the InactiveSince state.
func InactiveSince(t time.Time) InputMethod {
	return InputMethod{kind: imInactiveSince, since: t}
}

// IsActive reports whether the input method is currently active.
func (im InputMethod) IsActive() bool {
	return im.kind == imActive
}

// Details returns the Active details; valid only when IsActive() is true.
func (im InputMethod) Details() InputMethodDetails {
	return im.details
}

// InactiveAt returns the instant the input method went inactive; valid
// only when IsActive() is false.
func (im InputMethod) InactiveAt() time.Time {
	return im.since
}

// OverrideState is the user's forced show/hide request, or none.
type OverrideState int

const (
	NotForced OverrideState = iota
	ForcedVisible
	ForcedHidden
)

// VisibilityRequest is the Event payload for a user force show/hide gesture.
type VisibilityRequest int

const (
	ForceVisible VisibilityRequest = iota
	ForceHidden
)

// LayoutSource distinguishes xkb-sourced layout choices from others
// (e.g. gsettings custom names).
type LayoutSource int

const (
	SourceXkb LayoutSource = iota
	SourceOther
)

// LayoutChoice is the user's preferred system layout.
type LayoutChoice struct {
	Name   string
	Source LayoutSource
	// OtherSource names the source when Source == SourceOther.
	OtherSource string
}

// OutputID identifies a Wayland output. The zero value never denotes a
// real output; callers compare by value equality.
type OutputID uint64

// Millimeter is a physical length, used for output density calculations.
type Millimeter int

// Mode is an output's pixel geometry.
type Mode struct {
	Width  int
	Height int
}

// PhysicalSize is an output's physical geometry in millimeters. Either
// field may be nil when the compositor didn't report it.
type PhysicalSize struct {
	Width  *Millimeter
	Height *Millimeter
}

// OutputState is what the reducer knows about one Wayland output.
type OutputState struct {
	Mode         *Mode
	PhysicalSize *PhysicalSize
	Scale        int
}

// ArrangementKind is the physical layout variant chosen by output width.
type ArrangementKind int

const (
	ArrangementBase ArrangementKind = iota
	ArrangementWide
)

// eventKind tags the Event union.
type eventKind int

const (
	EventInputMethod eventKind = iota
	EventVisibility
	EventPhysicalKeyboard
	EventOutput
	EventLayoutChoice
	EventOverlayChanged
	EventDebug
	EventTimeoutReached
)

// OutputChangeKind distinguishes an output being altered from being removed.
type OutputChangeKind int

const (
	OutputAltered OutputChangeKind = iota
	OutputRemoved
)

// DebugRequest is the Event payload toggling debug_mode_enabled.
type DebugRequest int

const (
	DebugEnable DebugRequest = iota
	DebugDisable
)

// Event is the tagged union of everything that can drive a state
// transition. Only the fields relevant to Kind are meaningful.
type Event struct {
	Kind eventKind

	InputMethod InputMethod

	Visibility VisibilityRequest

	PhysicalKeyboard Presence

	OutputID       OutputID
	OutputChange   OutputChangeKind
	OutputNewState OutputState

	LayoutChoice LayoutChoice

	// OverlayName is the locally-defined layout id set by OverlayChanged.
	OverlayName string

	Debug DebugRequest

	Timeout time.Time
}

// NewInputMethodEvent builds an Event(InputMethod(...)).
func NewInputMethodEvent(im InputMethod) Event {
	return Event{Kind: EventInputMethod, InputMethod: im}
}

// NewVisibilityEvent builds an Event(Visibility(...)).
func NewVisibilityEvent(v VisibilityRequest) Event {
	return Event{Kind: EventVisibility, Visibility: v}
}

// NewPhysicalKeyboardEvent builds an Event(PhysicalKeyboard(...)).
func NewPhysicalKeyboardEvent(p Presence) Event {
	return Event{Kind: EventPhysicalKeyboard, PhysicalKeyboard: p}
}

// NewOutputAlteredEvent builds an Event(Output{id, Altered(state)}).
func NewOutputAlteredEvent(id OutputID, state OutputState) Event {
	return Event{Kind: EventOutput, OutputID: id, OutputChange: OutputAltered, OutputNewState: state}
}

// NewOutputRemovedEvent builds an Event(Output{id, Removed}).
func NewOutputRemovedEvent(id OutputID) Event {
	return Event{Kind: EventOutput, OutputID: id, OutputChange: OutputRemoved}
}

// NewLayoutChoiceEvent builds an Event(LayoutChoice{...}).
func NewLayoutChoiceEvent(choice LayoutChoice) Event {
	return Event{Kind: EventLayoutChoice, LayoutChoice: choice}
}

// NewOverlayChangedEvent builds an Event(OverlayChanged(layoutID)).
func NewOverlayChangedEvent(layoutID string) Event {
	return Event{Kind: EventOverlayChanged, OverlayName: layoutID}
}

// NewDebugEvent builds an Event(Debug(...)).
func NewDebugEvent(d DebugRequest) Event {
	return Event{Kind: EventDebug, Debug: d}
}

// NewTimeoutReachedEvent builds an Event(TimeoutReached(instant)).
func NewTimeoutReachedEvent(when time.Time) Event {
	return Event{Kind: EventTimeoutReached, Timeout: when}
}
