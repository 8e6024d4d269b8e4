package layout

import (
	"github.com/squeekboard/squeekboard/internal/logging"
)

// Margins are the space reserved around a layout's views.
type Margins struct {
	Top, Bottom, Left, Right float64
}

// ArrangementKind is the physical layout variant chosen by output width.
type ArrangementKind int

const (
	ArrangementBase ArrangementKind = iota
	ArrangementWide
)

// ContentPurpose mirrors the input-method purpose that selected this
// layout's variant.
type ContentPurpose int

// latchKind tags the LatchedState union.
type latchKind int

const (
	latchNot latchKind = iota
	latchFromView
)

// LatchedState is Not | FromView(name): whether the current view will
// auto-revert to a remembered prior view on the next content-producing
// action.
type LatchedState struct {
	kind     latchKind
	fromView string
}

// NotLatched is the non-latched LatchedState.
func NotLatched() LatchedState { return LatchedState{kind: latchNot} }

// FromView builds a latched state remembering view as the view to
// return to.
func FromView(view string) LatchedState {
	return LatchedState{kind: latchFromView, fromView: view}
}

// IsLatched reports whether this is the FromView variant.
func (l LatchedState) IsLatched() bool { return l.kind == latchFromView }

// View returns the remembered view; valid only when IsLatched() is true.
func (l LatchedState) View() string { return l.fromView }

// ButtonPosition addresses one button by (view, row, column). It is the
// stable identifier used for the pressed-buttons map and for submission
// key ids.
type ButtonPosition struct {
	ViewName     string
	Row          int
	PositionInRow int
}

// ViewEntry pairs a View with its offset within the overall layout.
type ViewEntry struct {
	Offset Point
	View   View
}

// Data is the static, cacheable description of a layout: its views,
// margins, arrangement, purpose, and the xkb keymaps it requires.
type Data struct {
	Margins     Margins
	Kind        ArrangementKind
	Purpose     ContentPurpose
	Views       map[string]ViewEntry
	Keymaps     []string
}

func (d *Data) getButton(pos ButtonPosition) (Button, bool) {
	entry, ok := d.Views[pos.ViewName]
	if !ok {
		return Button{}, false
	}
	rows := entry.View.Rows()
	if pos.Row < 0 || pos.Row >= len(rows) {
		return Button{}, false
	}
	buttons := rows[pos.Row].Row.Buttons()
	if pos.PositionInRow < 0 || pos.PositionInRow >= len(buttons) {
		return Button{}, false
	}
	return buttons[pos.PositionInRow].Button, true
}

// Place is a button's resolved offset (within the view) plus itself.
type Place struct {
	Offset Point
	Button Button
}

func (d *Data) findButtonPlace(pos ButtonPosition) (Place, bool) {
	entry, ok := d.Views[pos.ViewName]
	if !ok {
		return Place{}, false
	}
	rows := entry.View.Rows()
	if pos.Row < 0 || pos.Row >= len(rows) {
		return Place{}, false
	}
	row := rows[pos.Row]
	buttons := row.Row.Buttons()
	if pos.PositionInRow < 0 || pos.PositionInRow >= len(buttons) {
		return Place{}, false
	}
	ob := buttons[pos.PositionInRow]
	return Place{
		Offset: row.Offset.Add(Point{X: ob.XOffset, Y: 0}),
		Button: ob.Button,
	}, true
}

// calculateInnerSize returns the overall size without margins.
func (d *Data) calculateInnerSize() Size {
	views := make([]View, 0, len(d.Views))
	for _, e := range d.Views {
		views = append(views, e.View)
	}
	return CalculateSuperSize(views)
}

// calculateSize returns the overall size including margins.
func (d *Data) calculateSize() Size {
	inner := d.calculateInnerSize()
	return Size{
		Width:  d.Margins.Left + inner.Width + d.Margins.Right,
		Height: d.Margins.Top + inner.Height + d.Margins.Bottom,
	}
}

// CalculateTransformation computes the panel-level transform that fits
// this layout's content into the given available pixel area.
func (d *Data) CalculateTransformation(available Size) Transformation {
	size := d.calculateSize()
	hScale := available.Width / size.Width
	vScale := available.Height / size.Height

	// Allow up to 5% (and a bit more) horizontal stretching to fill
	// available space.
	scaleX := vScale
	if hScale/vScale < 1.055 {
		scaleX = hScale
	}
	scaleY := hScale
	if vScale < hScale {
		scaleY = vScale
	}

	outsideMargins := Transformation{
		OriginX: (available.Width - scaleX*size.Width) / 2.0,
		OriginY: (available.Height - scaleY*size.Height) / 2.0,
		ScaleX:  scaleX,
		ScaleY:  scaleY,
	}
	return outsideMargins.Chain(Transformation{
		OriginX: d.Margins.Left,
		OriginY: d.Margins.Top,
		ScaleX:  1.0,
		ScaleY:  1.0,
	})
}

// ActiveButtons tracks which buttons are currently pressed, keyed by
// position. Buttons absent from the map are implicitly released.
type ActiveButtons struct {
	m map[ButtonPosition]KeyState
}

func newActiveButtons() ActiveButtons {
	return ActiveButtons{m: make(map[ButtonPosition]KeyState)}
}

// Get returns the key state for pos, defaulting to Released.
func (a ActiveButtons) Get(pos ButtonPosition) KeyState {
	if s, ok := a.m[pos]; ok {
		return s
	}
	return KeyState{Pressed: Released}
}

func (a ActiveButtons) insert(pos ButtonPosition, s KeyState) (existed bool) {
	_, existed = a.m[pos]
	a.m[pos] = s
	return existed
}

func (a ActiveButtons) remove(pos ButtonPosition) (existed bool) {
	_, existed = a.m[pos]
	delete(a.m, pos)
	return existed
}

// Pressed returns a snapshot of the currently-pressed positions. The
// list is copied so callers may safely release buttons while iterating.
func (a ActiveButtons) Pressed() []ButtonPosition {
	out := make([]ButtonPosition, 0, len(a.m))
	for pos, s := range a.m {
		if s.Pressed == Pressed {
			out = append(out, pos)
		}
	}
	return out
}

// State is the changeable part of a Layout that can't be derived from
// its Data: which view is showing, whether it's latched, and which
// buttons are currently held.
type State struct {
	CurrentView   string
	ViewLatched   LatchedState
	ActiveButtons ActiveButtons
}

// Layout associates a layout's static Data with its mutable State.
type Layout struct {
	State  State
	Shape  Data
	logger *logging.Logger

	// SuppressDoubleSubmitOnRepress controls what happens when a button
	// already marked pressed is pressed again (e.g. a stray duplicate
	// touch event). The original behaviour — sending the press
	// submission again regardless — is preserved by default (false);
	// setting this true skips the duplicate submission and only logs
	// the Bug.
	SuppressDoubleSubmitOnRepress bool
}

// New builds a Layout starting on the "base" view, unlatched, with
// nothing pressed.
func New(data Data, logger *logging.Logger) *Layout {
	return &Layout{
		Shape: data,
		State: State{
			CurrentView:   "base",
			ViewLatched:   NotLatched(),
			ActiveButtons: newActiveButtons(),
		},
		logger: logger,
	}
}

// CurrentViewEntry returns the active view and its offset.
func (l *Layout) CurrentViewEntry() ViewEntry {
	entry, ok := l.Shape.Views[l.State.CurrentView]
	if !ok {
		if l.logger != nil {
			l.logger.Bug("selected nonexistent view %q", l.State.CurrentView)
		}
		return ViewEntry{}
	}
	return entry
}

func (l *Layout) setView(view string) bool {
	if _, ok := l.Shape.Views[view]; !ok {
		return false
	}
	l.State.CurrentView = view
	return true
}

func (l *Layout) trySetView(view string) {
	if !l.setView(view) {
		if l.logger != nil {
			l.logger.Bug("bad view %q, ignoring", view)
		}
	}
}

// FindIndexByPosition resolves a layout-space point to a (row, column)
// index within the current view.
func (l *Layout) FindIndexByPosition(point Point) (int, int, bool) {
	entry := l.CurrentViewEntry()
	_, row, col, ok := entry.View.findButtonByPosition(point.Sub(entry.Offset))
	return row, col, ok
}

// VisibleButtonFunc is called once per visible button in the current
// view, with the button's absolute offset and its (row, column) index.
type VisibleButtonFunc func(offset Point, button Button, row, col int)

// ForeachVisibleButton visits every button in the current view.
func (l *Layout) ForeachVisibleButton(f VisibleButtonFunc) {
	entry := l.CurrentViewEntry()
	for rowIdx, r := range entry.View.Rows() {
		for colIdx, ob := range r.Row.Buttons() {
			offset := entry.Offset.Add(r.Offset).Add(Point{X: ob.XOffset, Y: 0})
			f(offset, ob.Button, rowIdx, colIdx)
		}
	}
}

// viewTransitionKind tags the transition a view-changing action causes.
type viewTransitionKind int

const (
	transitionNoChange viewTransitionKind = iota
	transitionChangeTo
	transitionUnlatchAll
)

type viewTransition struct {
	kind viewTransitionKind
	view string
}

// processActionForView implements the view-transition table from §4.D:
// given the action just released, the current view, and the current
// latch state, it returns the transition to apply and the new latch
// state.
func processActionForView(action Action, currentView string, latched LatchedState) (viewTransition, LatchedState) {
	switch action.Kind {
	case ActionSubmit, ActionErase, ActionApplyModifier:
		if latched.IsLatched() {
			return viewTransition{kind: transitionUnlatchAll}, NotLatched()
		}
		return viewTransition{kind: transitionNoChange}, NotLatched()

	case ActionSetView:
		return viewTransition{kind: transitionChangeTo, view: action.View}, NotLatched()

	case ActionLockView:
		locked := action.IsLocked(currentView)
		switch {
		case !locked && !latched.IsLatched() && action.Latches:
			return viewTransition{kind: transitionChangeTo, view: action.Lock}, FromView(currentView)
		case !locked && latched.IsLatched() && action.Latches:
			return viewTransition{kind: transitionChangeTo, view: action.Lock}, FromView(latched.View())
		case locked && latched.IsLatched() && action.Latches:
			return viewTransition{kind: transitionNoChange}, NotLatched()
		case !locked && !action.Latches:
			return viewTransition{kind: transitionChangeTo, view: action.Lock}, NotLatched()
		case locked:
			return viewTransition{kind: transitionChangeTo, view: action.Unlock}, NotLatched()
		default:
			return viewTransition{kind: transitionNoChange}, latched
		}

	default:
		return viewTransition{kind: transitionNoChange}, latched
	}
}

// applyViewTransition runs the view-transition table and mutates State
// accordingly.
func (l *Layout) applyViewTransition(action Action) {
	transition, newLatched := processActionForView(action, l.State.CurrentView, l.State.ViewLatched)

	switch transition.kind {
	case transitionUnlatchAll:
		l.unstickLocks()
	case transitionChangeTo:
		l.trySetView(transition.view)
	case transitionNoChange:
	}

	l.State.ViewLatched = newLatched
}

// unstickLocks restores CurrentView to the view remembered by a latched
// state, so the view in effect before the first latching press returns.
func (l *Layout) unstickLocks() {
	if !l.State.ViewLatched.IsLatched() {
		return
	}
	name := l.State.ViewLatched.View()
	if l.setView(name) {
		l.State.ViewLatched = NotLatched()
	} else if l.logger != nil {
		l.logger.Bug("bad view %q, can't unlatch", name)
	}
}
