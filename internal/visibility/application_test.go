package visibility

import (
	"testing"
	"time"
)

func mm(v int) *Millimeter {
	m := Millimeter(v)
	return &m
}

func panelVisibleAt(t *testing.T, a Application, now time.Time) bool {
	t.Helper()
	return !a.GetOutcome(now).Panel.Hidden()
}

// avoid_hide: an IM that goes inactive and immediately active again must
// never flicker the panel down in between.
func TestAvoidHide(t *testing.T) {
	start := time.Now()
	a := NewApplication(start)
	a = withOneOutput(a, 1, OutputState{Mode: &Mode{Width: 720, Height: 1440}, Scale: 1})
	a.IM = Active(InputMethodDetails{})

	a = a.ApplyEvent(NewInputMethodEvent(InactiveSince(start)), start, nil)

	for i := 0; i < 100; i++ {
		now := start.Add(time.Duration(i) * time.Millisecond)
		if !panelVisibleAt(t, a, now) {
			t.Fatalf("expected visible at +%dms, got hidden", i)
		}
	}

	a = a.ApplyEvent(NewInputMethodEvent(Active(InputMethodDetails{})), start.Add(100*time.Millisecond), nil)
	if !panelVisibleAt(t, a, start.Add(100*time.Millisecond)) {
		t.Fatal("expected visible after re-activation at +100ms")
	}
}

// hide: an inactive IM with no further activity hides after the timeout.
func TestHide(t *testing.T) {
	start := time.Now()
	a := NewApplication(start)
	a = withOneOutput(a, 1, OutputState{Mode: &Mode{Width: 720, Height: 1440}, Scale: 1})
	a.IM = Active(InputMethodDetails{})
	a = a.ApplyEvent(NewInputMethodEvent(InactiveSince(start)), start, nil)

	if panelVisibleAt(t, a, start.Add(HidingTimeout)) {
		t.Fatal("expected hidden at exactly the timeout")
	}
}

// false_show: a burst of Inactive/Inactive/Active/Inactive all stamped at
// the same instant must settle to Hidden and stay there.
func TestFalseShowBurst(t *testing.T) {
	start := time.Now()
	a := NewApplication(start)
	a = withOneOutput(a, 1, OutputState{Mode: &Mode{Width: 720, Height: 1440}, Scale: 1})
	a.IM = Active(InputMethodDetails{})

	a = a.ApplyEvent(NewInputMethodEvent(InactiveSince(start)), start, nil)
	a = a.ApplyEvent(NewInputMethodEvent(InactiveSince(start)), start, nil)
	a = a.ApplyEvent(NewInputMethodEvent(Active(InputMethodDetails{})), start, nil)
	a = a.ApplyEvent(NewInputMethodEvent(InactiveSince(start)), start, nil)

	check := start.Add(250 * time.Millisecond)
	if panelVisibleAt(t, a, check) {
		t.Fatal("expected hidden at +250ms")
	}
	for _, d := range []time.Duration{250 * time.Millisecond, 500 * time.Millisecond, 1250 * time.Millisecond} {
		now := start.Add(d)
		if panelVisibleAt(t, a, now) {
			t.Fatalf("expected hidden to persist at +%v", d)
		}
	}
}

// force_visible: ForceVisible overrides an inactive IM until the IM goes
// active and then inactive again, at which point the override resets.
func TestForceVisible(t *testing.T) {
	start := time.Now()
	a := NewApplication(start)
	a = withOneOutput(a, 1, OutputState{Mode: &Mode{Width: 720, Height: 1440}, Scale: 1})
	a.IM = InactiveSince(start)

	t1 := start.Add(1 * time.Second)
	a = a.ApplyEvent(NewVisibilityEvent(ForceVisible), t1, nil)
	if !panelVisibleAt(t, a, t1) {
		t.Fatal("expected visible immediately after ForceVisible")
	}

	a = a.ApplyEvent(NewInputMethodEvent(Active(InputMethodDetails{})), t1, nil)
	t3 := start.Add(3 * time.Second)
	a = a.ApplyEvent(NewInputMethodEvent(InactiveSince(t3)), t3, nil)

	t4 := start.Add(4 * time.Second)
	if panelVisibleAt(t, a, t4) {
		t.Fatal("expected hidden at +4s after override reset and timeout elapsed")
	}
}

// keyboard_present: a physical keyboard forces Hidden regardless of IM
// activity, and releasing it restores normal IM-driven visibility.
func TestKeyboardPresent(t *testing.T) {
	start := time.Now()
	a := NewApplication(start)
	a = withOneOutput(a, 1, OutputState{Mode: &Mode{Width: 720, Height: 1440}, Scale: 1})
	a.IM = Active(InputMethodDetails{})

	a = a.ApplyEvent(NewPhysicalKeyboardEvent(Present), start, nil)
	if panelVisibleAt(t, a, start) {
		t.Fatal("expected hidden with physical keyboard present")
	}

	a = a.ApplyEvent(NewInputMethodEvent(Active(InputMethodDetails{})), start, nil)
	if panelVisibleAt(t, a, start) {
		t.Fatal("expected still hidden while physical keyboard present")
	}

	a = a.ApplyEvent(NewPhysicalKeyboardEvent(Missing), start, nil)
	if !panelVisibleAt(t, a, start) {
		t.Fatal("expected visible once physical keyboard removed")
	}
}

// size_l5: output height derivation matches the Librem 5-shaped geometry
// from the literal scenario in the design doc.
func TestOutputHeightDerivation(t *testing.T) {
	out := OutputState{
		Mode:         &Mode{Width: 720, Height: 1440},
		PhysicalSize: &PhysicalSize{Width: mm(65), Height: mm(130)},
		Scale:        2,
	}
	height, scale, arrangement, ok := getPreferredHeightAndArrangement(out)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if height != 420 {
		t.Errorf("expected height 420, got %d", height)
	}
	if scale != 2 {
		t.Errorf("expected scale 2, got %d", scale)
	}
	if arrangement != ArrangementBase {
		t.Errorf("expected Base arrangement, got %v", arrangement)
	}
}

func TestOutputHeightFallbackDensity(t *testing.T) {
	out := OutputState{
		Mode:  &Mode{Width: 1080, Height: 1920},
		Scale: 1,
	}
	_, _, arrangement, ok := getPreferredHeightAndArrangement(out)
	if !ok {
		t.Fatal("expected ok=true even without physical size")
	}
	if arrangement != ArrangementWide {
		t.Errorf("expected Wide arrangement for width 1080, got %v", arrangement)
	}
}

func withOneOutput(a Application, id OutputID, state OutputState) Application {
	return a.ApplyEvent(NewOutputAlteredEvent(id, state), time.Now(), nil)
}

// anti-flicker scenario (§8.1): Active -> InactiveSince(T), visible for a
// full 100ms window, then Active again without ever dipping to Hidden.
func TestScenarioAntiFlicker(t *testing.T) {
	T := time.Now()
	a := NewApplication(T)
	a = withOneOutput(a, 1, OutputState{Mode: &Mode{Width: 720, Height: 1440}, Scale: 1})
	a.IM = Active(InputMethodDetails{})

	a = a.ApplyEvent(NewInputMethodEvent(InactiveSince(T)), T, nil)
	for i := 0; i < 100; i++ {
		now := T.Add(time.Duration(i) * time.Millisecond)
		if a.GetOutcome(now).Panel.Hidden() {
			t.Fatalf("scenario 1: unexpected hide at +%dms", i)
		}
	}
	a = a.ApplyEvent(NewInputMethodEvent(Active(InputMethodDetails{})), T.Add(100*time.Millisecond), nil)
	if a.GetOutcome(T.Add(100 * time.Millisecond)).Panel.Hidden() {
		t.Fatal("scenario 1: expected visible after re-activation")
	}
}

// eventual hide (§8.2).
func TestScenarioEventualHide(t *testing.T) {
	T := time.Now()
	a := NewApplication(T)
	a = withOneOutput(a, 1, OutputState{Mode: &Mode{Width: 720, Height: 1440}, Scale: 1})
	a.IM = Active(InputMethodDetails{})
	a = a.ApplyEvent(NewInputMethodEvent(InactiveSince(T)), T, nil)

	if a.GetOutcome(T.Add(200 * time.Millisecond)).Panel.Hidden() == false {
		t.Fatal("scenario 2: expected hidden at +200ms")
	}
}

// force-visible overriding an inactive IM, then resetting (§8.4).
func TestScenarioForceVisibleOverridesInactive(t *testing.T) {
	T := time.Now()
	a := NewApplication(T)
	a = withOneOutput(a, 1, OutputState{Mode: &Mode{Width: 720, Height: 1440}, Scale: 1})
	a.IM = InactiveSince(T)

	a = a.ApplyEvent(NewVisibilityEvent(ForceVisible), T.Add(time.Second), nil)
	if a.GetOutcome(T.Add(time.Second)).Panel.Hidden() {
		t.Fatal("scenario 4: expected visible after ForceVisible")
	}

	a = a.ApplyEvent(NewInputMethodEvent(Active(InputMethodDetails{})), T.Add(time.Second), nil)
	a = a.ApplyEvent(NewInputMethodEvent(InactiveSince(T.Add(3*time.Second))), T.Add(3*time.Second), nil)

	if !a.GetOutcome(T.Add(4 * time.Second)).Panel.Hidden() {
		t.Fatal("scenario 4: expected hidden at +4s")
	}
}

// physical keyboard presence forces Hidden regardless of IM state (§8.5).
func TestScenarioPhysicalKeyboard(t *testing.T) {
	T := time.Now()
	a := NewApplication(T)
	a = withOneOutput(a, 1, OutputState{Mode: &Mode{Width: 720, Height: 1440}, Scale: 1})
	a.IM = Active(InputMethodDetails{})

	a = a.ApplyEvent(NewPhysicalKeyboardEvent(Present), T, nil)
	if !a.GetOutcome(T).Panel.Hidden() {
		t.Fatal("scenario 5: expected hidden with keyboard present")
	}

	a = a.ApplyEvent(NewInputMethodEvent(Active(InputMethodDetails{})), T, nil)
	if !a.GetOutcome(T).Panel.Hidden() {
		t.Fatal("scenario 5: expected still hidden")
	}

	a = a.ApplyEvent(NewPhysicalKeyboardEvent(Missing), T, nil)
	if a.GetOutcome(T).Panel.Hidden() {
		t.Fatal("scenario 5: expected visible once keyboard removed")
	}
}

func TestGetOutcomeIsPure(t *testing.T) {
	T := time.Now()
	a := NewApplication(T)
	a = withOneOutput(a, 1, OutputState{Mode: &Mode{Width: 720, Height: 1440}, Scale: 1})
	a.IM = Active(InputMethodDetails{})

	o1 := a.GetOutcome(T)
	o2 := a.GetOutcome(T)
	if o1 != o2 {
		t.Fatalf("expected equal outcomes for identical inputs, got %+v vs %+v", o1, o2)
	}
}

func TestNextWakeNoneOnceSettled(t *testing.T) {
	T := time.Now()
	a := NewApplication(T)
	a.IM = Active(InputMethodDetails{})
	a = a.ApplyEvent(NewInputMethodEvent(InactiveSince(T)), T, nil)

	t2 := T.Add(250 * time.Millisecond)
	a = a.ApplyEvent(NewTimeoutReachedEvent(t2), t2, nil)

	if wake := a.GetNextWake(t2); wake != nil {
		t.Fatalf("expected no next wake once IM inactive ≥200ms, got %v", wake)
	}
}

func TestDiffToAlwaysSetsPanelAndDBus(t *testing.T) {
	T := time.Now()
	a := NewApplication(T)
	a = withOneOutput(a, 1, OutputState{Mode: &Mode{Width: 720, Height: 1440}, Scale: 1})
	a.IM = Active(InputMethodDetails{})

	old := Outcome{Panel: hiddenPanel, IM: InactiveSince(T)}
	new := a.GetOutcome(T)

	cmds := DiffTo(old, new)
	if cmds.PanelVisibility == nil {
		t.Fatal("expected panel_visibility to always be set")
	}
	if cmds.DBusVisibleSet == nil {
		t.Fatal("expected dbus_visible_set to always be set")
	}
	if cmds.LayoutSelection == nil {
		t.Fatal("expected layout_selection set when moving from Hidden to Visible")
	}
}

func TestDiffToNoLayoutSelectionWhenUnchanged(t *testing.T) {
	T := time.Now()
	a := NewApplication(T)
	a = withOneOutput(a, 1, OutputState{Mode: &Mode{Width: 720, Height: 1440}, Scale: 1})
	a.IM = Active(InputMethodDetails{})

	outcome := a.GetOutcome(T)
	cmds := DiffTo(outcome, outcome)
	if cmds.LayoutSelection != nil {
		t.Fatal("expected no layout_selection when new == new")
	}
}
