package layout

import "testing"

// View-transition state machine matches the tabulated behaviour from
// §4.D for every action x (latched, locked) combination.
func TestProcessActionForViewTable(t *testing.T) {
	lock := LockView("locked", "base", true, nil)
	lockNoLatch := LockView("locked", "base", false, nil)

	cases := []struct {
		name        string
		action      Action
		currentView string
		latched     LatchedState
		wantKind    viewTransitionKind
		wantView    string
		wantLatched LatchedState
	}{
		{"submit unlatched no-op", Submit(nil, nil), "base", NotLatched(), transitionNoChange, "", NotLatched()},
		{"submit latched unlatches", Submit(nil, nil), "locked", FromView("base"), transitionUnlatchAll, "", NotLatched()},
		{"erase latched unlatches", Erase(), "locked", FromView("base"), transitionUnlatchAll, "", NotLatched()},
		{"apply-modifier unlatched no-op", ApplyModifier(ModShift), "base", NotLatched(), transitionNoChange, "", NotLatched()},
		{"set-view always changes, clears latch", SetView("symbols"), "base", FromView("base"), transitionChangeTo, "symbols", NotLatched()},
		{"lock from unlocked+latches", lock, "base", NotLatched(), transitionChangeTo, "locked", FromView("base")},
		{"lock from unlocked+latches, already latched elsewhere", lock, "base", FromView("other"), transitionChangeTo, "locked", FromView("other")},
		{"lock currently locked+latched -> unlatch only", lock, "locked", FromView("base"), transitionNoChange, "", NotLatched()},
		{"lock currently locked, not latched -> unlock", lock, "locked", NotLatched(), transitionChangeTo, "base", NotLatched()},
		{"lock no-latch from unlocked -> straight to locked", lockNoLatch, "base", NotLatched(), transitionChangeTo, "locked", NotLatched()},
		{"lock no-latch currently locked -> unlock", lockNoLatch, "locked", NotLatched(), transitionChangeTo, "base", NotLatched()},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			transition, newLatched := processActionForView(c.action, c.currentView, c.latched)
			if transition.kind != c.wantKind {
				t.Errorf("kind: got %v want %v", transition.kind, c.wantKind)
			}
			if c.wantKind == transitionChangeTo && transition.view != c.wantView {
				t.Errorf("view: got %q want %q", transition.view, c.wantView)
			}
			if newLatched.IsLatched() != c.wantLatched.IsLatched() {
				t.Errorf("latched: got %+v want %+v", newLatched, c.wantLatched)
			}
			if newLatched.IsLatched() && newLatched.View() != c.wantLatched.View() {
				t.Errorf("latched-from: got %q want %q", newLatched.View(), c.wantLatched.View())
			}
		})
	}
}

// Scenario 6: latched lock cycle.
func TestScenarioLatchedLockCycle(t *testing.T) {
	switchAction := LockView("locked", "base", true, nil)

	baseRow := NewRow([]OffsetButton{
		{XOffset: 0, Button: Button{Name: "switch", Action: switchAction}},
		{XOffset: 1, Button: Button{Name: "submit", Action: Erase()}},
	})
	lockedRow := NewRow([]OffsetButton{
		{XOffset: 0, Button: Button{Name: "switch", Action: switchAction}},
	})

	data := Data{Views: map[string]ViewEntry{
		"base":   {View: NewView([]NewRowInput{{Row: baseRow}})},
		"locked": {View: NewView([]NewRowInput{{Row: lockedRow}})},
	}}

	l := New(data, nil)
	l.applyViewTransition(switchAction)
	if l.State.CurrentView != "locked" || !l.State.ViewLatched.IsLatched() || l.State.ViewLatched.View() != "base" {
		t.Fatalf("step1: got view=%q latched=%+v", l.State.CurrentView, l.State.ViewLatched)
	}

	l.applyViewTransition(switchAction)
	if l.State.CurrentView != "locked" || l.State.ViewLatched.IsLatched() {
		t.Fatalf("step2: got view=%q latched=%+v", l.State.CurrentView, l.State.ViewLatched)
	}

	l.applyViewTransition(Erase())
	if l.State.CurrentView != "locked" || l.State.ViewLatched.IsLatched() {
		t.Fatalf("step3: got view=%q latched=%+v", l.State.CurrentView, l.State.ViewLatched)
	}

	l.applyViewTransition(switchAction)
	if l.State.CurrentView != "base" || l.State.ViewLatched.IsLatched() {
		t.Fatalf("step4: got view=%q latched=%+v", l.State.CurrentView, l.State.ViewLatched)
	}

	l.applyViewTransition(switchAction)
	if l.State.CurrentView != "locked" || !l.State.ViewLatched.IsLatched() || l.State.ViewLatched.View() != "base" {
		t.Fatalf("step5: got view=%q latched=%+v", l.State.CurrentView, l.State.ViewLatched)
	}

	l.applyViewTransition(Erase())
	if l.State.CurrentView != "base" || l.State.ViewLatched.IsLatched() {
		t.Fatalf("step6: got view=%q latched=%+v", l.State.CurrentView, l.State.ViewLatched)
	}
}

func TestUnstickLocksKeepsViewOnMissingTarget(t *testing.T) {
	data := Data{Views: map[string]ViewEntry{
		"base": {View: NewView(nil)},
	}}
	l := New(data, nil)
	l.State.ViewLatched = FromView("ghost")
	l.unstickLocks()
	if l.State.CurrentView != "base" {
		t.Errorf("expected current view unchanged on missing unlatch target, got %q", l.State.CurrentView)
	}
}
