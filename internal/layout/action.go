package layout

// Modifier is one of the xkb virtual-keyboard modifier bits a button can
// toggle via ApplyModifier.
type Modifier uint8

const (
	ModShift   Modifier = 0x1
	ModLock    Modifier = 0x2
	ModControl Modifier = 0x4
	ModMod1    Modifier = 0x8 // Alt
	ModMod2    Modifier = 0x10
	ModMod3    Modifier = 0x20
	ModMod4    Modifier = 0x40 // Meta
	ModMod5    Modifier = 0x80 // AltGr
)

// KeySym names one entry of a named xkb keysym list, e.g. "a" or
// "BackSpace".
type KeySym string

// actionKind tags the Action union.
type actionKind int

const (
	ActionSubmit actionKind = iota
	ActionErase
	ActionSetView
	ActionLockView
	ActionApplyModifier
	ActionShowPreferences
)

// Action is the static description of what a button does when pressed
// or released. Exactly one of the fields below is meaningful, selected
// by Kind.
type Action struct {
	Kind actionKind

	// Submit
	SubmitText *string
	SubmitKeys []KeySym

	// SetView
	View string

	// LockView
	Lock            string
	Unlock          string
	Latches         bool
	LooksLockedFrom []string

	// ApplyModifier
	Modifier Modifier
}

// Submit builds a text- or keycode-submitting Action. text may be nil to
// submit raw keycodes instead of a literal string.
func Submit(text *string, keys []KeySym) Action {
	return Action{Kind: ActionSubmit, SubmitText: text, SubmitKeys: keys}
}

// Erase builds the backspace Action.
func Erase() Action {
	return Action{Kind: ActionErase}
}

// SetView builds an Action that switches to view unconditionally.
func SetView(view string) Action {
	return Action{Kind: ActionSetView, View: view}
}

// LockView builds a lock/latch toggle Action, e.g. shift or a symbols
// switcher. looksLockedFrom lists additional view names that should be
// treated as "locked" for this action, beyond lock itself.
func LockView(lock, unlock string, latches bool, looksLockedFrom []string) Action {
	return Action{
		Kind:            ActionLockView,
		Lock:            lock,
		Unlock:          unlock,
		Latches:         latches,
		LooksLockedFrom: looksLockedFrom,
	}
}

// ApplyModifier builds an Action that toggles a held modifier.
func ApplyModifier(m Modifier) Action {
	return Action{Kind: ActionApplyModifier, Modifier: m}
}

// ShowPreferences builds the Action that opens the settings popover.
func ShowPreferences() Action {
	return Action{Kind: ActionShowPreferences}
}

// IsLocked reports whether, given the current view, this LockView action
// is considered locked: either currentView is the lock view itself, or
// it appears in LooksLockedFrom.
func (a Action) IsLocked(currentView string) bool {
	if a.Kind != ActionLockView {
		return false
	}
	if currentView == a.Lock {
		return true
	}
	for _, v := range a.LooksLockedFrom {
		if v == currentView {
			return true
		}
	}
	return false
}
