package layout

// Label is either displayed text or an icon name.
type Label struct {
	Text     string
	IconName string
	HasIcon  bool
}

// TextLabel builds a text Label.
func TextLabel(text string) Label { return Label{Text: text} }

// IconLabel builds an icon-name Label.
func IconLabel(name string) Label { return Label{IconName: name, HasIcon: true} }

// Button is the static definition of one interactive key.
type Button struct {
	// Name is the CSS-safe id string.
	Name string
	// Label is what's displayed to the user.
	Label Label
	Size  Size
	// OutlineName names the visual class applied to the key's shape.
	OutlineName string
	// Keycodes is a cache of raw keycodes derived from a Submit action,
	// populated once a keymap has been generated.
	Keycodes []uint32
	// Action describes what pressing or releasing the key does.
	Action Action
}

// Bounds returns the button's bounding box, anchored at its own origin.
func (b Button) Bounds() Bounds {
	return Bounds{X: 0, Y: 0, Width: b.Size.Width, Height: b.Size.Height}
}

// PressType is whether a key is currently held down.
type PressType int

const (
	Released PressType = iota
	Pressed
)

// KeyState is the mutable per-press state of one active button.
type KeyState struct {
	Pressed PressType
}
