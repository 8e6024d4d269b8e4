// Package layoutfile loads keyboard layouts from the YAML resource files
// named in §6 ("<resource>/keyboards/<name>.yaml") and builds the
// read-only internal/layout.Data the layout engine runs against. Parsing
// itself is out of scope for the core per §1; this package is the thin
// collaborator the spec describes, built around gopkg.in/yaml.v3, the
// teacher's own indirect dependency promoted here to direct use.
package layoutfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/squeekboard/squeekboard/internal/keymap"
	"github.com/squeekboard/squeekboard/internal/layout"
)

// Outline is a named button size, referenced by row entries.
type Outline struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// rawAction decodes the several shapes an action can take in YAML: a
// bare string ("erase", "show_prefs"), or one of the structured variants
// below. Exactly one non-nil field (besides Bare) is meaningful.
type rawAction struct {
	Bare string

	Submit     *rawSubmit   `yaml:"submit"`
	SetView    string       `yaml:"set_view"`
	LockView   *rawLockView `yaml:"locking"`
	Modifier   string       `yaml:"modifier"`
}

type rawSubmit struct {
	Text string   `yaml:"text"`
	Keys []string `yaml:"keys"`
}

type rawLockView struct {
	Lock            string   `yaml:"lock"`
	Unlock          string   `yaml:"unlock"`
	Latches         bool     `yaml:"latches"`
	LooksLockedFrom []string `yaml:"looks_locked_from"`
}

func (a *rawAction) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		a.Bare = value.Value
		return nil
	}
	type plain rawAction
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*a = rawAction(p)
	return nil
}

// rawButton is one entry of the top-level "buttons" map.
type rawButton struct {
	Label   string    `yaml:"label"`
	Icon    string    `yaml:"icon"`
	Outline string    `yaml:"outline"`
	Action  rawAction `yaml:"action"`
}

// rawRow is one row within a view: an outline name shared by every
// button in the row that doesn't override it, plus the ordered button
// names.
type rawRow struct {
	Outline string   `yaml:"outline"`
	Buttons []string `yaml:"buttons"`
}

type rawMargins struct {
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
}

// rawLayout is the top-level YAML document shape.
type rawLayout struct {
	Margins rawMargins          `yaml:"margins"`
	Outlines map[string]Outline `yaml:"outlines"`
	Views    map[string][]rawRow `yaml:"views"`
	Buttons  map[string]rawButton `yaml:"buttons"`
}

// ResourceRoot is the conventional install location of the layout
// resources. Path and Load take the root as an argument and do not read
// this variable.
var ResourceRoot = "/usr/share/squeekboard"

// cssSafeName replaces '+' with '_', matching the naming rule in §6 for
// layout names that double as CSS class names.
func cssSafeName(name string) string {
	return strings.ReplaceAll(name, "+", "_")
}

// Path returns the on-disk path a layout name resolves to.
func Path(resourceRoot, name string) string {
	return filepath.Join(resourceRoot, "keyboards", cssSafeName(name)+".yaml")
}

// Load reads and parses the layout named name (optionally overlaid by
// overlayName, which is loaded as a second file and whose views replace
// or add to the base ones) for the given arrangement and purpose,
// returning a ready-to-use layout.Data.
func Load(resourceRoot string, name string, arrangement layout.ArrangementKind, purpose layout.ContentPurpose, overlayName *string) (layout.Data, error) {
	base, err := loadFile(Path(resourceRoot, name))
	if err != nil {
		return layout.Data{}, fmt.Errorf("loading layout %q: %w", name, err)
	}

	if overlayName != nil && *overlayName != "" {
		overlay, err := loadFile(Path(resourceRoot, *overlayName))
		if err != nil {
			return layout.Data{}, fmt.Errorf("loading overlay %q: %w", *overlayName, err)
		}
		for view, rows := range overlay.Views {
			base.Views[view] = rows
		}
		for name, outline := range overlay.Outlines {
			base.Outlines[name] = outline
		}
		for name, button := range overlay.Buttons {
			base.Buttons[name] = button
		}
	}

	return build(base, arrangement, purpose)
}

func loadFile(path string) (rawLayout, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return rawLayout{}, err
	}
	var raw rawLayout
	if err := yaml.Unmarshal(f, &raw); err != nil {
		return rawLayout{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return raw, nil
}

// build turns a parsed rawLayout into layout.Data: it resolves every
// button reference, assigns deterministic keycodes across the whole
// layout, and lays out rows/views via layout.NewRow/NewView so the
// engine's centering and hit-test invariants hold.
func build(raw rawLayout, arrangement layout.ArrangementKind, purpose layout.ContentPurpose) (layout.Data, error) {
	submitNames := collectSubmitNames(raw.Buttons)
	codes := keymap.GenerateKeycodes(submitNames)

	views := make(map[string]layout.ViewEntry, len(raw.Views))
	var submissions []keymap.KeySubmission

	for viewName, rows := range raw.Views {
		rowInputs := make([]layout.NewRowInput, 0, len(rows))
		y := 0.0
		for _, rr := range rows {
			offsetButtons := make([]layout.OffsetButton, 0, len(rr.Buttons))
			x := 0.0
			for _, name := range rr.Buttons {
				btn, ok := raw.Buttons[name]
				if !ok {
					return layout.Data{}, fmt.Errorf("view %q references undefined button %q", viewName, name)
				}
				outlineName := rr.Outline
				if btn.Outline != "" {
					outlineName = btn.Outline
				}
				outline, ok := raw.Outlines[outlineName]
				if !ok {
					return layout.Data{}, fmt.Errorf("button %q references undefined outline %q", name, outlineName)
				}

				button, subs := buildButton(name, btn, outline, codes)
				submissions = append(submissions, subs...)

				offsetButtons = append(offsetButtons, layout.OffsetButton{XOffset: x, Button: button})
				x += outline.Width
			}
			row := layout.NewRow(offsetButtons)
			rowInputs = append(rowInputs, layout.NewRowInput{YOffset: y, Row: row})
			y += row.Size().Height
		}
		views[viewName] = layout.ViewEntry{
			Offset: layout.Point{},
			View:   layout.NewView(rowInputs),
		}
	}

	return layout.Data{
		Margins: layout.Margins{
			Top:    raw.Margins.Top,
			Bottom: raw.Margins.Bottom,
			Left:   raw.Margins.Left,
			Right:  raw.Margins.Right,
		},
		Kind:    arrangement,
		Purpose: purpose,
		Views:   views,
		Keymaps: []string{keymap.Generate(submissions)},
	}, nil
}

// collectSubmitNames gathers every keysym name referenced by any
// button's submit action, so GenerateKeycodes sees the whole layout at
// once and produces one consistent assignment regardless of which view
// happens to be loaded first.
func collectSubmitNames(buttons map[string]rawButton) []string {
	seen := make(map[string]struct{})
	for buttonName, b := range buttons {
		switch {
		case b.Action.Submit != nil:
			for _, k := range b.Action.Submit.Keys {
				seen[k] = struct{}{}
			}
		case b.Action.Bare == "" && b.Action.SetView == "" && b.Action.LockView == nil && b.Action.Modifier == "":
			// No action field: the button name itself is submitted.
			seen[buttonName] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// buildButton resolves one YAML button entry into a layout.Button with
// its keycodes filled in, plus the keymap.KeySubmission entries it
// contributes (empty for actions that don't submit anything).
func buildButton(name string, raw rawButton, outline Outline, codes map[string]uint32) (layout.Button, []keymap.KeySubmission) {
	label := layout.TextLabel(raw.Label)
	if raw.Icon != "" {
		label = layout.IconLabel(raw.Icon)
	}
	if raw.Label == "" && raw.Icon == "" {
		label = layout.TextLabel(name)
	}

	button := layout.Button{
		Name:        name,
		Label:       label,
		Size:        layout.Size{Width: outline.Width, Height: outline.Height},
		OutlineName: "",
	}

	var subs []keymap.KeySubmission

	switch {
	case raw.Action.Bare == "erase":
		button.Action = layout.Erase()
		code := codes["BackSpace"]
		button.Keycodes = []uint32{code}
		subs = append(subs, keymap.KeySubmission{IsErase: true, Keycodes: []uint32{code}})

	case raw.Action.Bare == "show_prefs":
		button.Action = layout.ShowPreferences()

	case raw.Action.SetView != "":
		button.Action = layout.SetView(raw.Action.SetView)

	case raw.Action.LockView != nil:
		lv := raw.Action.LockView
		button.Action = layout.LockView(lv.Lock, lv.Unlock, lv.Latches, lv.LooksLockedFrom)

	case raw.Action.Modifier != "":
		button.Action = layout.ApplyModifier(modifierFromName(raw.Action.Modifier))

	case raw.Action.Submit != nil:
		var textPtr *string
		if raw.Action.Submit.Text != "" {
			text := raw.Action.Submit.Text
			textPtr = &text
		}
		keys := make([]layout.KeySym, len(raw.Action.Submit.Keys))
		keycodes := make([]uint32, len(raw.Action.Submit.Keys))
		keysymNames := make([]string, len(raw.Action.Submit.Keys))
		for i, k := range raw.Action.Submit.Keys {
			keys[i] = layout.KeySym(k)
			keycodes[i] = codes[k]
			keysymNames[i] = k
		}
		button.Action = layout.Submit(textPtr, keys)
		button.Keycodes = keycodes
		subs = append(subs, keymap.KeySubmission{Keysyms: keysymNames, Keycodes: keycodes})

	default:
		// No action field at all: treat the button name itself as a
		// single-character submission, the common case for a plain
		// letter/digit key.
		code := codes[name]
		button.Action = layout.Submit(nil, []layout.KeySym{layout.KeySym(name)})
		button.Keycodes = []uint32{code}
		subs = append(subs, keymap.KeySubmission{Keysyms: []string{name}, Keycodes: []uint32{code}})
	}

	return button, subs
}

func modifierFromName(name string) layout.Modifier {
	switch name {
	case "shift":
		return layout.ModShift
	case "control":
		return layout.ModControl
	case "alt":
		return layout.ModMod1
	case "altgr":
		return layout.ModMod5
	case "meta":
		return layout.ModMod4
	default:
		return layout.ModLock
	}
}
