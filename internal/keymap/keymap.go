// Package keymap generates the textual XKB keymap squeekboard hands to
// the compositor's virtual-keyboard protocol, and assigns the
// deterministic keycodes every button's Action.Submit needs baked in
// before it can be pressed. Grounded on the original project's
// keyboard.rs (generate_keycodes, generate_keymap).
package keymap

import (
	"fmt"
	"sort"
	"strings"
)

// firstKeycode is the lowest keycode assigned; 8 would map to keycode 0
// once the compositor subtracts its own offset, which some compositors
// discard outright.
const firstKeycode = 9

// lastKeycode is the xkb_keycodes maximum. Named keycodes are declared
// from firstKeycode up to lastKeycode-1; lastKeycode itself gets no name.
const lastKeycode = 999

// GenerateKeycodes assigns each name in names (plus the two synthetic
// names every layout implicitly needs, "BackSpace" and "Return") a
// keycode, starting at 9. Names are sorted lexicographically first so
// the assignment is deterministic across runs and independent of
// iteration order upstream.
func GenerateKeycodes(names []string) map[string]uint32 {
	set := make(map[string]struct{}, len(names)+2)
	for _, n := range names {
		set[n] = struct{}{}
	}
	set["BackSpace"] = struct{}{}
	set["Return"] = struct{}{}

	sorted := make([]string, 0, len(set))
	for n := range set {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	out := make(map[string]uint32, len(sorted))
	code := uint32(firstKeycode)
	for _, n := range sorted {
		out[n] = code
		code++
	}
	return out
}

// KeySubmission is what one active key needs represented in the
// generated keymap: either a list of named keysyms (one per keycode
// slot, for multi-character Submit actions) or the single erase
// keycode.
type KeySubmission struct {
	// Keysyms is non-empty for Action::Submit keys; Keycodes[i] pairs
	// with Keysyms[i].
	Keysyms  []string
	Keycodes []uint32
	// IsErase selects the BackSpace binding instead of Keysyms.
	IsErase bool
}

// Generate renders the full xkb_keymap text declaring keycodes from
// firstKeycode up to (not including) lastKeycode, binding each KeySubmission's keycodes to
// its keysyms (or to BackSpace, for erase keys). The "squeekboard"
// identifier is a placeholder name, not meaningful beyond uniqueness.
func Generate(keys []KeySubmission) string {
	var b strings.Builder

	b.WriteString("xkb_keymap {\n\n")
	b.WriteString("    xkb_keycodes \"squeekboard\" {\n")
	b.WriteString("        minimum = 8;\n")
	b.WriteString("        maximum = 999;")
	for kc := firstKeycode; kc < lastKeycode; kc++ {
		fmt.Fprintf(&b, "\n        <I%d> = %d;", kc, kc)
	}
	b.WriteString("\n        indicator 1 = \"Caps Lock\"; // Xwayland won't accept without it.\n    };\n\n")

	b.WriteString("    xkb_symbols \"squeekboard\" {\n")
	for _, key := range keys {
		if key.IsErase {
			if len(key.Keycodes) > 0 {
				fmt.Fprintf(&b, "\n        key <I%d> { [ BackSpace ] };", key.Keycodes[0])
			}
			continue
		}
		n := len(key.Keysyms)
		if len(key.Keycodes) < n {
			n = len(key.Keycodes)
		}
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "\n        key <I%d> { [ %s ] };", key.Keycodes[i], key.Keysyms[i])
		}
	}
	b.WriteString("\n    };\n\n")

	b.WriteString(`    xkb_types "squeekboard" {
        virtual_modifiers Squeekboard; // No modifiers! Needed for Xorg for some reason.

        // Those names are needed for Xwayland.
        type "ONE_LEVEL" {
            modifiers= none;
            level_name[Level1]= "Any";
        };
        type "TWO_LEVEL" {
            level_name[Level1]= "Base";
        };
        type "ALPHABETIC" {
            level_name[Level1]= "Base";
        };
        type "KEYPAD" {
            level_name[Level1]= "Base";
        };
        type "SHIFT+ALT" {
            level_name[Level1]= "Base";
        };

    };

    xkb_compatibility "squeekboard" {
        // Needed for Xwayland again.
        interpret Any+AnyOf(all) {
            action= SetMods(modifiers=modMapMods,clearLocks);
        };
    };
};`)

	return b.String()
}
