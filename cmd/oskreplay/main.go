// Command oskreplay is a developer console for the loop kernel: it reads
// scripted event lines from a terminal in raw mode and feeds them to a
// driver.Threaded and a loaded layout.Layout, printing every resulting
// Commands value, so the core can be exercised without a compositor or
// GTK. Grounded on the teacher's src/pkg/keyboard/handler.go raw-mode
// setup/restore (term.MakeRaw/term.Restore) and its line-assembly loop,
// trimmed from full VT100 escape parsing down to a plain Enter/Backspace
// line editor since this console only ever needs printable commands.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/squeekboard/squeekboard/internal/driver"
	"github.com/squeekboard/squeekboard/internal/layout"
	"github.com/squeekboard/squeekboard/internal/layoutfile"
	"github.com/squeekboard/squeekboard/internal/logging"
	"github.com/squeekboard/squeekboard/internal/visibility"
)

// replaySink prints every submission instead of forwarding it anywhere;
// oskreplay has no compositor to submit text to.
type replaySink struct {
	activeMods map[layout.Modifier]bool
	modForKey  map[layout.KeyID]layout.Modifier
}

func newReplaySink() *replaySink {
	return &replaySink{
		activeMods: make(map[layout.Modifier]bool),
		modForKey:  make(map[layout.KeyID]layout.Modifier),
	}
}

func (s *replaySink) HandlePress(id layout.KeyID, kind layout.SubmitKind, text string, keycodes []uint32, t time.Time) {
	fmt.Printf("\r\nsubmit press  %+v kind=%v text=%q keycodes=%v\r\n", id, kind, text, keycodes)
}

func (s *replaySink) HandleRelease(id layout.KeyID, t time.Time) {
	fmt.Printf("\r\nsubmit release %+v\r\n", id)
}

func (s *replaySink) IsModifierActive(m layout.Modifier) bool { return s.activeMods[m] }

func (s *replaySink) HandleAddModifier(id layout.KeyID, m layout.Modifier, t time.Time) {
	s.activeMods[m] = true
	s.modForKey[id] = m
	fmt.Printf("\r\nmodifier on  %v\r\n", m)
}

func (s *replaySink) HandleDropModifier(id layout.KeyID, t time.Time) {
	if m, ok := s.modForKey[id]; ok {
		s.activeMods[m] = false
		delete(s.modForKey, id)
		fmt.Printf("\r\nmodifier off %v\r\n", m)
	}
}

// console owns the loaded layout and the driver feeding the loop kernel,
// the two things scripted commands can act on.
type console struct {
	resourceRoot string
	sink         *replaySink
	drv          *driver.Threaded
	active       *layout.Layout
}

func main() {
	resourceRoot := flag.String("resources", "/usr/share/squeekboard", "directory containing keyboards/*.yaml layout files")
	flag.Parse()

	logger := logging.New(true)
	ui := make(chan visibility.Commands, 16)
	drv := driver.New(logger, ui)

	c := &console{resourceRoot: *resourceRoot, sink: newReplaySink(), drv: drv}

	go func() {
		for cmds := range ui {
			printCommands(cmds)
			c.applyLayoutSelection(cmds.LayoutSelection)
		}
	}()

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			fmt.Fprintln(os.Stderr, "oskreplay: failed to enable raw mode:", err)
			os.Exit(1)
		}
		defer term.Restore(fd, state)
	}

	fmt.Print("oskreplay ready. type 'help' for commands.\r\n")
	for line := range readLines(os.Stdin) {
		if !c.dispatch(strings.TrimSpace(line)) {
			break
		}
	}
}

// readLines assembles raw terminal bytes into lines, handling Enter and
// Backspace only: every other printable byte is echoed and buffered.
// This is the teacher's handleLineAssembly loop with escape-sequence and
// paste handling stripped out, since scripted commands never need them.
func readLines(r *os.File) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		reader := bufio.NewReader(r)
		var line []byte
		for {
			b, err := reader.ReadByte()
			if err != nil {
				return
			}
			switch b {
			case '\r', '\n':
				fmt.Print("\r\n")
				out <- string(line)
				line = nil
			case 127, 8: // Backspace / DEL
				if len(line) > 0 {
					line = line[:len(line)-1]
					fmt.Print("\b \b")
				}
			case 3: // Ctrl-C
				fmt.Print("\r\n")
				out <- "quit"
				return
			default:
				if b >= 32 && b < 127 {
					line = append(line, b)
					fmt.Printf("%c", b)
				}
			}
		}
	}()
	return out
}

// dispatch parses and runs one command line, returning false when the
// console should exit.
func (c *console) dispatch(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "quit", "exit":
		return false
	case "help":
		printHelp()
	case "show":
		c.drv.Send(visibility.NewVisibilityEvent(visibility.ForceVisible))
	case "hide":
		c.drv.Send(visibility.NewVisibilityEvent(visibility.ForceHidden))
	case "physical":
		c.cmdPhysical(fields)
	case "im":
		c.cmdInputMethod(fields)
	case "debug":
		c.cmdDebug(fields)
	case "layout":
		c.cmdLayout(fields)
	case "overlay":
		if len(fields) == 2 {
			c.drv.Send(visibility.NewOverlayChangedEvent(fields[1]))
		}
	case "press":
		c.cmdPress(fields)
	case "release":
		c.cmdRelease(fields)
	case "releaseall":
		if c.active != nil {
			c.active.ReleaseAll(c.sink, nil, noGate{}, time.Now())
		}
	default:
		fmt.Printf("\r\nunknown command %q, type 'help'\r\n", fields[0])
	}
	return true
}

func (c *console) cmdPhysical(fields []string) {
	if len(fields) != 2 {
		return
	}
	switch fields[1] {
	case "on":
		c.drv.Send(visibility.NewPhysicalKeyboardEvent(visibility.Present))
	case "off":
		c.drv.Send(visibility.NewPhysicalKeyboardEvent(visibility.Missing))
	}
}

func (c *console) cmdInputMethod(fields []string) {
	if len(fields) < 2 {
		return
	}
	switch fields[1] {
	case "active":
		purpose := visibility.PurposeNormal
		if len(fields) >= 3 {
			if p, ok := purposeByName[fields[2]]; ok {
				purpose = p
			}
		}
		c.drv.Send(visibility.NewInputMethodEvent(visibility.Active(visibility.InputMethodDetails{Purpose: purpose})))
	case "inactive":
		c.drv.Send(visibility.NewInputMethodEvent(visibility.InactiveSince(time.Now())))
	}
}

var purposeByName = map[string]visibility.ContentPurpose{
	"normal":   visibility.PurposeNormal,
	"alpha":    visibility.PurposeAlpha,
	"digits":   visibility.PurposeDigits,
	"number":   visibility.PurposeNumber,
	"phone":    visibility.PurposePhone,
	"url":      visibility.PurposeURL,
	"email":    visibility.PurposeEmail,
	"terminal": visibility.PurposeTerminal,
}

func (c *console) cmdDebug(fields []string) {
	if len(fields) != 2 {
		return
	}
	switch fields[1] {
	case "on":
		c.drv.Send(visibility.NewDebugEvent(visibility.DebugEnable))
	case "off":
		c.drv.Send(visibility.NewDebugEvent(visibility.DebugDisable))
	}
}

func (c *console) cmdLayout(fields []string) {
	if len(fields) < 2 {
		return
	}
	c.drv.Send(visibility.NewLayoutChoiceEvent(visibility.LayoutChoice{Name: fields[1], Source: visibility.SourceXkb}))
}

func (c *console) cmdPress(fields []string) {
	row, col, ok := parseRowCol(fields)
	if !ok || c.active == nil {
		return
	}
	pos := layout.ButtonPosition{ViewName: c.active.State.CurrentView, Row: row, PositionInRow: col}
	c.active.HandlePressKey(c.sink, time.Now(), pos)
}

func (c *console) cmdRelease(fields []string) {
	row, col, ok := parseRowCol(fields)
	if !ok || c.active == nil {
		return
	}
	pos := layout.ButtonPosition{ViewName: c.active.State.CurrentView, Row: row, PositionInRow: col}
	c.active.HandleReleaseKey(c.sink, nil, noGate{}, time.Now(), pos)
}

func parseRowCol(fields []string) (row, col int, ok bool) {
	if len(fields) != 3 {
		return 0, 0, false
	}
	r, err1 := strconv.Atoi(fields[1])
	cc, err2 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return r, cc, true
}

// applyLayoutSelection mirrors internal/gtkshell's handling of the same
// command, minus the GTK widget and popover plumbing: it reloads the named layout so
// press/release commands operate on whatever the kernel last chose.
func (c *console) applyLayoutSelection(sel *visibility.Contents) {
	if sel == nil {
		return
	}
	arrangement := layout.ArrangementBase
	if sel.Arrangement == visibility.ArrangementWide {
		arrangement = layout.ArrangementWide
	}
	var overlay *string
	if sel.OverlayName != "" {
		overlay = &sel.OverlayName
	}
	data, err := layoutfile.Load(c.resourceRoot, sel.Name, arrangement, layout.ContentPurpose(sel.Purpose), overlay)
	if err != nil {
		fmt.Printf("\r\nfailed to load layout %q: %v\r\n", sel.Name, err)
		return
	}
	c.active = layout.New(data, nil)
	fmt.Printf("\r\nloaded layout %q\r\n", sel.Name)
}

// noGate always reports the popover as inactive: oskreplay has no GTK
// popover widget to gate.
type noGate struct{}

func (noGate) SettingsActive() bool { return false }

func printCommands(cmds visibility.Commands) {
	if cmds.PanelVisibility != nil {
		fmt.Printf("\r\ncommand: panel-visibility show=%v height=%d\r\n", cmds.PanelVisibility.Show, cmds.PanelVisibility.Height)
	}
	if cmds.LayoutSelection != nil {
		fmt.Printf("\r\ncommand: layout-selection %+v\r\n", *cmds.LayoutSelection)
	}
}

func printHelp() {
	fmt.Print("\r\ncommands: show | hide | physical on|off | im active [purpose] | im inactive |\r\n" +
		"          debug on|off | layout <name> | overlay <name> |\r\n" +
		"          press <row> <col> | release <row> <col> | releaseall | quit\r\n")
}
