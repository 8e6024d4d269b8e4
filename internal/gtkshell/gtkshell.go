// Package gtkshell is the GTK half of the imperative shell (component
// F): it builds the panel window and its drawing area, wires touch
// callbacks to the layout engine's Press/Drag/Release, and applies
// Commands coming off the driver's UI channel. Grounded line-for-line on
// the teacher's src/cmd/pawgui-gtk/main.go (gtk.Init, WindowNew,
// Connect("destroy", ...)) and src/pkg/gtkterm/widget.go's drawing-area
// event wiring (AddEvents, button-press-event/button-release-event/
// motion-notify-event, glib.IdleAdd for cross-thread redraw requests).
package gtkshell

import (
	"sync"
	"time"

	"github.com/gotk3/gotk3/cairo"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"

	"github.com/squeekboard/squeekboard/internal/layout"
	"github.com/squeekboard/squeekboard/internal/layoutfile"
	"github.com/squeekboard/squeekboard/internal/logging"
	"github.com/squeekboard/squeekboard/internal/popover"
	"github.com/squeekboard/squeekboard/internal/visibility"
)

// EventSender is the subset of *driver.Threaded the touch callbacks
// need: a place to report layout-selection-triggered reloads back, plus
// anything else a future UI gesture wants to post (force show/hide).
type EventSender interface {
	Send(ev visibility.Event)
}

// Shell owns every GTK widget and the mutable layout it dispatches touch
// events to. All of its methods except ApplyCommands run on the GTK
// main-loop thread; ApplyCommands is safe to call from any goroutine
// because it defers its actual work to glib.IdleAdd.
type Shell struct {
	mu sync.Mutex

	window      *gtk.Window
	drawingArea *gtk.DrawingArea

	resourceRoot string
	layout       *layout.Layout
	transform    layout.Transformation

	sink    layout.SubmissionSink
	popGate layout.PopoverGate

	sender EventSender
	pop    *popover.Popover
	logger *logging.Logger
}

// New builds the panel window and drawing area and wires its events.
// The window starts hidden; ApplyCommands drives visibility from there.
func New(resourceRoot string, sink layout.SubmissionSink, sender EventSender, pop *popover.Popover, logger *logging.Logger) (*Shell, error) {
	gtk.Init(nil)

	win, err := gtk.WindowNew(gtk.WINDOW_TOPLEVEL)
	if err != nil {
		return nil, err
	}
	win.SetTitle("squeekboard")
	win.SetDecorated(false)
	win.SetTypeHint(gdk.WINDOW_TYPE_HINT_DOCK)
	win.Connect("destroy", func() {
		gtk.MainQuit()
	})

	da, err := gtk.DrawingAreaNew()
	if err != nil {
		return nil, err
	}
	da.AddEvents(int(gdk.BUTTON_PRESS_MASK | gdk.BUTTON_RELEASE_MASK | gdk.POINTER_MOTION_MASK))
	da.SetCanFocus(true)
	win.Add(da)

	s := &Shell{
		window:       win,
		drawingArea:  da,
		resourceRoot: resourceRoot,
		sink:         sink,
		popGate:      popoverGate{pop},
		sender:       sender,
		pop:          pop,
		logger:       logger,
	}

	da.Connect("draw", s.onDraw)
	da.Connect("button-press-event", s.onButtonPress)
	da.Connect("button-release-event", s.onButtonRelease)
	da.Connect("motion-notify-event", s.onMotionNotify)

	return s, nil
}

// Run enters the GTK main loop. It blocks until the window is destroyed.
func (s *Shell) Run() {
	s.window.ShowAll()
	s.window.Hide()
	gtk.Main()
}

// popoverGate adapts *popover.Popover to layout.PopoverGate.
type popoverGate struct{ pop *popover.Popover }

func (g popoverGate) SettingsActive() bool {
	if g.pop == nil {
		return false
	}
	return g.pop.Snapshot().SettingsActive
}

// ShowPopover and RequestRedraw implement layout.UIBackend.
func (s *Shell) ShowPopover(bounds layout.Bounds) {
	widgetBounds := s.transform.ReverseBounds(bounds)
	s.pop.SetOverlay(s.pop.Snapshot().Overlay)
	s.drawingArea.QueueDraw()
	_ = widgetBounds // placement of the actual popover widget is GTK-widget plumbing outside this core's scope
}

func (s *Shell) RequestRedraw() {
	glib.IdleAdd(func() {
		s.drawingArea.QueueDraw()
	})
}

func (s *Shell) onDraw(da *gtk.DrawingArea, cr *cairo.Context) bool {
	s.mu.Lock()
	l := s.layout
	tr := s.transform
	s.mu.Unlock()

	cr.SetSourceRGB(0.15, 0.15, 0.17)
	cr.Paint()

	if l == nil {
		return true
	}
	cr.SetSourceRGB(0.85, 0.85, 0.85)
	l.ForeachVisibleButton(func(offset layout.Point, button layout.Button, row, col int) {
		widgetOrigin := tr.Reverse(offset)
		w := button.Size.Width * tr.ScaleX
		h := button.Size.Height * tr.ScaleY
		cr.Rectangle(widgetOrigin.X+1, widgetOrigin.Y+1, w-2, h-2)
		cr.Stroke()
	})
	return true
}

func (s *Shell) onButtonPress(da *gtk.DrawingArea, ev *gdk.Event) bool {
	btn := gdk.EventButtonNewFromEvent(ev)
	if btn.Button() != 1 {
		return false
	}
	da.GrabFocus()

	s.mu.Lock()
	l, tr := s.layout, s.transform
	s.mu.Unlock()
	if l == nil {
		return true
	}
	l.Press(layout.Point{X: btn.X(), Y: btn.Y()}, tr, time.Now(), s.sink)
	da.QueueDraw()
	return true
}

func (s *Shell) onButtonRelease(da *gtk.DrawingArea, ev *gdk.Event) bool {
	btn := gdk.EventButtonNewFromEvent(ev)
	if btn.Button() != 1 {
		return false
	}

	s.mu.Lock()
	l := s.layout
	s.mu.Unlock()
	if l == nil {
		return true
	}
	l.ReleaseAll(s.sink, s, s.popGate, time.Now())
	da.QueueDraw()
	return true
}

func (s *Shell) onMotionNotify(da *gtk.DrawingArea, ev *gdk.Event) bool {
	motion := gdk.EventMotionNewFromEvent(ev)

	s.mu.Lock()
	l, tr := s.layout, s.transform
	s.mu.Unlock()
	if l == nil {
		return true
	}
	l.Drag(layout.Point{X: motion.X(), Y: motion.Y()}, tr, time.Now(), s.sink, s, s.popGate)
	da.QueueDraw()
	return true
}

// ApplyCommands applies the outgoing Commands from one kernel fold
// (§4.C's diff_to output). It is safe to call from the driver's worker
// goroutine: all widget mutation is deferred onto the GTK main loop via
// glib.IdleAdd, matching the teacher's dirty-callback -> IdleAdd pattern
// used to marshal buffer updates onto the UI thread.
func (s *Shell) ApplyCommands(cmds visibility.Commands) {
	glib.IdleAdd(func() {
		if cmds.PanelVisibility != nil {
			s.applyPanelVisibility(*cmds.PanelVisibility)
		}
		if cmds.LayoutSelection != nil {
			s.applyLayoutSelection(*cmds.LayoutSelection)
		}
	})
}

func (s *Shell) applyPanelVisibility(cmd visibility.PanelVisibilityCommand) {
	if !cmd.Show {
		s.window.Hide()
		return
	}
	s.window.SetDefaultSize(-1, cmd.Height)
	s.window.Resize(1, cmd.Height)
	s.window.ShowAll()
}

// applyLayoutSelection reloads the keyboard layout named by contents
// and installs it as the active Layout, resetting all touch state (the
// previous layout's pressed buttons are simply dropped, since a layout
// swap implies the old view's keys are no longer reachable).
func (s *Shell) applyLayoutSelection(contents visibility.Contents) {
	if s.pop != nil {
		s.pop.SetOverlay(contents.OverlayName)
	}

	arrangement := layout.ArrangementBase
	if contents.Arrangement == visibility.ArrangementWide {
		arrangement = layout.ArrangementWide
	}

	var overlay *string
	if contents.OverlayName != "" {
		overlay = &contents.OverlayName
	}

	data, err := layoutfile.Load(s.resourceRoot, contents.Name, arrangement, layout.ContentPurpose(contents.Purpose), overlay)
	if err != nil {
		if s.logger != nil {
			s.logger.Warning("failed to load layout %q: %v", contents.Name, err)
		}
		return
	}

	newLayout := layout.New(data, s.logger)

	s.mu.Lock()
	s.layout = newLayout
	available := layout.Size{}
	if s.window != nil {
		w, h := s.window.GetSize()
		available = layout.Size{Width: float64(w), Height: float64(h)}
	}
	s.transform = data.CalculateTransformation(available)
	s.mu.Unlock()

	s.drawingArea.QueueDraw()
}
