// Package layout implements component D: the keyboard's view/row/button
// geometry, hit-testing, panel transform, touch state machine, and
// view-transition rules. It is a direct port of the original project's
// layout.rs, with the C FFI boundary (gtk_sys, EekGtkKeyboard) replaced
// by a plain Go UIBackend interface that internal/gtkshell implements.
package layout

import (
	"sort"
)

// Point is a position in some 2D coordinate space (widget, layout, or
// view-local, depending on context).
type Point struct {
	X, Y float64
}

// Add returns p translated by other.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns p translated by the negation of other.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Size is a width/height pair.
type Size struct {
	Width, Height float64
}

// Bounds is an axis-aligned rectangle anchored at (X, Y).
type Bounds struct {
	X, Y, Width, Height float64
}

// Contains reports whether p lies strictly inside b. Points exactly on
// the boundary are excluded, matching the source's strict comparisons.
func (b Bounds) Contains(p Point) bool {
	return p.X > b.X && p.X < b.X+b.Width &&
		p.Y > b.Y && p.Y < b.Y+b.Height
}

// Transformation maps layout-space points to widget-space points by
// scaling then translating: reverse(p) = p*scale + origin.
type Transformation struct {
	OriginX, OriginY float64
	ScaleX, ScaleY   float64
}

// Chain composes two transformations, applying next after this one.
func (t Transformation) Chain(next Transformation) Transformation {
	return Transformation{
		OriginX: t.OriginX + t.ScaleX*next.OriginX,
		OriginY: t.OriginY + t.ScaleY*next.OriginY,
		ScaleX:  t.ScaleX * next.ScaleX,
		ScaleY:  t.ScaleY * next.ScaleY,
	}
}

// Forward maps a widget-space point to layout space.
func (t Transformation) Forward(p Point) Point {
	return Point{
		X: (p.X - t.OriginX) / t.ScaleX,
		Y: (p.Y - t.OriginY) / t.ScaleY,
	}
}

// Reverse maps a layout-space point to widget space.
func (t Transformation) Reverse(p Point) Point {
	return Point{
		X: p.X*t.ScaleX + t.OriginX,
		Y: p.Y*t.ScaleY + t.OriginY,
	}
}

// ReverseBounds maps a layout-space rectangle to widget space.
func (t Transformation) ReverseBounds(b Bounds) Bounds {
	start := t.Reverse(Point{X: b.X, Y: b.Y})
	end := t.Reverse(Point{X: b.X + b.Width, Y: b.Y + b.Height})
	return Bounds{
		X:      start.X,
		Y:      start.Y,
		Width:  end.X - start.X,
		Height: end.Y - start.Y,
	}
}

// OffsetButton pairs a button with its x-offset from the row's origin.
type OffsetButton struct {
	XOffset float64
	Button  Button
}

// Row is a horizontal group of buttons, each keeping its authored
// x-offset relative to the row's own origin.
type Row struct {
	buttons []OffsetButton
	size    Size
}

// NewRow builds a Row from buttons paired with their x-offsets. Callers
// must supply them pre-sorted by ascending offset, matching the
// source's debug_assert-only check (release builds trust the caller).
func NewRow(buttons []OffsetButton) Row {
	pairs := append([]OffsetButton(nil), buttons...)

	width := 0.0
	if n := len(pairs); n > 0 {
		last := pairs[n-1]
		width = last.Button.Size.Width + last.XOffset
	}
	height := 0.0
	for _, p := range pairs {
		if p.Button.Size.Height > height {
			height = p.Button.Size.Height
		}
	}

	return Row{buttons: pairs, size: Size{Width: width, Height: height}}
}

// Size returns the row's total bounding size.
func (r Row) Size() Size { return r.size }

// Buttons returns the row's buttons paired with their x-offsets.
func (r Row) Buttons() []OffsetButton {
	return append([]OffsetButton(nil), r.buttons...)
}

// findButtonByPosition resolves the button covering x, relative to the
// row's own origin. Buttons are sorted by offset, so a binary search
// finds the last button whose offset is <= x; a point left of the first
// button's offset still resolves to the first button (this is
// deliberate: clicks past the left edge of the left-most button should
// still register).
func (r Row) findButtonByPosition(x float64) (Button, int) {
	index := sort.Search(len(r.buttons), func(i int) bool {
		return r.buttons[i].XOffset > x
	})
	if index > 0 {
		index--
	}
	return r.buttons[index].Button, index
}

// OffsetRow pairs a row with its centered position within the view.
type OffsetRow struct {
	Offset Point
	Row    Row
}

// View is a vertical stack of rows, each row horizontally centered on
// the view's own width.
type View struct {
	rows []OffsetRow
	size Size
}

// NewRowInput pairs a row with its authored y-offset, pre-centering.
type NewRowInput struct {
	YOffset float64
	Row     Row
}

// NewView builds a View from rows paired with their y-offsets, centering
// each row horizontally on the view's total width. Callers must supply
// rows pre-sorted by ascending y-offset.
func NewView(rows []NewRowInput) View {
	width := 0.0
	for _, r := range rows {
		if r.Row.size.Width > width {
			width = r.Row.size.Width
		}
	}

	height := 0.0
	if n := len(rows); n > 0 {
		last := rows[n-1]
		height = last.Row.size.Height + last.YOffset
	}

	positioned := make([]OffsetRow, len(rows))
	for i, r := range rows {
		positioned[i] = OffsetRow{
			Offset: Point{X: (width - r.Row.size.Width) / 2.0, Y: r.YOffset},
			Row:    r.Row,
		}
	}

	return View{rows: positioned, size: Size{Width: width, Height: height}}
}

// Size returns the view's total bounding size.
func (v View) Size() Size { return v.size }

// Rows returns the view's rows with their centered offsets.
func (v View) Rows() []OffsetRow {
	return append([]OffsetRow(nil), v.rows...)
}

// findButtonByPosition resolves the button covering point, relative to
// the view's own origin, returning its (row, column) index. Points
// outside the view's bounding box resolve to no hit.
func (v View) findButtonByPosition(point Point) (Button, int, int, bool) {
	bounds := Bounds{X: 0, Y: 0, Width: v.size.Width, Height: v.size.Height}
	if !bounds.Contains(point) {
		return Button{}, 0, 0, false
	}

	rowIndex := sort.Search(len(v.rows), func(i int) bool {
		return v.rows[i].Offset.Y > point.Y
	})
	if rowIndex > 0 {
		rowIndex--
	}

	row := v.rows[rowIndex]
	button, buttonIndex := row.Row.findButtonByPosition(point.X - row.Offset.X)
	return button, rowIndex, buttonIndex, true
}

// CalculateSuperSize returns a size large enough to contain every given
// view if they are all centered on the same point.
func CalculateSuperSize(views []View) Size {
	size := Size{}
	for _, v := range views {
		if v.size.Height > size.Height {
			size.Height = v.size.Height
		}
		if v.size.Width > size.Width {
			size.Width = v.size.Width
		}
	}
	return size
}
