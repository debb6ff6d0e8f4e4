// Package areas divides the touch surface into note areas and maps touch
// positions to pitches.
package areas

import (
	"github.com/cbegin/touchsynth-go/internal/note"
	"github.com/cbegin/touchsynth-go/internal/touch"
)

// Area is one playable region of the surface.
type Area struct {
	Shape Shape
	Pitch int
}

// Orientation selects the corner that area (0, 0) is anchored to.
type Orientation int

const (
	// Landscape anchors the layout at the bottom-left corner.
	Landscape Orientation = iota
	// Portrait anchors the layout at the bottom-right corner.
	Portrait
)

// Span is a half-open integer range [From, To).
type Span struct {
	From, To int
}

// Len returns the number of integers in the span.
func (s Span) Len() int { return max(0, s.To-s.From) }

// Layout describes a tessellation of the surface into parallelograms.
type Layout struct {
	Width, Height int32
	Orientation   Orientation
	U, V          touch.Position
	Columns       Span
	Rows          Span
	StartPitch    int
	RowInterval   int
}

func (l Layout) origin() touch.Position {
	if l.Orientation == Portrait {
		return touch.Position{X: l.Width, Y: l.Height}
	}
	return touch.Position{X: 0, Y: l.Height}
}

// Build places one area per (row, column) cell, rows outermost. The area in
// column c of row r starts at origin + c·U + r·V and plays
// StartPitch + c + r·RowInterval.
func Build(l Layout) []Area {
	o := l.origin()
	out := make([]Area, 0, l.Rows.Len()*l.Columns.Len())
	for row := l.Rows.From; row < l.Rows.To; row++ {
		for col := l.Columns.From; col < l.Columns.To; col++ {
			c, r := int32(col), int32(row)
			out = append(out, Area{
				Shape: Shape{
					Base: touch.Position{
						X: o.X + c*l.U.X + r*l.V.X,
						Y: o.Y + c*l.U.Y + r*l.V.Y,
					},
					U: l.U,
					V: l.V,
				},
				Pitch: l.StartPitch + col + row*l.RowInterval,
			})
		}
	}
	return out
}

// Lookup returns the frequency of the first area containing pos.
func Lookup(areas []Area, pos touch.Position) (float64, bool) {
	for _, a := range areas {
		if a.Shape.Contains(pos) {
			return note.Frequency(a.Pitch), true
		}
	}
	return 0, false
}

// Map is an immutable set of areas covering a touch surface.
type Map struct {
	areas         []Area
	width, height int32
}

// NewMap wraps areas laid out on a width x height surface.
func NewMap(areas []Area, width, height int32) *Map {
	return &Map{areas: append([]Area(nil), areas...), width: width, height: height}
}

// Areas returns the areas in lookup order. Callers must not modify it.
func (m *Map) Areas() []Area { return m.areas }

// Size returns the touch surface dimensions.
func (m *Map) Size() (width, height int32) { return m.width, m.height }

// Lookup returns the frequency played at pos.
func (m *Map) Lookup(pos touch.Position) (float64, bool) {
	return Lookup(m.areas, pos)
}

// NoteEvent returns the note played at pos, or note.Off outside every area.
func (m *Map) NoteEvent(pos touch.Position) note.Event {
	if f, ok := m.Lookup(pos); ok {
		return note.On(f)
	}
	return note.Off
}
