package areas

import (
	"fmt"
	"strings"

	"github.com/cbegin/touchsynth-go/internal/touch"
)

// DefaultRowInterval is a fourth, as between neighbouring guitar strings.
const DefaultRowInterval = 5

// Grid splits the surface into rows of rowLength semitones, lowest note in
// the bottom-left corner. Each row starts a fourth above the one below.
func Grid(width, height int32, rowLength, rows, startPitch int) Layout {
	return Layout{
		Width:       width,
		Height:      height,
		Orientation: Landscape,
		U:           touch.Position{X: width / int32(rowLength)},
		V:           touch.Position{Y: -height / int32(rows)},
		Columns:     Span{0, rowLength},
		Rows:        Span{0, rows},
		StartPitch:  startPitch,
		RowInterval: DefaultRowInterval,
	}
}

// Parallelograms is a slanted isomorphic layout for portrait screens.
func Parallelograms(width, height int32, startPitch int) Layout {
	return Layout{
		Width:       width,
		Height:      height,
		Orientation: Portrait,
		U:           touch.Position{X: 0, Y: -1300},
		V:           touch.Position{X: -1000, Y: -200},
		Columns:     Span{-3, 8},
		Rows:        Span{0, 17},
		StartPitch:  startPitch,
		RowInterval: DefaultRowInterval,
	}
}

// Stripes is a single row of 30 full-height semitone columns of the given
// width.
func Stripes(size int32, startPitch int) []Area {
	out := make([]Area, 0, 30)
	for i := int32(0); i < 30; i++ {
		out = append(out, Area{
			Shape: Rect(i*size, 1, size, 10000),
			Pitch: startPitch + int(i),
		})
	}
	return out
}

// Peas staggers small squares in four rows an octave apart, alternating
// between two heights within a row.
func Peas(height, size int32, startPitch int) []Area {
	out := make([]Area, 0, 4*36)
	for row := int32(0); row < 4; row++ {
		rowOffset := -(int32(2.5*float64(size)*float64(row)) + 2*size)
		for i := int32(0); i < 36; i++ {
			var pea int32
			if i%2 == 0 {
				pea = size
			}
			out = append(out, Area{
				Shape: Rect(i*size/2, height+pea+rowOffset, size, size),
				Pitch: startPitch + int(i) + int(row)*12,
			})
		}
	}
	return out
}

// LayoutType names a built-in layout.
type LayoutType string

const (
	GridLayout           LayoutType = "grid"
	ParallelogramsLayout LayoutType = "parallelograms"
	StripesLayout        LayoutType = "stripes"
	PeasLayout           LayoutType = "peas"
)

// LayoutTypes lists the built-in layouts.
var LayoutTypes = []LayoutType{GridLayout, ParallelogramsLayout, StripesLayout, PeasLayout}

// ParseLayoutType accepts a layout name in any case.
func ParseLayoutType(name string) (LayoutType, error) {
	for _, lt := range LayoutTypes {
		if strings.EqualFold(name, string(lt)) {
			return lt, nil
		}
	}
	return "", fmt.Errorf("unknown layout %q, possible values: %v", name, LayoutTypes)
}

// New builds the map for a built-in layout on a width x height surface.
func New(lt LayoutType, width, height int32, startPitch int) (*Map, error) {
	var areas []Area
	switch lt {
	case GridLayout:
		areas = Build(Grid(width, height, 12, 6, startPitch))
	case ParallelogramsLayout:
		areas = Build(Parallelograms(width, height, startPitch))
	case StripesLayout:
		areas = Stripes(width/30, startPitch)
	case PeasLayout:
		areas = Peas(height, width/18, startPitch)
	default:
		return nil, fmt.Errorf("unknown layout %q", lt)
	}
	return NewMap(areas, width, height), nil
}
