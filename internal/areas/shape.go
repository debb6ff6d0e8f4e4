package areas

import "github.com/cbegin/touchsynth-go/internal/touch"

// Shape is a parallelogram spanned by U and V from Base. It covers every
// point Base + s·U + t·V with s and t in [0, 1), so neighbouring shapes
// that share an edge never overlap.
type Shape struct {
	Base touch.Position
	U    touch.Position
	V    touch.Position
}

// Rect is the axis-aligned rectangle with top-left corner (x, y).
func Rect(x, y, width, height int32) Shape {
	return Shape{
		Base: touch.Position{X: x, Y: y},
		U:    touch.Position{X: width},
		V:    touch.Position{Y: height},
	}
}

// Contains reports whether p lies inside s. A shape whose edges are
// parallel (zero area) contains nothing.
func (s Shape) Contains(p touch.Position) bool {
	ux, uy := int64(s.U.X), int64(s.U.Y)
	vx, vy := int64(s.V.X), int64(s.V.Y)
	det := ux*vy - vx*uy
	if det == 0 {
		return false
	}
	px, py := int64(p.X)-int64(s.Base.X), int64(p.Y)-int64(s.Base.Y)
	// Cramer's rule, kept in integers: s = sNum/det, t = tNum/det.
	sNum := px*vy - py*vx
	tNum := py*ux - px*uy
	return unitInterval(sNum, det) && unitInterval(tNum, det)
}

// unitInterval reports whether num/den lies in [0, 1).
func unitInterval(num, den int64) bool {
	if den < 0 {
		num, den = -num, -den
	}
	return num >= 0 && num < den
}
