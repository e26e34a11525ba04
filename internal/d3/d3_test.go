package d3

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestBoxInclude(t *testing.T) {
	bb := Box{Min: Elem(1e18), Max: Elem(-1e18)}
	for _, p := range []r3.Vec{{X: 1, Y: -2, Z: 3}, {X: -4, Y: 5, Z: 0}} {
		bb = bb.Include(p)
	}
	if bb.Min != (r3.Vec{X: -4, Y: -2, Z: 0}) || bb.Max != (r3.Vec{X: 1, Y: 5, Z: 3}) {
		t.Errorf("box %+v", bb)
	}
	if got := bb.Size(); got != (r3.Vec{X: 5, Y: 7, Z: 3}) {
		t.Errorf("size %+v", got)
	}
	if got := bb.Volume(); got != 105 {
		t.Errorf("volume %g", got)
	}
	if got := bb.Center(); got != (r3.Vec{X: -1.5, Y: 1.5, Z: 1.5}) {
		t.Errorf("center %+v", got)
	}
	if !bb.Contains(r3.Vec{Z: 1}) || bb.Contains(r3.Vec{Z: 4}) {
		t.Error("contains misclassified a point")
	}
}

func TestVectorElemHelpers(t *testing.T) {
	a := r3.Vec{X: 1, Y: 5, Z: -3}
	b := r3.Vec{X: 2, Y: 4, Z: -6}
	if got := MinElem(a, b); got != (r3.Vec{X: 1, Y: 4, Z: -6}) {
		t.Errorf("MinElem %+v", got)
	}
	if got := MaxElem(a, b); got != (r3.Vec{X: 2, Y: 5, Z: -3}) {
		t.Errorf("MaxElem %+v", got)
	}
	if Max(a) != 5 || Min(a) != -3 {
		t.Errorf("Max/Min of %+v: %g/%g", a, Max(a), Min(a))
	}
	if !EqualWithin(a, r3.Vec{X: 1.05, Y: 4.95, Z: -3}, 0.1) {
		t.Error("EqualWithin rejected in-tolerance vectors")
	}
	if EqualWithin(a, b, 0.1) {
		t.Error("EqualWithin accepted out-of-tolerance vectors")
	}
}
