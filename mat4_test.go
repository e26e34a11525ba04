package relief

import (
	"math"
	"testing"

	"github.com/printforge/relief/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestMat4Transforms(t *testing.T) {
	p := r3.Vec{X: 1, Y: 2, Z: 3}
	if got := Identity().MulPosition(p); got != p {
		t.Errorf("identity moved %+v to %+v", p, got)
	}
	if got := Translate(r3.Vec{X: 10, Y: -1}).MulPosition(p); got != (r3.Vec{X: 11, Y: 1, Z: 3}) {
		t.Errorf("translate: %+v", got)
	}
	if got := Scale(r3.Vec{X: 2, Y: 3, Z: 4}).MulPosition(p); got != (r3.Vec{X: 2, Y: 6, Z: 12}) {
		t.Errorf("scale: %+v", got)
	}
	got := Rotate(r3.Vec{Z: 1}, math.Pi/2).MulPosition(r3.Vec{X: 1})
	if !d3.EqualWithin(got, r3.Vec{Y: 1}, 1e-12) {
		t.Errorf("quarter turn about z: %+v, want (0,1,0)", got)
	}
}

func TestMat4MulOrder(t *testing.T) {
	// a.Mul(b) applies b first.
	a := Translate(r3.Vec{X: 5})
	b := Scale(r3.Vec{X: 2, Y: 2, Z: 2})
	got := a.Mul(b).MulPosition(r3.Vec{X: 1})
	if got != (r3.Vec{X: 7}) {
		t.Errorf("got %+v, want (7,0,0)", got)
	}
	got = b.Mul(a).MulPosition(r3.Vec{X: 1})
	if got != (r3.Vec{X: 12}) {
		t.Errorf("got %+v, want (12,0,0)", got)
	}
}
