package relief

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mat4 is a 4x4 affine transformation matrix in row-major order.
type Mat4 struct {
	x00, x01, x02, x03 float64
	x10, x11, x12, x13 float64
	x20, x21, x22, x23 float64
	x30, x31, x32, x33 float64
}

// Identity returns the identity transform.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation transform.
func Translate(v r3.Vec) Mat4 {
	return Mat4{
		1, 0, 0, v.X,
		0, 1, 0, v.Y,
		0, 0, 1, v.Z,
		0, 0, 0, 1,
	}
}

// Scale returns a per-axis scaling transform.
func Scale(v r3.Vec) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// Rotate returns a rotation transform of angle radians about the given axis.
func Rotate(axis r3.Vec, angle float64) Mat4 {
	u := r3.Unit(axis)
	s, c := math.Sin(angle), math.Cos(angle)
	k := 1 - c
	return Mat4{
		u.X*u.X*k + c, u.X*u.Y*k - u.Z*s, u.X*u.Z*k + u.Y*s, 0,
		u.Y*u.X*k + u.Z*s, u.Y*u.Y*k + c, u.Y*u.Z*k - u.X*s, 0,
		u.Z*u.X*k - u.Y*s, u.Z*u.Y*k + u.X*s, u.Z*u.Z*k + c, 0,
		0, 0, 0, 1,
	}
}

// Mul multiplies two transforms. The result applies b first, then a.
func (a Mat4) Mul(b Mat4) Mat4 {
	return Mat4{
		a.x00*b.x00 + a.x01*b.x10 + a.x02*b.x20 + a.x03*b.x30,
		a.x00*b.x01 + a.x01*b.x11 + a.x02*b.x21 + a.x03*b.x31,
		a.x00*b.x02 + a.x01*b.x12 + a.x02*b.x22 + a.x03*b.x32,
		a.x00*b.x03 + a.x01*b.x13 + a.x02*b.x23 + a.x03*b.x33,
		a.x10*b.x00 + a.x11*b.x10 + a.x12*b.x20 + a.x13*b.x30,
		a.x10*b.x01 + a.x11*b.x11 + a.x12*b.x21 + a.x13*b.x31,
		a.x10*b.x02 + a.x11*b.x12 + a.x12*b.x22 + a.x13*b.x32,
		a.x10*b.x03 + a.x11*b.x13 + a.x12*b.x23 + a.x13*b.x33,
		a.x20*b.x00 + a.x21*b.x10 + a.x22*b.x20 + a.x23*b.x30,
		a.x20*b.x01 + a.x21*b.x11 + a.x22*b.x21 + a.x23*b.x31,
		a.x20*b.x02 + a.x21*b.x12 + a.x22*b.x22 + a.x23*b.x32,
		a.x20*b.x03 + a.x21*b.x13 + a.x22*b.x23 + a.x23*b.x33,
		a.x30*b.x00 + a.x31*b.x10 + a.x32*b.x20 + a.x33*b.x30,
		a.x30*b.x01 + a.x31*b.x11 + a.x32*b.x21 + a.x33*b.x31,
		a.x30*b.x02 + a.x31*b.x12 + a.x32*b.x22 + a.x33*b.x32,
		a.x30*b.x03 + a.x31*b.x13 + a.x32*b.x23 + a.x33*b.x33,
	}
}

// MulPosition transforms a point, including translation.
func (a Mat4) MulPosition(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: a.x00*v.X + a.x01*v.Y + a.x02*v.Z + a.x03,
		Y: a.x10*v.X + a.x11*v.Y + a.x12*v.Z + a.x13,
		Z: a.x20*v.X + a.x21*v.Y + a.x22*v.Z + a.x23,
	}
}
