package relief

import "fmt"

// Default mesh complexity ceilings. Subdivision multiplies triangle
// count by 4x per pass, so an unchecked input can blow up into a
// memory-exhausting mesh; the guard runs before any refinement.
const (
	HardVertexLimit   = 500_000
	HardTriangleLimit = 1_000_000
	SoftVertexLimit   = 100_000
	SoftTriangleLimit = 200_000
)

// ComplexityLimits configures the mesh complexity gate. The zero value
// uses the package defaults.
type ComplexityLimits struct {
	HardVertices  int `yaml:"hard_vertices"`
	HardTriangles int `yaml:"hard_triangles"`
	SoftVertices  int `yaml:"soft_vertices"`
	SoftTriangles int `yaml:"soft_triangles"`
}

// DefaultLimits returns the package default complexity limits.
func DefaultLimits() ComplexityLimits {
	return ComplexityLimits{
		HardVertices:  HardVertexLimit,
		HardTriangles: HardTriangleLimit,
		SoftVertices:  SoftVertexLimit,
		SoftTriangles: SoftTriangleLimit,
	}
}

// ComplexityWarning reports that a mesh exceeds the soft complexity
// ceiling. Processing proceeds; the caller decides whether to surface it.
type ComplexityWarning struct {
	Vertices  int
	Triangles int
}

func (w *ComplexityWarning) String() string {
	return fmt.Sprintf("mesh complexity above soft limit: %d vertices, %d triangles; processing may be slow", w.Vertices, w.Triangles)
}

// Check validates vertex and triangle counts against the limits.
// Counts above the hard ceiling fail with ErrTooComplex. Counts above
// the soft ceiling return a non-nil warning and a nil error.
func (l ComplexityLimits) Check(vertices, triangles int) (*ComplexityWarning, error) {
	if l == (ComplexityLimits{}) {
		l = DefaultLimits()
	}
	if vertices > l.HardVertices || triangles > l.HardTriangles {
		return nil, fmt.Errorf("%w: %d vertices, %d triangles exceed hard limits %d/%d; reduce resolution or simplify input",
			ErrTooComplex, vertices, triangles, l.HardVertices, l.HardTriangles)
	}
	if vertices > l.SoftVertices || triangles > l.SoftTriangles {
		return &ComplexityWarning{Vertices: vertices, Triangles: triangles}, nil
	}
	return nil, nil
}
