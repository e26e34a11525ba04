package relief

import (
	"fmt"
	"math"

	"github.com/printforge/relief/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// IndexedMesh is an indexed triangle mesh with parallel vertex buffers.
// Indices are grouped in triples, one triangle each. UVs and Normals are
// optional; when present they have the same length as Positions.
type IndexedMesh struct {
	Positions []r3.Vec
	UVs       []r2.Vec
	Normals   []r3.Vec
	Indices   []uint32
}

// NumVertices returns the number of vertices in the mesh.
func (m *IndexedMesh) NumVertices() int { return len(m.Positions) }

// NumTriangles returns the number of triangles in the mesh.
func (m *IndexedMesh) NumTriangles() int { return len(m.Indices) / 3 }

// Triangle returns the vertex positions of the ith triangle.
func (m *IndexedMesh) Triangle(i int) [3]r3.Vec {
	return [3]r3.Vec{
		m.Positions[m.Indices[3*i]],
		m.Positions[m.Indices[3*i+1]],
		m.Positions[m.Indices[3*i+2]],
	}
}

// Validate checks the structural invariants of the index buffer:
// index count divisible by three and every index within the position buffer.
func (m *IndexedMesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: index count %d not divisible by 3", ErrInvalidParameter, len(m.Indices))
	}
	if m.UVs != nil && len(m.UVs) != len(m.Positions) {
		return fmt.Errorf("%w: uv buffer length %d does not match %d positions", ErrInvalidParameter, len(m.UVs), len(m.Positions))
	}
	nv := uint32(len(m.Positions))
	for i, idx := range m.Indices {
		if idx >= nv {
			return fmt.Errorf("%w: index %d at offset %d out of range (%d vertices)", ErrInvalidParameter, idx, i, nv)
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the mesh vertices.
// The zero box is returned for a mesh without positions.
func (m *IndexedMesh) Bounds() r3.Box {
	if len(m.Positions) == 0 {
		return r3.Box{}
	}
	bb := d3.Box{Min: d3.Elem(math.MaxFloat64), Max: d3.Elem(-math.MaxFloat64)}
	for _, p := range m.Positions {
		bb = bb.Include(p)
	}
	return r3.Box(bb)
}

// ComputeNormals rebuilds per-vertex normals from the index buffer by
// accumulating face normals weighted by triangle area. Vertices referenced
// by no triangle get a zero normal.
func (m *IndexedMesh) ComputeNormals() {
	normals := make([]r3.Vec, len(m.Positions))
	for i := 0; i < len(m.Indices); i += 3 {
		a := m.Positions[m.Indices[i]]
		b := m.Positions[m.Indices[i+1]]
		c := m.Positions[m.Indices[i+2]]
		// Cross product magnitude is twice the triangle area, which
		// serves as the accumulation weight.
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		normals[m.Indices[i]] = r3.Add(normals[m.Indices[i]], n)
		normals[m.Indices[i+1]] = r3.Add(normals[m.Indices[i+1]], n)
		normals[m.Indices[i+2]] = r3.Add(normals[m.Indices[i+2]], n)
	}
	for i, n := range normals {
		if r3.Norm(n) > 0 {
			normals[i] = r3.Unit(n)
		}
	}
	m.Normals = normals
}

// EdgeCounts is a census of undirected mesh edges by the number of
// triangles sharing them.
type EdgeCounts struct {
	// Boundary edges belong to exactly one triangle.
	Boundary int
	// Interior edges are shared by exactly two triangles.
	Interior int
	// NonManifold edges are shared by three or more triangles.
	NonManifold int
}

// EdgeCensus counts boundary, interior and non-manifold edges.
// A closed manifold mesh has zero boundary and zero non-manifold edges.
func (m *IndexedMesh) EdgeCensus() EdgeCounts {
	uses := make(map[[2]uint32]int, len(m.Indices))
	for i := 0; i < len(m.Indices); i += 3 {
		tri := [3]uint32{m.Indices[i], m.Indices[i+1], m.Indices[i+2]}
		for j := 0; j < 3; j++ {
			e := [2]uint32{tri[j], tri[(j+1)%3]}
			if e[0] > e[1] {
				e[0], e[1] = e[1], e[0]
			}
			uses[e]++
		}
	}
	var c EdgeCounts
	for _, n := range uses {
		switch {
		case n == 1:
			c.Boundary++
		case n == 2:
			c.Interior++
		default:
			c.NonManifold++
		}
	}
	return c
}
