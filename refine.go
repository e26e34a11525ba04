package relief

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ctxCheckStride is how many triangles or vertices are processed
// between context cancellation checks.
const ctxCheckStride = 1 << 14

// Subdivide applies n passes of uniform midpoint subdivision. Every
// triangle splits into 4 by inserting a vertex at the midpoint of each
// edge; shared edges reuse the same midpoint so no T-junctions or
// duplicate seams are introduced. UVs are interpolated linearly and
// normals, when present, are recomputed from the new topology.
//
// The input mesh is never mutated. Cancellation via ctx aborts without
// returning a partial mesh.
func Subdivide(ctx context.Context, m IndexedMesh, iterations int) (IndexedMesh, error) {
	if iterations < 0 {
		return IndexedMesh{}, fmt.Errorf("%w: subdivision iterations %d", ErrInvalidParameter, iterations)
	}
	out := m.clone()
	for it := 0; it < iterations; it++ {
		next, err := subdivideOnce(ctx, out)
		if err != nil {
			return IndexedMesh{}, err
		}
		out = next
	}
	if m.Normals != nil && iterations > 0 {
		out.ComputeNormals()
	}
	return out, nil
}

func subdivideOnce(ctx context.Context, m IndexedMesh) (IndexedMesh, error) {
	nt := m.NumTriangles()
	// Interior edges are shared, so a closed mesh gains roughly 3/2
	// midpoints per triangle. Preallocating to the open-mesh worst case
	// avoids growth in the hot loop at modest overallocation.
	out := IndexedMesh{
		Positions: append(make([]r3.Vec, 0, len(m.Positions)+3*nt), m.Positions...),
		Indices:   make([]uint32, 0, 4*len(m.Indices)),
	}
	hasUV := m.UVs != nil
	if hasUV {
		out.UVs = append(make([]r2.Vec, 0, len(m.UVs)+3*nt), m.UVs...)
	}
	// Midpoint dedup keyed by the canonical (low,high) vertex pair.
	midpoints := make(map[[2]uint32]uint32, 3*nt/2)
	midpoint := func(a, b uint32) uint32 {
		key := [2]uint32{a, b}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if idx, ok := midpoints[key]; ok {
			return idx
		}
		idx := uint32(len(out.Positions))
		midpoints[key] = idx
		out.Positions = append(out.Positions, r3.Scale(0.5, r3.Add(m.Positions[a], m.Positions[b])))
		if hasUV {
			out.UVs = append(out.UVs, r2.Scale(0.5, r2.Add(m.UVs[a], m.UVs[b])))
		}
		return idx
	}
	for i := 0; i < len(m.Indices); i += 3 {
		if i%(3*ctxCheckStride) == 0 {
			if err := ctx.Err(); err != nil {
				return IndexedMesh{}, err
			}
		}
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		ab := midpoint(a, b)
		bc := midpoint(b, c)
		ca := midpoint(c, a)
		out.Indices = append(out.Indices,
			a, ab, ca,
			ab, b, bc,
			ca, bc, c,
			ab, bc, ca,
		)
	}
	return out, nil
}

// Smooth applies iterations of uniform-weight Laplacian smoothing.
// Each pass moves every vertex toward the unweighted average of its
// 1-ring neighbors by factor: v' = v + (avg - v) * factor. Every pass
// reads the previous pass's positions, never partially-updated ones,
// so the result is independent of vertex order. Vertices with no
// neighbors are left in place.
//
// The input mesh is never mutated. Cancellation via ctx aborts without
// returning a partial mesh.
func Smooth(ctx context.Context, m IndexedMesh, iterations int, factor float64) (IndexedMesh, error) {
	if iterations < 0 {
		return IndexedMesh{}, fmt.Errorf("%w: smoothing iterations %d", ErrInvalidParameter, iterations)
	}
	if factor < 0 || factor > 1 {
		return IndexedMesh{}, fmt.Errorf("%w: smoothing factor %g outside [0,1]", ErrInvalidParameter, factor)
	}
	out := m.clone()
	if iterations == 0 || factor == 0 || len(out.Positions) == 0 {
		return out, nil
	}
	neighbors := buildAdjacency(out)
	prev := make([]r3.Vec, len(out.Positions))
	for it := 0; it < iterations; it++ {
		copy(prev, out.Positions)
		for v := range out.Positions {
			if v%ctxCheckStride == 0 {
				if err := ctx.Err(); err != nil {
					return IndexedMesh{}, err
				}
			}
			ns := neighbors[v]
			if len(ns) == 0 {
				continue
			}
			var sum r3.Vec
			for _, n := range ns {
				sum = r3.Add(sum, prev[n])
			}
			avg := r3.Scale(1/float64(len(ns)), sum)
			out.Positions[v] = r3.Add(prev[v], r3.Scale(factor, r3.Sub(avg, prev[v])))
		}
	}
	if out.Normals != nil {
		out.ComputeNormals()
	}
	return out, nil
}

// buildAdjacency collects each vertex's deduplicated 1-ring neighbor
// set from the index buffer. Valence is small for well-formed meshes,
// so a linear membership scan beats per-vertex maps.
func buildAdjacency(m IndexedMesh) [][]uint32 {
	neighbors := make([][]uint32, len(m.Positions))
	add := func(v, n uint32) {
		for _, existing := range neighbors[v] {
			if existing == n {
				return
			}
		}
		neighbors[v] = append(neighbors[v], n)
	}
	for i := 0; i < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		add(a, b)
		add(a, c)
		add(b, a)
		add(b, c)
		add(c, a)
		add(c, b)
	}
	return neighbors
}

// clone returns a deep copy so refinement never aliases caller buffers.
func (m *IndexedMesh) clone() IndexedMesh {
	out := IndexedMesh{
		Positions: append([]r3.Vec(nil), m.Positions...),
		Indices:   append([]uint32(nil), m.Indices...),
	}
	if m.UVs != nil {
		out.UVs = append([]r2.Vec(nil), m.UVs...)
	}
	if m.Normals != nil {
		out.Normals = append([]r3.Vec(nil), m.Normals...)
	}
	return out
}
