package relief

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Shell construction constants. The footprint is normalized to a
// 10-unit width centered at the origin, with height scaled by the
// source image aspect ratio.
const (
	footprintSize = 10.0
	// depthVariationSpan modulates the front surface around the
	// nominal depth so relief features stand out from a flat slab.
	depthVariationSpan = 0.8
	// baseThicknessFactor relates shell thickness to depth scale.
	baseThicknessFactor = 1.5
)

type wallDir uint8

const (
	wallTop wallDir = iota
	wallBottom
	wallLeft
	wallRight
)

// boundaryEdge identifies the side of a fully-present 2x2 cell block
// that borders a void region or the outer grid perimeter. Each one
// produces a stitched side-wall quad between the front and back sheets.
type boundaryEdge struct {
	row, col int
	dir      wallDir
}

// shellBuilder holds the transient per-sheet vertex lookup used while
// assembling the mesh. Front and back sheets are topologically distinct:
// they share a 2D footprint but never share vertices.
type shellBuilder struct {
	hm         *Heightmap
	depthScale float64
	mesh       IndexedMesh
	// Grid coordinate to vertex index, -1 meaning not yet emitted.
	front []int32
	back  []int32
}

// BuildShell converts a heightmap into a closed two-sided shell mesh:
// a front relief surface, an offset back surface with reversed winding,
// and side walls stitched along every visibility boundary.
//
// Shell thickness varies with depth so the solid reads as a relief
// rather than a uniform slab. Returns ErrEmptyGeometry when no triangles
// can be produced (fully masked image or resolution coarser than the
// image) and ErrInvalidParameter for a non-positive depth scale.
func BuildShell(hm *Heightmap, depthScale float64) (IndexedMesh, error) {
	if depthScale <= 0 {
		return IndexedMesh{}, fmt.Errorf("%w: depth scale %g, must be > 0", ErrInvalidParameter, depthScale)
	}
	gw := hm.SegmentsX + 1
	gh := hm.SegmentsY + 1
	b := shellBuilder{
		hm:         hm,
		depthScale: depthScale,
		front:      make([]int32, gw*gh),
		back:       make([]int32, gw*gh),
	}
	for i := range b.front {
		b.front[i] = -1
		b.back[i] = -1
	}

	blocks, edges := b.scanBlocks()
	// Sizing is known up front: 4 cap triangles per block plus 2 wall
	// triangles per boundary edge, at most two vertices per grid cell.
	b.mesh.Indices = make([]uint32, 0, 3*(4*len(blocks)+2*len(edges)))
	maxVerts := 2 * len(blocks) * 4
	if maxVerts > 2*gw*gh {
		maxVerts = 2 * gw * gh
	}
	b.mesh.Positions = make([]r3.Vec, 0, maxVerts)
	b.mesh.UVs = make([]r2.Vec, 0, maxVerts)

	for _, blk := range blocks {
		b.emitCaps(blk[0], blk[1])
	}
	for _, e := range edges {
		b.emitWall(e)
	}
	if len(b.mesh.Positions) == 0 || len(b.mesh.Indices) == 0 {
		return IndexedMesh{}, fmt.Errorf("%w: heightmap produced no triangles", ErrEmptyGeometry)
	}
	return b.mesh, nil
}

// blockAt reports whether the 2x2 cell block with top-left grid corner
// (row,col) has all four corners visible.
func (b *shellBuilder) blockAt(row, col int) bool {
	if row < 0 || col < 0 || row >= b.hm.SegmentsY || col >= b.hm.SegmentsX {
		return false
	}
	return b.hm.Visible(row, col) && b.hm.Visible(row, col+1) &&
		b.hm.Visible(row+1, col) && b.hm.Visible(row+1, col+1)
}

// scanBlocks finds every fully-present block and, for each, the sides
// where the neighboring block is absent. Treating the outer perimeter
// and interior holes identically keeps wall stitching in one code path.
func (b *shellBuilder) scanBlocks() (blocks [][2]int, edges []boundaryEdge) {
	for row := 0; row < b.hm.SegmentsY; row++ {
		for col := 0; col < b.hm.SegmentsX; col++ {
			if !b.blockAt(row, col) {
				continue
			}
			blocks = append(blocks, [2]int{row, col})
			if !b.blockAt(row-1, col) {
				edges = append(edges, boundaryEdge{row, col, wallTop})
			}
			if !b.blockAt(row+1, col) {
				edges = append(edges, boundaryEdge{row, col, wallBottom})
			}
			if !b.blockAt(row, col-1) {
				edges = append(edges, boundaryEdge{row, col, wallLeft})
			}
			if !b.blockAt(row, col+1) {
				edges = append(edges, boundaryEdge{row, col, wallRight})
			}
		}
	}
	return blocks, edges
}

// vertex lazily emits the front or back vertex for a visible grid cell
// and returns its index. Front and back sheets keep separate lookups.
func (b *shellBuilder) vertex(row, col int, back bool) uint32 {
	lut := b.front
	if back {
		lut = b.back
	}
	slot := row*(b.hm.SegmentsX+1) + col
	if lut[slot] >= 0 {
		return uint32(lut[slot])
	}
	depth, ok := b.hm.At(row, col)
	if !ok {
		panic("bug: vertex requested for void heightmap cell")
	}
	d := float64(depth)
	x := (float64(col)/float64(b.hm.SegmentsX) - 0.5) * footprintSize
	y := -(float64(row)/float64(b.hm.SegmentsY) - 0.5) * footprintSize * b.hm.aspect()
	// The front surface exaggerates depth around the midpoint; the
	// back surface follows at a depth-dependent thickness below it.
	z := d * b.depthScale * (1 + (d-0.5)*depthVariationSpan)
	if back {
		base := b.depthScale * baseThicknessFactor
		z -= base * (0.6 + d*0.8)
	}
	idx := uint32(len(b.mesh.Positions))
	lut[slot] = int32(idx)
	b.mesh.Positions = append(b.mesh.Positions, r3.Vec{X: x, Y: y, Z: z})
	b.mesh.UVs = append(b.mesh.UVs, r2.Vec{
		X: float64(col) / float64(b.hm.SegmentsX),
		Y: 1 - float64(row)/float64(b.hm.SegmentsY),
	})
	return idx
}

// emitCaps writes the two front and two back triangles of a block.
// Front triangles wind counter-clockwise seen from +Z; back triangles
// are reversed so their normals face away from the solid interior.
func (b *shellBuilder) emitCaps(row, col int) {
	fa := b.vertex(row, col, false)
	fb := b.vertex(row, col+1, false)
	fc := b.vertex(row+1, col, false)
	fd := b.vertex(row+1, col+1, false)
	ba := b.vertex(row, col, true)
	bb := b.vertex(row, col+1, true)
	bc := b.vertex(row+1, col, true)
	bd := b.vertex(row+1, col+1, true)
	b.mesh.Indices = append(b.mesh.Indices,
		fa, fc, fd,
		fa, fd, fb,
		ba, bd, bc,
		ba, bb, bd,
	)
}

// emitWall writes the two triangles stitching front to back along one
// boundary edge. The winding differs per direction so wall normals face
// outward; flipping any entry inverts normals on that side of the solid.
func (b *shellBuilder) emitWall(e boundaryEdge) {
	var r0, c0, r1, c1 int
	switch e.dir {
	case wallTop:
		r0, c0, r1, c1 = e.row, e.col, e.row, e.col+1
	case wallBottom:
		r0, c0, r1, c1 = e.row+1, e.col, e.row+1, e.col+1
	case wallLeft:
		r0, c0, r1, c1 = e.row, e.col, e.row+1, e.col
	case wallRight:
		r0, c0, r1, c1 = e.row, e.col+1, e.row+1, e.col+1
	}
	f0 := b.vertex(r0, c0, false)
	f1 := b.vertex(r1, c1, false)
	b0 := b.vertex(r0, c0, true)
	b1 := b.vertex(r1, c1, true)
	switch e.dir {
	case wallTop, wallRight:
		b.mesh.Indices = append(b.mesh.Indices,
			f0, f1, b1,
			f0, b1, b0,
		)
	case wallBottom, wallLeft:
		b.mesh.Indices = append(b.mesh.Indices,
			f0, b1, f1,
			f0, b0, b1,
		)
	}
}
