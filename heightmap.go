package relief

import (
	"fmt"

	"github.com/chewxy/math32"
)

// alphaVisibleThreshold is the fixed mask policy: a source pixel whose
// alpha channel is at or below this value is treated as invisible.
const alphaVisibleThreshold = 128

// Heightmap is a coarse grid of depth samples resampled from a dense
// depth buffer. Cells corresponding to masked-out pixels are void and
// produce no geometry. A heightmap is immutable once built.
type Heightmap struct {
	// SegmentsX and SegmentsY are the number of grid cells per axis.
	// The vertex grid is (SegmentsY+1) x (SegmentsX+1).
	SegmentsX, SegmentsY int
	// ImageWidth and ImageHeight are the source pixel dimensions,
	// kept to preserve the image aspect ratio downstream.
	ImageWidth, ImageHeight int

	depth   []float32
	visible []bool
}

// At returns the depth sample at the given grid coordinate and whether
// the cell is visible. Void cells report a zero depth.
func (h *Heightmap) At(row, col int) (float32, bool) {
	i := row*(h.SegmentsX+1) + col
	if !h.visible[i] {
		return 0, false
	}
	return h.depth[i], true
}

// Visible reports whether the grid cell holds a depth sample.
func (h *Heightmap) Visible(row, col int) bool {
	return h.visible[row*(h.SegmentsX+1)+col]
}

// aspect is the source image height/width ratio.
func (h *Heightmap) aspect() float64 {
	return float64(h.ImageHeight) / float64(h.ImageWidth)
}

// BuildHeightmap resamples a dense depth buffer onto a coarse grid.
//
// depth holds width*height samples in [0,1], row-major with row 0 at the
// top of the image. resolution controls grid coarseness: the grid has
// floor(width/resolution) x floor(height/resolution) cells per axis.
// mask, when non-nil, is an RGBA pixel buffer of the same dimensions
// whose alpha channel marks visibility.
//
// smoothness in [0,1] blends each interior sample with the average of
// its four pixel-space neighbors to knock down high-frequency noise
// before mesh topology is fixed. Border and void cells are never
// smoothed. The result is deterministic for identical inputs.
func BuildHeightmap(depth []float32, width, height, resolution int, mask []byte, smoothness float64) (*Heightmap, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: image dimensions %dx%d", ErrInvalidParameter, width, height)
	}
	if resolution < 1 {
		return nil, fmt.Errorf("%w: resolution %d, must be >= 1", ErrInvalidParameter, resolution)
	}
	if len(depth) != width*height {
		return nil, fmt.Errorf("%w: depth buffer length %d, want %d", ErrInvalidParameter, len(depth), width*height)
	}
	if mask != nil && len(mask) != 4*width*height {
		return nil, fmt.Errorf("%w: mask length %d, want RGBA buffer of %d", ErrInvalidParameter, len(mask), 4*width*height)
	}
	if smoothness < 0 || smoothness > 1 {
		return nil, fmt.Errorf("%w: smoothness %g outside [0,1]", ErrInvalidParameter, smoothness)
	}
	for i, d := range depth {
		if math32.IsNaN(d) || math32.IsInf(d, 0) {
			return nil, fmt.Errorf("%w: depth sample %d is NaN or Inf", ErrInvalidParameter, i)
		}
	}

	segsX := width / resolution
	segsY := height / resolution
	// Degenerate grids (resolution larger than the image) still build;
	// the shell builder rejects them with ErrEmptyGeometry since no
	// 2x2 cell block can exist.
	gw := segsX + 1
	gh := segsY + 1
	h := &Heightmap{
		SegmentsX:   segsX,
		SegmentsY:   segsY,
		ImageWidth:  width,
		ImageHeight: height,
		depth:       make([]float32, gw*gh),
		visible:     make([]bool, gw*gh),
	}
	for i := 0; i < gh; i++ {
		for j := 0; j < gw; j++ {
			px, py := 0, 0
			if segsX > 0 {
				px = clampInt(j*width/segsX, 0, width-1)
			}
			if segsY > 0 {
				py = clampInt(i*height/segsY, 0, height-1)
			}
			pix := py*width + px
			if mask != nil && mask[4*pix+3] <= alphaVisibleThreshold {
				continue // void cell
			}
			d := clamp32(depth[pix], 0, 1)
			if smoothness > 0 && i > 0 && i < gh-1 && j > 0 && j < gw-1 {
				// Neighbor average in source pixel space, not grid space.
				l := depth[pix-1+boolToInt(px == 0)]
				r := depth[pix+1-boolToInt(px == width-1)]
				u := depth[pix-width+width*boolToInt(py == 0)]
				dn := depth[pix+width-width*boolToInt(py == height-1)]
				avg := clamp32((l+r+u+dn)/4, 0, 1)
				d = d*float32(1-smoothness) + avg*float32(smoothness)
			}
			idx := i*gw + j
			h.depth[idx] = d
			h.visible[idx] = true
		}
	}
	return h, nil
}

func clampInt(x, a, b int) int {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

func clamp32(x, a, b float32) float32 {
	return math32.Min(b, math32.Max(x, a))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
