package analyze_test

import (
	"context"
	"math"
	"testing"

	"github.com/printforge/relief"
	"github.com/printforge/relief/analyze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// box builds a closed axis-aligned box with outward winding.
func box(min, max r3.Vec) relief.IndexedMesh {
	p := func(x, y, z float64) r3.Vec {
		return r3.Vec{
			X: min.X + x*(max.X-min.X),
			Y: min.Y + y*(max.Y-min.Y),
			Z: min.Z + z*(max.Z-min.Z),
		}
	}
	return relief.IndexedMesh{
		Positions: []r3.Vec{
			p(0, 0, 0), p(1, 0, 0), p(1, 1, 0), p(0, 1, 0),
			p(0, 0, 1), p(1, 0, 1), p(1, 1, 1), p(0, 1, 1),
		},
		Indices: []uint32{
			0, 2, 1, 0, 3, 2, // -z
			4, 5, 6, 4, 6, 7, // +z
			0, 1, 5, 0, 5, 4, // -y
			2, 3, 7, 2, 7, 6, // +y
			0, 4, 7, 0, 7, 3, // -x
			1, 2, 6, 1, 6, 5, // +x
		},
	}
}

// fanPlate is a flat plate in the y=0 plane triangulated as a fan
// around its center, every face pointing straight down.
func fanPlate() relief.IndexedMesh {
	return relief.IndexedMesh{
		Positions: []r3.Vec{
			{X: 0.2, Y: 0, Z: 0.2},
			{X: 0, Y: 0, Z: 0},
			{X: 0.4, Y: 0, Z: 0},
			{X: 0.4, Y: 0, Z: 0.4},
			{X: 0, Y: 0, Z: 0.4},
		},
		Indices: []uint32{
			0, 1, 2,
			0, 2, 3,
			0, 3, 4,
			0, 4, 1,
		},
	}
}

func TestAnalyzeBoxGeometry(t *testing.T) {
	m := box(r3.Vec{}, r3.Vec{X: 50, Y: 30, Z: 20})
	a, err := analyze.Analyze(context.Background(), m, relief.Identity())
	require.NoError(t, err)

	assert.Equal(t, 12, a.TriangleCount)
	assert.Equal(t, 8, a.VertexCount)
	assert.InDelta(t, 30, a.VolumeCm3, 1e-9)      // 50*30*20 mm3
	assert.InDelta(t, 62, a.SurfaceAreaCm2, 1e-9) // 2*(1500+1000+600) mm2
	assert.InDelta(t, 50, a.Dimensions.X, 1e-9)
	assert.InDelta(t, 30, a.Dimensions.Y, 1e-9)
	assert.InDelta(t, 20, a.Dimensions.Z, 1e-9)
	assert.InDelta(t, 1, a.FillRatio, 1e-9)
	assert.Equal(t, 1.0, a.UnitScale)
	assert.Empty(t, a.Overhangs)
	assert.Empty(t, a.Splits)
	assert.Equal(t, analyze.DifficultyEasy, a.Difficulty)
	assert.Zero(t, a.BoundaryEdges)
	assert.Zero(t, a.NonManifoldEdges)
	assert.Equal(t, 0.2, a.LayerHeight.Optimal)
}

func TestAnalyzeTransformInvariants(t *testing.T) {
	m := box(r3.Vec{}, r3.Vec{X: 50, Y: 30, Z: 20})
	base, err := analyze.Analyze(context.Background(), m, relief.Identity())
	require.NoError(t, err)

	// Rigid motion preserves volume and area.
	tr := relief.Translate(r3.Vec{X: 7, Y: -3, Z: 11}).Mul(relief.Rotate(r3.Vec{Y: 1}, math.Pi/2))
	moved, err := analyze.Analyze(context.Background(), m, tr)
	require.NoError(t, err)
	assert.InDelta(t, base.VolumeCm3, moved.VolumeCm3, 1e-9)
	assert.InDelta(t, base.SurfaceAreaCm2, moved.SurfaceAreaCm2, 1e-9)
	// Quarter turn about Y swaps the X and Z extents.
	assert.InDelta(t, 20, moved.Dimensions.X, 1e-9)
	assert.InDelta(t, 50, moved.Dimensions.Z, 1e-9)

	// Doubling every axis scales volume by 8 and area by 4.
	scaled, err := analyze.Analyze(context.Background(), m, relief.Scale(r3.Vec{X: 2, Y: 2, Z: 2}))
	require.NoError(t, err)
	assert.InDelta(t, 8*base.VolumeCm3, scaled.VolumeCm3, 1e-9)
	assert.InDelta(t, 4*base.SurfaceAreaCm2, scaled.SurfaceAreaCm2, 1e-9)
}

func TestAnalyzeUnitInference(t *testing.T) {
	// A unit cube is presumed to be in meters and normalized x1000.
	m := box(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	a, err := analyze.Analyze(context.Background(), m, relief.Identity())
	require.NoError(t, err)
	assert.Equal(t, 1000.0, a.UnitScale)
	assert.InDelta(t, 1000, a.Dimensions.X, 1e-9)
	assert.InDelta(t, 1e6, a.VolumeCm3, 1e-3)
	// A one-meter cube cannot print in one piece on a 220 mm bed.
	assert.Equal(t, analyze.DifficultyMedium, a.Difficulty)
	assert.Len(t, a.Splits, 12) // 4 cuts per axis for 5 pieces each
	assert.Equal(t, 0.25, a.LayerHeight.Optimal)
}

func TestAnalyzeEmptyMesh(t *testing.T) {
	a, err := analyze.Analyze(context.Background(), relief.IndexedMesh{}, relief.Identity())
	require.NoError(t, err)
	assert.Equal(t, analyze.DifficultyEasy, a.Difficulty)
	assert.Equal(t, 1.0, a.UnitScale)
	assert.Zero(t, a.TriangleCount)
	assert.Zero(t, a.VolumeCm3)
}

func TestAnalyzeOverhangPlate(t *testing.T) {
	an := analyze.Analyzer{Units: analyze.FixedUnitPolicy(1)}
	a, err := an.Analyze(context.Background(), fanPlate(), relief.Identity())
	require.NoError(t, err)

	require.Len(t, a.Overhangs, 1)
	region := a.Overhangs[0]
	assert.Equal(t, analyze.SeveritySevere, region.Severity)
	assert.InDelta(t, 180, region.MeanAngle, 1e-9)
	assert.Equal(t, 4, region.Triangles)
	assert.Equal(t, analyze.DifficultyMedium, a.Difficulty)
}

func TestAnalyzeVerticalWallNoOverhang(t *testing.T) {
	wall := relief.IndexedMesh{
		Positions: []r3.Vec{
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
	a, err := analyze.Analyze(context.Background(), wall, relief.Identity())
	require.NoError(t, err)
	assert.Empty(t, a.Overhangs)
}

func TestAnalyzePlateContactExcluded(t *testing.T) {
	// The flat underside of a solid box rests on the build plate and
	// needs no support, even when subdivision makes it many triangles.
	m := box(r3.Vec{}, r3.Vec{X: 40, Y: 20, Z: 40})
	sub, err := relief.Subdivide(context.Background(), m, 3)
	require.NoError(t, err)
	a, err := analyze.Analyze(context.Background(), sub, relief.Identity())
	require.NoError(t, err)
	assert.Empty(t, a.Overhangs)
	assert.Equal(t, analyze.DifficultyEasy, a.Difficulty)
}

func TestAnalyzeSplitPositions(t *testing.T) {
	m := box(r3.Vec{}, r3.Vec{X: 500, Y: 20, Z: 20})
	a, err := analyze.Analyze(context.Background(), m, relief.Identity())
	require.NoError(t, err)
	require.Len(t, a.Splits, 2)
	for i, s := range a.Splits {
		assert.Equal(t, "X", s.Axis)
		assert.InDelta(t, 500*float64(i+1)/3, s.Position, 1e-9)
	}
	assert.Equal(t, analyze.DifficultyMedium, a.Difficulty)
}

func TestAnalyzeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := analyze.Analyze(ctx, box(r3.Vec{}, r3.Vec{X: 50, Y: 30, Z: 20}), relief.Identity())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultUnitPolicy(t *testing.T) {
	for _, test := range []struct {
		maxDim float64
		want   float64
	}{
		{maxDim: -1, want: 1},
		{maxDim: 0, want: 1},
		{maxDim: 1.5, want: 1000},
		{maxDim: 2, want: 1},
		{maxDim: 100, want: 1},
		{maxDim: 5000, want: 1},
		{maxDim: 6000, want: 0.1},
	} {
		assert.Equal(t, test.want, analyze.DefaultUnitPolicy(test.maxDim), "maxDim=%g", test.maxDim)
	}
}
