// Package analyze computes physical and manufacturability properties of
// indexed triangle meshes for 3D printing: volume, surface area,
// bounding dimensions, overhang clusters, layer-height recommendations,
// support-material estimates and split suggestions.
//
// Analysis is read-only and allocation-local; it accepts any mesh, not
// only reconstructed ones, and never mutates its input.
package analyze

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/printforge/relief"
	"github.com/printforge/relief/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Difficulty is a coarse print-difficulty classification.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// LayerHeightRecommendation suggests slicer layer heights in millimeters.
type LayerHeightRecommendation struct {
	Min     float64
	Max     float64
	Optimal float64
}

// SplitSuggestion proposes a cut plane for models exceeding the build
// volume or suffering pervasive overhangs. Advisory only: positions are
// not validated cut operations.
type SplitSuggestion struct {
	Axis     string
	Position float64
	Reason   string
}

// Analysis is the immutable result of analyzing one mesh.
type Analysis struct {
	TriangleCount int
	VertexCount   int
	// VolumeCm3 is the signed-tetrahedron volume. Only meaningful for
	// closed, consistently wound meshes; BoundaryEdges and
	// NonManifoldEdges expose how far the input is from that.
	VolumeCm3      float64
	SurfaceAreaCm2 float64
	// Dimensions is the world-space bounding size in millimeters after
	// unit normalization.
	Dimensions r3.Vec
	// FillRatio is mesh volume over bounding-box volume, a rough
	// solidity indicator.
	FillRatio        float64
	Overhangs        []OverhangRegion
	LayerHeight      LayerHeightRecommendation
	SupportVolumeCm3 float64
	Difficulty       Difficulty
	Splits           []SplitSuggestion
	// Edge census of the input topology. Non-zero values mean the
	// volume figure cannot be trusted.
	BoundaryEdges    int
	NonManifoldEdges int
	// UnitScale is the factor applied by the unit inference policy.
	UnitScale float64
}

// Analyzer configures analysis policies. The zero value uses the
// package defaults and is ready to use.
type Analyzer struct {
	// Units normalizes arbitrary-unit meshes to millimeters.
	// Nil selects DefaultUnitPolicy.
	Units UnitPolicy
	// OverhangTriangleCap bounds overhang classification cost.
	// Zero selects the 50000-triangle default.
	OverhangTriangleCap int
	// MaxBuildDimension is the printable size per axis in millimeters.
	// Zero selects the 220 mm default.
	MaxBuildDimension float64
}

// Analyze runs the default Analyzer, see Analyzer.Analyze.
func Analyze(ctx context.Context, m relief.IndexedMesh, transform relief.Mat4) (Analysis, error) {
	return Analyzer{}.Analyze(ctx, m, transform)
}

// Analyze computes the geometric analysis of a mesh under a world
// transform. A mesh without positions or triangles yields the
// well-defined empty analysis instead of an error, so callers may probe
// speculatively before a mesh exists. The only error returned is ctx
// cancellation.
func (a Analyzer) Analyze(ctx context.Context, m relief.IndexedMesh, transform relief.Mat4) (Analysis, error) {
	if len(m.Positions) == 0 || len(m.Indices) == 0 {
		return Analysis{Difficulty: DifficultyEasy, UnitScale: 1}, nil
	}
	units := a.Units
	if units == nil {
		units = DefaultUnitPolicy
	}
	overhangCap := a.OverhangTriangleCap
	if overhangCap == 0 {
		overhangCap = defaultOverhangTriangleCap
	}
	maxBuild := a.MaxBuildDimension
	if maxBuild == 0 {
		maxBuild = defaultMaxBuildDimension
	}

	// World-space vertex snapshot; the input buffers stay untouched.
	world := make([]r3.Vec, len(m.Positions))
	bb := d3.Box{Min: d3.Elem(math.MaxFloat64), Max: d3.Elem(-math.MaxFloat64)}
	for i, p := range m.Positions {
		if i%ctxStride == 0 {
			if err := ctx.Err(); err != nil {
				return Analysis{}, err
			}
		}
		w := transform.MulPosition(p)
		world[i] = w
		bb = bb.Include(w)
	}
	scale := units(d3.Max(bb.Size()))
	if scale != 1 {
		for i := range world {
			world[i] = r3.Scale(scale, world[i])
		}
		bb = d3.Box{Min: r3.Scale(scale, bb.Min), Max: r3.Scale(scale, bb.Max)}
	}

	var signedVol, area float64
	for i := 0; i < len(m.Indices); i += 3 {
		if i%(3*ctxStride) == 0 {
			if err := ctx.Err(); err != nil {
				return Analysis{}, err
			}
		}
		va := world[m.Indices[i]]
		vb := world[m.Indices[i+1]]
		vc := world[m.Indices[i+2]]
		// Signed tetrahedron against the origin; the sum telescopes to
		// the enclosed volume for a closed, consistently wound mesh.
		signedVol += r3.Dot(va, r3.Cross(vb, vc)) / 6
		area += r3.Norm(r3.Cross(r3.Sub(vb, va), r3.Sub(vc, va))) / 2
	}

	overhangs, err := clusterOverhangs(ctx, m.Indices, world, overhangCap, bb.Min.Y, bb.Size().Y)
	if err != nil {
		return Analysis{}, err
	}
	var severe, moderate int
	for _, o := range overhangs {
		switch o.Severity {
		case SeveritySevere:
			severe++
		case SeverityModerate:
			moderate++
		}
	}

	dims := bb.Size()
	bbVolCm3 := bb.Volume() / 1000
	volumeCm3 := math.Abs(signedVol) / 1000
	fillRatio := 0.0
	if bbVolCm3 > 0 {
		fillRatio = volumeCm3 / bbVolCm3
	}
	detail := 0.0
	if bbVolCm3 > 0 {
		detail = float64(len(m.Indices)/3) / bbVolCm3
	}

	splits := suggestSplits(bb, maxBuild, severe)
	edges := m.EdgeCensus()
	return Analysis{
		TriangleCount:    len(m.Indices) / 3,
		VertexCount:      len(m.Positions),
		VolumeCm3:        volumeCm3,
		SurfaceAreaCm2:   area / 100,
		Dimensions:       dims,
		FillRatio:        fillRatio,
		Overhangs:        overhangs,
		LayerHeight:      recommendLayerHeight(dims.Y, detail),
		SupportVolumeCm3: bbVolCm3 * (float64(severe)*supportSevereFactor + float64(moderate)*supportModerateFactor),
		Difficulty:       classifyDifficulty(overhangs, severe, splits),
		Splits:           splits,
		BoundaryEdges:    edges.Boundary,
		NonManifoldEdges: edges.NonManifold,
		UnitScale:        scale,
	}, nil
}

const ctxStride = 1 << 14

// classifyDifficulty is a coarse rating from overhang severity and
// build-volume fit: pervasive severe overhangs or an oversized model
// with overhangs rate hard, any overhang or split rates medium.
func classifyDifficulty(overhangs []OverhangRegion, severe int, splits []SplitSuggestion) Difficulty {
	switch {
	case severe >= 3 || (severe > 0 && len(splits) > 0):
		return DifficultyHard
	case len(overhangs) > 0 || len(splits) > 0:
		return DifficultyMedium
	default:
		return DifficultyEasy
	}
}

// suggestSplits proposes evenly spaced cut planes along every axis that
// exceeds the build volume, plus a reorientation split when severe
// overhangs are pervasive.
func suggestSplits(bb d3.Box, maxBuild float64, severe int) []SplitSuggestion {
	var splits []SplitSuggestion
	dims := bb.Size()
	for _, ax := range [3]struct {
		name string
		size float64
		min  float64
	}{
		{"X", dims.X, bb.Min.X},
		{"Y", dims.Y, bb.Min.Y},
		{"Z", dims.Z, bb.Min.Z},
	} {
		if ax.size <= maxBuild {
			continue
		}
		pieces := int(math.Ceil(ax.size / maxBuild))
		for i := 1; i < pieces; i++ {
			splits = append(splits, SplitSuggestion{
				Axis:     ax.name,
				Position: ax.min + ax.size*float64(i)/float64(pieces),
				Reason:   fmt.Sprintf("%s dimension %.0f mm exceeds %.0f mm build volume; print in %d pieces", ax.name, ax.size, maxBuild, pieces),
			})
		}
	}
	if severe > 3 {
		splits = append(splits, SplitSuggestion{
			Axis:     "Y",
			Position: bb.Center().Y,
			Reason:   fmt.Sprintf("%d severe overhang regions; splitting or reorienting may avoid heavy support", severe),
		})
	}
	return splits
}

// sortOverhangs orders regions by descending mean angle (worst first).
func sortOverhangs(regions []OverhangRegion) {
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].MeanAngle > regions[j].MeanAngle
	})
}
