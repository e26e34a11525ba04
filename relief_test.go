package relief_test

import (
	"context"
	"errors"
	"testing"

	"github.com/printforge/relief"
	"github.com/printforge/relief/analyze"
)

// flatDepth is a uniform 64x64 depth buffer at the given value.
func flatDepth(v float32) []float32 {
	depth := make([]float32, 64*64)
	for i := range depth {
		depth[i] = v
	}
	return depth
}

func TestReconstructPipeline(t *testing.T) {
	cfg := relief.DefaultConfig()
	cfg.Resolution = 2
	cfg.Smoothness = 0

	type report struct {
		stage     string
		vertices  int
		triangles int
	}
	var reports []report
	progress := func(stage string, vertices, triangles int) {
		reports = append(reports, report{stage, vertices, triangles})
	}

	mesh, warn, err := relief.Reconstruct(context.Background(), flatDepth(0.5), 64, 64, nil, cfg, progress)
	if err != nil {
		t.Fatal(err)
	}
	if warn != nil {
		t.Errorf("unexpected complexity warning: %v", warn)
	}
	if err := mesh.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(mesh.Normals) != mesh.NumVertices() {
		t.Errorf("pipeline output missing normals: %d for %d vertices", len(mesh.Normals), mesh.NumVertices())
	}
	census := mesh.EdgeCensus()
	if census.Boundary != 0 || census.NonManifold != 0 {
		t.Errorf("pipeline output not closed: %+v", census)
	}

	wantStages := []string{
		relief.StageHeightmap,
		relief.StageShell,
		relief.StageSubdivide,
		relief.StageSmooth,
	}
	if len(reports) != len(wantStages) {
		t.Fatalf("got %d progress reports, want %d", len(reports), len(wantStages))
	}
	for i, want := range wantStages {
		if reports[i].stage != want {
			t.Errorf("report %d stage %q, want %q", i, reports[i].stage, want)
		}
	}
	// 64x64 at stride 2 is a 32x32 grid; the shell carries two disjoint
	// 33x33 sheets before refinement.
	if got := reports[1].vertices; got != 2*33*33 {
		t.Errorf("shell stage reported %d vertices, want %d", got, 2*33*33)
	}
	if reports[2].triangles != 4*reports[1].triangles {
		t.Errorf("one subdivision pass should quadruple triangles: %d -> %d",
			reports[1].triangles, reports[2].triangles)
	}
}

func TestReconstructThenAnalyze(t *testing.T) {
	cfg := relief.DefaultConfig()
	cfg.Resolution = 2
	cfg.Smoothness = 0

	mesh, _, err := relief.Reconstruct(context.Background(), flatDepth(0.5), 64, 64, nil, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	a, err := analyze.Analyze(context.Background(), mesh, relief.Identity())
	if err != nil {
		t.Fatal(err)
	}

	// A flat 0.5 depth map yields a 10x10x4.5 slab; smoothing rounds
	// the rim so the exact extents shrink slightly.
	if a.Dimensions.X < 9.5 || a.Dimensions.X > 10 {
		t.Errorf("width %g, want roughly 10", a.Dimensions.X)
	}
	if a.Dimensions.Y < 9.5 || a.Dimensions.Y > 10 {
		t.Errorf("height %g, want roughly 10", a.Dimensions.Y)
	}
	if a.Dimensions.Z < 4.3 || a.Dimensions.Z > 4.6 {
		t.Errorf("thickness %g, want roughly 4.5", a.Dimensions.Z)
	}
	if a.UnitScale != 1 {
		t.Errorf("unit scale %g, want 1", a.UnitScale)
	}
	if a.VolumeCm3 < 0.35 || a.VolumeCm3 > 0.46 {
		t.Errorf("volume %g cm3, want close to 0.45", a.VolumeCm3)
	}
	if a.BoundaryEdges != 0 || a.NonManifoldEdges != 0 {
		t.Errorf("analysis saw an open mesh: %d boundary, %d non-manifold", a.BoundaryEdges, a.NonManifoldEdges)
	}
	// A slab lying flat on the plate prints without support.
	for _, o := range a.Overhangs {
		if o.Severity == analyze.SeveritySevere {
			t.Errorf("unexpected severe overhang at %+v", o.Centroid)
		}
	}
	if len(a.Splits) != 0 {
		t.Errorf("unexpected split suggestions: %+v", a.Splits)
	}
	if a.Difficulty != analyze.DifficultyEasy {
		t.Errorf("difficulty %q, want easy", a.Difficulty)
	}
}

func TestReconstructErrors(t *testing.T) {
	cfg := relief.DefaultConfig()

	// Fully transparent mask leaves no geometry.
	mask := make([]byte, 4*64*64)
	if _, _, err := relief.Reconstruct(context.Background(), flatDepth(0.5), 64, 64, mask, cfg, nil); !errors.Is(err, relief.ErrEmptyGeometry) {
		t.Errorf("fully masked input: got %v, want ErrEmptyGeometry", err)
	}

	bad := cfg
	bad.Resolution = 0
	if _, _, err := relief.Reconstruct(context.Background(), flatDepth(0.5), 64, 64, nil, bad, nil); !errors.Is(err, relief.ErrInvalidParameter) {
		t.Errorf("zero resolution: got %v, want ErrInvalidParameter", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := relief.Reconstruct(ctx, flatDepth(0.5), 64, 64, nil, cfg, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled context: got %v, want context.Canceled", err)
	}
}

func TestReconstructHardLimit(t *testing.T) {
	cfg := relief.DefaultConfig()
	cfg.Resolution = 2
	cfg.Limits = relief.ComplexityLimits{
		HardVertices:  100,
		HardTriangles: 100,
		SoftVertices:  50,
		SoftTriangles: 50,
	}
	_, _, err := relief.Reconstruct(context.Background(), flatDepth(0.5), 64, 64, nil, cfg, nil)
	if !errors.Is(err, relief.ErrTooComplex) {
		t.Fatalf("got %v, want ErrTooComplex", err)
	}
}
