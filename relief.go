// Package relief reconstructs printable two-sided shell meshes from 2D
// depth estimates. The pipeline resamples a dense depth buffer onto a
// coarse heightmap, builds a front/back shell stitched along visibility
// boundaries, gates mesh complexity, and refines the result with
// midpoint subdivision and Laplacian smoothing.
//
// Every operation is a pure function of its inputs: no I/O, no retained
// state, no logging. Concurrent use on distinct meshes needs no locking.
package relief

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter reports a malformed input such as a
	// resolution below 1 or a mismatched buffer length.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrEmptyGeometry reports that reconstruction yielded no vertices
	// or triangles, e.g. a fully masked-out image. Callers must not
	// render or analyze an empty mesh.
	ErrEmptyGeometry = errors.New("empty geometry")
	// ErrTooComplex reports a mesh above the hard complexity ceiling.
	ErrTooComplex = errors.New("mesh too complex")
)

// Refinement defaults, tuned for depth-map output rather than exposed
// as user parameters.
const (
	defaultSubdivisions    = 1
	defaultSmoothingPasses = 2
	defaultSmoothingFactor = 0.4
)

// Config holds the reconstruction pipeline parameters.
type Config struct {
	// Resolution is the sampling stride in pixels; the heightmap grid
	// has floor(width/Resolution) cells per axis. Must be >= 1.
	Resolution int `yaml:"resolution"`
	// DepthScale converts normalized depth to model units. Must be > 0.
	DepthScale float64 `yaml:"depth_scale"`
	// Smoothness in [0,1] blends pre-mesh neighbor averaging into the
	// sampled depth.
	Smoothness float64 `yaml:"smoothness"`

	// Refinement overrides. Zero values select the tuned defaults
	// (1 subdivision, 2 smoothing passes, factor 0.4).
	Subdivisions    int     `yaml:"subdivisions"`
	SmoothingPasses int     `yaml:"smoothing_passes"`
	SmoothingFactor float64 `yaml:"smoothing_factor"`

	// Limits gates mesh complexity before refinement. The zero value
	// uses the package defaults.
	Limits ComplexityLimits `yaml:"limits"`
}

// DefaultConfig returns the reconstruction defaults.
func DefaultConfig() Config {
	return Config{
		Resolution: 4,
		DepthScale: 3,
		Smoothness: 0.5,
		Limits:     DefaultLimits(),
	}
}

func (c Config) refinement() (subdiv, smoothPasses int, smoothFactor float64) {
	subdiv, smoothPasses, smoothFactor = c.Subdivisions, c.SmoothingPasses, c.SmoothingFactor
	if subdiv == 0 {
		subdiv = defaultSubdivisions
	}
	if smoothPasses == 0 {
		smoothPasses = defaultSmoothingPasses
	}
	if smoothFactor == 0 {
		smoothFactor = defaultSmoothingFactor
	}
	return subdiv, smoothPasses, smoothFactor
}

// Reconstruct runs the full image-to-mesh pipeline: heightmap sampling,
// shell construction, complexity gating, subdivision and smoothing.
//
// depth holds width*height samples in [0,1]; mask is an optional RGBA
// buffer of the same pixel dimensions whose alpha channel marks
// visibility. progress may be nil. The returned warning is non-nil when
// the shell exceeded the soft complexity ceiling but was processed
// anyway.
func Reconstruct(ctx context.Context, depth []float32, width, height int, mask []byte, cfg Config, progress ProgressFunc) (IndexedMesh, *ComplexityWarning, error) {
	if progress == nil {
		progress = NopProgress
	}
	hm, err := BuildHeightmap(depth, width, height, cfg.Resolution, mask, cfg.Smoothness)
	if err != nil {
		return IndexedMesh{}, nil, fmt.Errorf("heightmap: %w", err)
	}
	progress(StageHeightmap, (hm.SegmentsX+1)*(hm.SegmentsY+1), 0)

	mesh, err := BuildShell(hm, cfg.DepthScale)
	if err != nil {
		return IndexedMesh{}, nil, fmt.Errorf("shell: %w", err)
	}
	progress(StageShell, mesh.NumVertices(), mesh.NumTriangles())

	warn, err := cfg.Limits.Check(mesh.NumVertices(), mesh.NumTriangles())
	if err != nil {
		return IndexedMesh{}, nil, err
	}

	subdiv, smoothPasses, smoothFactor := cfg.refinement()
	mesh, err = Subdivide(ctx, mesh, subdiv)
	if err != nil {
		return IndexedMesh{}, nil, fmt.Errorf("subdivide: %w", err)
	}
	progress(StageSubdivide, mesh.NumVertices(), mesh.NumTriangles())

	mesh, err = Smooth(ctx, mesh, smoothPasses, smoothFactor)
	if err != nil {
		return IndexedMesh{}, nil, fmt.Errorf("smooth: %w", err)
	}
	mesh.ComputeNormals()
	progress(StageSmooth, mesh.NumVertices(), mesh.NumTriangles())
	return mesh, warn, nil
}
