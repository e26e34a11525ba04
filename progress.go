package relief

import "go.uber.org/zap"

// Pipeline stage names reported through ProgressFunc.
const (
	StageHeightmap = "heightmap"
	StageShell     = "shell"
	StageSubdivide = "subdivide"
	StageSmooth    = "smooth"
)

// ProgressFunc receives intermediate vertex/triangle counts as the
// reconstruction pipeline advances. It replaces ad-hoc console printing
// so the geometry core stays decoupled from any logging mechanism.
// Implementations must be cheap; they run inline with the pipeline.
type ProgressFunc func(stage string, vertices, triangles int)

// NopProgress discards progress reports.
func NopProgress(string, int, int) {}

// NewZapProgress adapts a zap logger into a ProgressFunc emitting one
// structured entry per pipeline stage.
func NewZapProgress(log *zap.Logger) ProgressFunc {
	return func(stage string, vertices, triangles int) {
		log.Info("reconstruction progress",
			zap.String("stage", stage),
			zap.Int("vertices", vertices),
			zap.Int("triangles", triangles),
		)
	}
}
