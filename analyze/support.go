package analyze

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Support and build-volume policy constants.
const (
	defaultMaxBuildDimension = 220 // millimeters per axis
	// Support volume is a coarse linear estimate from overhang
	// severity counts, not generated support geometry.
	supportSevereFactor   = 0.03
	supportModerateFactor = 0.01
)

// SupportType selects the support structure family.
type SupportType string

const (
	SupportLinear SupportType = "linear"
	SupportTree   SupportType = "tree"
)

// SupportConfig parameterizes downstream support generation. The
// analyzer only recommends values; it never builds support geometry.
type SupportConfig struct {
	// Density is the support infill fraction in [0,1].
	Density float64     `yaml:"density"`
	Type    SupportType `yaml:"type"`
	// OverhangAngle is the slicer threshold in degrees from vertical
	// above which faces get support.
	OverhangAngle   float64 `yaml:"overhang_angle"`
	TreeBranchCount int     `yaml:"tree_branch_count"`
	// TreeBranchGap is the spacing between tree trunks in millimeters.
	TreeBranchGap float64 `yaml:"tree_branch_gap"`
	// ContactDiameter is the support tip size in millimeters.
	ContactDiameter float64 `yaml:"contact_diameter"`
}

// DefaultSupportConfig returns conservative linear supports.
func DefaultSupportConfig() SupportConfig {
	return SupportConfig{
		Density:         0.2,
		Type:            SupportLinear,
		OverhangAngle:   45,
		TreeBranchCount: 4,
		TreeBranchGap:   5,
		ContactDiameter: 0.8,
	}
}

// LoadSupportConfig reads a SupportConfig from a YAML file merged over
// the defaults.
func LoadSupportConfig(path string) (SupportConfig, error) {
	cfg := DefaultSupportConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return SupportConfig{}, fmt.Errorf("loading support config from %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SupportConfig{}, fmt.Errorf("loading support config from %s: %w", path, err)
	}
	return cfg, nil
}

// RecommendSupport derives a support configuration from an analysis:
// pervasive severe overhangs favor denser tree supports, mild results
// keep the defaults.
func RecommendSupport(a Analysis) SupportConfig {
	cfg := DefaultSupportConfig()
	var severe, moderate int
	for _, o := range a.Overhangs {
		switch o.Severity {
		case SeveritySevere:
			severe++
		case SeverityModerate:
			moderate++
		}
	}
	switch {
	case severe >= 3:
		cfg.Density = 0.3
		cfg.Type = SupportTree
		cfg.TreeBranchCount = 6
	case severe > 0 || moderate >= 3:
		cfg.Density = 0.25
	}
	return cfg
}

// recommendLayerHeight is a decision table on model height and a
// detail-density proxy (triangles per bounding cm3), not a physical
// simulation: tall models favor thick layers for print time, small
// detailed models favor thin layers for fidelity.
func recommendLayerHeight(heightMM, detail float64) LayerHeightRecommendation {
	switch {
	case heightMM > 150:
		return LayerHeightRecommendation{Min: 0.15, Max: 0.3, Optimal: 0.25}
	case heightMM < 50 && detail > 1000:
		return LayerHeightRecommendation{Min: 0.05, Max: 0.15, Optimal: 0.08}
	case detail > 300:
		return LayerHeightRecommendation{Min: 0.08, Max: 0.2, Optimal: 0.12}
	default:
		return LayerHeightRecommendation{Min: 0.1, Max: 0.28, Optimal: 0.2}
	}
}
