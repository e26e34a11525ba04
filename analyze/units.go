package analyze

// UnitPolicy infers a scale factor normalizing a mesh to millimeters
// from its bounding-box maximum dimension. Uploaded meshes carry no
// unit metadata, so this is a documented heuristic, not a guarantee;
// swap in FixedUnitPolicy when the unit is actually known.
type UnitPolicy func(maxDim float64) (scale float64)

// DefaultUnitPolicy applies the standard thresholds: a model smaller
// than 2 units is assumed to be in meters (scale 1000), larger than
// 5000 units in tenth-millimeters or microns territory (scale 0.1),
// anything between is taken as millimeters already.
func DefaultUnitPolicy(maxDim float64) float64 {
	switch {
	case maxDim <= 0:
		return 1
	case maxDim < 2:
		return 1000
	case maxDim > 5000:
		return 0.1
	default:
		return 1
	}
}

// FixedUnitPolicy disables inference and always applies scale.
func FixedUnitPolicy(scale float64) UnitPolicy {
	return func(float64) float64 { return scale }
}
