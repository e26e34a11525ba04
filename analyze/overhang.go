package analyze

import (
	"context"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Overhang classification policy. Angles are measured in degrees from
// the +Y build axis, so a face whose normal points straight down reads
// 180 degrees.
const (
	overhangAngleDeg = 135
	moderateAngleDeg = 145
	severeAngleDeg   = 160
	// overhangBucketSize is the coarse spatial cell used to merge
	// contiguous overhang triangles into regions.
	overhangBucketSize = 0.5
	// minRegionTriangles filters out isolated downward faces.
	minRegionTriangles = 3
	// maxReportedRegions bounds the report, not the analysis.
	maxReportedRegions = 20
	// defaultOverhangTriangleCap bounds classification cost on
	// pathological meshes.
	defaultOverhangTriangleCap = 50_000
	// plateContactTolerance excludes faces resting on the build plate:
	// the flat underside of a solid needs no support. Meshes with no
	// vertical extent (a lone plane) are never excluded.
	plateContactTolerance = overhangBucketSize
)

// Severity grades an overhang region by its mean downward angle.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// OverhangRegion is a spatial cluster of downward-facing triangles that
// will need support material.
type OverhangRegion struct {
	Severity Severity
	// MeanAngle is the mean normal angle from +Y in degrees.
	MeanAngle float64
	Centroid  r3.Vec
	Triangles int
}

type overhangBucket struct {
	angles      []float64
	centroidSum r3.Vec
}

// clusterOverhangs classifies up to cap triangles as overhangs and
// merges them into coarse spatial regions, returning at most
// maxReportedRegions sorted worst-first.
func clusterOverhangs(ctx context.Context, indices []uint32, world []r3.Vec, maxTriangles int, minY, extentY float64) ([]OverhangRegion, error) {
	nt := len(indices) / 3
	if nt > maxTriangles {
		nt = maxTriangles
	}
	onPlate := func(y float64) bool {
		return extentY > plateContactTolerance && y-minY < plateContactTolerance
	}
	buckets := make(map[[3]int]*overhangBucket)
	for t := 0; t < nt; t++ {
		if t%ctxStride == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		a := world[indices[3*t]]
		b := world[indices[3*t+1]]
		c := world[indices[3*t+2]]
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		norm := r3.Norm(n)
		if norm == 0 {
			continue // degenerate triangle
		}
		cosUp := n.Y / norm
		angle := math.Acos(math.Max(-1, math.Min(1, cosUp))) * 180 / math.Pi
		if angle <= overhangAngleDeg {
			continue
		}
		centroid := r3.Scale(1.0/3.0, r3.Add(a, r3.Add(b, c)))
		if onPlate(centroid.Y) {
			continue
		}
		key := [3]int{
			int(math.Floor(centroid.X / overhangBucketSize)),
			int(math.Floor(centroid.Y / overhangBucketSize)),
			int(math.Floor(centroid.Z / overhangBucketSize)),
		}
		bk := buckets[key]
		if bk == nil {
			bk = &overhangBucket{}
			buckets[key] = bk
		}
		bk.angles = append(bk.angles, angle)
		bk.centroidSum = r3.Add(bk.centroidSum, centroid)
	}

	regions := make([]OverhangRegion, 0, len(buckets))
	for _, bk := range buckets {
		n := len(bk.angles)
		if n < minRegionTriangles {
			continue
		}
		mean := stat.Mean(bk.angles, nil)
		severity := SeverityMild
		switch {
		case mean > severeAngleDeg:
			severity = SeveritySevere
		case mean > moderateAngleDeg:
			severity = SeverityModerate
		}
		regions = append(regions, OverhangRegion{
			Severity:  severity,
			MeanAngle: mean,
			Centroid:  r3.Scale(1/float64(n), bk.centroidSum),
			Triangles: n,
		})
	}
	sortOverhangs(regions)
	if len(regions) > maxReportedRegions {
		regions = regions[:maxReportedRegions]
	}
	return regions, nil
}
