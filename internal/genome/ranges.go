package genome

import (
	"math"
	"math/rand"
)

// Range is the declared valid interval for one heritable scalar. Every
// mutation re-clamps into its range; the factory draws uniformly from
// it unless a narrower creation interval is documented on the caller.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

func (r Range) Uniform(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Node count bounds for any valid genome. Fresh genomes draw from the
// narrower [16,24] band and drift toward the hard bounds via mutation.
const (
	MinNodeCount = 14
	MaxNodeCount = 28

	seedMinNodeCount = 16
	seedMaxNodeCount = 24
)

var (
	RangeSBias         = Range{0, 1}
	RangeLeak          = Range{0.005, 0.12}
	RangeEdgeWeightVal = Range{0.1, 1}
	RangeCurvature     = Range{-1.2, 1.2}

	RangeRadius          = Range{0.45, 0.8}
	RangePocketAmp       = Range{0, 0.25}
	RangePocketFreq      = Range{1, 6}
	RangePhase           = Range{0, 2 * math.Pi}
	RangeAngleJitter     = Range{0, 0.35}
	RangeAngleJitterFreq = Range{1, 7}
	RangeFoldFreq        = Range{1, 9}
	RangeFoldAmp         = Range{0, 0.16}
	RangeThickness       = Range{0.5, 3}
	RangePorosity        = Range{0.2, 1}
	RangeResonance       = Range{0.3, 0.9}
	RangeCoupling        = Range{0, 1.4}
	RangeAlignmentBias   = Range{0.2, 0.8}
	RangeAlignmentVar    = Range{0, 0.5}
	RangeRingEdgeWeight  = Range{0.2, 1}
)

// MinExtraEdges is the lower chord-count bound for a node count.
func MinExtraEdges(nodeCount int) int {
	m := nodeCount * 15 / 100
	if m < 2 {
		m = 2
	}
	return m
}

// MaxExtraEdges is the upper chord-count bound for a node count.
func MaxExtraEdges(nodeCount int) int {
	minExtra := MinExtraEdges(nodeCount)
	m := nodeCount * 60 / 100
	if m < minExtra+1 {
		m = minExtra + 1
	}
	return m
}

// RingDistance is the cyclic index distance between two ring positions.
func RingDistance(a, b, nodeCount int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if wrap := nodeCount - d; wrap < d {
		return wrap
	}
	return d
}
