package genome

import (
	"fmt"

	"cristae/internal/model"
)

// Validate re-checks every structural and scalar invariant a genome
// must satisfy after creation, mutation, or crossover.
func Validate(g model.Genome) error {
	if g.NodeCount < MinNodeCount || g.NodeCount > MaxNodeCount {
		return fmt.Errorf("node count out of bounds: %d", g.NodeCount)
	}
	if len(g.Nodes) != g.NodeCount {
		return fmt.Errorf("node list length mismatch: len=%d count=%d", len(g.Nodes), g.NodeCount)
	}
	for i, n := range g.Nodes {
		switch n.Type {
		case model.NodeMembrane, model.NodeETC, model.NodeSynthase:
		default:
			return fmt.Errorf("node %d has unknown type: %q", i, n.Type)
		}
		if !RangeSBias.Contains(n.SBias) {
			return fmt.Errorf("node %d s-bias out of range: %f", i, n.SBias)
		}
		if !RangeLeak.Contains(n.Leak) {
			return fmt.Errorf("node %d leak out of range: %f", i, n.Leak)
		}
	}

	minExtra := MinExtraEdges(g.NodeCount)
	maxExtra := MaxExtraEdges(g.NodeCount)
	if len(g.Edges) < minExtra || len(g.Edges) > maxExtra {
		return fmt.Errorf("edge count %d outside [%d,%d]", len(g.Edges), minExtra, maxExtra)
	}
	seen := make(map[edgeKey]struct{}, len(g.Edges))
	for i, e := range g.Edges {
		if e.From < 0 || e.From >= g.NodeCount || e.To < 0 || e.To >= g.NodeCount {
			return fmt.Errorf("edge %d endpoint out of range: %d-%d", i, e.From, e.To)
		}
		if RingDistance(e.From, e.To, g.NodeCount) <= 1 {
			return fmt.Errorf("edge %d violates ring distance: %d-%d", i, e.From, e.To)
		}
		key := keyFor(e)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate edge %d-%d", e.From, e.To)
		}
		seen[key] = struct{}{}
		if !RangeEdgeWeightVal.Contains(e.Weight) {
			return fmt.Errorf("edge %d weight out of range: %f", i, e.Weight)
		}
		if !RangeCurvature.Contains(e.Curvature) {
			return fmt.Errorf("edge %d curvature out of range: %f", i, e.Curvature)
		}
	}

	scalars := []struct {
		name  string
		value float64
		rng   Range
	}{
		{"radius_x", g.RadiusX, RangeRadius},
		{"radius_y", g.RadiusY, RangeRadius},
		{"pocket_amp", g.PocketAmp, RangePocketAmp},
		{"pocket_freq", g.PocketFreq, RangePocketFreq},
		{"pocket_phase", g.PocketPhase, RangePhase},
		{"angle_jitter", g.AngleJitter, RangeAngleJitter},
		{"angle_jitter_freq", g.AngleJitterFreq, RangeAngleJitterFreq},
		{"angle_jitter_phase", g.AngleJitterPh, RangePhase},
		{"thickness", g.Thickness, RangeThickness},
		{"porosity", g.Porosity, RangePorosity},
		{"resonance_threshold", g.ResonanceThresh, RangeResonance},
		{"coupling_strength", g.CouplingStr, RangeCoupling},
		{"alignment_bias", g.AlignmentBias, RangeAlignmentBias},
		{"alignment_variance", g.AlignmentVar, RangeAlignmentVar},
		{"edge_weight", g.EdgeWeight, RangeRingEdgeWeight},
	}
	for _, s := range scalars {
		if !s.rng.Contains(s.value) {
			return fmt.Errorf("%s out of range: %f", s.name, s.value)
		}
	}
	for i, fold := range g.Folds {
		if !RangeFoldFreq.Contains(fold.Freq) {
			return fmt.Errorf("fold %d freq out of range: %f", i, fold.Freq)
		}
		if !RangeFoldAmp.Contains(fold.Amp) {
			return fmt.Errorf("fold %d amp out of range: %f", i, fold.Amp)
		}
		if !RangePhase.Contains(fold.Phase) {
			return fmt.Errorf("fold %d phase out of range: %f", i, fold.Phase)
		}
	}
	return nil
}
