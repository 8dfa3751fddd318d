// Package evo holds the genetic operators and parent selection that
// advance membrane populations between generations. Every operator
// takes an explicit random source so generations replay from a seed.
package evo

import (
	"math/rand"

	"cristae/internal/genome"
	"cristae/internal/model"
)

// DefaultMutationRate gates the scalar field perturbations.
const DefaultMutationRate = 0.3

// Structural mutation probabilities. These fire independently of the
// scalar rate; rate zero still allows topology to drift.
const (
	growNodeChance    = 0.08
	shrinkNodeChance  = 0.06
	retypeNodeChance  = 0.05
	replaceEdgeChance = 0.08
	appendEdgeChance  = 0.18
	removeEdgeChance  = 0.12
)

// Mutator perturbs a genome copy field by field, then restores the
// structural invariants through edge normalization.
type Mutator struct {
	Rand    *rand.Rand
	Factory *genome.Factory
	Rate    float64
}

func (m Mutator) Name() string {
	return "mutate"
}

// Apply deep-copies the genome and mutates the copy. Scalar fields are
// perturbed with probability Rate by a bounded uniform delta and
// re-clamped to their declared ranges; structural mutations have their
// own fixed probabilities.
func (m Mutator) Apply(g model.Genome) model.Genome {
	rng := m.Rand
	out := genome.Clone(g, g.ID)

	// Node count drift. Growth and shrink attempts are mutually
	// exclusive in a single mutation pass.
	if rng.Float64() < growNodeChance {
		if out.NodeCount < genome.MaxNodeCount {
			out.NodeCount++
			out.Nodes = append(out.Nodes, m.Factory.NewNode())
		}
	} else if rng.Float64() < shrinkNodeChance {
		if out.NodeCount > genome.MinNodeCount {
			out.NodeCount--
			out.Nodes = out.Nodes[:out.NodeCount]
			kept := out.Edges[:0]
			for _, e := range out.Edges {
				if e.From < out.NodeCount && e.To < out.NodeCount {
					kept = append(kept, e)
				}
			}
			out.Edges = kept
		}
	}

	for i := range out.Nodes {
		if rng.Float64() < retypeNodeChance {
			out.Nodes[i].Type = m.Factory.NewNodeType()
		}
		if rng.Float64() < m.Rate {
			out.Nodes[i].SBias = genome.RangeSBias.Clamp(out.Nodes[i].SBias + m.delta(0.15))
		}
		if rng.Float64() < m.Rate {
			out.Nodes[i].Leak = genome.RangeLeak.Clamp(out.Nodes[i].Leak + m.delta(0.012))
		}
	}

	for i := range out.Edges {
		if rng.Float64() < replaceEdgeChance {
			out.Edges[i] = m.Factory.NewEdge(out.NodeCount)
			continue
		}
		if rng.Float64() < m.Rate {
			out.Edges[i].Weight = genome.RangeEdgeWeightVal.Clamp(out.Edges[i].Weight + m.delta(0.15))
		}
		if rng.Float64() < m.Rate {
			out.Edges[i].Curvature = genome.RangeCurvature.Clamp(out.Edges[i].Curvature + m.delta(0.25))
		}
	}
	if rng.Float64() < appendEdgeChance {
		out.Edges = append(out.Edges, m.Factory.NewEdge(out.NodeCount))
	}
	if rng.Float64() < removeEdgeChance && len(out.Edges) > genome.MinExtraEdges(out.NodeCount) {
		idx := rng.Intn(len(out.Edges))
		out.Edges[idx] = out.Edges[len(out.Edges)-1]
		out.Edges = out.Edges[:len(out.Edges)-1]
	}

	m.mutateScalar(&out.RadiusX, genome.RangeRadius, 0.06)
	m.mutateScalar(&out.RadiusY, genome.RangeRadius, 0.06)
	m.mutateScalar(&out.PocketAmp, genome.RangePocketAmp, 0.05)
	m.mutateScalar(&out.PocketFreq, genome.RangePocketFreq, 0.8)
	m.mutateScalar(&out.PocketPhase, genome.RangePhase, 0.5)
	m.mutateScalar(&out.AngleJitter, genome.RangeAngleJitter, 0.06)
	m.mutateScalar(&out.AngleJitterFreq, genome.RangeAngleJitterFreq, 0.8)
	m.mutateScalar(&out.AngleJitterPh, genome.RangePhase, 0.5)
	m.mutateScalar(&out.Thickness, genome.RangeThickness, 0.3)
	m.mutateScalar(&out.Porosity, genome.RangePorosity, 0.12)
	m.mutateScalar(&out.ResonanceThresh, genome.RangeResonance, 0.08)
	m.mutateScalar(&out.CouplingStr, genome.RangeCoupling, 0.18)
	m.mutateScalar(&out.AlignmentBias, genome.RangeAlignmentBias, 0.1)
	m.mutateScalar(&out.AlignmentVar, genome.RangeAlignmentVar, 0.08)
	m.mutateScalar(&out.EdgeWeight, genome.RangeRingEdgeWeight, 0.12)
	for i := range out.Folds {
		m.mutateScalar(&out.Folds[i].Freq, genome.RangeFoldFreq, 0.8)
		m.mutateScalar(&out.Folds[i].Amp, genome.RangeFoldAmp, 0.04)
		m.mutateScalar(&out.Folds[i].Phase, genome.RangePhase, 0.5)
	}

	out.Edges = m.Factory.NormalizeEdges(out.Edges, out.NodeCount)
	return out
}

func (m Mutator) mutateScalar(field *float64, r genome.Range, maxDelta float64) {
	if m.Rand.Float64() >= m.Rate {
		return
	}
	*field = r.Clamp(*field + m.delta(maxDelta))
}

func (m Mutator) delta(maxDelta float64) float64 {
	return (m.Rand.Float64()*2 - 1) * maxDelta
}
