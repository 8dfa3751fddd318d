package genome

import (
	"fmt"
	"math/rand"

	"cristae/internal/model"
)

const edgeDrawAttempts = 20

// Factory builds random genomes and structural primitives from an
// explicit random source so whole runs replay exactly from a seed.
type Factory struct {
	Rand *rand.Rand

	nextID int
}

func NewFactory(rng *rand.Rand) *Factory {
	return &Factory{Rand: rng}
}

// NewNodeType draws a node role: 20% membrane, 15% etc, 65% synthase.
func (f *Factory) NewNodeType() model.NodeType {
	roll := f.Rand.Float64()
	switch {
	case roll < 0.20:
		return model.NodeMembrane
	case roll < 0.35:
		return model.NodeETC
	default:
		return model.NodeSynthase
	}
}

// NewNode draws one node gene.
func (f *Factory) NewNode() model.NodeGene {
	return model.NodeGene{
		Type:  f.NewNodeType(),
		SBias: RangeSBias.Uniform(f.Rand),
		Leak:  Range{0.01, 0.07}.Uniform(f.Rand),
	}
}

// NewEdge draws a chord whose endpoints are more than one ring step
// apart. After repeated failed draws it falls back to a guaranteed
// valid pair rather than returning an invalid edge.
func (f *Factory) NewEdge(nodeCount int) model.EdgeGene {
	from := 0
	to := 2 % nodeCount
	found := false
	for attempt := 0; attempt < edgeDrawAttempts; attempt++ {
		from = f.Rand.Intn(nodeCount)
		to = f.Rand.Intn(nodeCount)
		if RingDistance(from, to, nodeCount) > 1 {
			found = true
			break
		}
	}
	if !found {
		to = (from + 2) % nodeCount
	}
	return model.EdgeGene{
		From:      from,
		To:        to,
		Weight:    RangeEdgeWeightVal.Clamp(Range{0.3, 1}.Uniform(f.Rand)),
		Curvature: RangeCurvature.Clamp(Range{-0.6, 0.6}.Uniform(f.Rand)),
	}
}

type edgeKey struct {
	lo, hi int
}

func keyFor(e model.EdgeGene) edgeKey {
	if e.From <= e.To {
		return edgeKey{e.From, e.To}
	}
	return edgeKey{e.To, e.From}
}

// NormalizeEdges is the single gate for the chord invariants: it drops
// duplicates and invalid chords, trims random excess above the upper
// bound, and tops up with fresh valid chords below the lower bound.
// Must run after every structural mutation and crossover.
func (f *Factory) NormalizeEdges(edges []model.EdgeGene, nodeCount int) []model.EdgeGene {
	seen := make(map[edgeKey]struct{}, len(edges))
	valid := make([]model.EdgeGene, 0, len(edges))
	for _, e := range edges {
		if e.From < 0 || e.From >= nodeCount || e.To < 0 || e.To >= nodeCount {
			continue
		}
		if RingDistance(e.From, e.To, nodeCount) <= 1 {
			continue
		}
		key := keyFor(e)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		valid = append(valid, e)
	}

	maxExtra := MaxExtraEdges(nodeCount)
	for len(valid) > maxExtra {
		idx := f.Rand.Intn(len(valid))
		delete(seen, keyFor(valid[idx]))
		valid[idx] = valid[len(valid)-1]
		valid = valid[:len(valid)-1]
	}

	minExtra := MinExtraEdges(nodeCount)
	for len(valid) < minExtra {
		candidate := f.NewEdge(nodeCount)
		key := keyFor(candidate)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		valid = append(valid, candidate)
	}
	return valid
}

// NewGenome draws a complete random genome respecting every structural
// and scalar invariant.
func (f *Factory) NewGenome() model.Genome {
	f.nextID++
	nodeCount := seedMinNodeCount + f.Rand.Intn(seedMaxNodeCount-seedMinNodeCount+1)

	nodes := make([]model.NodeGene, nodeCount)
	for i := range nodes {
		nodes[i] = f.NewNode()
	}

	minExtra := MinExtraEdges(nodeCount)
	maxExtra := MaxExtraEdges(nodeCount)
	edgeCount := minExtra + f.Rand.Intn(maxExtra-minExtra+1)
	edges := make([]model.EdgeGene, 0, edgeCount)
	for i := 0; i < edgeCount; i++ {
		edges = append(edges, f.NewEdge(nodeCount))
	}
	edges = f.NormalizeEdges(edges, nodeCount)

	g := model.Genome{
		ID:        fmt.Sprintf("org-%d", f.nextID),
		NodeCount: nodeCount,
		Nodes:     nodes,
		Edges:     edges,

		RadiusX:         RangeRadius.Uniform(f.Rand),
		RadiusY:         RangeRadius.Uniform(f.Rand),
		PocketAmp:       RangePocketAmp.Uniform(f.Rand),
		PocketFreq:      RangePocketFreq.Uniform(f.Rand),
		PocketPhase:     RangePhase.Uniform(f.Rand),
		AngleJitter:     RangeAngleJitter.Uniform(f.Rand),
		AngleJitterFreq: RangeAngleJitterFreq.Uniform(f.Rand),
		AngleJitterPh:   RangePhase.Uniform(f.Rand),
		Thickness:       RangeThickness.Uniform(f.Rand),
		Porosity:        RangePorosity.Uniform(f.Rand),
		ResonanceThresh: RangeResonance.Uniform(f.Rand),
		CouplingStr:     RangeCoupling.Uniform(f.Rand),
		AlignmentBias:   RangeAlignmentBias.Uniform(f.Rand),
		AlignmentVar:    RangeAlignmentVar.Uniform(f.Rand),
		EdgeWeight:      RangeRingEdgeWeight.Uniform(f.Rand),
	}
	for i := range g.Folds {
		g.Folds[i] = model.FoldGene{
			Freq:  RangeFoldFreq.Uniform(f.Rand),
			Amp:   RangeFoldAmp.Uniform(f.Rand),
			Phase: RangePhase.Uniform(f.Rand),
		}
	}
	return g
}
