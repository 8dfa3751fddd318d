package evo

import (
	"math/rand"

	"cristae/internal/genome"
	"cristae/internal/model"
)

// Crossover recombines two parent genomes into an independent child.
type Crossover struct {
	Rand    *rand.Rand
	Factory *genome.Factory
}

func (c Crossover) Name() string {
	return "crossover"
}

// Apply builds a child from a coin-flipped base parent: nodes are
// chosen gene by gene, edges are pooled from roughly half of each
// parent's chords and normalized against the child's node count, and
// every scalar field independently inherits from the second parent
// with probability one half.
func (c Crossover) Apply(g1, g2 model.Genome, childID string) model.Genome {
	rng := c.Rand

	base := g1
	if rng.Float64() < 0.5 {
		base = g2
	}
	child := genome.Clone(base, childID)

	child.NodeCount = g1.NodeCount
	if rng.Float64() < 0.5 {
		child.NodeCount = g2.NodeCount
	}

	child.Nodes = make([]model.NodeGene, child.NodeCount)
	for i := range child.Nodes {
		has1 := i < len(g1.Nodes)
		has2 := i < len(g2.Nodes)
		switch {
		case has1 && has2:
			if rng.Float64() < 0.5 {
				child.Nodes[i] = g1.Nodes[i]
			} else {
				child.Nodes[i] = g2.Nodes[i]
			}
		case has1:
			child.Nodes[i] = g1.Nodes[i]
		case has2:
			child.Nodes[i] = g2.Nodes[i]
		default:
			child.Nodes[i] = c.Factory.NewNode()
		}
	}

	pool := make([]model.EdgeGene, 0, len(g1.Edges)+len(g2.Edges))
	for _, e := range g1.Edges {
		if rng.Float64() < 0.5 {
			pool = append(pool, e)
		}
	}
	for _, e := range g2.Edges {
		if rng.Float64() < 0.5 {
			pool = append(pool, e)
		}
	}
	child.Edges = c.Factory.NormalizeEdges(pool, child.NodeCount)

	c.inheritScalar(&child.RadiusX, g2.RadiusX)
	c.inheritScalar(&child.RadiusY, g2.RadiusY)
	c.inheritScalar(&child.PocketAmp, g2.PocketAmp)
	c.inheritScalar(&child.PocketFreq, g2.PocketFreq)
	c.inheritScalar(&child.PocketPhase, g2.PocketPhase)
	c.inheritScalar(&child.AngleJitter, g2.AngleJitter)
	c.inheritScalar(&child.AngleJitterFreq, g2.AngleJitterFreq)
	c.inheritScalar(&child.AngleJitterPh, g2.AngleJitterPh)
	c.inheritScalar(&child.Thickness, g2.Thickness)
	c.inheritScalar(&child.Porosity, g2.Porosity)
	c.inheritScalar(&child.ResonanceThresh, g2.ResonanceThresh)
	c.inheritScalar(&child.CouplingStr, g2.CouplingStr)
	c.inheritScalar(&child.AlignmentBias, g2.AlignmentBias)
	c.inheritScalar(&child.AlignmentVar, g2.AlignmentVar)
	c.inheritScalar(&child.EdgeWeight, g2.EdgeWeight)
	for i := range child.Folds {
		if rng.Float64() < 0.5 {
			child.Folds[i] = g2.Folds[i]
		}
	}

	return child
}

func (c Crossover) inheritScalar(field *float64, fromSecond float64) {
	if c.Rand.Float64() < 0.5 {
		*field = fromSecond
	}
}
