// Package transport scores membrane genomes by a fixed-step energy
// transport simulation. Classical mode moves charge and ATP along the
// graph; quantum mode additionally gates conductance and synthesis
// through a per-node coherence signal that feeds back into transport.
package transport

import (
	"math"
	"sort"

	"cristae/internal/membrane"
	"cristae/internal/model"
)

// Mode selects the transport rule a population is evaluated under.
type Mode string

const (
	ModeClassical Mode = "classical"
	ModeQuantum   Mode = "quantum"
)

const (
	referenceScale = 36
	steps          = 120

	sourceInjection  = 0.9
	sigmoidSlope     = 8
	baseEfficiency   = 0.25
	synthesisRate    = 0.2
	atpDiffusionRate = 0.04
	sinkAbsorption   = 0.6

	fitnessFloor = 0.1
)

// Simulator evaluates genomes under one transport mode. Evaluation is
// deterministic: the same genome always yields the same metrics.
type Simulator struct {
	Mode Mode
}

func (s Simulator) quantum() bool {
	return s.Mode == ModeQuantum
}

type neighbor struct {
	id     int
	weight float64
}

// Evaluate runs the full transport simulation for one genome and
// aggregates its fitness and auxiliary metrics.
func (s Simulator) Evaluate(g model.Genome) model.Evaluation {
	graph := membrane.Build(g, referenceScale)
	n := len(graph.Nodes)

	sources, synthases, sinks := classifyRoles(graph)
	adjacency := buildAdjacency(graph)

	h := make([]float64, n)
	a := make([]float64, n)
	q := make([]float64, n)
	deltas := make([]float64, n)

	leaked := 0.0
	delivered := 0.0
	coherenceSum := 0.0
	coherenceSamples := 0

	for step := 0; step < steps; step++ {
		for _, src := range sources {
			h[src] += sourceInjection
		}

		if s.quantum() {
			for i := 0; i < n; i++ {
				q[i] = nodeCoherence(graph, adjacency, i, g.ResonanceThresh)
				coherenceSum += q[i]
				coherenceSamples++
			}
		}

		// Conservative charge exchange across every edge.
		exchangeFlux(deltas, h, graph.Edges, func(e model.GraphEdge) float64 {
			conductance := g.Porosity * (0.2 + 0.6*e.Weight)
			if s.quantum() {
				conductance *= 1 + g.CouplingStr*(q[e.From]+q[e.To])/2
			}
			return conductance
		})
		for i := 0; i < n; i++ {
			h[i] += deltas[i]
			if h[i] < 0 {
				h[i] = 0
			}
		}

		for i := 0; i < n; i++ {
			loss := h[i] * graph.Nodes[i].Leak
			h[i] -= loss
			leaked += loss
		}

		for _, idx := range synthases {
			efficiency := baseEfficiency
			if s.quantum() && q[idx] > 0.5 {
				efficiency *= 1 + g.CouplingStr*0.7
			}
			production := h[idx] * efficiency * synthesisRate
			a[idx] += production
			h[idx] -= production / 2
		}

		exchangeFlux(deltas, a, graph.Edges, func(e model.GraphEdge) float64 {
			return atpDiffusionRate * e.Weight
		})
		for i := 0; i < n; i++ {
			a[i] += deltas[i]
			if a[i] < 0 {
				a[i] = 0
			}
		}

		for _, idx := range sinks {
			take := a[idx]
			if take > sinkAbsorption {
				take = sinkAbsorption
			}
			a[idx] -= take
			delivered += take
		}
	}

	perimeter := membrane.Perimeter(graph)
	foldComplexity := 0.0
	for _, fold := range g.Folds {
		foldComplexity += math.Abs(fold.Amp)
	}
	chordCount := 0
	for _, e := range graph.Edges {
		if !e.Ring {
			chordCount++
		}
	}

	meanQ := 0.0
	if coherenceSamples > 0 {
		meanQ = coherenceSum / float64(coherenceSamples)
	}

	fitness := 2*delivered - 0.008*perimeter - 0.08*leaked +
		2.5*foldComplexity + 0.12*math.Min(float64(chordCount), float64(n)*0.5)
	if s.quantum() {
		fitness -= 4 * math.Pow(meanQ, 2.2)
		// Uniform global coherence carries no spatial structure.
		if varianceOf(q) < 0.01 {
			fitness -= 1.5
		}
	}
	if fitness < fitnessFloor {
		fitness = fitnessFloor
	}

	return model.Evaluation{
		Fitness:        fitness,
		Delivered:      delivered,
		Leaked:         leaked,
		Coherence:      meanQ,
		FoldComplexity: foldComplexity,
		NodeCount:      n,
		ChordCount:     chordCount,
		Perimeter:      perimeter,
	}
}

// classifyRoles splits nodes into energy sources, ATP synthases, and
// sinks. Empty role sets resolve to fixed ring positions instead of
// failing, so every genome is evaluable.
func classifyRoles(graph model.MembraneGraph) (sources, synthases, sinks []int) {
	n := len(graph.Nodes)
	reserved := make(map[int]struct{}, n)

	for _, node := range graph.Nodes {
		switch node.Type {
		case model.NodeETC:
			sources = append(sources, node.ID)
		case model.NodeSynthase:
			synthases = append(synthases, node.ID)
		}
	}
	if len(sources) == 0 {
		sources = []int{0, n / 3, 2 * n / 3}
	}
	if len(synthases) == 0 {
		synthases = []int{n / 6, n / 2, 5 * n / 6}
	}
	for _, idx := range sources {
		reserved[idx] = struct{}{}
	}
	for _, idx := range synthases {
		reserved[idx] = struct{}{}
	}

	sinkCount := n * 12 / 100
	if sinkCount < 2 {
		sinkCount = 2
	}
	candidates := make([]int, 0, n)
	for _, node := range graph.Nodes {
		if _, taken := reserved[node.ID]; taken {
			continue
		}
		candidates = append(candidates, node.ID)
	}
	if len(candidates) == 0 {
		return sources, synthases, []int{n / 4, 3 * n / 4}
	}
	// Highest-leak candidates first; ties resolve by ring index.
	sort.Slice(candidates, func(i, j int) bool {
		li := graph.Nodes[candidates[i]].Leak
		lj := graph.Nodes[candidates[j]].Leak
		if li == lj {
			return candidates[i] < candidates[j]
		}
		return li > lj
	})
	if sinkCount > len(candidates) {
		sinkCount = len(candidates)
	}
	return sources, synthases, candidates[:sinkCount]
}

// exchangeFlux resets deltas and accumulates the pairwise exchange for
// every edge: whatever leaves one endpoint arrives at the other, so the
// deltas always sum to zero.
func exchangeFlux(deltas, levels []float64, edges []model.GraphEdge, conductance func(model.GraphEdge) float64) {
	for i := range deltas {
		deltas[i] = 0
	}
	for _, e := range edges {
		flux := conductance(e) * (levels[e.To] - levels[e.From])
		deltas[e.From] += flux
		deltas[e.To] -= flux
	}
}

func buildAdjacency(graph model.MembraneGraph) [][]neighbor {
	adjacency := make([][]neighbor, len(graph.Nodes))
	for _, e := range graph.Edges {
		adjacency[e.From] = append(adjacency[e.From], neighbor{id: e.To, weight: e.Weight})
		adjacency[e.To] = append(adjacency[e.To], neighbor{id: e.From, weight: e.Weight})
	}
	return adjacency
}

// nodeCoherence gates the neighbor-weighted alignment of a node
// through a logistic sigmoid centered on the resonance threshold.
func nodeCoherence(graph model.MembraneGraph, adjacency [][]neighbor, idx int, threshold float64) float64 {
	weightSum := 0.0
	alignSum := 0.0
	for _, nb := range adjacency[idx] {
		alignSum += graph.Nodes[idx].S * graph.Nodes[nb.id].S * nb.weight
		weightSum += nb.weight
	}
	alignment := 0.0
	if weightSum > 0 {
		alignment = alignSum / weightSum
	}
	return 1 / (1 + math.Exp(-sigmoidSlope*(alignment-threshold)))
}

func varianceOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	total := 0.0
	for _, v := range values {
		d := v - mean
		total += d * d
	}
	return total / float64(len(values))
}
