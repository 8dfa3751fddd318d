// Package membrane maps genomes onto concrete warped closed-curve
// graphs. Build is a pure function used identically by the fitness
// path and by renderers, so both always observe the same structure.
package membrane

import (
	"math"

	"cristae/internal/genome"
	"cristae/internal/model"
)

// maxRadialOffset bounds the combined fold and pocket displacement.
const maxRadialOffset = 0.35

// Build derives a membrane graph from a genome at the given scale.
// Ring edges are always emitted; genome chords are re-validated here
// against the current node count, so a genome that shrank after the
// chord was written silently loses it at build time.
func Build(g model.Genome, scale float64) model.MembraneGraph {
	n := g.NodeCount
	nodes := make([]model.GraphNode, 0, n)

	ringWeight := genome.RangeRingEdgeWeight.Clamp(g.EdgeWeight)

	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		angle := t * 2 * math.Pi
		warped := angle + g.AngleJitter*math.Sin(angle*g.AngleJitterFreq+g.AngleJitterPh)

		offset := g.PocketAmp * math.Sin(angle*g.PocketFreq+g.PocketPhase)
		for _, fold := range g.Folds {
			offset += fold.Amp * math.Sin(fold.Freq*angle+fold.Phase)
		}
		if offset > maxRadialOffset {
			offset = maxRadialOffset
		} else if offset < -maxRadialOffset {
			offset = -maxRadialOffset
		}

		// Displace the base ellipse point along its local normal.
		x := math.Cos(warped) * (g.RadiusX*scale + offset*scale)
		y := math.Sin(warped) * (g.RadiusY*scale + offset*scale)

		gene := g.Nodes[i]
		s := clamp01(g.AlignmentBias + (gene.SBias-0.5)*0.6 +
			g.AlignmentVar*math.Sin(t*4*math.Pi+g.AlignmentVar*8))
		leak := genome.RangeLeak.Clamp(gene.Leak + (1-s)*0.03)

		nodes = append(nodes, model.GraphNode{
			ID:   i,
			Type: gene.Type,
			X:    x,
			Y:    y,
			S:    s,
			Leak: leak,
		})
	}

	edges := make([]model.GraphEdge, 0, n+len(g.Edges))
	for i := 0; i < n; i++ {
		edges = append(edges, model.GraphEdge{
			From:   i,
			To:     (i + 1) % n,
			Weight: ringWeight,
			Ring:   true,
		})
	}
	for _, chord := range g.Edges {
		if chord.From < 0 || chord.From >= n || chord.To < 0 || chord.To >= n {
			continue
		}
		if genome.RingDistance(chord.From, chord.To, n) <= 1 {
			continue
		}
		edges = append(edges, model.GraphEdge{
			From:      chord.From,
			To:        chord.To,
			Weight:    chord.Weight,
			Curvature: chord.Curvature,
		})
	}

	return model.MembraneGraph{Nodes: nodes, Edges: edges}
}

// Perimeter is the cyclic arc length over consecutive node positions.
func Perimeter(graph model.MembraneGraph) float64 {
	n := len(graph.Nodes)
	if n < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < n; i++ {
		a := graph.Nodes[i]
		b := graph.Nodes[(i+1)%n]
		total += math.Hypot(b.X-a.X, b.Y-a.Y)
	}
	return total
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
