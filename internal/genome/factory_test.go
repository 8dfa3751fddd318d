package genome

import (
	"math/rand"
	"testing"

	"cristae/internal/model"
)

func TestRingDistance(t *testing.T) {
	cases := []struct {
		a, b, n, want int
	}{
		{0, 1, 16, 1},
		{0, 15, 16, 1},
		{0, 8, 16, 8},
		{2, 13, 16, 5},
		{5, 5, 16, 0},
		{0, 2, 14, 2},
	}
	for _, tc := range cases {
		if got := RingDistance(tc.a, tc.b, tc.n); got != tc.want {
			t.Fatalf("ring distance %d-%d over %d: got %d want %d", tc.a, tc.b, tc.n, got, tc.want)
		}
	}
}

func TestExtraEdgeBounds(t *testing.T) {
	cases := []struct {
		nodeCount, minExtra, maxExtra int
	}{
		{14, 2, 8},
		{16, 2, 9},
		{20, 3, 12},
		{28, 4, 16},
	}
	for _, tc := range cases {
		if got := MinExtraEdges(tc.nodeCount); got != tc.minExtra {
			t.Fatalf("min extra for %d nodes: got %d want %d", tc.nodeCount, got, tc.minExtra)
		}
		if got := MaxExtraEdges(tc.nodeCount); got != tc.maxExtra {
			t.Fatalf("max extra for %d nodes: got %d want %d", tc.nodeCount, got, tc.maxExtra)
		}
	}
}

func TestNewGenomeSatisfiesInvariants(t *testing.T) {
	factory := NewFactory(rand.New(rand.NewSource(42)))
	for i := 0; i < 200; i++ {
		g := factory.NewGenome()
		if err := Validate(g); err != nil {
			t.Fatalf("genome %d invalid: %v", i, err)
		}
		if g.NodeCount < seedMinNodeCount || g.NodeCount > seedMaxNodeCount {
			t.Fatalf("genome %d node count outside seed band: %d", i, g.NodeCount)
		}
	}
}

func TestNewGenomeIDsAreUnique(t *testing.T) {
	factory := NewFactory(rand.New(rand.NewSource(1)))
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		g := factory.NewGenome()
		if _, dup := seen[g.ID]; dup {
			t.Fatalf("duplicate genome id: %s", g.ID)
		}
		seen[g.ID] = struct{}{}
	}
}

func TestNewEdgeRespectsRingDistance(t *testing.T) {
	factory := NewFactory(rand.New(rand.NewSource(7)))
	for i := 0; i < 500; i++ {
		e := factory.NewEdge(14)
		if RingDistance(e.From, e.To, 14) <= 1 {
			t.Fatalf("edge %d violates ring distance: %d-%d", i, e.From, e.To)
		}
		if !RangeEdgeWeightVal.Contains(e.Weight) {
			t.Fatalf("edge %d weight out of range: %f", i, e.Weight)
		}
		if !RangeCurvature.Contains(e.Curvature) {
			t.Fatalf("edge %d curvature out of range: %f", i, e.Curvature)
		}
	}
}

func TestNormalizeEdgesDropsInvalidAndDuplicates(t *testing.T) {
	factory := NewFactory(rand.New(rand.NewSource(3)))
	nodeCount := 20

	// Mixes valid chords with a reversed duplicate, adjacent pairs, a
	// self loop, a wrap-around neighbor, and out-of-range endpoints.
	edges := []model.EdgeGene{
		{From: 0, To: 5, Weight: 0.5},
		{From: 5, To: 0, Weight: 0.7},
		{From: 0, To: 1, Weight: 0.5},
		{From: 3, To: 3, Weight: 0.5},
		{From: 0, To: 19, Weight: 0.5},
		{From: -1, To: 5, Weight: 0.5},
		{From: 2, To: 40, Weight: 0.5},
		{From: 2, To: 9, Weight: 0.6},
		{From: 4, To: 12, Weight: 0.4},
	}
	out := factory.NormalizeEdges(edges, nodeCount)

	seen := make(map[edgeKey]struct{})
	for _, e := range out {
		if RingDistance(e.From, e.To, nodeCount) <= 1 {
			t.Fatalf("normalized edge violates ring distance: %d-%d", e.From, e.To)
		}
		key := keyFor(e)
		if _, dup := seen[key]; dup {
			t.Fatalf("normalized edges contain duplicate %d-%d", e.From, e.To)
		}
		seen[key] = struct{}{}
	}
	if len(out) < MinExtraEdges(nodeCount) || len(out) > MaxExtraEdges(nodeCount) {
		t.Fatalf("normalized edge count %d outside [%d,%d]", len(out), MinExtraEdges(nodeCount), MaxExtraEdges(nodeCount))
	}
}

func TestNormalizeEdgesTopsUpBelowMinimum(t *testing.T) {
	factory := NewFactory(rand.New(rand.NewSource(9)))
	out := factory.NormalizeEdges(nil, 20)
	if len(out) < MinExtraEdges(20) {
		t.Fatalf("expected top-up to %d edges, got %d", MinExtraEdges(20), len(out))
	}
}

func TestNormalizeEdgesTrimsAboveMaximum(t *testing.T) {
	factory := NewFactory(rand.New(rand.NewSource(11)))
	nodeCount := 14

	var edges []model.EdgeGene
	for from := 0; from < nodeCount; from++ {
		for to := from + 2; to < nodeCount; to++ {
			if RingDistance(from, to, nodeCount) <= 1 {
				continue
			}
			edges = append(edges, model.EdgeGene{From: from, To: to, Weight: 0.5})
		}
	}
	out := factory.NormalizeEdges(edges, nodeCount)
	if len(out) != MaxExtraEdges(nodeCount) {
		t.Fatalf("expected trim to %d edges, got %d", MaxExtraEdges(nodeCount), len(out))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	factory := NewFactory(rand.New(rand.NewSource(5)))
	original := factory.NewGenome()

	cloned := Clone(original, "copy-1")
	if cloned.ID != "copy-1" {
		t.Fatalf("unexpected clone id: %s", cloned.ID)
	}

	cloned.Nodes[0].SBias = -99
	cloned.Edges[0].Weight = -99
	if original.Nodes[0].SBias == -99 {
		t.Fatal("clone shares node storage with original")
	}
	if original.Edges[0].Weight == -99 {
		t.Fatal("clone shares edge storage with original")
	}
}
