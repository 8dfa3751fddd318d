package evo

import (
	"math/rand"
	"testing"

	"cristae/internal/genome"
)

func newCrossover(seed int64) Crossover {
	return Crossover{
		Rand:    rand.New(rand.NewSource(seed)),
		Factory: genome.NewFactory(rand.New(rand.NewSource(seed + 1))),
	}
}

func TestCrossoverPreservesInvariants(t *testing.T) {
	factory := genome.NewFactory(rand.New(rand.NewSource(17)))
	crossover := newCrossover(18)

	for i := 0; i < 200; i++ {
		p1 := factory.NewGenome()
		p2 := factory.NewGenome()
		child := crossover.Apply(p1, p2, "child-1")
		if err := genome.Validate(child); err != nil {
			t.Fatalf("crossover %d broke invariants: %v", i, err)
		}
	}
}

func TestCrossoverAssignsChildID(t *testing.T) {
	factory := genome.NewFactory(rand.New(rand.NewSource(19)))
	crossover := newCrossover(20)

	p1 := factory.NewGenome()
	p2 := factory.NewGenome()
	child := crossover.Apply(p1, p2, "child-42")
	if child.ID != "child-42" {
		t.Fatalf("unexpected child id: %s", child.ID)
	}
}

func TestCrossoverNodeCountComesFromAParent(t *testing.T) {
	factory := genome.NewFactory(rand.New(rand.NewSource(21)))
	crossover := newCrossover(22)

	for i := 0; i < 100; i++ {
		p1 := factory.NewGenome()
		p2 := factory.NewGenome()
		child := crossover.Apply(p1, p2, "child-n")
		if child.NodeCount != p1.NodeCount && child.NodeCount != p2.NodeCount {
			t.Fatalf("crossover %d invented node count %d (parents %d, %d)", i, child.NodeCount, p1.NodeCount, p2.NodeCount)
		}
		if len(child.Nodes) != child.NodeCount {
			t.Fatalf("crossover %d desynced node list: len=%d count=%d", i, len(child.Nodes), child.NodeCount)
		}
	}
}

func TestCrossoverScalarsComeFromAParent(t *testing.T) {
	factory := genome.NewFactory(rand.New(rand.NewSource(23)))
	crossover := newCrossover(24)

	for i := 0; i < 100; i++ {
		p1 := factory.NewGenome()
		p2 := factory.NewGenome()
		child := crossover.Apply(p1, p2, "child-s")

		pairs := []struct {
			name        string
			got, v1, v2 float64
		}{
			{"radius_x", child.RadiusX, p1.RadiusX, p2.RadiusX},
			{"porosity", child.Porosity, p1.Porosity, p2.Porosity},
			{"resonance_threshold", child.ResonanceThresh, p1.ResonanceThresh, p2.ResonanceThresh},
			{"coupling_strength", child.CouplingStr, p1.CouplingStr, p2.CouplingStr},
			{"edge_weight", child.EdgeWeight, p1.EdgeWeight, p2.EdgeWeight},
		}
		for _, p := range pairs {
			if p.got != p.v1 && p.got != p.v2 {
				t.Fatalf("crossover %d invented %s value %f", i, p.name, p.got)
			}
		}
		for j := range child.Folds {
			if child.Folds[j] != p1.Folds[j] && child.Folds[j] != p2.Folds[j] {
				t.Fatalf("crossover %d invented fold %d", i, j)
			}
		}
	}
}

func TestCrossoverIsIndependentOfParents(t *testing.T) {
	factory := genome.NewFactory(rand.New(rand.NewSource(25)))
	crossover := newCrossover(26)

	p1 := factory.NewGenome()
	p2 := factory.NewGenome()
	child := crossover.Apply(p1, p2, "child-i")

	for i := range child.Nodes {
		child.Nodes[i].SBias = -1
	}
	for i := range p1.Nodes {
		if p1.Nodes[i].SBias == -1 {
			t.Fatal("child shares node storage with first parent")
		}
	}
	for i := range p2.Nodes {
		if p2.Nodes[i].SBias == -1 {
			t.Fatal("child shares node storage with second parent")
		}
	}
}
