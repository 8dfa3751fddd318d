package evo

import (
	"math/rand"
	"testing"

	"cristae/internal/genome"
)

func newMutator(seed int64, rate float64) Mutator {
	return Mutator{
		Rand:    rand.New(rand.NewSource(seed)),
		Factory: genome.NewFactory(rand.New(rand.NewSource(seed + 1))),
		Rate:    rate,
	}
}

func TestMutatorPreservesInvariants(t *testing.T) {
	factory := genome.NewFactory(rand.New(rand.NewSource(3)))
	mutator := newMutator(4, DefaultMutationRate)

	g := factory.NewGenome()
	for i := 0; i < 500; i++ {
		g = mutator.Apply(g)
		if err := genome.Validate(g); err != nil {
			t.Fatalf("mutation %d broke invariants: %v", i, err)
		}
	}
}

func TestMutatorDoesNotTouchInput(t *testing.T) {
	factory := genome.NewFactory(rand.New(rand.NewSource(5)))
	mutator := newMutator(6, 1.0)

	g := factory.NewGenome()
	before := genome.Clone(g, g.ID)
	_ = mutator.Apply(g)

	if g.NodeCount != before.NodeCount || len(g.Nodes) != len(before.Nodes) || len(g.Edges) != len(before.Edges) {
		t.Fatal("mutator modified its input genome")
	}
	for i := range g.Nodes {
		if g.Nodes[i] != before.Nodes[i] {
			t.Fatalf("mutator modified input node %d", i)
		}
	}
	for i := range g.Edges {
		if g.Edges[i] != before.Edges[i] {
			t.Fatalf("mutator modified input edge %d", i)
		}
	}
}

func TestMutatorZeroRateLeavesScalarsUntouched(t *testing.T) {
	factory := genome.NewFactory(rand.New(rand.NewSource(7)))
	mutator := newMutator(8, 0)

	g := factory.NewGenome()
	for i := 0; i < 50; i++ {
		out := mutator.Apply(g)

		// Structural mutations may still fire at rate zero; scalar
		// fields must come through bit-identical.
		if out.RadiusX != g.RadiusX || out.RadiusY != g.RadiusY ||
			out.PocketAmp != g.PocketAmp || out.PocketFreq != g.PocketFreq ||
			out.PocketPhase != g.PocketPhase ||
			out.AngleJitter != g.AngleJitter || out.AngleJitterFreq != g.AngleJitterFreq ||
			out.AngleJitterPh != g.AngleJitterPh ||
			out.Thickness != g.Thickness || out.Porosity != g.Porosity ||
			out.ResonanceThresh != g.ResonanceThresh || out.CouplingStr != g.CouplingStr ||
			out.AlignmentBias != g.AlignmentBias || out.AlignmentVar != g.AlignmentVar ||
			out.EdgeWeight != g.EdgeWeight {
			t.Fatalf("pass %d perturbed a scalar at rate zero", i)
		}
		if out.Folds != g.Folds {
			t.Fatalf("pass %d perturbed folds at rate zero", i)
		}
	}
}

func TestMutatorFullRatePerturbsScalars(t *testing.T) {
	factory := genome.NewFactory(rand.New(rand.NewSource(9)))
	mutator := newMutator(10, 1.0)

	g := factory.NewGenome()
	out := mutator.Apply(g)

	changed := 0
	pairs := [][2]float64{
		{out.RadiusX, g.RadiusX},
		{out.RadiusY, g.RadiusY},
		{out.Porosity, g.Porosity},
		{out.ResonanceThresh, g.ResonanceThresh},
		{out.CouplingStr, g.CouplingStr},
		{out.AlignmentBias, g.AlignmentBias},
	}
	for _, p := range pairs {
		if p[0] != p[1] {
			changed++
		}
	}
	if changed == 0 {
		t.Fatal("full-rate mutation left every sampled scalar identical")
	}
}

func TestMutatorNodeCountStaysBounded(t *testing.T) {
	factory := genome.NewFactory(rand.New(rand.NewSource(11)))
	mutator := newMutator(12, DefaultMutationRate)

	g := factory.NewGenome()
	for i := 0; i < 1000; i++ {
		g = mutator.Apply(g)
		if g.NodeCount < genome.MinNodeCount || g.NodeCount > genome.MaxNodeCount {
			t.Fatalf("mutation %d drove node count out of bounds: %d", i, g.NodeCount)
		}
		if len(g.Nodes) != g.NodeCount {
			t.Fatalf("mutation %d desynced node list: len=%d count=%d", i, len(g.Nodes), g.NodeCount)
		}
	}
}

func TestMutatorKeepsID(t *testing.T) {
	mutator := newMutator(13, DefaultMutationRate)
	g := genome.NewFactory(rand.New(rand.NewSource(14))).NewGenome()
	out := mutator.Apply(g)
	if out.ID != g.ID {
		t.Fatalf("mutation changed genome id: %s -> %s", g.ID, out.ID)
	}
}
