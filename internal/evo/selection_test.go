package evo

import (
	"math/rand"
	"testing"

	"cristae/internal/model"
)

func rankedPopulation(fitness ...float64) []model.EvaluatedOrganism {
	organisms := make([]model.EvaluatedOrganism, 0, len(fitness))
	for i, f := range fitness {
		organisms = append(organisms, model.EvaluatedOrganism{
			Genome:     model.Genome{ID: "org-" + string(rune('a'+i))},
			Evaluation: model.Evaluation{Fitness: f},
		})
	}
	return organisms
}

func TestRankOrdersDescending(t *testing.T) {
	organisms := rankedPopulation(0.2, 0.9, 0.5, 0.9, 0.1)
	Rank(organisms)

	for i := 1; i < len(organisms); i++ {
		if organisms[i].Evaluation.Fitness > organisms[i-1].Evaluation.Fitness {
			t.Fatalf("rank order broken at %d: %f > %f", i, organisms[i].Evaluation.Fitness, organisms[i-1].Evaluation.Fitness)
		}
	}
	// Stable sort keeps the earlier of equal-fitness organisms first.
	if organisms[0].Genome.ID != "org-b" {
		t.Fatalf("unexpected first organism: %s", organisms[0].Genome.ID)
	}
}

func TestEliteSelectorPicksWithinPool(t *testing.T) {
	organisms := rankedPopulation(0.9, 0.8, 0.7, 0.6, 0.5)
	rng := rand.New(rand.NewSource(1))

	selector := EliteSelector{}
	for i := 0; i < 200; i++ {
		parent, err := selector.PickParent(rng, organisms, 3)
		if err != nil {
			t.Fatalf("pick parent: %v", err)
		}
		if parent.ID != "org-a" && parent.ID != "org-b" && parent.ID != "org-c" {
			t.Fatalf("pick %d left the pool: %s", i, parent.ID)
		}
	}
}

func TestEliteSelectorClampsPoolToPopulation(t *testing.T) {
	organisms := rankedPopulation(0.9, 0.8)
	rng := rand.New(rand.NewSource(2))

	if _, err := (EliteSelector{}).PickParent(rng, organisms, 10); err != nil {
		t.Fatalf("oversized pool should clamp, got error: %v", err)
	}
}

func TestEliteSelectorErrors(t *testing.T) {
	organisms := rankedPopulation(0.9)
	rng := rand.New(rand.NewSource(3))

	if _, err := (EliteSelector{}).PickParent(nil, organisms, 1); err == nil {
		t.Fatal("expected error for nil random source")
	}
	if _, err := (EliteSelector{}).PickParent(rng, organisms, 0); err == nil {
		t.Fatal("expected error for zero pool size")
	}
	if _, err := (EliteSelector{}).PickParent(rng, nil, 4); err == nil {
		t.Fatal("expected error for empty population")
	}
}

func TestTournamentSelectorFavorsFitness(t *testing.T) {
	organisms := rankedPopulation(1.0, 0.8, 0.6, 0.4, 0.2, 0.1)
	rng := rand.New(rand.NewSource(4))

	selector := TournamentSelector{TournamentSize: 3}
	wins := make(map[string]int)
	for i := 0; i < 2000; i++ {
		parent, err := selector.PickParent(rng, organisms, len(organisms))
		if err != nil {
			t.Fatalf("pick parent: %v", err)
		}
		wins[parent.ID]++
	}

	if wins["org-a"] <= wins["org-f"] {
		t.Fatalf("tournament did not favor fitness: best=%d worst=%d", wins["org-a"], wins["org-f"])
	}
}

func TestSelectorFromName(t *testing.T) {
	cases := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "", want: "elite"},
		{name: "elite", want: "elite"},
		{name: "tournament", want: "tournament"},
		{name: "roulette", wantErr: true},
	}
	for _, tc := range cases {
		selector, err := SelectorFromName(tc.name)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tc.name, err)
		}
		if selector.Name() != tc.want {
			t.Fatalf("%q: got selector %s want %s", tc.name, selector.Name(), tc.want)
		}
	}
}
