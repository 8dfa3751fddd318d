package evo

import (
	"fmt"
	"math/rand"
	"sort"

	"cristae/internal/model"
)

// Rank orders organisms descending by fitness in place.
func Rank(organisms []model.EvaluatedOrganism) {
	sort.SliceStable(organisms, func(i, j int) bool {
		return organisms[i].Evaluation.Fitness > organisms[j].Evaluation.Fitness
	})
}

// Selector chooses parents from ranked organisms for replication.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, ranked []model.EvaluatedOrganism, poolSize int) (model.Genome, error)
}

// EliteSelector picks uniformly from the top pool.
type EliteSelector struct{}

func (EliteSelector) Name() string {
	return "elite"
}

func (EliteSelector) PickParent(rng *rand.Rand, ranked []model.EvaluatedOrganism, poolSize int) (model.Genome, error) {
	if rng == nil {
		return model.Genome{}, fmt.Errorf("random source is required")
	}
	if poolSize <= 0 {
		return model.Genome{}, fmt.Errorf("invalid parent pool size: %d", poolSize)
	}
	if poolSize > len(ranked) {
		poolSize = len(ranked)
	}
	if poolSize == 0 {
		return model.Genome{}, fmt.Errorf("no ranked organisms to select from")
	}
	return ranked[rng.Intn(poolSize)].Genome, nil
}

// TournamentSelector samples candidates from the pool and keeps the
// best fitness among them.
type TournamentSelector struct {
	TournamentSize int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, ranked []model.EvaluatedOrganism, poolSize int) (model.Genome, error) {
	if rng == nil {
		return model.Genome{}, fmt.Errorf("random source is required")
	}
	if poolSize <= 0 {
		return model.Genome{}, fmt.Errorf("invalid parent pool size: %d", poolSize)
	}
	if poolSize > len(ranked) {
		poolSize = len(ranked)
	}
	if poolSize == 0 {
		return model.Genome{}, fmt.Errorf("no ranked organisms to select from")
	}

	tournamentSize := s.TournamentSize
	if tournamentSize <= 0 {
		tournamentSize = 3
	}
	if tournamentSize > poolSize {
		tournamentSize = poolSize
	}

	best := ranked[rng.Intn(poolSize)]
	for i := 1; i < tournamentSize; i++ {
		candidate := ranked[rng.Intn(poolSize)]
		if candidate.Evaluation.Fitness > best.Evaluation.Fitness {
			best = candidate
		}
	}
	return best.Genome, nil
}

// SelectorFromName resolves a selection strategy by its CLI name.
func SelectorFromName(name string) (Selector, error) {
	switch name {
	case "", "elite":
		return EliteSelector{}, nil
	case "tournament":
		return TournamentSelector{TournamentSize: 3}, nil
	default:
		return nil, fmt.Errorf("unsupported selection strategy: %s", name)
	}
}
