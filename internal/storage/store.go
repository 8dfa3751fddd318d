package storage

import (
	"context"

	"cristae/internal/model"
)

// Store defines persistence for evolution runs: genomes, ranked
// population snapshots per transport mode, fitness history series,
// final top organisms, and per-run summaries.
type Store interface {
	Init(ctx context.Context) error
	SaveGenome(ctx context.Context, genome model.Genome) error
	GetGenome(ctx context.Context, id string) (model.Genome, bool, error)
	SavePopulationSnapshot(ctx context.Context, snapshot model.PopulationSnapshot) error
	GetPopulationSnapshot(ctx context.Context, id string) (model.PopulationSnapshot, bool, error)
	SaveFitnessHistory(ctx context.Context, runID, mode string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID, mode string) ([]float64, bool, error)
	SaveTopOrganisms(ctx context.Context, runID string, top []model.TopOrganismRecord) error
	GetTopOrganisms(ctx context.Context, runID string) ([]model.TopOrganismRecord, bool, error)
	SaveRunSummary(ctx context.Context, summary model.RunSummary) error
	GetRunSummary(ctx context.Context, runID string) (model.RunSummary, bool, error)
}

// Resetter is implemented by stores that can discard all state.
type Resetter interface {
	Reset(ctx context.Context) error
}
