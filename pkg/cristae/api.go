// Package cristae is the public client surface of the membrane
// evolution engine. Renderers and control UIs consume ranked
// population snapshots, fitness history, and the pure graph build
// service; they never reach into the engine's internals.
package cristae

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"cristae/internal/evo"
	"cristae/internal/membrane"
	"cristae/internal/model"
	"cristae/internal/platform"
	"cristae/internal/stats"
	"cristae/internal/storage"
	"cristae/internal/transport"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultExportsDir   = "exports"
	defaultDBPath       = "cristae.db"
)

type Options struct {
	StoreKind      string
	DBPath         string
	ArtifactsDir   string
	ExportsDir     string
	RunID          string
	Seed           int64
	PopulationSize int
	MutationRate   float64
	Workers        int
	Selection      string
	TickInterval   time.Duration
}

// FitnessHistory carries both populations' best-fitness series.
type FitnessHistory struct {
	Classical []float64
	Quantum   []float64
}

type RunSummary struct {
	RunID         string
	ArtifactsDir  string
	Generations   int
	BestClassical float64
	BestQuantum   float64
}

type RunItem struct {
	RunID         string
	CreatedAtUTC  string
	Seed          int64
	Population    int
	Generations   int
	BestClassical float64
	BestQuantum   float64
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type Client struct {
	store      storage.Store
	controller *platform.Controller
	opts       Options

	artifactsDir string
	exportsDir   string
}

func New(opts Options) (*Client, error) {
	if opts.StoreKind == "" {
		opts.StoreKind = storage.DefaultStoreKind()
	}
	if opts.DBPath == "" {
		opts.DBPath = defaultDBPath
	}
	if opts.ArtifactsDir == "" {
		opts.ArtifactsDir = defaultArtifactsDir
	}
	if opts.ExportsDir == "" {
		opts.ExportsDir = defaultExportsDir
	}

	selector, err := evo.SelectorFromName(opts.Selection)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(opts.StoreKind, opts.DBPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(context.Background()); err != nil {
		return nil, err
	}

	controller := platform.NewController(platform.Config{
		RunID:          opts.RunID,
		Seed:           opts.Seed,
		PopulationSize: opts.PopulationSize,
		MutationRate:   opts.MutationRate,
		Workers:        opts.Workers,
		Selector:       selector,
		Store:          store,
	})

	return &Client{
		store:        store,
		controller:   controller,
		opts:         opts,
		artifactsDir: opts.ArtifactsDir,
		exportsDir:   opts.ExportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Start begins (or resumes) the evolution run.
func (c *Client) Start(ctx context.Context) error {
	return c.controller.Start(ctx)
}

func (c *Client) Pause() {
	c.controller.Pause()
}

func (c *Client) Resume() {
	c.controller.Resume()
}

func (c *Client) Reset() {
	c.controller.Reset()
}

// Step advances exactly one generation. Stepping while idle or paused
// is a no-op.
func (c *Client) Step(ctx context.Context) error {
	return c.controller.Step(ctx)
}

func (c *Client) State() platform.State {
	return c.controller.State()
}

func (c *Client) Generation() int {
	return c.controller.Generation()
}

// PopulationSnapshot returns the ranked organisms of one population.
// Mode is "classical" or "quantum".
func (c *Client) PopulationSnapshot(mode string) ([]model.EvaluatedOrganism, error) {
	m, err := modeFromName(mode)
	if err != nil {
		return nil, err
	}
	return c.controller.PopulationSnapshot(m), nil
}

// FitnessHistory returns bounded best-fitness series for both modes.
func (c *Client) FitnessHistory() FitnessHistory {
	classical, quantum := c.controller.FitnessHistory()
	return FitnessHistory{Classical: classical, Quantum: quantum}
}

// BuildGraph is the pure build service shared with renderers; it uses
// the exact construction the fitness path uses.
func (c *Client) BuildGraph(g model.Genome, scale float64) model.MembraneGraph {
	return membrane.Build(g, scale)
}

// Monitor drives the controller from a wall-clock ticker until the
// context is cancelled.
func (c *Client) Monitor(ctx context.Context) error {
	if err := c.controller.Start(ctx); err != nil {
		return err
	}
	runner := platform.Runner{Controller: c.controller, Interval: c.opts.TickInterval}
	err := runner.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Run advances a fixed number of generations synchronously, persists
// run artifacts, and appends the run index entry.
func (c *Client) Run(ctx context.Context, generations int) (RunSummary, error) {
	if generations <= 0 {
		generations = 100
	}

	if err := c.controller.Start(ctx); err != nil {
		return RunSummary{}, err
	}
	for i := 0; i < generations; i++ {
		if err := c.controller.Step(ctx); err != nil {
			return RunSummary{}, err
		}
	}

	history := c.FitnessHistory()
	bestClassical := lastOf(history.Classical)
	bestQuantum := lastOf(history.Quantum)

	top := c.topOrganisms(5)
	if err := c.store.SaveTopOrganisms(ctx, c.controller.RunID(), top); err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:          c.controller.RunID(),
			Seed:           c.opts.Seed,
			PopulationSize: c.opts.PopulationSize,
			Generations:    generations,
			EliteCount:     platform.DefaultEliteCount,
			ParentPool:     platform.DefaultParentPool,
			Workers:        c.opts.Workers,
			MutationRate:   c.opts.MutationRate,
			Selection:      c.opts.Selection,
		},
		ClassicalBest:    history.Classical,
		QuantumBest:      history.Quantum,
		FinalBestClassic: bestClassical,
		FinalBestQuantum: bestQuantum,
		TopOrganisms:     top,
	})
	if err != nil {
		return RunSummary{}, err
	}

	if err := stats.AppendRunIndex(c.artifactsDir, stats.RunIndexEntry{
		RunID:          c.controller.RunID(),
		Seed:           c.opts.Seed,
		PopulationSize: c.opts.PopulationSize,
		Generations:    generations,
		BestClassical:  bestClassical,
		BestQuantum:    bestQuantum,
		CreatedAtUTC:   time.Now().UTC().Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:         c.controller.RunID(),
		ArtifactsDir:  filepath.Clean(runDir),
		Generations:   c.controller.Generation(),
		BestClassical: bestClassical,
		BestQuantum:   bestQuantum,
	}, nil
}

// Runs lists recorded runs, newest first.
func (c *Client) Runs(limit int) ([]RunItem, error) {
	if limit <= 0 {
		limit = 20
	}

	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:         e.RunID,
			CreatedAtUTC:  e.CreatedAtUTC,
			Seed:          e.Seed,
			Population:    e.PopulationSize,
			Generations:   e.Generations,
			BestClassical: e.BestClassical,
			BestQuantum:   e.BestQuantum,
		})
	}
	return out, nil
}

// TopOrganisms returns a run's persisted final ranking.
func (c *Client) TopOrganisms(ctx context.Context, runID string) ([]model.TopOrganismRecord, error) {
	if runID == "" {
		runID = c.controller.RunID()
	}
	top, ok, err := c.store.GetTopOrganisms(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("top organisms not found for run id: %s", runID)
	}
	return top, nil
}

// Export copies a run's artifacts into the exports directory.
func (c *Client) Export(runID string, latest bool) (ExportSummary, error) {
	if runID != "" && latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if runID == "" && !latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}

	if latest {
		entries, err := stats.ListRunIndex(c.artifactsDir)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(entries) == 0 {
			return ExportSummary{}, errors.New("no runs available to export")
		}
		runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRunArtifacts(c.artifactsDir, runID, c.exportsDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) topOrganisms(limit int) []model.TopOrganismRecord {
	merged := make([]model.EvaluatedOrganism, 0, 2*limit)
	merged = append(merged, c.controller.PopulationSnapshot(transport.ModeClassical)...)
	merged = append(merged, c.controller.PopulationSnapshot(transport.ModeQuantum)...)
	evo.Rank(merged)
	if len(merged) > limit {
		merged = merged[:limit]
	}

	top := make([]model.TopOrganismRecord, 0, len(merged))
	for i, organism := range merged {
		top = append(top, model.TopOrganismRecord{
			Rank:    i + 1,
			Fitness: organism.Evaluation.Fitness,
			Genome:  organism.Genome,
			Metrics: organism.Evaluation,
		})
	}
	return top
}

func modeFromName(name string) (transport.Mode, error) {
	switch name {
	case "", "classical":
		return transport.ModeClassical, nil
	case "quantum":
		return transport.ModeQuantum, nil
	default:
		return "", fmt.Errorf("unsupported transport mode: %s", name)
	}
}

func lastOf(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
