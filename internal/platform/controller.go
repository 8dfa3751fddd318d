// Package platform owns the evolution state machine: two parallel
// populations (classical and quantum transport) that are evaluated,
// ranked, and reproduced one whole generation per step.
package platform

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"cristae/internal/evo"
	"cristae/internal/genome"
	"cristae/internal/model"
	"cristae/internal/storage"
	"cristae/internal/transport"
)

// State is the controller's lifecycle phase.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

const (
	DefaultPopulationSize = 16
	DefaultEliteCount     = 2
	DefaultParentPool     = 8
	DefaultHistoryLimit   = 50
	DefaultWorkers        = 4
)

type Config struct {
	RunID          string
	Seed           int64
	PopulationSize int
	EliteCount     int
	ParentPool     int
	HistoryLimit   int
	Workers        int
	MutationRate   float64
	Selector       evo.Selector

	// Store is optional; when set, ranked snapshots and fitness
	// history are persisted after every generation.
	Store storage.Store
}

// Controller advances the two populations in lockstep. One stepping
// operation runs at a time; ranked snapshots are replaced wholesale,
// never mutated, so readers always observe a complete generation.
type Controller struct {
	cfg Config

	mu         sync.RWMutex
	state      State
	generation int
	childSeq   int

	rng       *rand.Rand
	factory   *genome.Factory
	mutator   evo.Mutator
	crossover evo.Crossover

	// Populations are the heritable state; snapshots are the latest
	// ranked evaluations exposed to external readers.
	classicalPop []model.Genome
	quantumPop   []model.Genome
	classical    []model.EvaluatedOrganism
	quantum      []model.EvaluatedOrganism

	classicalHistory []float64
	quantumHistory   []float64
}

func NewController(cfg Config) *Controller {
	if cfg.RunID == "" {
		cfg.RunID = fmt.Sprintf("run-%d", cfg.Seed)
	}
	if cfg.PopulationSize <= 0 {
		cfg.PopulationSize = DefaultPopulationSize
	}
	if cfg.EliteCount <= 0 || cfg.EliteCount > cfg.PopulationSize {
		cfg.EliteCount = DefaultEliteCount
	}
	if cfg.ParentPool <= 0 {
		cfg.ParentPool = DefaultParentPool
	}
	if cfg.ParentPool > cfg.PopulationSize {
		cfg.ParentPool = cfg.PopulationSize
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.MutationRate <= 0 {
		cfg.MutationRate = evo.DefaultMutationRate
	}
	if cfg.Selector == nil {
		cfg.Selector = evo.EliteSelector{}
	}

	factory := genome.NewFactory(rand.New(rand.NewSource(cfg.Seed + 1000)))
	return &Controller{
		cfg:     cfg,
		state:   StateIdle,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		factory: factory,
		mutator: evo.Mutator{
			Rand:    rand.New(rand.NewSource(cfg.Seed + 1001)),
			Factory: factory,
			Rate:    cfg.MutationRate,
		},
		crossover: evo.Crossover{
			Rand:    rand.New(rand.NewSource(cfg.Seed + 1002)),
			Factory: factory,
		},
	}
}

func (c *Controller) RunID() string {
	return c.cfg.RunID
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) Generation() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Start moves Idle to Running, lazily seeding and evaluating both
// populations. Starting from Paused resumes; starting while Running is
// a no-op.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateRunning:
		return nil
	case StatePaused:
		c.state = StateRunning
		return nil
	}

	c.classicalPop = make([]model.Genome, c.cfg.PopulationSize)
	c.quantumPop = make([]model.Genome, c.cfg.PopulationSize)
	for i := 0; i < c.cfg.PopulationSize; i++ {
		seed := c.factory.NewGenome()
		c.classicalPop[i] = genome.Clone(seed, "c-"+seed.ID)
		c.quantumPop[i] = genome.Clone(seed, "q-"+seed.ID)
	}

	classical, quantum, err := c.evaluateBothLocked(ctx)
	if err != nil {
		c.classicalPop = nil
		c.quantumPop = nil
		return err
	}
	c.classical = classical
	c.quantum = quantum
	c.generation = 0
	c.classicalHistory = nil
	c.quantumHistory = nil
	c.state = StateRunning
	return c.persistLocked(ctx)
}

// Pause stops scheduling of further steps. No-op unless Running.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRunning {
		c.state = StatePaused
	}
}

// Resume restarts a paused run without re-initialization.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StatePaused {
		c.state = StateRunning
	}
}

// Reset discards all population state unconditionally.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateIdle
	c.generation = 0
	c.childSeq = 0
	c.classicalPop = nil
	c.quantumPop = nil
	c.classical = nil
	c.quantum = nil
	c.classicalHistory = nil
	c.quantumHistory = nil
}

// Step advances exactly one generation: evaluate every genome in both
// populations, rank, carry the elites unchanged, refill each
// population via mutate(crossover(p1, p2)) with parents drawn from the
// top pool, replace the populations wholesale, and append each best
// fitness to the bounded history. Stepping while not Running is a
// no-op.
func (c *Controller) Step(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning {
		return nil
	}

	classical, quantum, err := c.evaluateBothLocked(ctx)
	if err != nil {
		return err
	}
	c.classical = classical
	c.quantum = quantum

	nextClassical, err := c.reproduceLocked(classical, transport.ModeClassical)
	if err != nil {
		return err
	}
	nextQuantum, err := c.reproduceLocked(quantum, transport.ModeQuantum)
	if err != nil {
		return err
	}
	c.classicalPop = nextClassical
	c.quantumPop = nextQuantum

	c.generation++
	c.classicalHistory = appendBounded(c.classicalHistory, classical[0].Evaluation.Fitness, c.cfg.HistoryLimit)
	c.quantumHistory = appendBounded(c.quantumHistory, quantum[0].Evaluation.Fitness, c.cfg.HistoryLimit)

	return c.persistLocked(ctx)
}

func (c *Controller) evaluateBothLocked(ctx context.Context) (classical, quantum []model.EvaluatedOrganism, err error) {
	classical, err = evaluatePopulation(ctx, c.classicalPop, transport.Simulator{Mode: transport.ModeClassical}, c.cfg.Workers)
	if err != nil {
		return nil, nil, err
	}
	quantum, err = evaluatePopulation(ctx, c.quantumPop, transport.Simulator{Mode: transport.ModeQuantum}, c.cfg.Workers)
	if err != nil {
		return nil, nil, err
	}
	evo.Rank(classical)
	evo.Rank(quantum)
	return classical, quantum, nil
}

// reproduceLocked builds the next generation's genomes from a ranked
// population: elites survive unchanged, the rest are offspring.
func (c *Controller) reproduceLocked(ranked []model.EvaluatedOrganism, mode transport.Mode) ([]model.Genome, error) {
	next := make([]model.Genome, 0, c.cfg.PopulationSize)
	for i := 0; i < c.cfg.EliteCount && i < len(ranked); i++ {
		next = append(next, ranked[i].Genome)
	}
	for len(next) < c.cfg.PopulationSize {
		p1, err := c.cfg.Selector.PickParent(c.rng, ranked, c.cfg.ParentPool)
		if err != nil {
			return nil, err
		}
		p2, err := c.cfg.Selector.PickParent(c.rng, ranked, c.cfg.ParentPool)
		if err != nil {
			return nil, err
		}
		c.childSeq++
		childID := fmt.Sprintf("%s-g%d-i%d", mode, c.generation+1, c.childSeq)
		child := c.mutator.Apply(c.crossover.Apply(p1, p2, childID))
		next = append(next, child)
	}
	return next, nil
}

// PopulationSnapshot returns the latest ranked population for one
// transport mode as an independent copy.
func (c *Controller) PopulationSnapshot(mode transport.Mode) []model.EvaluatedOrganism {
	c.mu.RLock()
	defer c.mu.RUnlock()

	source := c.classical
	if mode == transport.ModeQuantum {
		source = c.quantum
	}
	return append([]model.EvaluatedOrganism(nil), source...)
}

// FitnessHistory returns bounded best-fitness series for both modes.
func (c *Controller) FitnessHistory() (classical, quantum []float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]float64(nil), c.classicalHistory...),
		append([]float64(nil), c.quantumHistory...)
}

func (c *Controller) persistLocked(ctx context.Context) error {
	if c.cfg.Store == nil {
		return nil
	}

	for _, entry := range []struct {
		mode      transport.Mode
		organisms []model.EvaluatedOrganism
	}{
		{transport.ModeClassical, c.classical},
		{transport.ModeQuantum, c.quantum},
	} {
		snapshot := model.PopulationSnapshot{
			VersionedRecord: storage.Stamp(),
			ID:              fmt.Sprintf("%s/%s", c.cfg.RunID, entry.mode),
			Mode:            string(entry.mode),
			Generation:      c.generation,
			Organisms:       append([]model.EvaluatedOrganism(nil), entry.organisms...),
		}
		if err := c.cfg.Store.SavePopulationSnapshot(ctx, snapshot); err != nil {
			return err
		}
	}
	if err := c.cfg.Store.SaveFitnessHistory(ctx, c.cfg.RunID, string(transport.ModeClassical), c.classicalHistory); err != nil {
		return err
	}
	if err := c.cfg.Store.SaveFitnessHistory(ctx, c.cfg.RunID, string(transport.ModeQuantum), c.quantumHistory); err != nil {
		return err
	}

	summary := model.RunSummary{
		VersionedRecord: storage.Stamp(),
		RunID:           c.cfg.RunID,
		Generations:     c.generation,
	}
	if len(c.classical) > 0 {
		summary.BestClassical = c.classical[0].Evaluation.Fitness
	}
	if len(c.quantum) > 0 {
		summary.BestQuantum = c.quantum[0].Evaluation.Fitness
	}
	if existing, ok, err := c.cfg.Store.GetRunSummary(ctx, c.cfg.RunID); err != nil {
		return err
	} else if ok {
		if existing.BestClassical > summary.BestClassical {
			summary.BestClassical = existing.BestClassical
		}
		if existing.BestQuantum > summary.BestQuantum {
			summary.BestQuantum = existing.BestQuantum
		}
	}
	return c.cfg.Store.SaveRunSummary(ctx, summary)
}

// evaluatePopulation scores genomes over a bounded worker pool.
func evaluatePopulation(ctx context.Context, genomes []model.Genome, sim transport.Simulator, workers int) ([]model.EvaluatedOrganism, error) {
	type job struct {
		idx    int
		genome model.Genome
	}
	type result struct {
		idx     int
		scored  model.EvaluatedOrganism
		skipped error
	}

	if workers > len(genomes) {
		workers = len(genomes)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan job)
	results := make(chan result, len(genomes))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, skipped: err}
					continue
				}
				results <- result{idx: j.idx, scored: model.EvaluatedOrganism{
					Genome:     j.genome,
					Evaluation: sim.Evaluate(j.genome),
				}}
			}
		}()
	}

	for i := range genomes {
		jobs <- job{idx: i, genome: genomes[i]}
	}
	close(jobs)

	wg.Wait()
	close(results)

	scored := make([]model.EvaluatedOrganism, len(genomes))
	for res := range results {
		if res.skipped != nil {
			return nil, res.skipped
		}
		scored[res.idx] = res.scored
	}
	return scored, nil
}

func appendBounded(history []float64, value float64, limit int) []float64 {
	history = append(history, value)
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}
