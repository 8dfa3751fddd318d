package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cristae/internal/platform"
	"cristae/internal/stats"
	"cristae/internal/storage"
	cristaeapi "cristae/pkg/cristae"
)

const (
	artifactsDir = "artifacts"
	exportsDir   = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "monitor":
		return runMonitor(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "top":
		return runTop(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: cristaectl <init|reset|run|monitor|fitness|top|runs|export> [flags]", msg)
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "cristae.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	if err := store.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "cristae.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	resetter, ok := store.(storage.Resetter)
	if !ok {
		return fmt.Errorf("store backend %s does not support reset", *storeKind)
	}
	if err := resetter.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	runID := fs.String("run-id", "", "explicit run id (optional)")
	population := fs.Int("pop", platform.DefaultPopulationSize, "population size per transport mode")
	generations := fs.Int("gens", 100, "generation count")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", platform.DefaultWorkers, "evaluation worker count")
	mutationRate := fs.Float64("mutation-rate", 0, "per-gene mutation probability (0 uses default)")
	selectionName := fs.String("selection", "elite", "parent selection strategy: elite|tournament")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "cristae.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *generations <= 0 {
		return errors.New("gens must be > 0")
	}

	client, err := cristaeapi.New(cristaeapi.Options{
		StoreKind:      *storeKind,
		DBPath:         *dbPath,
		ArtifactsDir:   artifactsDir,
		ExportsDir:     exportsDir,
		RunID:          *runID,
		Seed:           *seed,
		PopulationSize: *population,
		MutationRate:   *mutationRate,
		Workers:        *workers,
		Selection:      *selectionName,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, *generations)
	if err != nil {
		return err
	}

	fmt.Printf("run completed run_id=%s pop=%d gens=%d seed=%d\n", summary.RunID, *population, summary.Generations, *seed)
	history := client.FitnessHistory()
	for i := range history.Classical {
		quantum := 0.0
		if i < len(history.Quantum) {
			quantum = history.Quantum[i]
		}
		fmt.Printf("generation=%d best_classical=%.6f best_quantum=%.6f\n", i+1, history.Classical[i], quantum)
	}
	fmt.Printf("final_best_classical=%.6f final_best_quantum=%.6f\n", summary.BestClassical, summary.BestQuantum)
	fmt.Printf("artifacts_dir=%s\n", summary.ArtifactsDir)
	return nil
}

func runMonitor(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("monitor", flag.ContinueOnError)
	runID := fs.String("run-id", "", "explicit run id (optional)")
	population := fs.Int("pop", platform.DefaultPopulationSize, "population size per transport mode")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", platform.DefaultWorkers, "evaluation worker count")
	mutationRate := fs.Float64("mutation-rate", 0, "per-gene mutation probability (0 uses default)")
	selectionName := fs.String("selection", "elite", "parent selection strategy: elite|tournament")
	intervalMS := fs.Int("interval-ms", int(platform.DefaultTickInterval/time.Millisecond), "generation tick interval in milliseconds")
	duration := fs.Duration("duration", 0, "stop monitoring after this long (0 runs until interrupted)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "cristae.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *intervalMS <= 0 {
		return errors.New("interval-ms must be > 0")
	}

	client, err := cristaeapi.New(cristaeapi.Options{
		StoreKind:      *storeKind,
		DBPath:         *dbPath,
		ArtifactsDir:   artifactsDir,
		ExportsDir:     exportsDir,
		RunID:          *runID,
		Seed:           *seed,
		PopulationSize: *population,
		MutationRate:   *mutationRate,
		Workers:        *workers,
		Selection:      *selectionName,
		TickInterval:   time.Duration(*intervalMS) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	monitorCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		monitorCtx, cancel = context.WithTimeout(monitorCtx, *duration)
		defer cancel()
	}

	fmt.Printf("monitoring pop=%d seed=%d interval_ms=%d (interrupt to stop)\n", *population, *seed, *intervalMS)
	if err := client.Monitor(monitorCtx); err != nil {
		return err
	}

	history := client.FitnessHistory()
	fmt.Printf("stopped generation=%d best_classical=%.6f best_quantum=%.6f\n",
		client.Generation(),
		lastOf(history.Classical),
		lastOf(history.Quantum),
	)
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run from run index")
	mode := fs.String("mode", "classical", "transport mode: classical|quantum")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "cristae.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *mode != "classical" && *mode != "quantum" {
		return fmt.Errorf("unsupported transport mode: %s", *mode)
	}
	resolvedRunID, err := resolveRunID(*runID, *latest)
	if err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	history, ok, err := store.GetFitnessHistory(ctx, resolvedRunID, *mode)
	if err != nil {
		return err
	}
	if !ok || len(history) == 0 {
		fmt.Println("no fitness history")
		return nil
	}
	if *limit > 0 && len(history) > *limit {
		history = history[len(history)-*limit:]
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	for i, best := range history {
		fmt.Printf("generation=%d mode=%s best_fitness=%.6f\n", i+1, *mode, best)
	}
	return nil
}

func runTop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show top organisms for the most recent run from run index")
	limit := fs.Int("limit", 5, "max top organisms to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit top organisms as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "cristae.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resolvedRunID, err := resolveRunID(*runID, *latest)
	if err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	top, ok, err := store.GetTopOrganisms(ctx, resolvedRunID)
	if err != nil {
		return err
	}
	if !ok || len(top) == 0 {
		fmt.Println("no top organisms")
		return nil
	}
	if *limit > 0 && len(top) > *limit {
		top = top[:*limit]
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(top)
	}

	for _, item := range top {
		fmt.Printf("rank=%d fitness=%.6f genome_id=%s nodes=%d chords=%d delivered=%.6f coherence=%.6f\n",
			item.Rank,
			item.Fitness,
			item.Genome.ID,
			item.Metrics.NodeCount,
			item.Metrics.ChordCount,
			item.Metrics.Delivered,
			item.Metrics.Coherence,
		)
	}
	return nil
}

func runRuns(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	entries, err := stats.ListRunIndex(artifactsDir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if len(entries) > *limit {
		entries = entries[:*limit]
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		fmt.Printf("run_id=%s created_at=%s seed=%d pop=%d gens=%d best_classical=%.6f best_quantum=%.6f\n",
			e.RunID,
			e.CreatedAtUTC,
			e.Seed,
			e.PopulationSize,
			e.Generations,
			e.BestClassical,
			e.BestQuantum,
		)
	}
	return nil
}

func runExport(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	outDir := fs.String("out", exportsDir, "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resolvedRunID, err := resolveRunID(*runID, *latest)
	if err != nil {
		return err
	}

	exportedDir, err := stats.ExportRunArtifacts(artifactsDir, resolvedRunID, *outDir)
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s dir=%s\n", resolvedRunID, exportedDir)
	return nil
}

// resolveRunID maps the shared --run-id/--latest flag pair onto a
// concrete run id using the run index.
func resolveRunID(runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either --run-id or --latest, not both")
	}
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", errors.New("command requires --run-id or --latest")
	}

	entries, err := stats.ListRunIndex(artifactsDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs found in run index")
	}
	return entries[0].RunID, nil
}

func lastOf(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
