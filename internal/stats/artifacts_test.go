package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"cristae/internal/model"
)

func TestWriteRunArtifactsAndIndex(t *testing.T) {
	baseDir := t.TempDir()

	artifacts := RunArtifacts{
		Config: RunConfig{
			RunID:          "run-1",
			Seed:           7,
			PopulationSize: 16,
			Generations:    5,
			EliteCount:     2,
			ParentPool:     8,
			Workers:        4,
			MutationRate:   0.3,
			Selection:      "elite",
		},
		ClassicalBest:    []float64{0.5, 0.9, 1.4},
		QuantumBest:      []float64{0.3, 0.7, 1.1},
		FinalBestClassic: 1.4,
		FinalBestQuantum: 1.1,
		TopOrganisms: []model.TopOrganismRecord{
			{Rank: 1, Fitness: 1.4, Genome: model.Genome{ID: "org-1"}},
		},
	}

	runDir, err := WriteRunArtifacts(baseDir, artifacts)
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	for _, file := range []string{"config.json", "fitness_history.json", "top_organisms.json"} {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("missing artifact %s: %v", file, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(runDir, "config.json"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var config RunConfig
	if err := json.Unmarshal(data, &config); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if config.RunID != "run-1" || config.PopulationSize != 16 || config.Selection != "elite" {
		t.Fatalf("unexpected config: %+v", config)
	}

	if err := AppendRunIndex(baseDir, RunIndexEntry{
		RunID:          "run-1",
		Seed:           7,
		PopulationSize: 16,
		Generations:    5,
		BestClassical:  1.4,
		BestQuantum:    1.1,
		CreatedAtUTC:   "2026-01-02T00:00:00Z",
	}); err != nil {
		t.Fatalf("append index: %v", err)
	}

	entries, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(entries) != 1 || entries[0].RunID != "run-1" {
		t.Fatalf("unexpected index: %+v", entries)
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestListRunIndexOrdersNewestFirst(t *testing.T) {
	baseDir := t.TempDir()

	for _, entry := range []RunIndexEntry{
		{RunID: "run-old", CreatedAtUTC: "2026-01-01T00:00:00Z"},
		{RunID: "run-new", CreatedAtUTC: "2026-01-03T00:00:00Z"},
		{RunID: "run-mid", CreatedAtUTC: "2026-01-02T00:00:00Z"},
	} {
		if err := AppendRunIndex(baseDir, entry); err != nil {
			t.Fatalf("append %s: %v", entry.RunID, err)
		}
	}

	entries, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("unexpected entry count: %d", len(entries))
	}
	if entries[0].RunID != "run-new" || entries[1].RunID != "run-mid" || entries[2].RunID != "run-old" {
		t.Fatalf("unexpected order: %s, %s, %s", entries[0].RunID, entries[1].RunID, entries[2].RunID)
	}
}

func TestAppendRunIndexReplacesExistingEntry(t *testing.T) {
	baseDir := t.TempDir()

	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "run-1", Generations: 5, CreatedAtUTC: "2026-01-01T00:00:00Z"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "run-1", Generations: 9, CreatedAtUTC: "2026-01-02T00:00:00Z"}); err != nil {
		t.Fatalf("append again: %v", err)
	}

	entries, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(entries) != 1 || entries[0].Generations != 9 {
		t.Fatalf("expected replaced entry, got %+v", entries)
	}
}

func TestListRunIndexMissingFile(t *testing.T) {
	entries, err := ListRunIndex(t.TempDir())
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty index, got %+v", entries)
	}
}

func TestExportRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := t.TempDir()

	if _, err := WriteRunArtifacts(baseDir, RunArtifacts{
		Config:        RunConfig{RunID: "run-1"},
		ClassicalBest: []float64{0.5},
		QuantumBest:   []float64{0.4},
	}); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	exportedDir, err := ExportRunArtifacts(baseDir, "run-1", outDir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, file := range []string{"config.json", "fitness_history.json", "top_organisms.json"} {
		if _, err := os.Stat(filepath.Join(exportedDir, file)); err != nil {
			t.Fatalf("missing exported %s: %v", file, err)
		}
	}

	if _, err := ExportRunArtifacts(baseDir, "run-missing", outDir); err == nil {
		t.Fatal("expected error for unknown run id")
	}
}
