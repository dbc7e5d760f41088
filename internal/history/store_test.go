package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"mangareel/internal/history"
	"mangareel/internal/testsupport"
)

func TestBeginAndFinishRecordRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	id, err := store.Begin(ctx, "run-1", "generate")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	records, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 1 || records[0].Status != history.StatusRunning || records[0].FinishedAt != nil {
		t.Fatalf("expected one running record, got %+v", records)
	}

	if err := store.Finish(ctx, id, history.StatusSucceeded, cfg.Paths.FinalVideo, ""); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	records, err = store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	rec := records[0]
	if rec.RunID != "run-1" || rec.Stage != "generate" || rec.Status != history.StatusSucceeded {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.OutputPath != cfg.Paths.FinalVideo || rec.Error != "" {
		t.Fatalf("unexpected output/error %+v", rec)
	}
	if rec.FinishedAt == nil || rec.Duration() < 0 {
		t.Fatalf("expected finished timestamp, got %+v", rec)
	}
}

func TestRecentOrdersNewestFirstAndLimits(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	for _, stage := range []string{"preprocess", "generate", "validate"} {
		if _, err := store.Begin(ctx, "run-2", stage); err != nil {
			t.Fatalf("Begin %s failed: %v", stage, err)
		}
	}
	records, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 || records[0].Stage != "validate" || records[1].Stage != "generate" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestFinishUnknownRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	if err := store.Finish(context.Background(), 42, "failed", "", "boom"); err == nil {
		t.Fatal("expected error for unknown record")
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := store.Begin(context.Background(), "run-3", "validate"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenHistory(t, cfg)
	records, err := reopened.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected persisted record, got %+v", records)
	}
	if reopened.Path() != filepath.Join(cfg.Paths.StateDir, history.DatabaseName) {
		t.Fatalf("unexpected database path %q", reopened.Path())
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	path := store.Path()
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	_, err = history.Open(cfg)
	if !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
