package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"traindash/internal/core"
	"traindash/internal/store"
)

func TestSaveThenLoad(t *testing.T) {
	s := New()
	ctx := context.Background()

	l, ver, err := s.Load(ctx)
	if err != nil || len(l) != 0 || ver != "" {
		t.Fatalf("fresh store: ledger=%v ver=%q err=%v", l, ver, err)
	}

	rows := core.Ledger{{Month: "2025-03", TotalTrainings: 8}}
	ver, err = s.Save(ctx, rows, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, gotVer, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if gotVer != ver {
		t.Fatalf("version mismatch: load=%q save=%q", gotVer, ver)
	}
	if len(got) != 1 || got[0].Month != "2025-03" {
		t.Fatalf("unexpected ledger: %+v", got)
	}
}

func TestSaveRejectsStaleVersion(t *testing.T) {
	s := New()
	ctx := context.Background()

	ver, err := s.Save(ctx, core.Ledger{{Month: "2025-03", TotalTrainings: 8}}, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Another writer lands first.
	if _, err := s.Save(ctx, core.Ledger{{Month: "2025-04", TotalTrainings: 1}}, ver); err != nil {
		t.Fatalf("concurrent writer save: %v", err)
	}

	_, err = s.Save(ctx, core.Ledger{{Month: "2025-05", TotalTrainings: 2}}, ver)
	var conflict *store.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError on stale token, got %v", err)
	}
}

func TestCreateConflictsWhenObjectExists(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Save(ctx, core.Ledger{{Month: "2025-03", TotalTrainings: 1}}, ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	var conflict *store.ConflictError
	if _, err := s.Save(ctx, core.Ledger{{Month: "2025-04", TotalTrainings: 1}}, ""); !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError on create-over-existing, got %v", err)
	}
}

func TestLoadIsFailOpen(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Save(ctx, core.Ledger{{Month: "2025-03", TotalTrainings: 8}}, ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	s.FailLoads(errors.New("network down"))
	l, ver, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("fail-open load must not error, got %v", err)
	}
	if len(l) != 0 || ver != "" {
		t.Fatalf("fail-open load must yield empty ledger, got %v ver=%q", l, ver)
	}
}

func TestSaveStripsDisplaySentinels(t *testing.T) {
	s := New()
	ctx := context.Background()
	rows := core.Ledger{
		{Month: "2025-03", TotalTrainings: 8},
		{},
		{Month: "TOTAL", TotalTrainings: 8},
	}
	if _, err := s.Save(ctx, rows, ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, _, _ := s.Load(ctx)
	if len(got) != 1 {
		t.Fatalf("sentinels must not persist, got %+v", got)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.csv")
	seed := core.Ledger{
		{Month: "2025-03", TotalTrainings: 8, DXFleet: 2, Phoenix: 6, Mountain: 1, Central: 3, Eastern: 3},
	}
	if err := os.WriteFile(path, store.EncodeLedger(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s := NewFromFile(path)
	got, ver, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Month != "2025-03" || ver == "" {
		t.Fatalf("seed not loaded: %+v ver=%q", got, ver)
	}

	// Missing file yields an empty store, not an error.
	s = NewFromFile(filepath.Join(dir, "missing.csv"))
	got, ver, _ = s.Load(context.Background())
	if len(got) != 0 || ver != "" {
		t.Fatalf("missing seed must yield empty store: %+v ver=%q", got, ver)
	}
}
