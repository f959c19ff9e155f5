package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/ledger/memory"
)

func TestSaveTargets_CreatesWhenEmpty(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewSavingsService(store)

	cfg, err := svc.SaveTargets(ctx, 300, nil)
	if err != nil {
		t.Fatalf("SaveTargets() error = %v", err)
	}
	if cfg.ID == "" || cfg.MonthlyTarget != 300 {
		t.Errorf("SaveTargets() = %+v, want created record with target 300", cfg)
	}

	list, _ := store.ListSavingsConfigs(ctx)
	if len(list) != 1 {
		t.Errorf("store holds %d configs, want 1", len(list))
	}
}

func TestSaveTargets_UpdatesLatestInsteadOfCreating(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewSavingsService(store)

	if _, err := svc.SaveTargets(ctx, 100, nil); err != nil {
		t.Fatalf("first SaveTargets() error = %v", err)
	}
	time.Sleep(time.Millisecond)

	yearly := 4000.0
	updated, err := svc.SaveTargets(ctx, 200, &yearly)
	if err != nil {
		t.Fatalf("second SaveTargets() error = %v", err)
	}

	list, _ := store.ListSavingsConfigs(ctx)
	if len(list) != 1 {
		t.Fatalf("store holds %d configs after upsert, want 1", len(list))
	}
	if updated.MonthlyTarget != 200 || updated.YearlyTarget == nil || *updated.YearlyTarget != 4000 {
		t.Errorf("upserted config = %+v", updated)
	}
}

func TestSaveTargets_ConvergesDuplicates(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewSavingsService(store)

	// Pre-existing duplicates from an older client.
	first, _ := store.CreateSavingsConfig(ctx, core.SavingsConfig{MonthlyTarget: 50})
	time.Sleep(time.Millisecond)
	second, _ := store.CreateSavingsConfig(ctx, core.SavingsConfig{MonthlyTarget: 75})

	if _, err := svc.SaveTargets(ctx, 500, nil); err != nil {
		t.Fatalf("SaveTargets() error = %v", err)
	}

	cfg, ok, err := svc.ResolveConfig(ctx)
	if err != nil || !ok {
		t.Fatalf("ResolveConfig() = ok=%v err=%v", ok, err)
	}
	if cfg.ID != second.ID {
		t.Errorf("write landed on %s, want the latest record %s (not %s)", cfg.ID, second.ID, first.ID)
	}
	if cfg.MonthlyTarget != 500 {
		t.Errorf("MonthlyTarget = %v, want 500", cfg.MonthlyTarget)
	}
}

func TestSaveTargets_RejectsInvalidTarget(t *testing.T) {
	svc := NewSavingsService(memory.New())

	if _, err := svc.SaveTargets(context.Background(), -1, nil); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("SaveTargets(-1) error = %v, want ErrInvalidAmount", err)
	}
}
