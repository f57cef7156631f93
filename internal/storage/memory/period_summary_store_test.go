package memory

import (
	"context"
	"errors"
	"testing"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/storage"
)

func summary(runID, period string) *domain.PeriodSummary {
	return &domain.PeriodSummary{
		RunID:   runID,
		Returns: domain.PeriodReturnsRow{Period: period, Years: 10, StrategyReturnPct: 42},
		Risk:    domain.PeriodRiskRow{Period: period, Years: 10, StrategySharpe: 0.5},
	}
}

func TestPeriodSummaryStore_InsertAndGet(t *testing.T) {
	store := NewPeriodSummaryStore()
	ctx := context.Background()

	if err := store.Insert(ctx, summary("run1", "1970-1980")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByRunID(ctx, "run1")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if got.Returns.StrategyReturnPct != 42 {
		t.Errorf("StrategyReturnPct mismatch: got %f", got.Returns.StrategyReturnPct)
	}
}

func TestPeriodSummaryStore_DuplicateKey(t *testing.T) {
	store := NewPeriodSummaryStore()
	ctx := context.Background()

	if err := store.Insert(ctx, summary("run1", "1970-1980")); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, summary("run1", "1970-1980"))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestPeriodSummaryStore_NotFound(t *testing.T) {
	store := NewPeriodSummaryStore()
	ctx := context.Background()

	_, err := store.GetByRunID(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPeriodSummaryStore_ListOrdering(t *testing.T) {
	store := NewPeriodSummaryStore()
	ctx := context.Background()

	summaries := []*domain.PeriodSummary{
		summary("r2", "1980-2020"),
		summary("r1", "1970-2020"),
		summary("r3", "1990-2020"),
	}
	for _, s := range summaries {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("Insert %s failed: %v", s.RunID, err)
		}
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	wantOrder := []string{"r1", "r2", "r3"}
	for i, want := range wantOrder {
		if got[i].RunID != want {
			t.Errorf("Position %d: got %s, want %s", i, got[i].RunID, want)
		}
	}
}
