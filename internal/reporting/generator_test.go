package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/storage/memory"
)

func setupTestData(t *testing.T) (*memory.RunStore, *memory.PeriodSummaryStore) {
	t.Helper()
	ctx := context.Background()

	runStore := memory.NewRunStore()
	summaryStore := memory.NewPeriodSummaryStore()

	runs := []*domain.SimulationRun{
		{
			RunID:               "run-1970",
			StartYear:           1970,
			MonthlyInvestment:   200,
			SeriesStart:         time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
			SeriesEnd:           time.Date(1990, 12, 31, 0, 0, 0, 0, time.UTC),
			Days:                5290,
			BenchmarkFinalValue: 98000,
			StrategyFinalValue:  112000,
			CreatedAt:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			RunID:               "run-1980",
			StartYear:           1980,
			MonthlyInvestment:   200,
			SeriesStart:         time.Date(1980, 1, 2, 0, 0, 0, 0, time.UTC),
			SeriesEnd:           time.Date(1990, 12, 31, 0, 0, 0, 0, time.UTC),
			Days:                2770,
			BenchmarkFinalValue: 41000,
			StrategyFinalValue:  45500,
			CreatedAt:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, run := range runs {
		if err := runStore.Insert(ctx, run); err != nil {
			t.Fatalf("Insert run failed: %v", err)
		}
	}

	summaries := []*domain.PeriodSummary{
		{
			RunID: "run-1980",
			Returns: domain.PeriodReturnsRow{
				Period: "1980-1990", Years: 10,
				BenchmarkReturnPct: 55.2, StrategyReturnPct: 71.9, OutperformancePct: 16.7,
				BenchmarkMaxDrawdownPct: -28.4, StrategyMaxDrawdownPct: -21.3,
			},
			Risk: domain.PeriodRiskRow{
				Period: "1980-1990", Years: 10,
				BenchmarkSharpe: 0.381, StrategySharpe: 0.442,
				BenchmarkIRRPct: 8.1, StrategyIRRPct: 9.4,
			},
		},
		{
			RunID: "run-1970",
			Returns: domain.PeriodReturnsRow{
				Period: "1970-1990", Years: 20,
				BenchmarkReturnPct: 112.5, StrategyReturnPct: 140.3, OutperformancePct: 27.8,
				BenchmarkMaxDrawdownPct: -41.2, StrategyMaxDrawdownPct: -33.8,
			},
			Risk: domain.PeriodRiskRow{
				Period: "1970-1990", Years: 20,
				BenchmarkSharpe: 0.295, StrategySharpe: 0.356,
				BenchmarkIRRPct: 7.2, StrategyIRRPct: 8.3,
			},
		},
	}
	for _, s := range summaries {
		if err := summaryStore.Insert(ctx, s); err != nil {
			t.Fatalf("Insert summary failed: %v", err)
		}
	}

	return runStore, summaryStore
}

func TestGenerate_WithClock(t *testing.T) {
	ctx := context.Background()
	runStore, summaryStore := setupTestData(t)

	fixedTime := time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)
	generator := NewGenerator(runStore, summaryStore).WithClock(func() time.Time {
		return fixedTime
	})

	report, err := generator.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !report.GeneratedAt.Equal(fixedTime) {
		t.Errorf("Expected GeneratedAt %v, got %v", fixedTime, report.GeneratedAt)
	}
}

func TestGenerate_DataSummary(t *testing.T) {
	ctx := context.Background()
	runStore, summaryStore := setupTestData(t)
	generator := NewGenerator(runStore, summaryStore)

	report, err := generator.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if report.RunCount != 2 {
		t.Errorf("Expected RunCount 2, got %d", report.RunCount)
	}

	wantStart := time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)
	if !report.DataSummary.SeriesStart.Equal(wantStart) {
		t.Errorf("Expected SeriesStart %v, got %v", wantStart, report.DataSummary.SeriesStart)
	}

	wantEnd := time.Date(1990, 12, 31, 0, 0, 0, 0, time.UTC)
	if !report.DataSummary.SeriesEnd.Equal(wantEnd) {
		t.Errorf("Expected SeriesEnd %v, got %v", wantEnd, report.DataSummary.SeriesEnd)
	}

	if report.DataSummary.TotalDays != 5290+2770 {
		t.Errorf("Expected TotalDays %d, got %d", 5290+2770, report.DataSummary.TotalDays)
	}

	if report.DataSummary.MonthlyInvestment != 200 {
		t.Errorf("Expected MonthlyInvestment 200, got %v", report.DataSummary.MonthlyInvestment)
	}
}

func TestGenerate_PeriodOrdering(t *testing.T) {
	ctx := context.Background()
	runStore, summaryStore := setupTestData(t)
	generator := NewGenerator(runStore, summaryStore)

	report, err := generator.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(report.PeriodReturns) != 2 || len(report.PeriodRisk) != 2 {
		t.Fatalf("Expected 2 rows per table, got %d and %d",
			len(report.PeriodReturns), len(report.PeriodRisk))
	}

	// Summaries were inserted out of order; tables must be sorted by period.
	if report.PeriodReturns[0].Period != "1970-1990" {
		t.Errorf("Expected first returns row 1970-1990, got %s", report.PeriodReturns[0].Period)
	}
	if report.PeriodReturns[1].Period != "1980-1990" {
		t.Errorf("Expected second returns row 1980-1990, got %s", report.PeriodReturns[1].Period)
	}
	if report.PeriodRisk[0].Period != "1970-1990" {
		t.Errorf("Expected first risk row 1970-1990, got %s", report.PeriodRisk[0].Period)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	ctx := context.Background()

	fixedClock := func() time.Time {
		return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	}

	var firstReport *Report
	for run := 0; run < 5; run++ {
		runStore, summaryStore := setupTestData(t)
		generator := NewGenerator(runStore, summaryStore).WithClock(fixedClock)

		report, err := generator.Generate(ctx)
		if err != nil {
			t.Fatalf("Run %d: Generate failed: %v", run, err)
		}

		if firstReport == nil {
			firstReport = report
			continue
		}

		if !report.GeneratedAt.Equal(firstReport.GeneratedAt) {
			t.Errorf("Run %d: GeneratedAt mismatch", run)
		}
		if report.RunCount != firstReport.RunCount {
			t.Errorf("Run %d: RunCount mismatch", run)
		}
		for i := range report.PeriodReturns {
			if report.PeriodReturns[i] != firstReport.PeriodReturns[i] {
				t.Errorf("Run %d: PeriodReturns[%d] mismatch", run, i)
			}
		}
		for i := range report.PeriodRisk {
			if report.PeriodRisk[i] != firstReport.PeriodRisk[i] {
				t.Errorf("Run %d: PeriodRisk[%d] mismatch", run, i)
			}
		}
	}
}

func TestRenderMarkdown_Format(t *testing.T) {
	ctx := context.Background()
	runStore, summaryStore := setupTestData(t)
	generator := NewGenerator(runStore, summaryStore)

	report, err := generator.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)

	requiredSections := []string{
		"# Multi-Decade Backtest Report",
		"## Data Summary",
		"## Period Returns",
		"## Risk-Adjusted Performance",
	}
	for _, section := range requiredSections {
		if !strings.Contains(md, section) {
			t.Errorf("Markdown missing section: %s", section)
		}
	}

	// Rounded presentation: two decimals for returns, three for Sharpe
	if !strings.Contains(md, "| 1970-1990 | 20 | 112.50 | 140.30 | 27.80 | -41.20 | -33.80 |") {
		t.Error("Markdown missing rounded returns row for 1970-1990")
	}
	if !strings.Contains(md, "| 1970-1990 | 20 | 0.295 | 0.356 | 7.20 | 8.30 |") {
		t.Error("Markdown missing rounded risk row for 1970-1990")
	}
}

func TestRenderCSV_Tables(t *testing.T) {
	returns := []domain.PeriodReturnsRow{
		{Period: "1970-1990", Years: 20, BenchmarkReturnPct: 112.5, StrategyReturnPct: 140.3, OutperformancePct: 27.8, BenchmarkMaxDrawdownPct: -41.2, StrategyMaxDrawdownPct: -33.8},
	}
	risk := []domain.PeriodRiskRow{
		{Period: "1970-1990", Years: 20, BenchmarkSharpe: 0.295, StrategySharpe: 0.356, BenchmarkIRRPct: 7.2, StrategyIRRPct: 8.3},
	}

	returnsCSV := RenderReturnsCSV(returns)
	lines := strings.Split(returnsCSV, "\n")
	if !strings.HasPrefix(lines[0], "period,years,benchmark_return_pct") {
		t.Error("Returns CSV header is incorrect")
	}
	if !strings.HasPrefix(lines[1], "1970-1990,20,112.500000") {
		t.Errorf("Unexpected returns CSV row: %s", lines[1])
	}

	riskCSV := RenderRiskCSV(risk)
	lines = strings.Split(riskCSV, "\n")
	if !strings.HasPrefix(lines[0], "period,years,benchmark_sharpe") {
		t.Error("Risk CSV header is incorrect")
	}
	if !strings.HasPrefix(lines[1], "1970-1990,20,0.295000") {
		t.Errorf("Unexpected risk CSV row: %s", lines[1])
	}
}
