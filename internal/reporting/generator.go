package reporting

import (
	"context"
	"time"

	"cape-risk-lab/internal/storage"
)

// Generator produces reports from stored data.
type Generator struct {
	runStore     storage.RunStore
	summaryStore storage.PeriodSummaryStore
	now          func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(runStore storage.RunStore, summaryStore storage.PeriodSummaryStore) *Generator {
	return &Generator{
		runStore:     runStore,
		summaryStore: summaryStore,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report from all stored runs and summaries.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	runs, err := g.runStore.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries, err := g.summaryStore.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt: g.now(),
		RunCount:    len(runs),
	}

	for _, run := range runs {
		if report.DataSummary.SeriesStart.IsZero() || run.SeriesStart.Before(report.DataSummary.SeriesStart) {
			report.DataSummary.SeriesStart = run.SeriesStart
		}
		if run.SeriesEnd.After(report.DataSummary.SeriesEnd) {
			report.DataSummary.SeriesEnd = run.SeriesEnd
		}
		report.DataSummary.TotalDays += run.Days
		report.DataSummary.MonthlyInvestment = run.MonthlyInvestment
	}

	// List returns summaries ordered by period ASC, which is the table order.
	for _, s := range summaries {
		report.PeriodReturns = append(report.PeriodReturns, s.Returns)
		report.PeriodRisk = append(report.PeriodRisk, s.Risk)
	}

	return report, nil
}
