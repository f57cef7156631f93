package reporting

import (
	"time"

	"cape-risk-lab/internal/domain"
)

// Report is the rendered output of a multi-decade backtest: one returns table
// and one risk table, each with a row per analyzed period.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunCount    int

	// Data Summary
	DataSummary DataSummary

	// Data Quality (sufficiency checks)
	DataQuality DataQualitySection

	// Period tables (sorted by period, ascending start year)
	PeriodReturns []domain.PeriodReturnsRow
	PeriodRisk    []domain.PeriodRiskRow
}

// DataQualitySection contains data sufficiency checks and integrity errors.
type DataQualitySection struct {
	SufficiencyChecks []SufficiencyCheckRow
	IntegrityErrors   []string
	AllChecksPassed   bool
}

// SufficiencyCheckRow represents one sufficiency criterion.
type SufficiencyCheckRow struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// DataSummary describes the input data behind the report.
type DataSummary struct {
	SeriesStart       time.Time
	SeriesEnd         time.Time
	TotalDays         int
	MonthlyInvestment float64
}
