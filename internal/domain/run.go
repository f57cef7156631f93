package domain

import "time"

// SimulationRun is the persisted record of one completed engine run.
// Corresponds to the simulation_runs table in PostgreSQL.
type SimulationRun struct {
	RunID string // deterministic hash, see idhash

	StartYear         int
	InitialInvestment float64
	MonthlyInvestment float64

	SeriesStart time.Time // first simulated date
	SeriesEnd   time.Time // last simulated date
	Days        int       // rows in the daily trace

	BenchmarkFinalValue float64
	StrategyFinalValue  float64

	CreatedAt time.Time
}

// PeriodSummary is the persisted pairing of the aggregator's two table rows
// for one period. Corresponds to the period_summaries table in PostgreSQL.
type PeriodSummary struct {
	RunID   string // run that produced this period
	Returns PeriodReturnsRow
	Risk    PeriodRiskRow

	CreatedAt time.Time
}
