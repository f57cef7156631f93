package domain

import "time"

// SimulationParams configures one simulation run.
type SimulationParams struct {
	// StartYear filters the input to dates on or after January 1 of this year.
	StartYear int

	// InitialInvestment is accepted for call-site parity but does not seed the
	// opening state: both legs start flat. Kept until the seeding semantics
	// are decided; see DESIGN.md.
	InitialInvestment float64

	// MonthlyInvestment is the benchmark's fixed contribution and the base
	// unit of the strategy's tiered schedule.
	MonthlyInvestment float64
}

// DailyResult is one row of the simulation trace: both legs marked to market
// at that day's price plus the running cumulative fields. Corresponds to the
// daily_results table in ClickHouse. The full ordered sequence of these rows
// is the engine's output contract.
type DailyResult struct {
	Date time.Time
	Risk float64 // risk input for the day, NaN when undefined

	BenchmarkValue    float64 // shares * price
	StrategyValue     float64
	BenchmarkCashflow CumulativeCashflow
	StrategyCashflow  CumulativeCashflow
	BenchmarkInvested float64 // cumulative gross purchases, non-decreasing
	StrategyInvested  float64

	// Capital at risk: externally sourced capital committed so far, negated.
	// For the benchmark every dollar is external; for the strategy, capital
	// recycled from sale proceeds is excluded.
	BenchmarkCapitalAtRisk float64 // == -BenchmarkInvested
	StrategyCapitalAtRisk  float64 // == -StrategyNewMoney

	BenchmarkProfit float64 // value + cumulative cashflow
	StrategyProfit  float64

	// Percentage profit over |capital at risk|; 0 when no capital committed,
	// NaN when the division degenerated.
	BenchmarkPctProfit float64
	StrategyPctProfit  float64
}

// BenchmarkTotalValue is portfolio value plus any positive idle cash.
func (r DailyResult) BenchmarkTotalValue() float64 {
	return r.BenchmarkValue + r.BenchmarkCashflow.PositiveCash()
}

// StrategyTotalValue is portfolio value plus any positive idle cash.
func (r DailyResult) StrategyTotalValue() float64 {
	return r.StrategyValue + r.StrategyCashflow.PositiveCash()
}
