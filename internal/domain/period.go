package domain

// PeriodReturnsRow is one row of the aggregator's returns-and-drawdown table:
// one backtest period (decade start through the common end year) compared
// across both legs.
type PeriodReturnsRow struct {
	Period string // e.g. "1950-2025"
	Years  int

	BenchmarkReturnPct float64 // final value over |capital at risk|, minus 1
	StrategyReturnPct  float64
	OutperformancePct  float64 // strategy - benchmark

	BenchmarkMaxDrawdownPct float64 // most negative drawdown on total value
	StrategyMaxDrawdownPct  float64
}

// PeriodRiskRow is one row of the aggregator's risk-adjusted metrics table.
type PeriodRiskRow struct {
	Period string
	Years  int

	BenchmarkSharpe float64
	StrategySharpe  float64
	BenchmarkIRRPct float64
	StrategyIRRPct  float64
}
