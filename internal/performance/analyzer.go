package performance

import (
	"math"
	"time"

	"cape-risk-lab/internal/domain"
)

// MonthlyRow is one month of the analyzer's enriched table: the discretized
// values, the cashflow event, and the derived return columns for both legs.
type MonthlyRow struct {
	Month time.Time // first trading day of the month in the trace

	BenchmarkTotalValue float64
	StrategyTotalValue  float64

	BenchmarkEvent domain.PeriodCashflowEvent
	StrategyEvent  domain.PeriodCashflowEvent

	BenchmarkReturn float64
	StrategyReturn  float64

	AnnualRate  float64
	MonthlyRate float64

	BenchmarkExcess float64
	StrategyExcess  float64
}

// Analysis is the full analyzer output for one simulation run.
type Analysis struct {
	Monthly   []MonthlyRow
	Benchmark domain.PerformanceMetrics
	Strategy  domain.PerformanceMetrics
}

// Analyzer derives cashflow-aware performance metrics from a daily
// simulation trace.
//
// The trace is discretized to the first row of each calendar month. Each
// leg's monthly cashflow event stream is built from that grid — a constant
// contribution for the benchmark, the first-difference of cumulative
// cashflow for the strategy — with the final month's event replaced by the
// final portfolio value (liquidation assumption). Monthly returns are
// computed on total value with the contribution effect removed, Sharpe
// ratios on excess returns over the configured rate source, and IRR by a
// root-find over the event stream.
type Analyzer struct {
	rates RateSource
}

// NewAnalyzer creates an analyzer using the given risk-free rate source.
func NewAnalyzer(rates RateSource) *Analyzer {
	return &Analyzer{rates: rates}
}

// Analyze computes both legs' metrics for one run. monthlyInvestment must
// match the engine parameter that produced the trace. An empty trace yields
// an empty analysis, not an error.
func (a *Analyzer) Analyze(results []domain.DailyResult, monthlyInvestment float64) (*Analysis, error) {
	monthly := monthlyFirst(results)
	n := len(monthly)
	if n == 0 {
		return &Analysis{}, nil
	}

	rows := make([]MonthlyRow, n)
	stratCum := make([]domain.CumulativeCashflow, n)
	for i, r := range monthly {
		rows[i] = MonthlyRow{
			Month:               r.Date,
			BenchmarkTotalValue: r.BenchmarkTotalValue(),
			StrategyTotalValue:  r.StrategyTotalValue(),
		}
		stratCum[i] = r.StrategyCashflow
	}

	// Cashflow events. The final month's event is the liquidation value:
	// the portfolio marked at that month's first row, idle cash excluded.
	stratEvents := domain.DiffCashflows(stratCum)
	for i := range rows {
		rows[i].BenchmarkEvent = domain.PeriodCashflowEvent(-monthlyInvestment)
		rows[i].StrategyEvent = stratEvents[i]
	}
	rows[n-1].BenchmarkEvent = domain.PeriodCashflowEvent(monthly[n-1].BenchmarkValue)
	rows[n-1].StrategyEvent = domain.PeriodCashflowEvent(monthly[n-1].StrategyValue)

	// Contribution-adjusted monthly returns and rate alignment.
	for i := range rows {
		if i > 0 {
			rows[i].BenchmarkReturn = monthlyReturn(rows[i-1].BenchmarkTotalValue, rows[i].BenchmarkTotalValue, rows[i].BenchmarkEvent)
			rows[i].StrategyReturn = monthlyReturn(rows[i-1].StrategyTotalValue, rows[i].StrategyTotalValue, rows[i].StrategyEvent)
		}
		annual, err := a.rates.AnnualRateAt(rows[i].Month)
		if err != nil {
			return nil, err
		}
		rows[i].AnnualRate = annual
		rows[i].MonthlyRate = MonthlyEquivalent(annual)
		rows[i].BenchmarkExcess = rows[i].BenchmarkReturn - rows[i].MonthlyRate
		rows[i].StrategyExcess = rows[i].StrategyReturn - rows[i].MonthlyRate
	}

	avgAnnualRate := 0.0
	for _, r := range rows {
		avgAnnualRate += r.AnnualRate
	}
	avgAnnualRate /= float64(n)

	analysis := &Analysis{
		Monthly: rows,
		Benchmark: legMetrics(rows, avgAnnualRate,
			func(r MonthlyRow) float64 { return r.BenchmarkReturn },
			func(r MonthlyRow) float64 { return r.BenchmarkExcess },
			func(r MonthlyRow) domain.PeriodCashflowEvent { return r.BenchmarkEvent }),
		Strategy: legMetrics(rows, avgAnnualRate,
			func(r MonthlyRow) float64 { return r.StrategyReturn },
			func(r MonthlyRow) float64 { return r.StrategyExcess },
			func(r MonthlyRow) domain.PeriodCashflowEvent { return r.StrategyEvent }),
	}
	return analysis, nil
}

// monthlyFirst reduces the daily trace to the first row of each calendar
// month, preserving order.
func monthlyFirst(results []domain.DailyResult) []domain.DailyResult {
	var monthly []domain.DailyResult
	var curYear int
	var curMonth time.Month
	for _, r := range results {
		y, m, _ := r.Date.Date()
		if len(monthly) == 0 || y != curYear || m != curMonth {
			monthly = append(monthly, r)
			curYear, curMonth = y, m
		}
	}
	return monthly
}

// monthlyReturn removes the contribution effect from a month's value change.
// A non-positive starting value reads 0.
func monthlyReturn(start, end float64, event domain.PeriodCashflowEvent) float64 {
	if start <= 0 {
		return 0
	}
	contribution := -float64(event)
	return (end - start - contribution) / start
}

func legMetrics(rows []MonthlyRow, avgAnnualRate float64,
	ret, excess func(MonthlyRow) float64,
	event func(MonthlyRow) domain.PeriodCashflowEvent,
) domain.PerformanceMetrics {
	returns := make([]float64, len(rows))
	excesses := make([]float64, len(rows))
	events := make([]domain.PeriodCashflowEvent, len(rows))
	for i, r := range rows {
		returns[i] = ret(r)
		excesses[i] = excess(r)
		events[i] = event(r)
	}

	m := domain.PerformanceMetrics{
		MeanAnnualReturn: mean(returns) * 12,
		AnnualStdDev:     popStd(returns) * math.Sqrt(12),
		RiskFreeRate:     avgAnnualRate,
	}
	if sd := popStd(excesses); sd > 0 {
		m.SharpeRatio = mean(excesses) / sd * math.Sqrt(12)
	}

	if monthlyIRR, ok := internalRate(events); ok {
		m.AnnualIRR = math.Pow(1+monthlyIRR, 12) - 1
		m.IRRConverged = true
	}
	return m
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// popStd is the population standard deviation (n denominator).
func popStd(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	m := mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n))
}
