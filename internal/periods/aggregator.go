package periods

import (
	"fmt"
	"math"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/performance"
	"cape-risk-lab/internal/simulation"
)

// Config drives the multi-period comparison. Each period runs the engine and
// analyzer fresh from its start year through the common end of the series.
type Config struct {
	StartYear int
	EndYear   int
	Step      int // years between period starts, 0 means 10

	InitialInvestment float64
	MonthlyInvestment float64

	Rates performance.RateSource
}

// Aggregator tabulates strategy-versus-benchmark results across decades (or
// another configured stride). Periods are independent: no portfolio state
// carries from one to the next.
type Aggregator struct {
	cfg Config
}

// New creates an aggregator. A nil rate source falls back to the flat
// default.
func New(cfg Config) *Aggregator {
	if cfg.Step == 0 {
		cfg.Step = 10
	}
	if cfg.Rates == nil {
		cfg.Rates = performance.DefaultFlatRate
	}
	return &Aggregator{cfg: cfg}
}

// PeriodRun is the full output of one period: the simulation trace plus the
// two table rows derived from it. Callers that only need the tables can use
// Analyze instead.
type PeriodRun struct {
	StartYear int
	Results   []domain.DailyResult
	Returns   domain.PeriodReturnsRow
	Risk      domain.PeriodRiskRow

	// Full per-leg metrics behind the Risk row, including IRR convergence.
	Benchmark domain.PerformanceMetrics
	Strategy  domain.PerformanceMetrics
}

// Analyze runs every period over the risk series and returns the two
// comparison tables: returns with maximum drawdown, and risk-adjusted
// metrics. Periods whose filtered series is empty are skipped, not errored.
func (a *Aggregator) Analyze(points []domain.RiskPoint) ([]domain.PeriodReturnsRow, []domain.PeriodRiskRow, error) {
	runs, err := a.AnalyzeRuns(points)
	if err != nil {
		return nil, nil, err
	}

	var returns []domain.PeriodReturnsRow
	var riskRows []domain.PeriodRiskRow
	for _, run := range runs {
		returns = append(returns, run.Returns)
		riskRows = append(riskRows, run.Risk)
	}
	return returns, riskRows, nil
}

// AnalyzeRuns is Analyze with the per-period traces retained, for callers
// that persist each run.
func (a *Aggregator) AnalyzeRuns(points []domain.RiskPoint) ([]PeriodRun, error) {
	analyzer := performance.NewAnalyzer(a.cfg.Rates)

	var runs []PeriodRun
	for _, year := range periodStarts(a.cfg.StartYear, a.cfg.EndYear, a.cfg.Step) {
		engine := simulation.NewEngine(domain.SimulationParams{
			StartYear:         year,
			InitialInvestment: a.cfg.InitialInvestment,
			MonthlyInvestment: a.cfg.MonthlyInvestment,
		})
		results, err := engine.Run(points)
		if err != nil {
			return nil, fmt.Errorf("period %d-%d: %w", year, a.cfg.EndYear, err)
		}
		if len(results) == 0 {
			continue
		}

		analysis, err := analyzer.Analyze(results, a.cfg.MonthlyInvestment)
		if err != nil {
			return nil, fmt.Errorf("period %d-%d: %w", year, a.cfg.EndYear, err)
		}

		period := fmt.Sprintf("%d-%d", year, a.cfg.EndYear)
		years := a.cfg.EndYear - year
		last := results[len(results)-1]
		benchReturn := totalReturnPct(last.BenchmarkValue, last.BenchmarkCapitalAtRisk)
		stratReturn := totalReturnPct(last.StrategyValue, last.StrategyCapitalAtRisk)

		runs = append(runs, PeriodRun{
			StartYear: year,
			Results:   results,
			Benchmark: analysis.Benchmark,
			Strategy:  analysis.Strategy,
			Returns: domain.PeriodReturnsRow{
				Period:                  period,
				Years:                   years,
				BenchmarkReturnPct:      benchReturn,
				StrategyReturnPct:       stratReturn,
				OutperformancePct:       stratReturn - benchReturn,
				BenchmarkMaxDrawdownPct: maxDrawdownPct(results, domain.DailyResult.BenchmarkTotalValue),
				StrategyMaxDrawdownPct:  maxDrawdownPct(results, domain.DailyResult.StrategyTotalValue),
			},
			Risk: domain.PeriodRiskRow{
				Period:          period,
				Years:           years,
				BenchmarkSharpe: analysis.Benchmark.SharpeRatio,
				StrategySharpe:  analysis.Strategy.SharpeRatio,
				BenchmarkIRRPct: analysis.Benchmark.AnnualIRR * 100,
				StrategyIRRPct:  analysis.Strategy.AnnualIRR * 100,
			},
		})
	}
	return runs, nil
}

// periodStarts lists the candidate start years: ascending from startYear,
// stopping early enough that every period spans at least one full stride.
func periodStarts(startYear, endYear, step int) []int {
	var starts []int
	for y := startYear; y <= endYear-step; y += step {
		starts = append(starts, y)
	}
	return starts
}

// totalReturnPct is the final portfolio value over committed capital, as a
// percentage gain. A leg that never committed capital reads 0.
func totalReturnPct(finalValue, capitalAtRisk float64) float64 {
	if capitalAtRisk == 0 {
		return 0
	}
	return (finalValue/math.Abs(capitalAtRisk) - 1) * 100
}

// maxDrawdownPct is the most negative peak-to-trough move of the total-value
// series, in percent. Days before the peak is positive contribute nothing.
func maxDrawdownPct(results []domain.DailyResult, total func(domain.DailyResult) float64) float64 {
	peak := 0.0
	maxDD := 0.0
	for _, r := range results {
		v := total(r)
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := 100 * (v - peak) / peak; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
