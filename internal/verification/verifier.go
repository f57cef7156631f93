// Package verification re-runs persisted simulation runs from the stored
// risk series and compares the recomputed traces against the stored ones.
// A clean report means every stored run is reproducible from its inputs.
package verification

import (
	"context"
	"fmt"
	"math"
	"time"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/idhash"
	"cape-risk-lab/internal/simulation"
	"cape-risk-lab/internal/storage"
)

// FloatTolerance is the tolerance for float64 comparisons. The replay runs
// the same arithmetic as the original, so only storage round trips (ClickHouse
// Float64 is exact, but drivers may normalize NaN payloads) can introduce
// differences.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between a stored and a replayed value.
type FieldDivergence struct {
	Field    string
	Date     time.Time // zero for run-level fields
	Expected interface{}
	Actual   interface{}
}

// RunVerification contains the result of verifying a single run.
type RunVerification struct {
	RunID        string
	Match        bool
	Divergences  []FieldDivergence
	StoredDays   int
	ReplayedDays int
}

// Report contains results for batch verification.
type Report struct {
	TotalRuns     int
	MatchedRuns   int
	DivergentRuns int
	Results       []RunVerification
}

// Verifier replays stored runs against the persisted risk series.
type Verifier struct {
	runStore         storage.RunStore
	dailyResultStore storage.DailyResultStore
	riskSeriesStore  storage.RiskSeriesStore
}

// NewVerifier creates a verifier over the given stores.
func NewVerifier(
	runStore storage.RunStore,
	dailyResultStore storage.DailyResultStore,
	riskSeriesStore storage.RiskSeriesStore,
) *Verifier {
	return &Verifier{
		runStore:         runStore,
		dailyResultStore: dailyResultStore,
		riskSeriesStore:  riskSeriesStore,
	}
}

// VerifyRun verifies a single run by ID: it loads the run record, re-executes
// the simulation with the same parameters over the stored risk series, and
// compares the recomputed trace and run identity against what is stored.
func (v *Verifier) VerifyRun(ctx context.Context, runID string) (*RunVerification, error) {
	run, err := v.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	points, err := v.riskSeriesStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load risk series: %w", err)
	}

	engine := simulation.NewEngine(domain.SimulationParams{
		StartYear:         run.StartYear,
		InitialInvestment: run.InitialInvestment,
		MonthlyInvestment: run.MonthlyInvestment,
	})
	replayed, err := engine.Run(points)
	if err != nil {
		return nil, fmt.Errorf("replay run %s: %w", runID, err)
	}

	stored, err := v.dailyResultStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load trace %s: %w", runID, err)
	}

	result := &RunVerification{
		RunID:        runID,
		StoredDays:   len(stored),
		ReplayedDays: len(replayed),
	}

	if len(replayed) > 0 {
		first, last := replayed[0], replayed[len(replayed)-1]
		replayedID := idhash.ComputeRunID(
			run.StartYear, run.InitialInvestment, run.MonthlyInvestment,
			first.Date, last.Date, len(replayed),
		)
		if replayedID != runID {
			result.Divergences = append(result.Divergences, FieldDivergence{
				Field:    "RunID",
				Expected: runID,
				Actual:   replayedID,
			})
		}
	}

	if len(stored) != len(replayed) {
		result.Divergences = append(result.Divergences, FieldDivergence{
			Field:    "Days",
			Expected: len(stored),
			Actual:   len(replayed),
		})
	}

	n := len(stored)
	if len(replayed) < n {
		n = len(replayed)
	}
	for i := 0; i < n; i++ {
		result.Divergences = append(result.Divergences, CompareDailyResults(stored[i], replayed[i])...)
	}

	result.Match = len(result.Divergences) == 0
	return result, nil
}

// VerifyAll verifies every stored run and returns a combined report.
func (v *Verifier) VerifyAll(ctx context.Context) (*Report, error) {
	runs, err := v.runStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	report := &Report{TotalRuns: len(runs)}
	for _, run := range runs {
		result, err := v.VerifyRun(ctx, run.RunID)
		if err != nil {
			return nil, err
		}
		if result.Match {
			report.MatchedRuns++
		} else {
			report.DivergentRuns++
		}
		report.Results = append(report.Results, *result)
	}

	return report, nil
}

// CompareDailyResults compares one stored trace row against its replayed
// counterpart. Float comparisons are NaN-aware: NaN equals NaN, so undefined
// risk days verify clean.
func CompareDailyResults(stored, replayed domain.DailyResult) []FieldDivergence {
	var divergences []FieldDivergence

	add := func(field string, expected, actual float64) {
		if !floatEquals(expected, actual) {
			divergences = append(divergences, FieldDivergence{
				Field:    field,
				Date:     stored.Date,
				Expected: expected,
				Actual:   actual,
			})
		}
	}

	if !stored.Date.Equal(replayed.Date) {
		divergences = append(divergences, FieldDivergence{
			Field:    "Date",
			Date:     stored.Date,
			Expected: stored.Date,
			Actual:   replayed.Date,
		})
	}

	add("Risk", stored.Risk, replayed.Risk)
	add("BenchmarkValue", stored.BenchmarkValue, replayed.BenchmarkValue)
	add("StrategyValue", stored.StrategyValue, replayed.StrategyValue)
	add("BenchmarkCashflow", float64(stored.BenchmarkCashflow), float64(replayed.BenchmarkCashflow))
	add("StrategyCashflow", float64(stored.StrategyCashflow), float64(replayed.StrategyCashflow))
	add("BenchmarkInvested", stored.BenchmarkInvested, replayed.BenchmarkInvested)
	add("StrategyInvested", stored.StrategyInvested, replayed.StrategyInvested)
	add("BenchmarkCapitalAtRisk", stored.BenchmarkCapitalAtRisk, replayed.BenchmarkCapitalAtRisk)
	add("StrategyCapitalAtRisk", stored.StrategyCapitalAtRisk, replayed.StrategyCapitalAtRisk)
	add("BenchmarkProfit", stored.BenchmarkProfit, replayed.BenchmarkProfit)
	add("StrategyProfit", stored.StrategyProfit, replayed.StrategyProfit)
	add("BenchmarkPctProfit", stored.BenchmarkPctProfit, replayed.BenchmarkPctProfit)
	add("StrategyPctProfit", stored.StrategyPctProfit, replayed.StrategyPctProfit)

	return divergences
}

// floatEquals compares two float64 values within FloatTolerance. Two NaNs
// are equal.
func floatEquals(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) <= FloatTolerance
}
