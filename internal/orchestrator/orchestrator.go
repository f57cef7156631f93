// Package orchestrator provides E2E pipeline orchestration.
// It coordinates: risk computation → period simulation → persistence
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/idhash"
	"cape-risk-lab/internal/observability"
	"cape-risk-lab/internal/periods"
	"cape-risk-lab/internal/risk"
	"cape-risk-lab/internal/storage"
)

// Orchestrator coordinates the E2E pipeline execution.
// Flow: load observations → compute risk series → per-period simulation →
// persist runs, traces and summaries.
type Orchestrator struct {
	// Stores
	observationStore storage.ObservationStore
	riskSeriesStore  storage.RiskSeriesStore
	dailyResultStore storage.DailyResultStore
	runStore         storage.RunStore
	summaryStore     storage.PeriodSummaryStore

	// Configs
	riskConfig    risk.Config
	periodsConfig periods.Config

	// Options
	skipRiskStorage bool
	verbose         bool

	clock func() time.Time
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	ObservationStore storage.ObservationStore
	RiskSeriesStore  storage.RiskSeriesStore
	DailyResultStore storage.DailyResultStore
	RunStore         storage.RunStore
	SummaryStore     storage.PeriodSummaryStore

	// Risk and period configs
	RiskConfig    risk.Config
	PeriodsConfig periods.Config

	// Options
	SkipRiskStorage bool // Skip if risk series already stored
	Verbose         bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		observationStore: opts.ObservationStore,
		riskSeriesStore:  opts.RiskSeriesStore,
		dailyResultStore: opts.DailyResultStore,
		runStore:         opts.RunStore,
		summaryStore:     opts.SummaryStore,
		riskConfig:       opts.RiskConfig,
		periodsConfig:    opts.PeriodsConfig,
		skipRiskStorage:  opts.SkipRiskStorage,
		verbose:          opts.Verbose,
		clock:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic run records.
func (o *Orchestrator) WithClock(clock func() time.Time) *Orchestrator {
	o.clock = clock
	return o
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	ObservationsLoaded int
	RiskPointsComputed int
	PeriodsAnalyzed    int
	RunsPersisted      int
	Errors             []string
}

// Run executes the full E2E pipeline.
// Phases:
//  1. Load observations
//  2. Compute risk series (and store it)
//  3. Simulate and analyze each period
//  4. Persist runs, daily traces and period summaries
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	// Phase 1: Load observations
	o.log("Phase 1: Loading observations...")
	obs, err := o.observationStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load observations) failed: %w", err)
	}
	result.ObservationsLoaded = len(obs)
	o.log("  Found %d observations", len(obs))

	if len(obs) == 0 {
		return result, nil
	}

	// Phase 2: Risk computation
	o.log("Phase 2: Computing risk series...")
	points, err := risk.Compute(obs, o.riskConfig)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (risk computation) failed: %w", err)
	}
	result.RiskPointsComputed = len(points)
	undefined := 0
	for _, p := range points {
		if !p.RiskDefined() {
			undefined++
		}
	}
	observability.RecordRiskSeries(len(points), undefined)
	o.log("  Computed %d risk points (%d undefined)", len(points), undefined)

	if !o.skipRiskStorage {
		if err := o.riskSeriesStore.InsertBulk(ctx, points); err != nil {
			// Already stored from a previous run
			if !errors.Is(err, storage.ErrDuplicateKey) {
				return nil, fmt.Errorf("phase 2 (store risk series) failed: %w", err)
			}
			o.log("  Risk series already stored, skipping")
		}
	}

	// Phase 3: Period simulation and analysis
	o.log("Phase 3: Running period simulations...")
	runs, err := periods.New(o.periodsConfig).AnalyzeRuns(points)
	if err != nil {
		return nil, fmt.Errorf("phase 3 (period analysis) failed: %w", err)
	}
	result.PeriodsAnalyzed = len(runs)
	o.log("  Analyzed %d periods", len(runs))

	// Phase 4: Persistence
	o.log("Phase 4: Persisting runs...")
	persisted, errs := o.persistRuns(ctx, runs)
	result.RunsPersisted = persisted
	result.Errors = append(result.Errors, errs...)
	o.log("  Persisted %d runs (%d errors)", persisted, len(errs))

	o.log("Pipeline completed: %d observations, %d risk points, %d periods, %d runs",
		result.ObservationsLoaded, result.RiskPointsComputed,
		result.PeriodsAnalyzed, result.RunsPersisted)

	return result, nil
}

// persistRuns stores each period's run record, daily trace and summary.
// A run that already exists is skipped, not errored.
func (o *Orchestrator) persistRuns(ctx context.Context, runs []periods.PeriodRun) (int, []string) {
	var persisted int
	var errs []string

	for _, run := range runs {
		trace := run.Results
		first, last := trace[0], trace[len(trace)-1]

		if !run.Benchmark.IRRConverged || !run.Strategy.IRRConverged {
			observability.RecordIRRConvergenceFailure()
			o.log("  WARNING: IRR did not converge for period starting %d, reported as 0", run.StartYear)
		}

		runID := idhash.ComputeRunID(
			run.StartYear,
			o.periodsConfig.InitialInvestment,
			o.periodsConfig.MonthlyInvestment,
			first.Date, last.Date, len(trace),
		)

		record := &domain.SimulationRun{
			RunID:               runID,
			StartYear:           run.StartYear,
			InitialInvestment:   o.periodsConfig.InitialInvestment,
			MonthlyInvestment:   o.periodsConfig.MonthlyInvestment,
			SeriesStart:         first.Date,
			SeriesEnd:           last.Date,
			Days:                len(trace),
			BenchmarkFinalValue: last.BenchmarkValue,
			StrategyFinalValue:  last.StrategyValue,
			CreatedAt:           o.clock(),
		}

		if err := o.runStore.Insert(ctx, record); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				o.log("  Run %s already persisted, skipping", shortID(runID))
				continue
			}
			errs = append(errs, fmt.Sprintf("persist run %d: %v", run.StartYear, err))
			observability.RecordSimulationRun("error", 0)
			continue
		}

		if err := o.dailyResultStore.InsertBulk(ctx, runID, trace); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			errs = append(errs, fmt.Sprintf("persist trace %d: %v", run.StartYear, err))
			observability.RecordSimulationRun("error", 0)
			continue
		}

		summary := &domain.PeriodSummary{
			RunID:     runID,
			Returns:   run.Returns,
			Risk:      run.Risk,
			CreatedAt: record.CreatedAt,
		}
		if err := o.summaryStore.Insert(ctx, summary); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			errs = append(errs, fmt.Sprintf("persist summary %d: %v", run.StartYear, err))
			observability.RecordSimulationRun("error", 0)
			continue
		}

		observability.RecordSimulationRun("ok", len(trace))
		observability.RecordPeriodAnalyzed()
		persisted++
	}

	return persisted, errs
}

func shortID(runID string) string {
	if len(runID) > 12 {
		return runID[:12]
	}
	return runID
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
