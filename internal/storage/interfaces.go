package storage

import (
	"context"
	"time"

	"cape-risk-lab/internal/domain"
)

// ObservationStore provides access to daily_observations storage: the merged
// price + valuation-ratio input series.
type ObservationStore interface {
	// InsertBulk adds multiple observations atomically. Fails the entire
	// batch on a duplicate date.
	InsertBulk(ctx context.Context, obs []domain.DailyObservation) error

	// GetAll retrieves the full series, ordered by date ASC.
	GetAll(ctx context.Context) ([]domain.DailyObservation, error)

	// GetByDateRange retrieves observations within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.DailyObservation, error)
}

// RiskSeriesStore provides access to risk_series storage: the computed risk
// metric aligned to the retained observations.
type RiskSeriesStore interface {
	// InsertBulk adds multiple points. Fails the entire batch on a
	// duplicate date.
	InsertBulk(ctx context.Context, points []domain.RiskPoint) error

	// GetAll retrieves the full series, ordered by date ASC.
	GetAll(ctx context.Context) ([]domain.RiskPoint, error)

	// GetByDateRange retrieves points within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.RiskPoint, error)
}

// DailyResultStore provides access to daily_results storage: the per-run
// simulation trace.
type DailyResultStore interface {
	// InsertBulk adds a run's trace. Fails the entire batch on a duplicate
	// (run_id, date).
	InsertBulk(ctx context.Context, runID string, results []domain.DailyResult) error

	// GetByRunID retrieves a run's trace, ordered by date ASC.
	GetByRunID(ctx context.Context, runID string) ([]domain.DailyResult, error)
}

// RunStore provides access to simulation_runs storage.
type RunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, run *domain.SimulationRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.SimulationRun, error)

	// List retrieves all runs, ordered by start year ASC then run_id ASC.
	List(ctx context.Context) ([]*domain.SimulationRun, error)
}

// PeriodSummaryStore provides access to period_summaries storage: one record
// per aggregated period per run.
type PeriodSummaryStore interface {
	// Insert adds a new summary. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, s *domain.PeriodSummary) error

	// GetByRunID retrieves the summary for a run. Returns ErrNotFound if
	// not exists.
	GetByRunID(ctx context.Context, runID string) (*domain.PeriodSummary, error)

	// List retrieves all summaries, ordered by period ASC then run_id ASC.
	List(ctx context.Context) ([]*domain.PeriodSummary, error)
}
