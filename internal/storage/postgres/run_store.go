package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, run *domain.SimulationRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO simulation_runs (
			run_id, start_year, initial_investment, monthly_investment,
			series_start, series_end, days,
			benchmark_final_value, strategy_final_value, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10
		)
	`

	_, err := s.pool.Exec(ctx, query,
		run.RunID, run.StartYear, run.InitialInvestment, run.MonthlyInvestment,
		run.SeriesStart, run.SeriesEnd, run.Days,
		run.BenchmarkFinalValue, run.StrategyFinalValue, run.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert simulation run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.SimulationRun, error) {
	query := `
		SELECT
			run_id, start_year, initial_investment, monthly_investment,
			series_start, series_end, days,
			benchmark_final_value, strategy_final_value, created_at
		FROM simulation_runs
		WHERE run_id = $1
	`

	row := s.pool.QueryRow(ctx, query, runID)
	run, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get simulation run by id: %w", err)
	}
	return run, nil
}

// List retrieves all runs, ordered by start year ASC then run_id ASC.
func (s *RunStore) List(ctx context.Context) ([]*domain.SimulationRun, error) {
	query := `
		SELECT
			run_id, start_year, initial_investment, monthly_investment,
			series_start, series_end, days,
			benchmark_final_value, strategy_final_value, created_at
		FROM simulation_runs
		ORDER BY start_year ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list simulation runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.SimulationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan simulation run row: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate simulation run rows: %w", err)
	}

	return runs, nil
}

// scanRun scans a single row into a SimulationRun.
func scanRun(row pgx.Row) (*domain.SimulationRun, error) {
	var run domain.SimulationRun

	err := row.Scan(
		&run.RunID, &run.StartYear, &run.InitialInvestment, &run.MonthlyInvestment,
		&run.SeriesStart, &run.SeriesEnd, &run.Days,
		&run.BenchmarkFinalValue, &run.StrategyFinalValue, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.SeriesStart = run.SeriesStart.UTC()
	run.SeriesEnd = run.SeriesEnd.UTC()
	run.CreatedAt = run.CreatedAt.UTC()
	return &run, nil
}
