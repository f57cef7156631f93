package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/storage"
)

// PeriodSummaryStore implements storage.PeriodSummaryStore using PostgreSQL.
type PeriodSummaryStore struct {
	pool *Pool
}

// NewPeriodSummaryStore creates a new PeriodSummaryStore.
func NewPeriodSummaryStore(pool *Pool) *PeriodSummaryStore {
	return &PeriodSummaryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PeriodSummaryStore = (*PeriodSummaryStore)(nil)

// Insert adds a new summary. Returns ErrDuplicateKey if run_id exists.
func (s *PeriodSummaryStore) Insert(ctx context.Context, p *domain.PeriodSummary) error {
	if p == nil || p.RunID == "" || p.Returns.Period == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO period_summaries (
			run_id, period, years,
			benchmark_return_pct, strategy_return_pct, outperformance_pct,
			benchmark_max_drawdown_pct, strategy_max_drawdown_pct,
			benchmark_sharpe, strategy_sharpe,
			benchmark_irr_pct, strategy_irr_pct,
			created_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6,
			$7, $8,
			$9, $10,
			$11, $12,
			$13
		)
	`

	_, err := s.pool.Exec(ctx, query,
		p.RunID, p.Returns.Period, p.Returns.Years,
		p.Returns.BenchmarkReturnPct, p.Returns.StrategyReturnPct, p.Returns.OutperformancePct,
		p.Returns.BenchmarkMaxDrawdownPct, p.Returns.StrategyMaxDrawdownPct,
		p.Risk.BenchmarkSharpe, p.Risk.StrategySharpe,
		p.Risk.BenchmarkIRRPct, p.Risk.StrategyIRRPct,
		p.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert period summary: %w", err)
	}
	return nil
}

// GetByRunID retrieves the summary for a run. Returns ErrNotFound if not exists.
func (s *PeriodSummaryStore) GetByRunID(ctx context.Context, runID string) (*domain.PeriodSummary, error) {
	query := selectPeriodSummaries + ` WHERE run_id = $1`

	row := s.pool.QueryRow(ctx, query, runID)
	p, err := scanPeriodSummary(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get period summary by run id: %w", err)
	}
	return p, nil
}

// List retrieves all summaries, ordered by period ASC then run_id ASC.
func (s *PeriodSummaryStore) List(ctx context.Context) ([]*domain.PeriodSummary, error) {
	query := selectPeriodSummaries + ` ORDER BY period ASC, run_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list period summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.PeriodSummary
	for rows.Next() {
		p, err := scanPeriodSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan period summary row: %w", err)
		}
		summaries = append(summaries, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate period summary rows: %w", err)
	}

	return summaries, nil
}

const selectPeriodSummaries = `
	SELECT
		run_id, period, years,
		benchmark_return_pct, strategy_return_pct, outperformance_pct,
		benchmark_max_drawdown_pct, strategy_max_drawdown_pct,
		benchmark_sharpe, strategy_sharpe,
		benchmark_irr_pct, strategy_irr_pct,
		created_at
	FROM period_summaries`

// scanPeriodSummary scans a single row into a PeriodSummary.
func scanPeriodSummary(row pgx.Row) (*domain.PeriodSummary, error) {
	var p domain.PeriodSummary

	err := row.Scan(
		&p.RunID, &p.Returns.Period, &p.Returns.Years,
		&p.Returns.BenchmarkReturnPct, &p.Returns.StrategyReturnPct, &p.Returns.OutperformancePct,
		&p.Returns.BenchmarkMaxDrawdownPct, &p.Returns.StrategyMaxDrawdownPct,
		&p.Risk.BenchmarkSharpe, &p.Risk.StrategySharpe,
		&p.Risk.BenchmarkIRRPct, &p.Risk.StrategyIRRPct,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Risk.Period = p.Returns.Period
	p.Risk.Years = p.Returns.Years
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}
