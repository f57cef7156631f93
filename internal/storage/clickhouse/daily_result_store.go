package clickhouse

import (
	"context"
	"fmt"
	"time"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/storage"
)

// DailyResultStore implements storage.DailyResultStore using ClickHouse.
type DailyResultStore struct {
	conn *Conn
}

// NewDailyResultStore creates a new DailyResultStore.
func NewDailyResultStore(conn *Conn) *DailyResultStore {
	return &DailyResultStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DailyResultStore = (*DailyResultStore)(nil)

// InsertBulk adds a run's trace. Fails the entire batch on a duplicate
// (run_id, date). A trace is written once per run, so any stored row for
// the run_id within the batch's span is treated as a collision.
func (s *DailyResultStore) InsertBulk(ctx context.Context, runID string, results []domain.DailyResult) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(results) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{})
	for _, r := range results {
		k := dayKey(r.Date)
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	minDate, maxDate := minMaxResultDates(results)
	existing, err := s.existingDates(ctx, runID, minDate, maxDate)
	if err != nil {
		return fmt.Errorf("check existing dates: %w", err)
	}
	for _, r := range results {
		if _, ok := existing[dayKey(r.Date)]; ok {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO daily_results (
			run_id, date, risk,
			benchmark_value, strategy_value,
			benchmark_cashflow, strategy_cashflow,
			benchmark_invested, strategy_invested,
			benchmark_capital_at_risk, strategy_capital_at_risk,
			benchmark_profit, strategy_profit,
			benchmark_pct_profit, strategy_pct_profit
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range results {
		err = batch.Append(
			runID, r.Date, r.Risk,
			r.BenchmarkValue, r.StrategyValue,
			float64(r.BenchmarkCashflow), float64(r.StrategyCashflow),
			r.BenchmarkInvested, r.StrategyInvested,
			r.BenchmarkCapitalAtRisk, r.StrategyCapitalAtRisk,
			r.BenchmarkProfit, r.StrategyProfit,
			r.BenchmarkPctProfit, r.StrategyPctProfit,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves a run's trace, ordered by date ASC.
func (s *DailyResultStore) GetByRunID(ctx context.Context, runID string) ([]domain.DailyResult, error) {
	query := `
		SELECT
			date, risk,
			benchmark_value, strategy_value,
			benchmark_cashflow, strategy_cashflow,
			benchmark_invested, strategy_invested,
			benchmark_capital_at_risk, strategy_capital_at_risk,
			benchmark_profit, strategy_profit,
			benchmark_pct_profit, strategy_pct_profit
		FROM daily_results
		WHERE run_id = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query daily results by run id: %w", err)
	}
	defer rows.Close()

	return scanDailyResults(rows)
}

// existingDates returns the set of dates already stored for a run within
// [start, end].
func (s *DailyResultStore) existingDates(ctx context.Context, runID string, start, end time.Time) (map[string]struct{}, error) {
	query := `
		SELECT date FROM daily_results
		WHERE run_id = ? AND date >= ? AND date <= ?
	`

	rows, err := s.conn.Query(ctx, query, runID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		existing[dayKey(d)] = struct{}{}
	}
	return existing, rows.Err()
}

// scanDailyResults scans multiple rows into a slice.
func scanDailyResults(rows chRows) ([]domain.DailyResult, error) {
	var results []domain.DailyResult

	for rows.Next() {
		var r domain.DailyResult
		var benchmarkCashflow, strategyCashflow float64

		err := rows.Scan(
			&r.Date, &r.Risk,
			&r.BenchmarkValue, &r.StrategyValue,
			&benchmarkCashflow, &strategyCashflow,
			&r.BenchmarkInvested, &r.StrategyInvested,
			&r.BenchmarkCapitalAtRisk, &r.StrategyCapitalAtRisk,
			&r.BenchmarkProfit, &r.StrategyProfit,
			&r.BenchmarkPctProfit, &r.StrategyPctProfit,
		)
		if err != nil {
			return nil, fmt.Errorf("scan daily result row: %w", err)
		}

		r.Date = r.Date.UTC()
		r.BenchmarkCashflow = domain.CumulativeCashflow(benchmarkCashflow)
		r.StrategyCashflow = domain.CumulativeCashflow(strategyCashflow)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily result rows: %w", err)
	}

	return results, nil
}

// minMaxResultDates returns the earliest and latest dates in the batch.
func minMaxResultDates(results []domain.DailyResult) (time.Time, time.Time) {
	min, max := results[0].Date, results[0].Date
	for _, r := range results[1:] {
		if r.Date.Before(min) {
			min = r.Date
		}
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return min, max
}
