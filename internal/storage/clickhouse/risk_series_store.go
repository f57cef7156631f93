package clickhouse

import (
	"context"
	"fmt"
	"time"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/storage"
)

// RiskSeriesStore implements storage.RiskSeriesStore using ClickHouse.
type RiskSeriesStore struct {
	conn *Conn
}

// NewRiskSeriesStore creates a new RiskSeriesStore.
func NewRiskSeriesStore(conn *Conn) *RiskSeriesStore {
	return &RiskSeriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.RiskSeriesStore = (*RiskSeriesStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on a duplicate date.
// MergeTree does not enforce uniqueness, so existing dates in the batch's
// span are fetched up front and compared.
func (s *RiskSeriesStore) InsertBulk(ctx context.Context, points []domain.RiskPoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{})
	for _, p := range points {
		k := dayKey(p.Date)
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	minDate, maxDate := minMaxDates(points)
	existing, err := s.existingDates(ctx, minDate, maxDate)
	if err != nil {
		return fmt.Errorf("check existing dates: %w", err)
	}
	for _, p := range points {
		if _, ok := existing[dayKey(p.Date)]; ok {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO risk_series (
			date, price, valuation_ratio,
			rolling_mean_upper, rolling_std_upper,
			rolling_mean_lower, rolling_std_lower,
			upper_bound, lower_bound,
			historical_avg, historical_upper, historical_lower,
			risk
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.Date, p.Price, p.ValuationRatio,
			p.RollingMeanUpper, p.RollingStdUpper,
			p.RollingMeanLower, p.RollingStdLower,
			p.UpperBound, p.LowerBound,
			p.HistoricalAvg, p.HistoricalUpper, p.HistoricalLower,
			p.Risk,
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

// GetAll retrieves the full series, ordered by date ASC.
func (s *RiskSeriesStore) GetAll(ctx context.Context) ([]domain.RiskPoint, error) {
	query := selectRiskSeries + ` ORDER BY date ASC`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query risk series: %w", err)
	}
	defer rows.Close()

	return scanRiskSeries(rows)
}

// GetByDateRange retrieves points within [start, end] (inclusive).
func (s *RiskSeriesStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.RiskPoint, error) {
	query := selectRiskSeries + `
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query risk series by date range: %w", err)
	}
	defer rows.Close()

	return scanRiskSeries(rows)
}

// existingDates returns the set of dates already stored within [start, end].
func (s *RiskSeriesStore) existingDates(ctx context.Context, start, end time.Time) (map[string]struct{}, error) {
	query := `
		SELECT date FROM risk_series
		WHERE date >= ? AND date <= ?
	`

	rows, err := s.conn.Query(ctx, query, start, end)
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

const selectRiskSeries = `
	SELECT
		date, price, valuation_ratio,
		rolling_mean_upper, rolling_std_upper,
		rolling_mean_lower, rolling_std_lower,
		upper_bound, lower_bound,
		historical_avg, historical_upper, historical_lower,
		risk
	FROM risk_series`

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanRiskSeries scans multiple rows into a slice.
func scanRiskSeries(rows chRows) ([]domain.RiskPoint, error) {
	var points []domain.RiskPoint

	for rows.Next() {
		var p domain.RiskPoint

		err := rows.Scan(
			&p.Date, &p.Price, &p.ValuationRatio,
			&p.RollingMeanUpper, &p.RollingStdUpper,
			&p.RollingMeanLower, &p.RollingStdLower,
			&p.UpperBound, &p.LowerBound,
			&p.HistoricalAvg, &p.HistoricalUpper, &p.HistoricalLower,
			&p.Risk,
		)
		if err != nil {
			return nil, fmt.Errorf("scan risk series row: %w", err)
		}

		p.Date = p.Date.UTC()
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate risk series rows: %w", err)
	}

	return points, nil
}

// dayKey normalizes a date to its calendar day in UTC.
func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// minMaxDates returns the earliest and latest dates in the batch.
func minMaxDates(points []domain.RiskPoint) (time.Time, time.Time) {
	min, max := points[0].Date, points[0].Date
	for _, p := range points[1:] {
		if p.Date.Before(min) {
			min = p.Date
		}
		if p.Date.After(max) {
			max = p.Date
		}
	}
	return min, max
}
