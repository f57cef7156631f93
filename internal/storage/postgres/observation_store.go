package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/storage"
)

// ObservationStore implements storage.ObservationStore using PostgreSQL.
type ObservationStore struct {
	pool *Pool
}

// NewObservationStore creates a new ObservationStore.
func NewObservationStore(pool *Pool) *ObservationStore {
	return &ObservationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ObservationStore = (*ObservationStore)(nil)

// InsertBulk adds multiple observations atomically. Fails entire batch on duplicate date.
func (s *ObservationStore) InsertBulk(ctx context.Context, obs []domain.DailyObservation) error {
	if len(obs) == 0 {
		return nil
	}

	for _, o := range obs {
		if o.Date.IsZero() || o.Price <= 0 || o.ValuationRatio <= 0 {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO daily_observations (date, price, valuation_ratio)
		VALUES ($1, $2, $3)
	`

	for _, o := range obs {
		if _, err := tx.Exec(ctx, query, o.Date, o.Price, o.ValuationRatio); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert observation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetAll retrieves the full series, ordered by date ASC.
func (s *ObservationStore) GetAll(ctx context.Context) ([]domain.DailyObservation, error) {
	query := `
		SELECT date, price, valuation_ratio
		FROM daily_observations
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all observations: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// GetByDateRange retrieves observations within [start, end] (inclusive).
func (s *ObservationStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.DailyObservation, error) {
	query := `
		SELECT date, price, valuation_ratio
		FROM daily_observations
		WHERE date >= $1 AND date <= $2
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get observations by date range: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// scanObservations scans multiple rows into a slice of DailyObservation.
func scanObservations(rows pgx.Rows) ([]domain.DailyObservation, error) {
	var obs []domain.DailyObservation

	for rows.Next() {
		var o domain.DailyObservation
		if err := rows.Scan(&o.Date, &o.Price, &o.ValuationRatio); err != nil {
			return nil, fmt.Errorf("scan observation row: %w", err)
		}
		o.Date = o.Date.UTC()
		obs = append(obs, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observation rows: %w", err)
	}

	return obs, nil
}
