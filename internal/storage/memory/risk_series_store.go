package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/storage"
)

// RiskSeriesStore is an in-memory implementation of storage.RiskSeriesStore.
type RiskSeriesStore struct {
	mu   sync.RWMutex
	data map[string]domain.RiskPoint // keyed by date
}

// NewRiskSeriesStore creates a new in-memory risk series store.
func NewRiskSeriesStore() *RiskSeriesStore {
	return &RiskSeriesStore{
		data: make(map[string]domain.RiskPoint),
	}
}

// InsertBulk adds multiple points. Fails entire batch on duplicate date.
func (s *RiskSeriesStore) InsertBulk(_ context.Context, points []domain.RiskPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(points))

	for _, p := range points {
		if p.Date.IsZero() || p.Price <= 0 {
			return storage.ErrInvalidInput
		}
		key := dateKey(p.Date)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		s.data[dateKey(p.Date)] = p
	}

	return nil
}

// GetAll retrieves the full series, ordered by date ASC.
func (s *RiskSeriesStore) GetAll(_ context.Context) ([]domain.RiskPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.RiskPoint, 0, len(s.data))
	for _, p := range s.data {
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

// GetByDateRange retrieves points within [start, end] (inclusive).
func (s *RiskSeriesStore) GetByDateRange(_ context.Context, start, end time.Time) ([]domain.RiskPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.RiskPoint
	for _, p := range s.data {
		if !p.Date.Before(start) && !p.Date.After(end) {
			result = append(result, p)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

var _ storage.RiskSeriesStore = (*RiskSeriesStore)(nil)
