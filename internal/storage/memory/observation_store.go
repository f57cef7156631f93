package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/storage"
)

// ObservationStore is an in-memory implementation of storage.ObservationStore.
type ObservationStore struct {
	mu   sync.RWMutex
	data map[string]domain.DailyObservation // keyed by date
}

// NewObservationStore creates a new in-memory observation store.
func NewObservationStore() *ObservationStore {
	return &ObservationStore{
		data: make(map[string]domain.DailyObservation),
	}
}

// dateKey generates a unique key for a calendar date.
func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// InsertBulk adds multiple observations. Fails entire batch on duplicate date.
func (s *ObservationStore) InsertBulk(_ context.Context, obs []domain.DailyObservation) error {
	if len(obs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(obs))

	for _, o := range obs {
		if o.Date.IsZero() || o.Price <= 0 || o.ValuationRatio <= 0 {
			return storage.ErrInvalidInput
		}
		key := dateKey(o.Date)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, o := range obs {
		s.data[dateKey(o.Date)] = o
	}

	return nil
}

// GetAll retrieves the full series, ordered by date ASC.
func (s *ObservationStore) GetAll(_ context.Context) ([]domain.DailyObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.DailyObservation, 0, len(s.data))
	for _, o := range s.data {
		result = append(result, o)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

// GetByDateRange retrieves observations within [start, end] (inclusive).
func (s *ObservationStore) GetByDateRange(_ context.Context, start, end time.Time) ([]domain.DailyObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.DailyObservation
	for _, o := range s.data {
		if !o.Date.Before(start) && !o.Date.After(end) {
			result = append(result, o)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

var _ storage.ObservationStore = (*ObservationStore)(nil)
