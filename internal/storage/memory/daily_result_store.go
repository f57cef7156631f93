package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/storage"
)

// DailyResultStore is an in-memory implementation of storage.DailyResultStore.
type DailyResultStore struct {
	mu   sync.RWMutex
	data map[string]domain.DailyResult // keyed by (run_id, date)
	runs map[string][]string           // run_id -> keys, insertion order
}

// NewDailyResultStore creates a new in-memory daily result store.
func NewDailyResultStore() *DailyResultStore {
	return &DailyResultStore{
		data: make(map[string]domain.DailyResult),
		runs: make(map[string][]string),
	}
}

// resultKey generates a unique key for a run's daily row.
func resultKey(runID string, r domain.DailyResult) string {
	return fmt.Sprintf("%s|%s", runID, dateKey(r.Date))
}

// InsertBulk adds a run's trace. Fails entire batch on duplicate (run_id, date).
func (s *DailyResultStore) InsertBulk(_ context.Context, runID string, results []domain.DailyResult) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(results) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(results))

	for _, r := range results {
		if r.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		key := resultKey(runID, r)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range results {
		key := resultKey(runID, r)
		s.data[key] = r
		s.runs[runID] = append(s.runs[runID], key)
	}

	return nil
}

// GetByRunID retrieves a run's trace, ordered by date ASC.
func (s *DailyResultStore) GetByRunID(_ context.Context, runID string) ([]domain.DailyResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.runs[runID]
	result := make([]domain.DailyResult, 0, len(keys))
	for _, key := range keys {
		result = append(result, s.data[key])
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

var _ storage.DailyResultStore = (*DailyResultStore)(nil)
