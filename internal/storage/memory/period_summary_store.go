package memory

import (
	"context"
	"sort"
	"sync"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/storage"
)

// PeriodSummaryStore is an in-memory implementation of storage.PeriodSummaryStore.
type PeriodSummaryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PeriodSummary // keyed by run_id
}

// NewPeriodSummaryStore creates a new in-memory period summary store.
func NewPeriodSummaryStore() *PeriodSummaryStore {
	return &PeriodSummaryStore{
		data: make(map[string]*domain.PeriodSummary),
	}
}

// Insert adds a new summary. Returns ErrDuplicateKey if run_id exists.
func (s *PeriodSummaryStore) Insert(_ context.Context, p *domain.PeriodSummary) error {
	if p == nil || p.RunID == "" || p.Returns.Period == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	summaryCopy := *p
	s.data[p.RunID] = &summaryCopy
	return nil
}

// GetByRunID retrieves the summary for a run. Returns ErrNotFound if not exists.
func (s *PeriodSummaryStore) GetByRunID(_ context.Context, runID string) (*domain.PeriodSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	summaryCopy := *p
	return &summaryCopy, nil
}

// List retrieves all summaries, ordered by period ASC then run_id ASC.
func (s *PeriodSummaryStore) List(_ context.Context) ([]*domain.PeriodSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PeriodSummary, 0, len(s.data))
	for _, p := range s.data {
		summaryCopy := *p
		result = append(result, &summaryCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Returns.Period != result[j].Returns.Period {
			return result[i].Returns.Period < result[j].Returns.Period
		}
		return result[i].RunID < result[j].RunID
	})

	return result, nil
}

var _ storage.PeriodSummaryStore = (*PeriodSummaryStore)(nil)
