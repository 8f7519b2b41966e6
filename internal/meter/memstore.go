package meter

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemStore is an in-memory Store. It backs tests and is handy for running
// the service without Postgres; it is not durable.
type MemStore struct {
	mu         sync.Mutex
	readings   []Reading
	aggregates map[string]float64
}

func NewMemStore() *MemStore {
	return &MemStore{aggregates: make(map[string]float64)}
}

func aggregateKey(owner, period string) string {
	return owner + "|" + period
}

func (s *MemStore) Insert(_ context.Context, r *Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, *r)
	return nil
}

func (s *MemStore) MostRecent(_ context.Context) (*Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.readings) == 0 {
		return nil, nil
	}
	latest := s.readings[0]
	for _, r := range s.readings[1:] {
		if r.TimestampMs > latest.TimestampMs {
			latest = r
		}
	}
	return &latest, nil
}

func (s *MemStore) QueryRange(_ context.Context, startMs, endMs int64) ([]Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Reading
	for _, r := range s.readings {
		if r.TimestampMs >= startMs && r.TimestampMs < endMs {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimestampMs > out[j].TimestampMs })
	return out, nil
}

func (s *MemStore) Get(_ context.Context, id string) (*Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.readings {
		if r.ID == id {
			found := r
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: reading %s", ErrNotFound, id)
}

func (s *MemStore) DeleteIfOwned(_ context.Context, id, requester string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.readings {
		if r.ID != id {
			continue
		}
		owned := r.CreatedBy == requester || (r.CreatedBy == "" && r.Username == requester)
		if !owned {
			return fmt.Errorf("%w: reading %s is not owned by %s", ErrForbidden, id, requester)
		}
		s.readings = append(s.readings[:i], s.readings[i+1:]...)
		return nil
	}
	return fmt.Errorf("%w: reading %s", ErrNotFound, id)
}

func (s *MemStore) UpsertMonthlyAggregate(_ context.Context, owner, period string, deltaKWh float64, _ int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggregates[aggregateKey(owner, period)] += deltaKWh
	return nil
}

func (s *MemStore) MonthlyAggregateTotal(_ context.Context, owner, period string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregates[aggregateKey(owner, period)], nil
}

// Len reports the number of stored readings, for tests.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.readings)
}
