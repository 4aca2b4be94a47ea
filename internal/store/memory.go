package store

import (
	"context"
	"sync"
)

// MemoryStore implements ReportStore in memory, for tests and --store memory.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]Report
}

var _ ReportStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]Report)}
}

// SaveReport stores a copy of r.
func (s *MemoryStore) SaveReport(ctx context.Context, r *Report) (string, error) {
	if err := prepare(r); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = r.clone()
	return r.ID, nil
}

// GetReport returns a copy of the report with the given ID.
func (s *MemoryStore) GetReport(ctx context.Context, id string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := r.clone()
	return &out, nil
}

// ListReports returns copies of the matching reports, oldest first.
func (s *MemoryStore) ListReports(ctx context.Context, network string) ([]Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Report
	for _, r := range s.reports {
		if network == "" || r.Network == network {
			out = append(out, r.clone())
		}
	}
	sortReports(out)
	return out, nil
}

// DeleteReport removes a report.
func (s *MemoryStore) DeleteReport(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[id]; !ok {
		return ErrNotFound
	}
	delete(s.reports, id)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
