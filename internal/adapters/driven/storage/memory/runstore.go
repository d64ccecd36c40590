package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/custodia-labs/docrelay/internal/core/domain"
	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.SubmissionReport
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.SubmissionReport),
	}
}

// Record stores or replaces a run.
func (s *RunStore) Record(_ context.Context, report domain.SubmissionReport) error {
	if report.RunID == "" {
		return errors.Wrap(domain.ErrInvalidInput, "run ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[report.RunID] = report
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(_ context.Context, runID string) (*domain.SubmissionReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.runs[runID]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "run %s", runID)
	}
	return &report, nil
}

// List returns up to limit runs, newest first. A non-positive limit returns all.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.SubmissionReport, error) {
	s.mu.RLock()
	reports := make([]domain.SubmissionReport, 0, len(s.runs))
	for _, r := range s.runs {
		reports = append(reports, r)
	}
	s.mu.RUnlock()

	slices.SortFunc(reports, func(a, b domain.SubmissionReport) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(b.RunID, a.RunID)
	})

	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}
