package services

import (
	"context"

	"github.com/custodia-labs/docrelay/internal/core/domain"
	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
	"github.com/custodia-labs/docrelay/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.RunHistory = (*HistoryService)(nil)

// DefaultHistoryLimit is used when List is called with a non-positive limit.
const DefaultHistoryLimit = 20

// HistoryService reads recorded pipeline runs.
type HistoryService struct {
	store driven.RunStore
}

// NewHistoryService creates a history service. store may be nil when
// run recording is disabled.
func NewHistoryService(store driven.RunStore) *HistoryService {
	return &HistoryService{store: store}
}

// Get returns one run by ID.
func (s *HistoryService) Get(ctx context.Context, runID string) (*domain.SubmissionReport, error) {
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	if runID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.store.Get(ctx, runID)
}

// List returns the most recent runs first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.SubmissionReport, error) {
	if s.store == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.List(ctx, limit)
}
