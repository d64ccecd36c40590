package driving

import (
	"context"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

// SubmissionProcessor runs the full create-export-send pipeline.
type SubmissionProcessor interface {
	// ProcessSubmission never returns an error: every failure, including
	// unexpected faults, is reported through the returned report.
	ProcessSubmission(ctx context.Context, raw domain.RawSubmission) domain.SubmissionReport
}

// RunHistory reads previously recorded runs.
type RunHistory interface {
	Get(ctx context.Context, runID string) (*domain.SubmissionReport, error)
	List(ctx context.Context, limit int) ([]domain.SubmissionReport, error)
}
