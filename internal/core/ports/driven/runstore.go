package driven

import (
	"context"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

// RunStore records finished pipeline runs.
type RunStore interface {
	// Record stores a report. Re-recording a run ID replaces it.
	Record(ctx context.Context, report domain.SubmissionReport) error

	// Get returns a report by run ID, or domain.ErrNotFound.
	Get(ctx context.Context, runID string) (*domain.SubmissionReport, error)

	// List returns the most recent reports first, at most limit.
	List(ctx context.Context, limit int) ([]domain.SubmissionReport, error)
}

// ArtifactArchive keeps a copy of exported documents.
type ArtifactArchive interface {
	// Put stores content under name and returns a URI for it.
	Put(ctx context.Context, name string, content []byte, mimeType string) (string, error)
}
