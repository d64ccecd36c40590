package mcp

import (
	"github.com/custodia-labs/docrelay/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Submissions runs the pipeline.
	Submissions driving.SubmissionProcessor

	// History reads recorded runs. Optional.
	History driving.RunHistory
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Submissions == nil {
		return ErrMissingSubmissionProcessor
	}
	return nil
}
