// Package tui provides an interactive terminal form for submitting to
// the docrelay pipeline. It is a driving adapter like the CLI and MCP
// server.
package tui

import (
	"github.com/custodia-labs/docrelay/internal/core/ports/driving"
)

// Ports aggregates the driving ports the form needs.
type Ports struct {
	// Submissions runs the pipeline for a filled-in form.
	Submissions driving.SubmissionProcessor
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Submissions == nil {
		return ErrMissingSubmissionProcessor
	}
	return nil
}
