// Package mcp provides an MCP (Model Context Protocol) server adapter for docrelay.
// It lets AI assistants submit form data through the create-export-send
// pipeline and inspect previous runs.
package mcp

import "errors"

// ErrMissingSubmissionProcessor is returned when the pipeline is not provided.
var ErrMissingSubmissionProcessor = errors.New("mcp: submission processor is required")
