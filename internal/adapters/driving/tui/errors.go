package tui

import "errors"

// ErrMissingSubmissionProcessor is returned when no pipeline is provided.
var ErrMissingSubmissionProcessor = errors.New("tui: submission processor is required")
