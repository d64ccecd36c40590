// Package domain defines the core business entities for docrelay.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawSubmission / Submission: user input before and after validation
//   - StageResult: the tagged Ok/Failed outcome of a pipeline stage
//   - PipelineState: everything one run observes
//   - Credential: an OAuth2 token pair with refresh metadata
//   - SubmissionReport: the final, user-facing outcome of a run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
