// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The submission pipeline lives here:
//
//   - Validator: turns a RawSubmission into a Submission
//   - CredentialManager: caches, refreshes and acquires the OAuth credential
//   - DocumentCreator, DocumentExporter, EmailSender: the three external stages
//   - Pipeline: the state machine that runs them and builds the report
//   - HistoryService: read access to recorded runs
//
// Services never import adapters.
package services
