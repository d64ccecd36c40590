// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentService: Creates and populates Google Docs
//   - ExportService: Exports a document to a binary format
//   - MailService: Sends a raw RFC 5322 message
//   - OAuthClient: Authorization-code and refresh-token exchanges
//   - CredentialStore: Credential persistence (token file)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Authorizer: Interactive consent. Without it, a missing credential is fatal.
//   - RunStore: Run history. Without it, reports are not recorded.
//   - ArtifactArchive: DOCX archive. Without it, exports are not archived.
//   - DocumentVerifier: Export check. Without it, any non-empty export is accepted.
//   - ConfigStore: Settings file behind `docrelay config`.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
