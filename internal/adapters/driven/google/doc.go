// Package google implements the document, export and mail ports on top
// of the Google Docs, Drive and Gmail REST APIs.
//
// The package contains:
//   - Transport and TokenSource adapters that bridge a CredentialProvider to HTTP auth
//   - Service factories for creating Google API clients
//   - Error handling for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// # Usage
//
//	docsSvc, err := google.NewDocsService(ctx, nil, google.WithCredentials(credentialManager))
//	documents := google.NewDocumentClient(docsSvc, driveSvc)
//
// # OAuth2 Scopes
//
// The clients need these scopes (see Scopes):
//   - https://www.googleapis.com/auth/documents
//   - https://www.googleapis.com/auth/drive.file
//   - https://www.googleapis.com/auth/gmail.send
//
// drive.file only grants access to files the app created, which covers
// every document this tool touches.
package google
