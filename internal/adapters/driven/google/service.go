package google

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Scopes are the OAuth scopes the docrelay clients require.
var Scopes = []string{
	docs.DocumentsScope,
	drive.DriveFileScope,
	gmail.GmailSendScope,
}

// NewDocsService creates a Google Docs API service using the provided TokenSource.
func NewDocsService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*docs.Service, error) {
	return docs.NewService(ctx, withTokenSource(ts, opts)...)
}

// NewDriveService creates a Google Drive API service using the provided TokenSource.
func NewDriveService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*drive.Service, error) {
	return drive.NewService(ctx, withTokenSource(ts, opts)...)
}

// NewGmailService creates a Gmail API service using the provided TokenSource.
func NewGmailService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*gmail.Service, error) {
	return gmail.NewService(ctx, withTokenSource(ts, opts)...)
}

func withTokenSource(ts oauth2.TokenSource, opts []option.ClientOption) []option.ClientOption {
	if ts == nil {
		return opts
	}
	return append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
}
