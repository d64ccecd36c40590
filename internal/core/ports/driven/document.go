package driven

import "context"

// DocumentService creates and edits documents in the document service.
type DocumentService interface {
	// CreateDocument creates an empty document and returns its ID.
	CreateDocument(ctx context.Context, title string) (string, error)

	// InsertText inserts text at the given character index.
	InsertText(ctx context.Context, documentID, text string, index int64) error

	// MoveToFolder re-parents the document into folderID.
	MoveToFolder(ctx context.Context, documentID, folderID string) error
}

// ExportService renders a stored document into another format.
type ExportService interface {
	// Export returns the document content converted to mimeType.
	Export(ctx context.Context, documentID, mimeType string) ([]byte, error)
}

// DocumentVerifier checks that exported bytes are a readable document.
type DocumentVerifier interface {
	// Verify returns an error if content cannot be opened as the expected format.
	Verify(content []byte) error
}
