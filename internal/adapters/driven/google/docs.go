package google

import (
	"context"

	"github.com/cockroachdb/errors"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
)

// Ensure DocumentClient implements the interface.
var _ driven.DocumentService = (*DocumentClient)(nil)

// rootFolder is Drive's alias for the user's top-level folder.
const rootFolder = "root"

// DocumentClient creates documents with the Docs API and files them
// with the Drive API.
type DocumentClient struct {
	docs      *docs.Service
	drive     *drive.Service
	docsRate  *RateLimiter
	driveRate *RateLimiter
}

// NewDocumentClient creates a DocumentService. driveSvc is only used by
// MoveToFolder and may be nil if no folder is configured.
func NewDocumentClient(docsSvc *docs.Service, driveSvc *drive.Service) *DocumentClient {
	return &DocumentClient{
		docs:      docsSvc,
		drive:     driveSvc,
		docsRate:  NewRateLimiter(ServiceDocs),
		driveRate: NewRateLimiter(ServiceDrive),
	}
}

// CreateDocument creates an empty document titled title.
func (c *DocumentClient) CreateDocument(ctx context.Context, title string) (string, error) {
	if err := c.docsRate.Wait(ctx); err != nil {
		return "", err
	}
	doc, err := c.docs.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	c.docsRate.Observe(err)
	if err != nil {
		return "", WrapError(err)
	}
	return doc.DocumentId, nil
}

// InsertText inserts text at index in the document body.
func (c *DocumentClient) InsertText(ctx context.Context, documentID, text string, index int64) error {
	if err := c.docsRate.Wait(ctx); err != nil {
		return err
	}
	req := &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Location: &docs.Location{Index: index},
				Text:     text,
			},
		}},
	}
	_, err := c.docs.Documents.BatchUpdate(documentID, req).Context(ctx).Do()
	c.docsRate.Observe(err)
	return WrapError(err)
}

// MoveToFolder makes folderID the document's only parent.
func (c *DocumentClient) MoveToFolder(ctx context.Context, documentID, folderID string) error {
	if c.drive == nil {
		return errors.New("drive service not configured")
	}
	if err := c.driveRate.Wait(ctx); err != nil {
		return err
	}
	_, err := c.drive.Files.Update(documentID, &drive.File{}).
		AddParents(folderID).
		RemoveParents(rootFolder).
		Fields("id, parents").
		Context(ctx).
		Do()
	c.driveRate.Observe(err)
	return WrapError(err)
}
