package google

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
)

// Ensure ExportClient implements the interface.
var _ driven.ExportService = (*ExportClient)(nil)

// maxExportSize is Drive's documented export limit.
const maxExportSize = 10 << 20

// ExportClient exports Google Workspace files with the Drive API.
type ExportClient struct {
	drive *drive.Service
	rate  *RateLimiter
}

// NewExportClient creates an ExportService.
func NewExportClient(svc *drive.Service) *ExportClient {
	return &ExportClient{drive: svc, rate: NewRateLimiter(ServiceDrive)}
}

// Export downloads documentID converted to mimeType.
func (c *ExportClient) Export(ctx context.Context, documentID, mimeType string) ([]byte, error) {
	if err := c.rate.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.drive.Files.Export(documentID, mimeType).Context(ctx).Download()
	c.rate.Observe(err)
	if err != nil {
		return nil, WrapError(err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxExportSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading export")
	}
	if len(content) > maxExportSize {
		return nil, errors.Newf("export of %s exceeds %d bytes", documentID, maxExportSize)
	}
	return content, nil
}
