package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for docrelay resources.
	uriScheme = "docrelay://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Most recent submission runs",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}",
		Name:        "run",
		Description: "Full report of a single submission run",
		MIMEType:    "application/json",
	}, s.handleRunResource)
}

// handleRunsResource lists recent runs.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return jsonResult(req.Params.URI, []byte("[]")), nil
	}

	reports, err := s.ports.History.List(ctx, defaultHistoryLimit)
	if err != nil {
		return nil, errors.Wrap(err, "listing runs")
	}
	if reports == nil {
		reports = []domain.SubmissionReport{}
	}

	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshalling runs")
	}
	return jsonResult(req.Params.URI, data), nil
}

// handleRunResource returns one run.
func (s *Server) handleRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	report, err := s.ports.History.Get(ctx, runID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, errors.Wrap(err, "getting run")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshalling run")
	}
	return jsonResult(req.Params.URI, data), nil
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractRunID extracts the run ID from a URI like docrelay://runs/{runId}.
func extractRunID(uri string) string {
	const prefix = uriScheme + "runs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
