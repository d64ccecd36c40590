package mcp

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

// defaultHistoryLimit caps the history tool when no limit is given.
const defaultHistoryLimit = 10

// SubmissionInput is the input schema for the process_submission tool.
type SubmissionInput struct {
	Name           string `json:"name" jsonschema:"full name of the submitter"`
	Email          string `json:"email" jsonschema:"email address of the submitter"`
	Address        string `json:"address" jsonschema:"postal address of the submitter"`
	RecipientEmail string `json:"recipient_email,omitempty" jsonschema:"who receives the DOCX; falls back to the configured fixed recipient"`
}

// SubmissionOutput is the output schema for the process_submission tool.
type SubmissionOutput struct {
	RunID          string `json:"run_id"`
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	DocumentID     string `json:"document_id,omitempty"`
	DocumentURL    string `json:"document_url,omitempty"`
	EmailMessageID string `json:"email_message_id,omitempty"`
	FailedStage    string `json:"failed_stage,omitempty"`
	FailureKind    string `json:"failure_kind,omitempty"`
	ArchiveURI     string `json:"archive_uri,omitempty"`
}

// HistoryInput is the input schema for the history tool.
type HistoryInput struct {
	RunID string `json:"run_id,omitempty" jsonschema:"return only this run"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of runs to return (default 10)"`
}

// HistoryOutput is the output schema for the history tool.
type HistoryOutput struct {
	Runs  []SubmissionOutput `json:"runs"`
	Count int                `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_submission",
		Description: "Create a Google Doc from a form submission, export it as DOCX and email it",
	}, s.handleProcessSubmission)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "history",
		Description: "List recent submission runs, or fetch one by run ID",
	}, s.handleHistory)
}

// handleProcessSubmission runs the pipeline. A failed run is a tool
// error result, not a protocol error.
func (s *Server) handleProcessSubmission(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SubmissionInput,
) (*mcp.CallToolResult, SubmissionOutput, error) {
	report := s.ports.Submissions.ProcessSubmission(ctx, domain.RawSubmission{
		Name:           input.Name,
		Email:          input.Email,
		Address:        input.Address,
		RecipientEmail: input.RecipientEmail,
	})

	result := &mcp.CallToolResult{
		IsError: !report.Success,
		Content: []mcp.Content{&mcp.TextContent{Text: report.Message}},
	}
	return result, toOutput(report), nil
}

// handleHistory returns recorded runs.
func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	if s.ports.History == nil {
		return nil, HistoryOutput{Runs: []SubmissionOutput{}}, nil
	}

	if input.RunID != "" {
		report, err := s.ports.History.Get(ctx, input.RunID)
		if err != nil {
			return nil, HistoryOutput{}, errors.Wrap(err, "getting run")
		}
		return nil, HistoryOutput{Runs: []SubmissionOutput{toOutput(*report)}, Count: 1}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	reports, err := s.ports.History.List(ctx, limit)
	if err != nil {
		return nil, HistoryOutput{}, errors.Wrap(err, "listing runs")
	}

	output := HistoryOutput{
		Runs:  make([]SubmissionOutput, len(reports)),
		Count: len(reports),
	}
	for i := range reports {
		output.Runs[i] = toOutput(reports[i])
	}
	return nil, output, nil
}

func toOutput(r domain.SubmissionReport) SubmissionOutput {
	return SubmissionOutput{
		RunID:          r.RunID,
		Success:        r.Success,
		Message:        r.Message,
		DocumentID:     r.DocumentID,
		DocumentURL:    r.DocumentURL,
		EmailMessageID: r.EmailMessageID,
		FailedStage:    string(r.FailedStage),
		FailureKind:    string(r.FailureKind),
		ArchiveURI:     r.ArchiveURI,
	}
}
