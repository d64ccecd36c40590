package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

func TestServer_handleProcessSubmission(t *testing.T) {
	ctx := context.Background()

	t.Run("successful run", func(t *testing.T) {
		processor := &mockProcessor{report: domain.SubmissionReport{
			RunID:          "run-1",
			Success:        true,
			Message:        "Submission processed successfully!",
			DocumentID:     "doc-1",
			DocumentURL:    "https://docs.google.com/document/d/doc-1",
			EmailMessageID: "msg-1",
		}}
		server, err := NewServer(&Ports{Submissions: processor})
		require.NoError(t, err)

		input := SubmissionInput{Name: "Jane", Email: "jane@x.com", Address: "1 Oak Ave", RecipientEmail: "admin@co.com"}
		result, output, err := server.handleProcessSubmission(ctx, nil, input)

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.False(t, result.IsError)
		require.Len(t, result.Content, 1)
		assert.Equal(t, "Submission processed successfully!", result.Content[0].(*mcp.TextContent).Text)

		assert.Equal(t, "run-1", output.RunID)
		assert.True(t, output.Success)
		assert.Equal(t, "doc-1", output.DocumentID)
		assert.Equal(t, "msg-1", output.EmailMessageID)

		assert.Equal(t, domain.RawSubmission{
			Name: "Jane", Email: "jane@x.com", Address: "1 Oak Ave", RecipientEmail: "admin@co.com",
		}, processor.got)
	})

	t.Run("failed run is a tool error", func(t *testing.T) {
		processor := &mockProcessor{report: domain.SubmissionReport{
			RunID:       "run-2",
			Message:     "Workflow failed: Input validation failed: email: Invalid email format",
			FailedStage: domain.StateValidating,
			FailureKind: domain.KindValidation,
		}}
		server, err := NewServer(&Ports{Submissions: processor})
		require.NoError(t, err)

		result, output, err := server.handleProcessSubmission(ctx, nil, SubmissionInput{Email: "bad"})

		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.False(t, output.Success)
		assert.Equal(t, "validating", output.FailedStage)
		assert.Equal(t, "ValidationError", output.FailureKind)
	})
}

func TestServer_handleHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("nil history returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Submissions: &mockProcessor{}})
		require.NoError(t, err)

		_, output, err := server.handleHistory(ctx, nil, HistoryInput{})
		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Runs)
	})

	t.Run("default limit is 10", func(t *testing.T) {
		history := &mockHistory{reports: []domain.SubmissionReport{{RunID: "a"}, {RunID: "b"}}}
		server, err := NewServer(&Ports{Submissions: &mockProcessor{}, History: history})
		require.NoError(t, err)

		_, output, err := server.handleHistory(ctx, nil, HistoryInput{})
		require.NoError(t, err)
		assert.Equal(t, 10, history.gotLimit)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "a", output.Runs[0].RunID)
	})

	t.Run("single run by ID", func(t *testing.T) {
		history := &mockHistory{report: &domain.SubmissionReport{RunID: "run-9", Success: true}}
		server, err := NewServer(&Ports{Submissions: &mockProcessor{}, History: history})
		require.NoError(t, err)

		_, output, err := server.handleHistory(ctx, nil, HistoryInput{RunID: "run-9"})
		require.NoError(t, err)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, "run-9", output.Runs[0].RunID)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		history := &mockHistory{err: errors.New("database locked")}
		server, err := NewServer(&Ports{Submissions: &mockProcessor{}, History: history})
		require.NoError(t, err)

		_, _, err = server.handleHistory(ctx, nil, HistoryInput{Limit: 3})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database locked")
	})
}
