package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

func successReport() domain.SubmissionReport {
	return domain.SubmissionReport{
		RunID:          "run-1",
		Success:        true,
		Message:        "Submission processed successfully!\n\nDocument ID: doc-1",
		DocumentID:     "doc-1",
		EmailMessageID: "msg-1",
	}
}

func TestSubmitCmd_Use(t *testing.T) {
	assert.Equal(t, "submit", submitCmd.Use)
}

func TestSubmitCmd_PassesFlags(t *testing.T) {
	withInput(t, "", false)
	processor := &fakeProcessor{report: successReport()}
	withServices(t, Services{Submissions: processor})

	out, err := execute(t, "submit",
		"--name", "Jane Smith", "--email", "jane@x.com",
		"--address", "1 Oak Ave", "--recipient", "admin@co.com")

	require.NoError(t, err)
	require.NotNil(t, processor.got)
	assert.Equal(t, domain.RawSubmission{
		Name: "Jane Smith", Email: "jane@x.com", Address: "1 Oak Ave", RecipientEmail: "admin@co.com",
	}, *processor.got)
	assert.Contains(t, out, "Submission processed successfully!")
	assert.Contains(t, out, "Run ID: run-1")
}

func TestSubmitCmd_PromptsForMissingFieldsOnTerminal(t *testing.T) {
	withInput(t, "Jane Smith\njane@x.com\n1 Oak Ave\n\n", true)
	processor := &fakeProcessor{report: successReport()}
	withServices(t, Services{Submissions: processor})

	out, err := execute(t, "submit")

	require.NoError(t, err)
	assert.Equal(t, domain.RawSubmission{
		Name: "Jane Smith", Email: "jane@x.com", Address: "1 Oak Ave",
	}, *processor.got)
	assert.Contains(t, out, "Name: ")
	assert.Contains(t, out, "Recipient email (blank for default): ")
}

func TestSubmitCmd_NoPromptWithoutTerminal(t *testing.T) {
	withInput(t, "ignored\n", false)
	processor := &fakeProcessor{report: domain.SubmissionReport{
		RunID:       "run-2",
		Message:     "Workflow failed: Input validation failed: name: Field cannot be empty",
		FailedStage: domain.StateValidating,
		FailureKind: domain.KindValidation,
	}}
	withServices(t, Services{Submissions: processor})

	out, err := execute(t, "submit")

	require.Error(t, err)
	assert.Equal(t, domain.RawSubmission{}, *processor.got)
	assert.Contains(t, out, "Workflow failed: Input validation failed")
	assert.Contains(t, errors.FlattenHints(err), "check the submitted fields")
}

func TestSubmitCmd_JSON(t *testing.T) {
	withInput(t, "", false)
	withServices(t, Services{Submissions: &fakeProcessor{report: successReport()}})

	out, err := execute(t, "submit", "--name", "J", "--email", "j@x.com", "--address", "A", "--json")
	require.NoError(t, err)

	var got domain.SubmissionReport
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.True(t, got.Success)
}

func TestSubmitCmd_RejectsArgs(t *testing.T) {
	withServices(t, Services{Submissions: &fakeProcessor{}})

	_, err := execute(t, "submit", "extra")
	assert.Error(t, err)
}

func TestSubmissionError_Hints(t *testing.T) {
	tests := []struct {
		kind domain.ErrorKind
		hint string
	}{
		{domain.KindAuth, "docrelay auth login"},
		{domain.KindValidation, "check the submitted fields"},
		{domain.KindStage, "docrelay history show run-7"},
		{domain.KindUnexpected, "docrelay history show run-7"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := submissionError(domain.SubmissionReport{RunID: "run-7", FailedStage: domain.StateExporting, FailureKind: tt.kind})
			assert.Contains(t, err.Error(), "exporting")
			assert.Contains(t, errors.FlattenHints(err), tt.hint)
		})
	}
}
