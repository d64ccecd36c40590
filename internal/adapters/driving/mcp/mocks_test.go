package mcp

import (
	"context"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

// mockProcessor is a mock implementation of driving.SubmissionProcessor.
type mockProcessor struct {
	report domain.SubmissionReport
	got    domain.RawSubmission
}

func (m *mockProcessor) ProcessSubmission(_ context.Context, raw domain.RawSubmission) domain.SubmissionReport {
	m.got = raw
	return m.report
}

// mockHistory is a mock implementation of driving.RunHistory.
type mockHistory struct {
	reports  []domain.SubmissionReport
	report   *domain.SubmissionReport
	err      error
	gotLimit int
}

func (m *mockHistory) Get(_ context.Context, _ string) (*domain.SubmissionReport, error) {
	return m.report, m.err
}

func (m *mockHistory) List(_ context.Context, limit int) ([]domain.SubmissionReport, error) {
	m.gotLimit = limit
	return m.reports, m.err
}
