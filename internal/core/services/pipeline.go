package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/custodia-labs/docrelay/internal/core/domain"
	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
	"github.com/custodia-labs/docrelay/internal/core/ports/driving"
	"github.com/custodia-labs/docrelay/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.SubmissionProcessor = (*Pipeline)(nil)

// DefaultStageTimeout bounds each external stage.
const DefaultStageTimeout = 60 * time.Second

// Pipeline runs submissions through validate, create, export and send.
// It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	validator *Validator
	creator   CreateStage
	exporter  ExportStage
	sender    SendStage

	credentials driving.CredentialProvider
	runs        driven.RunStore
	archive     driven.ArtifactArchive

	stageTimeout time.Duration
	now          func() time.Time
	newRunID     func() string
}

// PipelineOption configures optional collaborators.
type PipelineOption func(*Pipeline)

// WithCredentials acquires credentials before each external stage, so an
// auth failure is attributed to the stage that needed it.
func WithCredentials(p driving.CredentialProvider) PipelineOption {
	return func(pl *Pipeline) { pl.credentials = p }
}

// WithRunStore records every finished run.
func WithRunStore(s driven.RunStore) PipelineOption {
	return func(pl *Pipeline) { pl.runs = s }
}

// WithArchive uploads the exported document of successful runs.
func WithArchive(a driven.ArtifactArchive) PipelineOption {
	return func(pl *Pipeline) { pl.archive = a }
}

// WithStageTimeout overrides DefaultStageTimeout. Non-positive values are ignored.
func WithStageTimeout(d time.Duration) PipelineOption {
	return func(pl *Pipeline) {
		if d > 0 {
			pl.stageTimeout = d
		}
	}
}

// NewPipeline creates a pipeline from its validator and three stages.
func NewPipeline(
	validator *Validator,
	creator CreateStage,
	exporter ExportStage,
	sender SendStage,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		validator:    validator,
		creator:      creator,
		exporter:     exporter,
		sender:       sender,
		stageTimeout: DefaultStageTimeout,
		now:          time.Now,
		newRunID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessSubmission runs one submission to completion. It never panics
// and never returns an error: the report says what happened.
func (p *Pipeline) ProcessSubmission(ctx context.Context, raw domain.RawSubmission) (report domain.SubmissionReport) {
	state := &domain.PipelineState{RunID: p.newRunID(), Raw: raw}
	started := p.now()

	defer func() {
		if r := recover(); r != nil {
			report = p.recovered(state, started, r)
			p.record(ctx, report)
		}
	}()

	logger.Section("Submission " + state.RunID)
	p.run(ctx, state)

	report = p.finalize(state, started)
	if report.Success {
		report.ArchiveURI = p.archiveExport(ctx, state)
	}
	p.record(ctx, report)
	return report
}

// run drives the state machine until Finalizing.
func (p *Pipeline) run(ctx context.Context, state *domain.PipelineState) {
	s := domain.StateValidating
	for {
		state.Trail = append(state.Trail, s)
		if s.IsTerminal() {
			return
		}
		logger.Debugw("entering state", logger.FieldRunID, state.RunID, logger.FieldState, string(s))

		var err error
		switch s {
		case domain.StateValidating:
			state.Validation = p.validate(state.Raw)
			err = state.Validation.Err()
		case domain.StateCreatingDocument:
			sub := state.Validation.Payload()
			state.Document = runStage(ctx, p, domain.ErrDocumentCreateFailed,
				func(ctx context.Context) (domain.DocumentRef, error) {
					return p.creator.Create(ctx, sub)
				})
			err = state.Document.Err()
		case domain.StateExporting:
			doc := state.Document.Payload()
			state.Export = runStage(ctx, p, domain.ErrExportFailed,
				func(ctx context.Context) (domain.ExportedDocument, error) {
					return p.exporter.Export(ctx, doc)
				})
			err = state.Export.Err()
		case domain.StateSendingEmail:
			sub, doc, file := state.Validation.Payload(), state.Document.Payload(), state.Export.Payload()
			state.Email = runStage(ctx, p, domain.ErrSendFailed,
				func(ctx context.Context) (domain.SentMessage, error) {
					return p.sender.Send(ctx, sub, doc, file)
				})
			err = state.Email.Err()
		case domain.StateHandlingError:
			state.RetryCount++
			logger.Warnw("stage failed",
				logger.FieldRunID, state.RunID,
				logger.FieldStage, string(state.FailedStage),
				logger.FieldError, state.ErrorMessage,
			)
			s = domain.StateFinalizing
			continue
		}

		if err != nil {
			state.FailedStage = s
			state.FailureErr = err
			state.ErrorMessage = s.FailurePrefix() + ": " + err.Error()
			s = domain.StateHandlingError
			continue
		}
		s = s.Next()
	}
}

func (p *Pipeline) validate(raw domain.RawSubmission) domain.StageResult[domain.Submission] {
	sub, err := p.validator.Validate(raw)
	if err != nil {
		return domain.Failed[domain.Submission](err)
	}
	return domain.Ok(sub)
}

// runStage obtains credentials, then runs fn under the stage deadline.
func runStage[T any](
	ctx context.Context,
	p *Pipeline,
	sentinel error,
	fn func(context.Context) (T, error),
) domain.StageResult[T] {
	if p.credentials != nil {
		if _, err := p.credentials.GetCredentials(ctx); err != nil {
			return domain.Failed[T](domain.Mark(err, sentinel))
		}
	}

	stageCtx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	out, err := fn(stageCtx)
	if err != nil {
		return domain.Failed[T](stageFailure(stageCtx, err, sentinel))
	}
	return domain.Ok(out)
}

func (p *Pipeline) finalize(state *domain.PipelineState, started time.Time) domain.SubmissionReport {
	state.Success = state.AllOk()

	report := domain.SubmissionReport{
		RunID:      state.RunID,
		Success:    state.Success,
		RetryCount: state.RetryCount,
		StartedAt:  started,
		FinishedAt: p.now(),
	}
	if state.Validation.IsOk() {
		report.Recipient = state.Validation.Payload().RecipientEmail
	}

	if state.Success {
		doc, email := state.Document.Payload(), state.Email.Payload()
		state.Message = successMessage(doc, email)
		report.DocumentID = doc.ID
		report.DocumentURL = doc.URL
		report.EmailMessageID = email.ID
		report.Recipient = email.Recipient
		logger.Infow("submission processed",
			logger.FieldRunID, state.RunID,
			logger.FieldDocumentID, doc.ID,
			logger.FieldMessageID, email.ID,
		)
	} else {
		if state.ErrorMessage == "" {
			state.ErrorMessage = domain.StateFinalizing.FailurePrefix()
		}
		state.Message = "Workflow failed: " + state.ErrorMessage
		report.FailedStage = state.FailedStage
		report.FailureKind = domain.KindOf(state.FailureErr)
		if report.FailureKind == domain.KindNone {
			report.FailureKind = domain.KindUnexpected
		}
	}

	report.Message = state.Message
	return report
}

func successMessage(doc domain.DocumentRef, email domain.SentMessage) string {
	return fmt.Sprintf(
		"Submission processed successfully!\n\nDocument ID: %s\nDocument URL: %s\nEmail sent to: %s\nGmail Message ID: %s",
		doc.ID, doc.URL, email.Recipient, email.ID,
	)
}

// recovered converts a panic into a failed report.
func (p *Pipeline) recovered(state *domain.PipelineState, started time.Time, r any) domain.SubmissionReport {
	err := domain.Mark(errors.Newf("panic: %v", r), domain.ErrUnexpected)
	stage := domain.StateFinalizing
	if n := len(state.Trail); n > 0 {
		stage = state.Trail[n-1]
	}
	logger.Errorw("pipeline panicked",
		logger.FieldRunID, state.RunID,
		logger.FieldStage, string(stage),
		logger.FieldError, err,
	)

	return domain.SubmissionReport{
		RunID:       state.RunID,
		Success:     false,
		Message:     "Workflow failed: " + stage.FailurePrefix() + ": " + err.Error(),
		FailedStage: stage,
		FailureKind: domain.KindUnexpected,
		RetryCount:  state.RetryCount + 1,
		StartedAt:   started,
		FinishedAt:  p.now(),
	}
}

// archiveExport uploads the DOCX of a successful run. Failures are logged.
func (p *Pipeline) archiveExport(ctx context.Context, state *domain.PipelineState) string {
	if p.archive == nil {
		return ""
	}
	file := state.Export.Payload()
	name := path.Join("submissions", state.RunID, file.Filename)

	uri, err := p.archive.Put(ctx, name, file.Content, file.MIMEType)
	if err != nil {
		logger.Warnw("archiving export failed", logger.FieldRunID, state.RunID, logger.FieldError, err)
		return ""
	}
	return uri
}

// record stores the report. Failures are logged.
func (p *Pipeline) record(ctx context.Context, report domain.SubmissionReport) {
	if p.runs == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("recording run panicked", logger.FieldRunID, report.RunID, logger.FieldError, r)
		}
	}()
	if err := p.runs.Record(ctx, report); err != nil {
		logger.Warnw("recording run failed", logger.FieldRunID, report.RunID, logger.FieldError, err)
	}
}
