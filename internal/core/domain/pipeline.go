package domain

// State is a step of the submission state machine.
type State string

// Pipeline states. Finalizing is terminal; HandlingError is entered from
// any of the first four on failure and always moves to Finalizing.
const (
	StateValidating       State = "validating"
	StateCreatingDocument State = "creating_document"
	StateExporting        State = "exporting"
	StateSendingEmail     State = "sending_email"
	StateHandlingError    State = "handling_error"
	StateFinalizing       State = "finalizing"
)

// Next returns the state that follows s on success.
func (s State) Next() State {
	switch s {
	case StateValidating:
		return StateCreatingDocument
	case StateCreatingDocument:
		return StateExporting
	case StateExporting:
		return StateSendingEmail
	default:
		return StateFinalizing
	}
}

// IsTerminal returns true for Finalizing.
func (s State) IsTerminal() bool {
	return s == StateFinalizing
}

// FailurePrefix is the message prefix used when s fails.
func (s State) FailurePrefix() string {
	switch s {
	case StateValidating:
		return "Input validation failed"
	case StateCreatingDocument:
		return "Document creation failed"
	case StateExporting:
		return "DOCX export failed"
	case StateSendingEmail:
		return "Email sending failed"
	default:
		return "Workflow execution failed"
	}
}

// StageResult is the tagged outcome of one stage: Ok with a payload, or
// Failed with the error that stopped it. The zero value means the stage
// never ran.
type StageResult[T any] struct {
	payload T
	err     error
	done    bool
}

// Ok returns a successful result carrying payload.
func Ok[T any](payload T) StageResult[T] {
	return StageResult[T]{payload: payload, done: true}
}

// Failed returns a failed result. A nil err is recorded as ErrUnexpected.
func Failed[T any](err error) StageResult[T] {
	if err == nil {
		err = ErrUnexpected
	}
	return StageResult[T]{err: err, done: true}
}

// IsOk returns true if the stage ran and succeeded.
func (r StageResult[T]) IsOk() bool {
	return r.done && r.err == nil
}

// Ran returns true if the stage produced any result.
func (r StageResult[T]) Ran() bool {
	return r.done
}

// Payload returns the Ok payload, or the zero value.
func (r StageResult[T]) Payload() T {
	return r.payload
}

// Err returns the failure, or nil.
func (r StageResult[T]) Err() error {
	return r.err
}

// Reason returns the human-readable failure reason, or "".
func (r StageResult[T]) Reason() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}

// PipelineState accumulates everything one run observes. It is owned by
// a single ProcessSubmission call and never shared.
type PipelineState struct {
	RunID string
	Raw   RawSubmission

	Validation StageResult[Submission]
	Document   StageResult[DocumentRef]
	Export     StageResult[ExportedDocument]
	Email      StageResult[SentMessage]

	// RetryCount counts trips through HandlingError. Informational only.
	RetryCount   int
	FailedStage  State
	FailureErr   error
	ErrorMessage string

	Success bool
	Message string

	// Trail records every state entered, in order.
	Trail []State
}

// AllOk returns true if every stage succeeded.
func (s *PipelineState) AllOk() bool {
	return s.Validation.IsOk() && s.Document.IsOk() && s.Export.IsOk() && s.Email.IsOk()
}
