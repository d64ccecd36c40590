package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors: adapters wrap and mark
// their faults with one of these so callers can classify them.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// Validation Errors.

	// ErrEmptyField indicates a required field was blank after trimming.
	ErrEmptyField = errors.New("Field cannot be empty") //nolint:staticcheck // user-facing message

	// ErrInvalidEmailFormat indicates an address is not local-part@domain.
	ErrInvalidEmailFormat = errors.New("Invalid email format") //nolint:staticcheck // user-facing message

	// Authentication Errors.

	// ErrNoCredential indicates no stored credential exists and no
	// interactive authorization is possible.
	ErrNoCredential = errors.New("no credential available")

	// ErrRefreshFailed indicates the refresh-token exchange failed.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrInteractiveFlowFailed indicates the authorization-code flow failed.
	ErrInteractiveFlowFailed = errors.New("interactive authorization failed")

	// Stage Errors.

	// ErrDocumentCreateFailed indicates the document could not be created or populated.
	ErrDocumentCreateFailed = errors.New("document creation failed")

	// ErrExportFailed indicates the document could not be exported.
	ErrExportFailed = errors.New("document export failed")

	// ErrSendFailed indicates the email could not be sent.
	ErrSendFailed = errors.New("email sending failed")

	// ErrTimeout indicates an external call exceeded its deadline.
	ErrTimeout = errors.New("timeout")

	// ErrUnexpected marks faults nobody anticipated (recovered panics).
	ErrUnexpected = errors.New("unexpected error")
)

// ErrorKind is the top-level class of a pipeline failure.
type ErrorKind string

// Error kinds.
const (
	KindNone       ErrorKind = ""
	KindValidation ErrorKind = "ValidationError"
	KindAuth       ErrorKind = "AuthError"
	KindStage      ErrorKind = "StageError"
	KindUnexpected ErrorKind = "UnexpectedError"
)

// KindOf classifies err. Auth errors take precedence over stage errors
// because a stage that failed to obtain credentials is marked with both.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrEmptyField), errors.Is(err, ErrInvalidEmailFormat):
		return KindValidation
	case errors.Is(err, ErrNoCredential),
		errors.Is(err, ErrRefreshFailed),
		errors.Is(err, ErrInteractiveFlowFailed):
		return KindAuth
	case errors.Is(err, ErrDocumentCreateFailed),
		errors.Is(err, ErrExportFailed),
		errors.Is(err, ErrSendFailed),
		errors.Is(err, ErrTimeout):
		return KindStage
	default:
		return KindUnexpected
	}
}

// FieldError reports a validation failure for a single submission field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Mark returns an error that reads like err but also matches sentinel
// under errors.Is. Marking is idempotent.
func Mark(err, sentinel error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel) {
		return err
	}
	return &markedError{cause: err, mark: sentinel}
}

type markedError struct {
	cause error
	mark  error
}

func (e *markedError) Error() string {
	return e.cause.Error()
}

func (e *markedError) Unwrap() []error {
	return []error{e.cause, e.mark}
}
