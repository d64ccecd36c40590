package logger

// Standard field names for structured log lines.
const (
	FieldRunID      = "run_id"
	FieldStage      = "stage"
	FieldState      = "state"
	FieldDocumentID = "document_id"
	FieldMessageID  = "message_id"
	FieldRecipient  = "recipient"
	FieldPath       = "path"
	FieldKind       = "kind"
	FieldError      = "error"
	FieldDurationMS = "duration_ms"
)
