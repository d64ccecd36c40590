package domain

import "time"

// RawSubmission is user input exactly as received from the CLI or a tool call.
type RawSubmission struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	RecipientEmail string `json:"recipient_email"`
}

// Submission is a validated RawSubmission: fields are trimmed and
// addresses normalised. Only the validator produces one, so code that
// receives a Submission never re-validates it.
type Submission struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	RecipientEmail string `json:"recipient_email"`
}

// DocumentRef identifies the Google Doc created for a submission.
type DocumentRef struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ExportedDocument is the binary rendition of a DocumentRef.
type ExportedDocument struct {
	Content  []byte `json:"-"`
	MIMEType string `json:"mime_type"`
	Filename string `json:"filename"`
}

// SentMessage identifies a delivered email.
type SentMessage struct {
	ID        string `json:"id"`
	Recipient string `json:"recipient"`
}

// SubmissionReport is the single user-facing outcome of one pipeline run.
type SubmissionReport struct {
	RunID          string    `json:"run_id"`
	Success        bool      `json:"success"`
	Message        string    `json:"message"`
	DocumentID     string    `json:"document_id,omitempty"`
	DocumentURL    string    `json:"document_url,omitempty"`
	EmailMessageID string    `json:"email_message_id,omitempty"`
	Recipient      string    `json:"recipient,omitempty"`
	FailedStage    State     `json:"failed_stage,omitempty"`
	FailureKind    ErrorKind `json:"failure_kind,omitempty"`
	RetryCount     int       `json:"retry_count"`
	ArchiveURI     string    `json:"archive_uri,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Duration returns how long the run took.
func (r *SubmissionReport) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
