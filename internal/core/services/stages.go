package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/custodia-labs/docrelay/internal/core/domain"
	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
	"github.com/custodia-labs/docrelay/internal/logger"
)

const (
	// DOCXMimeType is the export format for submission documents.
	DOCXMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// documentURLPrefix is prepended to a document ID to form its edit URL.
	documentURLPrefix = "https://docs.google.com/document/d/"

	// bodyInsertIndex is the first writable index of a new document.
	bodyInsertIndex = 1

	// authenticatedSender addresses the user the credential belongs to.
	authenticatedSender = "me"
)

// CreateStage creates the submission document.
type CreateStage interface {
	Create(ctx context.Context, sub domain.Submission) (domain.DocumentRef, error)
}

// ExportStage renders a document for attachment.
type ExportStage interface {
	Export(ctx context.Context, doc domain.DocumentRef) (domain.ExportedDocument, error)
}

// SendStage mails the exported document to the recipient.
type SendStage interface {
	Send(ctx context.Context, sub domain.Submission, doc domain.DocumentRef, file domain.ExportedDocument) (domain.SentMessage, error)
}

// DocumentURL returns the edit URL of a document.
func DocumentURL(documentID string) string {
	return documentURLPrefix + documentID
}

// DocumentBody renders the text written into a submission document.
func DocumentBody(sub domain.Submission) string {
	return fmt.Sprintf("Name: %s\n\nEmail: %s\n\nAddress: %s", sub.Name, sub.Email, sub.Address)
}

// DocumentTitle names a submission document created at t.
func DocumentTitle(sub domain.Submission, t time.Time) string {
	return fmt.Sprintf("Submission - %s - %s", sub.Name, t.Format(time.RFC3339))
}

// DocumentCreator creates, fills and optionally files the submission document.
type DocumentCreator struct {
	docs     driven.DocumentService
	folderID string
	now      func() time.Time
}

// NewDocumentCreator creates the document stage. folderID may be empty.
func NewDocumentCreator(docs driven.DocumentService, folderID string) *DocumentCreator {
	return &DocumentCreator{docs: docs, folderID: folderID, now: time.Now}
}

// Create implements CreateStage.
func (c *DocumentCreator) Create(ctx context.Context, sub domain.Submission) (domain.DocumentRef, error) {
	title := DocumentTitle(sub, c.now())

	id, err := c.docs.CreateDocument(ctx, title)
	if err != nil {
		return domain.DocumentRef{}, stageFailure(ctx, errors.Wrap(err, "creating document"), domain.ErrDocumentCreateFailed)
	}
	if id == "" {
		return domain.DocumentRef{}, errors.Wrap(domain.ErrDocumentCreateFailed, "service returned no document ID")
	}
	logger.Debugw("document created", logger.FieldDocumentID, id)

	if err := c.docs.InsertText(ctx, id, DocumentBody(sub), bodyInsertIndex); err != nil {
		return domain.DocumentRef{}, stageFailure(ctx, errors.Wrap(err, "writing document body"), domain.ErrDocumentCreateFailed)
	}

	if c.folderID != "" {
		if err := c.docs.MoveToFolder(ctx, id, c.folderID); err != nil {
			return domain.DocumentRef{}, stageFailure(ctx, errors.Wrapf(err, "moving document to folder %s", c.folderID), domain.ErrDocumentCreateFailed)
		}
	}

	return domain.DocumentRef{ID: id, URL: DocumentURL(id), Title: title}, nil
}

// DocumentExporter exports a document as DOCX.
type DocumentExporter struct {
	exports  driven.ExportService
	verifier driven.DocumentVerifier
}

// NewDocumentExporter creates the export stage. A non-nil verifier
// rejects exports that do not open as DOCX.
func NewDocumentExporter(exports driven.ExportService, verifier driven.DocumentVerifier) *DocumentExporter {
	return &DocumentExporter{exports: exports, verifier: verifier}
}

// Export implements ExportStage.
func (e *DocumentExporter) Export(ctx context.Context, doc domain.DocumentRef) (domain.ExportedDocument, error) {
	content, err := e.exports.Export(ctx, doc.ID, DOCXMimeType)
	if err != nil {
		return domain.ExportedDocument{}, stageFailure(ctx, errors.Wrapf(err, "exporting document %s", doc.ID), domain.ErrExportFailed)
	}
	if len(content) == 0 {
		return domain.ExportedDocument{}, errors.Wrap(domain.ErrExportFailed, "export returned no content")
	}
	if e.verifier != nil {
		if err := e.verifier.Verify(content); err != nil {
			return domain.ExportedDocument{}, domain.Mark(errors.Wrapf(err, "export of %s is not a DOCX package", doc.ID), domain.ErrExportFailed)
		}
	}
	return domain.ExportedDocument{
		Content:  content,
		MIMEType: DOCXMimeType,
		Filename: doc.Title + ".docx",
	}, nil
}

// EmailSender mails the exported document.
type EmailSender struct {
	mail driven.MailService
}

// NewEmailSender creates the email stage.
func NewEmailSender(mail driven.MailService) *EmailSender {
	return &EmailSender{mail: mail}
}

// Send implements SendStage.
func (s *EmailSender) Send(
	ctx context.Context,
	sub domain.Submission,
	doc domain.DocumentRef,
	file domain.ExportedDocument,
) (domain.SentMessage, error) {
	raw, err := ComposeMessage(SubmissionMessage(sub, doc, file))
	if err != nil {
		return domain.SentMessage{}, domain.Mark(errors.Wrap(err, "composing message"), domain.ErrSendFailed)
	}

	id, err := s.mail.Send(ctx, raw, authenticatedSender)
	if err != nil {
		return domain.SentMessage{}, stageFailure(ctx, errors.Wrapf(err, "sending to %s", sub.RecipientEmail), domain.ErrSendFailed)
	}
	return domain.SentMessage{ID: id, Recipient: sub.RecipientEmail}, nil
}

// stageFailure marks err with the stage sentinel, and with ErrTimeout
// when the stage deadline is what stopped it.
func stageFailure(ctx context.Context, err, sentinel error) error {
	err = domain.Mark(err, sentinel)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = domain.Mark(err, domain.ErrTimeout)
	}
	return err
}
