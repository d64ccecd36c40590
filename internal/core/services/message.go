package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"

	"github.com/cockroachdb/errors"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

// base64LineLength is the RFC 2045 limit for encoded lines.
const base64LineLength = 76

// OutgoingMessage is an email with a single attachment.
type OutgoingMessage struct {
	To         string
	Subject    string
	Body       string
	Attachment domain.ExportedDocument
}

// SubmissionMessage builds the notification mail for a submission.
func SubmissionMessage(sub domain.Submission, doc domain.DocumentRef, file domain.ExportedDocument) OutgoingMessage {
	body := fmt.Sprintf(
		"New submission received from %s:\n\nDocument: %s\nView online: %s\n\n"+
			"Please find the submission details in the attached DOCX file.\n",
		sub.Name, doc.Title, doc.URL,
	)
	return OutgoingMessage{
		To:         sub.RecipientEmail,
		Subject:    "New Submission: " + sub.Name,
		Body:       body,
		Attachment: file,
	}
}

// ComposeMessage renders msg as a multipart/mixed RFC 5322 message with
// CRLF line endings.
func ComposeMessage(msg OutgoingMessage) ([]byte, error) {
	if msg.To == "" {
		return nil, errors.New("message has no recipient")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: %s\r\n\r\n",
		mime.FormatMediaType("multipart/mixed", map[string]string{"boundary": mw.Boundary()}))

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {`text/plain; charset="utf-8"`},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return nil, err
	}
	qp := quotedprintable.NewWriter(text)
	if _, err := io.WriteString(qp, msg.Body); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}

	if att := msg.Attachment; len(att.Content) > 0 {
		mimeType := att.MIMEType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {mime.FormatMediaType(mimeType, map[string]string{"name": att.Filename})},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": att.Filename})},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64Lines(part, att.Content); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBase64Lines(w io.Writer, content []byte) error {
	encoded := base64.StdEncoding.EncodeToString(content)
	for len(encoded) > 0 {
		n := min(base64LineLength, len(encoded))
		if _, err := io.WriteString(w, encoded[:n]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
