// Package docx opens exported DOCX packages to confirm they can be read
// before they are mailed out.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
)

// Ensure Verifier implements the interface.
var _ driven.DocumentVerifier = (*Verifier)(nil)

const documentPart = "word/document.xml"

// ErrNotDOCX is returned for content that is not a WordprocessingML package.
var ErrNotDOCX = errors.New("not a DOCX package")

// Verifier checks exported DOCX content.
type Verifier struct{}

// NewVerifier creates a DOCX verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify implements driven.DocumentVerifier. The package must be a zip
// with a parseable word/document.xml part.
func (v *Verifier) Verify(content []byte) error {
	_, err := Text(content)
	return err
}

// Text returns the document's paragraphs joined by newlines.
func Text(content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "opening package"), ErrNotDOCX)
	}

	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", errors.Mark(errors.Wrapf(err, "opening %s", documentPart), ErrNotDOCX)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", errors.Mark(errors.Wrapf(err, "reading %s", documentPart), ErrNotDOCX)
		}

		return parseDocumentXML(data)
	}
	return "", errors.Wrapf(ErrNotDOCX, "missing %s", documentPart)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", errors.Mark(errors.Wrapf(err, "parsing %s", documentPart), ErrNotDOCX)
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, t := range r.Text {
				result.WriteString(t.Content)
			}
		}
	}
	return strings.TrimSpace(result.String()), nil
}
