package services

import (
	"net/mail"
	"strings"

	"golang.org/x/net/idna"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

// maxDomainLength is the DNS limit for a full domain name.
const maxDomainLength = 253

// Validator checks and normalises raw submissions. It is pure: it never
// touches the network or the filesystem.
type Validator struct {
	defaultRecipient string
}

// NewValidator creates a validator. defaultRecipient, if set, is used
// when a submission leaves the recipient blank.
func NewValidator(defaultRecipient string) *Validator {
	return &Validator{defaultRecipient: strings.TrimSpace(defaultRecipient)}
}

// Validate checks every field of raw and returns the normalised
// submission. On failure the error joins one *domain.FieldError per bad
// field, in field order.
func (v *Validator) Validate(raw domain.RawSubmission) (domain.Submission, error) {
	var (
		sub  domain.Submission
		errs fieldErrors
		err  error
	)

	if sub.Name, err = requireText(raw.Name); err != nil {
		errs = append(errs, &domain.FieldError{Field: "name", Err: err})
	}
	if sub.Email, err = normalizeEmail(raw.Email); err != nil {
		errs = append(errs, &domain.FieldError{Field: "email", Err: err})
	}
	if sub.Address, err = requireText(raw.Address); err != nil {
		errs = append(errs, &domain.FieldError{Field: "address", Err: err})
	}

	recipient := raw.RecipientEmail
	if strings.TrimSpace(recipient) == "" && v != nil {
		recipient = v.defaultRecipient
	}
	if sub.RecipientEmail, err = normalizeEmail(recipient); err != nil {
		errs = append(errs, &domain.FieldError{Field: "recipient_email", Err: err})
	}

	if len(errs) > 0 {
		return domain.Submission{}, errs
	}
	return sub, nil
}

func requireText(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", domain.ErrEmptyField
	}
	return s, nil
}

// normalizeEmail accepts a single bare local@domain address. The local
// part is kept as written; the domain is lower-cased and converted to
// its ASCII (punycode) form.
func normalizeEmail(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", domain.ErrInvalidEmailFormat
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return "", domain.ErrInvalidEmailFormat
	}

	at := strings.LastIndexByte(s, '@')
	local, host := s[:at], s[at+1:]
	if local == "" {
		return "", domain.ErrInvalidEmailFormat
	}

	ascii, err := idna.Lookup.ToASCII(strings.ToLower(host))
	if err != nil || !validHostname(ascii) {
		return "", domain.ErrInvalidEmailFormat
	}
	return local + "@" + ascii, nil
}

// validHostname requires at least two non-empty labels of legal length.
func validHostname(host string) bool {
	if host == "" || len(host) > maxDomainLength {
		return false
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if l == "" || len(l) > 63 {
			return false
		}
	}
	return true
}

// fieldErrors collects per-field validation failures.
type fieldErrors []error

func (e fieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e fieldErrors) Unwrap() []error {
	return e
}
