package driven

import "context"

// MailService delivers fully-formed messages.
type MailService interface {
	// Send delivers raw (an RFC 5322 message) on behalf of sender
	// ("me" for the authenticated user) and returns the message ID.
	Send(ctx context.Context, raw []byte, sender string) (string, error)
}
