package google

import (
	"context"
	"encoding/base64"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
)

// Ensure MailClient implements the interface.
var _ driven.MailService = (*MailClient)(nil)

// MailClient sends mail through the Gmail API.
type MailClient struct {
	gmail *gmail.Service
	rate  *RateLimiter
}

// NewMailClient creates a MailService.
func NewMailClient(svc *gmail.Service) *MailClient {
	return &MailClient{gmail: svc, rate: NewRateLimiter(ServiceGmail)}
}

// Send delivers a raw RFC 5322 message as sender.
func (c *MailClient) Send(ctx context.Context, raw []byte, sender string) (string, error) {
	if err := c.rate.Wait(ctx); err != nil {
		return "", err
	}
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	sent, err := c.gmail.Users.Messages.Send(sender, msg).Context(ctx).Do()
	c.rate.Observe(err)
	if err != nil {
		return "", WrapError(err)
	}
	return sent.Id, nil
}
