// Package mailer delivers transactional email for account and billing flows.
package mailer

import "context"

// Provider sends a single HTML email.
type Provider interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NoOpProvider discards mail. Used when SMTP is not configured and in tests.
type NoOpProvider struct{}

func (NoOpProvider) Send(ctx context.Context, to, subject, htmlBody string) error {
	return nil
}
