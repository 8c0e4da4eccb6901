package mailer

import (
	"context"

	"github.com/brightlabs/portal-mailer/internal/config"
)

// Provider identifiers.
const (
	ProviderBrevo    = "brevo"
	ProviderSendGrid = "sendgrid"
	ProviderSMTP     = "smtp"
)

// Provider delivers a message through one email backend. Implementations do
// not retry: retry policy belongs to the caller (the automation job layer).
type Provider interface {
	// Name returns the provider identifier ("brevo", "sendgrid", "smtp").
	Name() string
	// Send delivers the message from the resolved sender identity. Errors
	// are *ProviderError for non-2xx API responses and *TransportError for
	// network/SMTP failures.
	Send(ctx context.Context, msg *Message, from Identity) (*DeliveryResult, error)
}

// SelectProvider picks the single active backend from configured credentials.
//
// The priority order Brevo > SendGrid > SMTP is a frozen behavior: Brevo and
// SendGrid support custom-domain from addresses while the Gmail relay rewrites
// them, so API providers always win when their keys are present. Changing the
// order is a breaking change for callers that rely on the sender identity
// being honored.
func SelectProvider(cfg *config.Config) (Provider, error) {
	switch {
	case cfg.Brevo.APIKey != "":
		return NewBrevoProvider(cfg.Brevo), nil
	case cfg.SendGrid.APIKey != "":
		return NewSendGridProvider(cfg.SendGrid), nil
	case cfg.SMTP.User != "" && cfg.SMTP.AppPassword != "":
		return NewSMTPProvider(cfg.SMTP), nil
	}
	return nil, ErrNoProvider
}
