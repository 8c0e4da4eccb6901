package mailer

import (
	"errors"
	"fmt"
)

// ErrNoProvider is returned when no provider credentials are configured.
// Sending cannot proceed; the server refuses to start in this state.
var ErrNoProvider = errors.New("No email service configured. Set BREVO_API_KEY, SENDGRID_API_KEY, or SMTP_USER/SMTP_APP_PASSWORD")

// ProviderError is a non-2xx HTTP response from a provider API. The status
// and response body are preserved so the automation layer can record them
// verbatim on the failed job.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error: %d %s", providerDisplayName(e.Provider), e.Status, e.Body)
}

// TransportError is a network or SMTP-level failure: the request never got a
// usable response from the provider.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport error: %v", providerDisplayName(e.Provider), e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func providerDisplayName(name string) string {
	switch name {
	case ProviderBrevo:
		return "Brevo"
	case ProviderSendGrid:
		return "SendGrid"
	case ProviderSMTP:
		return "SMTP"
	}
	return name
}
