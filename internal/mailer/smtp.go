package mailer

import (
	"context"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/brightlabs/portal-mailer/internal/config"
)

// SMTPProvider sends through an authenticated SMTP relay via gomail.
//
// With Gmail the relay rewrites the From header to the authenticated account,
// so the requested sender identity is NOT honored. Reply-To is always set
// (explicit reply-to, or the resolved sender's address) so replies still
// reach the intended mailbox.
type SMTPProvider struct {
	host     string
	port     int
	user     string
	password string
	timeout  time.Duration

	// dial is swapped in tests to avoid a real SMTP connection.
	dial func(m *gomail.Message) error
}

// NewSMTPProvider creates an SMTP provider from config.
func NewSMTPProvider(cfg config.SMTPConfig) *SMTPProvider {
	p := &SMTPProvider{
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.User,
		password: cfg.AppPassword,
		timeout:  cfg.Timeout(),
	}
	p.dial = func(m *gomail.Message) error {
		d := gomail.NewDialer(p.host, p.port, p.user, p.password)
		return d.DialAndSend(m)
	}
	return p
}

func (p *SMTPProvider) Name() string { return ProviderSMTP }

// Send builds the transport-native message and delivers it. gomail has no
// context support, so the dial runs in a goroutine and is abandoned when the
// context or the configured timeout expires.
func (p *SMTPProvider) Send(ctx context.Context, msg *Message, from Identity) (*DeliveryResult, error) {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", from.Email, from.Name)
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)
	replyTo := msg.ReplyTo
	if replyTo == "" {
		replyTo = from.Email
	}
	m.SetHeader("Reply-To", replyTo)
	m.SetBody("text/html", msg.HTML)

	done := make(chan error, 1)
	go func() { done <- p.dial(m) }()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return nil, &TransportError{Provider: ProviderSMTP, Err: err}
		}
	case <-ctx.Done():
		return nil, &TransportError{Provider: ProviderSMTP, Err: ctx.Err()}
	case <-timer.C:
		return nil, &TransportError{Provider: ProviderSMTP, Err: context.DeadlineExceeded}
	}

	return &DeliveryResult{Provider: ProviderSMTP, SentAt: time.Now()}, nil
}
