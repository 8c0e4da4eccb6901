package mailer

import (
	"context"
	"fmt"

	"github.com/brightlabs/portal-mailer/internal/metrics"
	"github.com/brightlabs/portal-mailer/internal/pkg/logger"
)

// SenderResolver supplies a complete sender identity for messages that do
// not carry one. Implementations must not fail: resolution falls back to a
// configured identity rather than blocking a send.
type SenderResolver interface {
	Resolve(ctx context.Context, email, name string) Identity
}

// Mailer is the sending facade: it resolves the sender identity and
// dispatches through the single active provider. The provider is selected
// once at construction and never re-probed at send time.
type Mailer struct {
	provider Provider
	resolver SenderResolver
}

// New wires an already-selected provider to the resolver. Provider selection
// (and the ErrNoProvider failure path) lives in SelectProvider, which runs
// once at startup.
func New(provider Provider, resolver SenderResolver) *Mailer {
	return &Mailer{provider: provider, resolver: resolver}
}

// Provider returns the active provider's identifier.
func (m *Mailer) Provider() string { return m.provider.Name() }

// Send resolves the sender and delivers the message. It performs exactly one
// attempt; retry is the caller's responsibility.
func (m *Mailer) Send(ctx context.Context, msg *Message) (*DeliveryResult, error) {
	if msg.To == "" {
		return nil, fmt.Errorf("message has no recipient")
	}
	if msg.HTML == "" {
		return nil, fmt.Errorf("message has no HTML body")
	}

	from := m.resolver.Resolve(ctx, msg.SenderEmail, msg.SenderName)

	result, err := m.provider.Send(ctx, msg, from)
	if err != nil {
		metrics.SendsTotal.WithLabelValues(m.provider.Name(), "error").Inc()
		logger.Warn("mail send failed",
			"provider", m.provider.Name(),
			"to", msg.To,
			"error", err)
		return nil, err
	}

	metrics.SendsTotal.WithLabelValues(m.provider.Name(), "ok").Inc()
	logger.Info("mail sent",
		"provider", m.provider.Name(),
		"to", msg.To,
		"message_id", result.MessageID)
	return result, nil
}
