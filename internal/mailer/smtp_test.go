package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/brightlabs/portal-mailer/internal/config"
)

func newSMTPTestProvider() *SMTPProvider {
	return NewSMTPProvider(config.SMTPConfig{
		Host:           "smtp.gmail.com",
		Port:           587,
		User:           "studio@gmail.com",
		AppPassword:    "app-pass",
		TimeoutSeconds: 1,
	})
}

func TestSMTPSendSetsHeaders(t *testing.T) {
	p := newSMTPTestProvider()

	var captured *gomail.Message
	p.dial = func(m *gomail.Message) error {
		captured = m
		return nil
	}

	msg := &Message{
		To:      "client@example.com",
		ToName:  "Client",
		Subject: "Hello",
		HTML:    "<p>hi</p>",
	}
	result, err := p.Send(context.Background(), msg, Identity{Email: "hello@studio.com", Name: "Studio"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if result.Provider != ProviderSMTP {
		t.Errorf("provider = %s", result.Provider)
	}

	from := captured.GetHeader("From")
	if len(from) != 1 || !strings.Contains(from[0], "hello@studio.com") {
		t.Errorf("From = %v", from)
	}
	// Gmail ignores From for the envelope; Reply-To must always point back
	// to the resolved sender.
	replyTo := captured.GetHeader("Reply-To")
	if len(replyTo) != 1 || replyTo[0] != "hello@studio.com" {
		t.Errorf("Reply-To = %v, want resolved sender", replyTo)
	}
}

func TestSMTPSendExplicitReplyTo(t *testing.T) {
	p := newSMTPTestProvider()

	var captured *gomail.Message
	p.dial = func(m *gomail.Message) error {
		captured = m
		return nil
	}

	msg := &Message{To: "client@example.com", HTML: "<p>x</p>", ReplyTo: "pm@studio.com"}
	if _, err := p.Send(context.Background(), msg, Identity{Email: "hello@studio.com", Name: "Studio"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	replyTo := captured.GetHeader("Reply-To")
	if len(replyTo) != 1 || replyTo[0] != "pm@studio.com" {
		t.Errorf("Reply-To = %v, want explicit reply-to", replyTo)
	}
}

func TestSMTPSendDialFailure(t *testing.T) {
	p := newSMTPTestProvider()
	p.dial = func(m *gomail.Message) error {
		return errors.New("535 5.7.8 Username and Password not accepted")
	}

	_, err := p.Send(context.Background(), &Message{To: "a@b.com", HTML: "<p>x</p>"}, Identity{Email: "s@s.com", Name: "S"})
	if err == nil {
		t.Fatal("expected error")
	}
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("error type = %T, want *TransportError", err)
	}
	if !strings.Contains(err.Error(), "535") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestSMTPSendTimeout(t *testing.T) {
	p := newSMTPTestProvider()
	p.timeout = 20 * time.Millisecond
	p.dial = func(m *gomail.Message) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	}

	start := time.Now()
	_, err := p.Send(context.Background(), &Message{To: "a@b.com", HTML: "<p>x</p>"}, Identity{Email: "s@s.com", Name: "S"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want DeadlineExceeded", err)
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Error("send did not give up at the timeout")
	}
}
