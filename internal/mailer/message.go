// Package mailer sends transactional email through one of three backends:
// the Brevo API, the SendGrid API, or an authenticated SMTP relay. Exactly
// one backend is active per process, chosen from configured credentials at
// startup.
package mailer

import "time"

// Identity is a resolved sender: both fields are always populated before a
// message is handed to a provider.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Message is a single outbound email. It is ephemeral: nothing in this
// package persists it.
type Message struct {
	To          string `json:"to"`
	ToName      string `json:"to_name,omitempty"`
	Subject     string `json:"subject"`
	HTML        string `json:"html"`
	ReplyTo     string `json:"reply_to,omitempty"`
	SenderEmail string `json:"sender_email,omitempty"`
	SenderName  string `json:"sender_name,omitempty"`
}

// DeliveryResult is the normalized outcome of a successful provider call.
type DeliveryResult struct {
	Provider  string         `json:"provider"`
	MessageID string         `json:"message_id,omitempty"`
	SentAt    time.Time      `json:"sent_at"`
	Body      map[string]any `json:"body,omitempty"`
}
