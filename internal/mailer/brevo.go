package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brightlabs/portal-mailer/internal/config"
)

// BrevoProvider sends through the Brevo transactional API
// (POST /v3/smtp/email).
type BrevoProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewBrevoProvider creates a Brevo provider from config.
func NewBrevoProvider(cfg config.BrevoConfig) *BrevoProvider {
	return &BrevoProvider{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

func (p *BrevoProvider) Name() string { return ProviderBrevo }

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoPayload struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	ReplyTo     *brevoAddress  `json:"replyTo,omitempty"`
}

// Send posts the message to Brevo. A 2xx response returns the parsed JSON
// body (carries messageId); anything else is a ProviderError with the status
// and body text.
func (p *BrevoProvider) Send(ctx context.Context, msg *Message, from Identity) (*DeliveryResult, error) {
	payload := brevoPayload{
		Sender:      brevoAddress{Email: from.Email, Name: from.Name},
		To:          []brevoAddress{{Email: msg.To, Name: msg.ToName}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	}
	if msg.ReplyTo != "" {
		payload.ReplyTo = &brevoAddress{Email: msg.ReplyTo}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal brevo payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/smtp/email", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Provider: ProviderBrevo, Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{Provider: ProviderBrevo, Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	result := &DeliveryResult{Provider: ProviderBrevo, SentAt: time.Now()}
	var parsed map[string]any
	if json.Unmarshal(respBody, &parsed) == nil {
		result.Body = parsed
		if id, ok := parsed["messageId"].(string); ok {
			result.MessageID = id
		}
	}
	return result, nil
}
