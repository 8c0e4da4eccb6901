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

// SendGridProvider sends through the SendGrid v3 API (POST /v3/mail/send).
type SendGridProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSendGridProvider creates a SendGrid provider from config.
func NewSendGridProvider(cfg config.SendGridConfig) *SendGridProvider {
	return &SendGridProvider{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

func (p *SendGridProvider) Name() string { return ProviderSendGrid }

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgPersonalization struct {
	To      []sgAddress `json:"to"`
	Subject string      `json:"subject"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgPayload struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Content          []sgContent         `json:"content"`
	ReplyTo          *sgAddress          `json:"reply_to,omitempty"`
}

// Send posts the message to SendGrid. A successful send is a 202 with an
// empty body, so the result carries only the X-Message-Id header; the body is
// intentionally not parsed.
func (p *SendGridProvider) Send(ctx context.Context, msg *Message, from Identity) (*DeliveryResult, error) {
	payload := sgPayload{
		Personalizations: []sgPersonalization{{
			To:      []sgAddress{{Email: msg.To, Name: msg.ToName}},
			Subject: msg.Subject,
		}},
		From:    sgAddress{Email: from.Email, Name: from.Name},
		Content: []sgContent{{Type: "text/html", Value: msg.HTML}},
	}
	if msg.ReplyTo != "" {
		payload.ReplyTo = &sgAddress{Email: msg.ReplyTo}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal sendgrid payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/mail/send", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Provider: ProviderSendGrid, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, &ProviderError{Provider: ProviderSendGrid, Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	return &DeliveryResult{
		Provider:  ProviderSendGrid,
		MessageID: resp.Header.Get("X-Message-Id"),
		SentAt:    time.Now(),
	}, nil
}
