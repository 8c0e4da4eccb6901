package mailer

import (
	"testing"

	"github.com/brightlabs/portal-mailer/internal/config"
)

func TestSelectProvider(t *testing.T) {
	tests := []struct {
		name         string
		brevoKey     string
		sendgridKey  string
		smtpUser     string
		smtpPassword string
		want         string
		wantErr      bool
	}{
		{"brevo only", "bk", "", "", "", ProviderBrevo, false},
		{"sendgrid only", "", "sk", "", "", ProviderSendGrid, false},
		{"smtp only", "", "", "user@gmail.com", "pass", ProviderSMTP, false},
		{"brevo beats sendgrid", "bk", "sk", "", "", ProviderBrevo, false},
		{"brevo beats all", "bk", "sk", "user@gmail.com", "pass", ProviderBrevo, false},
		{"sendgrid beats smtp", "", "sk", "user@gmail.com", "pass", ProviderSendGrid, false},
		{"smtp needs both fields", "", "", "user@gmail.com", "", "", true},
		{"nothing configured", "", "", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Brevo.APIKey = tt.brevoKey
			cfg.SendGrid.APIKey = tt.sendgridKey
			cfg.SMTP.User = tt.smtpUser
			cfg.SMTP.AppPassword = tt.smtpPassword

			p, err := SelectProvider(cfg)
			if tt.wantErr {
				if err != ErrNoProvider {
					t.Fatalf("SelectProvider() error = %v, want ErrNoProvider", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SelectProvider() error = %v", err)
			}
			if p.Name() != tt.want {
				t.Errorf("SelectProvider() = %s, want %s", p.Name(), tt.want)
			}
		})
	}
}

func TestErrNoProviderMessage(t *testing.T) {
	cfg := &config.Config{}
	_, err := SelectProvider(cfg)
	if err == nil {
		t.Fatal("expected error with no credentials")
	}
	want := "No email service configured"
	if got := err.Error(); len(got) < len(want) || got[:len(want)] != want {
		t.Errorf("error = %q, want prefix %q", got, want)
	}
}
