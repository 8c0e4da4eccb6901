package logger

import "testing"

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ada.lovelace@example.com", "a***@example.com"},
		{"abc@example.com", "a***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"a@example.com", "***@example.com"},
		{"not-an-address", "***"},
		{"@example.com", "***"},
		{"trailing@", "***"},
		{"", "***"},
	}
	for _, tt := range tests {
		if got := RedactEmail(tt.in); got != tt.want {
			t.Errorf("RedactEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRedactPIIValueKeys(t *testing.T) {
	tests := []struct {
		key  string
		val  string
		want string
	}{
		{"recipient", "ada.lovelace@example.com", "a***@example.com"},
		{"to", "ada.lovelace@example.com", "a***@example.com"},
		{"recipient_email", "ada.lovelace@example.com", "a***@example.com"},
		// Addresses embedded in free-form values are caught too.
		{"error", "550 mailbox ada.lovelace@example.com unavailable", "550 mailbox a***@example.com unavailable"},
		{"provider", "brevo", "brevo"},
	}
	for _, tt := range tests {
		if got := redactPIIValue(tt.key, tt.val); got != tt.want {
			t.Errorf("redactPIIValue(%q, %q) = %q, want %q", tt.key, tt.val, got, tt.want)
		}
	}
}
