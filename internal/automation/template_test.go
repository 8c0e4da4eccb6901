package automation

import (
	"testing"
)

func TestRendererPlaceholders(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name string
		src  string
		vars map[string]any
		want string
	}{
		{
			name: "single placeholder",
			src:  "Hello {recipient_name}!",
			vars: map[string]any{"recipient_name": "Ada"},
			want: "Hello Ada!",
		},
		{
			name: "multiple placeholders",
			src:  "{project_name}: {update_text}",
			vars: map[string]any{"project_name": "Relaunch", "update_text": "design approved"},
			want: "Relaunch: design approved",
		},
		{
			name: "missing variable renders empty",
			src:  "Hi {recipient_name}, welcome",
			vars: map[string]any{},
			want: "Hi , welcome",
		},
		{
			name: "default filter",
			src:  `Hi {recipient_name | default: "there"}`,
			vars: map[string]any{},
			want: "Hi there",
		},
		{
			name: "default filter with value",
			src:  `Hi {recipient_name | default: "there"}`,
			vars: map[string]any{"recipient_name": "Ada"},
			want: "Hi Ada",
		},
		{
			name: "no placeholders",
			src:  "plain text",
			vars: map[string]any{"unused": "x"},
			want: "plain text",
		},
		{
			name: "liquid output tags pass through",
			src:  "Hi {{ recipient_name }}",
			vars: map[string]any{"recipient_name": "Ada"},
			want: "Hi Ada",
		},
		{
			name: "css rules are not placeholders",
			src:  "<style>p {color: red} .btn { margin: 0 }</style><p>Hi {recipient_name}</p>",
			vars: map[string]any{"recipient_name": "Ada"},
			want: "<style>p {color: red} .btn { margin: 0 }</style><p>Hi Ada</p>",
		},
		{
			name: "braced non-identifier content survives",
			src:  `{not a placeholder} but {project_name} is`,
			vars: map[string]any{"project_name": "Relaunch"},
			want: "{not a placeholder} but Relaunch is",
		},
		{
			name: "single-quoted default filter",
			src:  "Hi {recipient_name | default: 'there'}",
			vars: map[string]any{},
			want: "Hi there",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(tt.src, tt.vars)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderTemplate(t *testing.T) {
	r := NewRenderer()
	tmpl := &Template{
		Name:    "project-update",
		Subject: "Update on {project_name}",
		HTML:    "<p>Hi {recipient_name}, {update_text}</p>",
	}
	subject, html, err := r.RenderTemplate(tmpl, map[string]any{
		"project_name":   "Relaunch",
		"recipient_name": "Ada",
		"update_text":    "phase two started",
	})
	if err != nil {
		t.Fatalf("RenderTemplate() error = %v", err)
	}
	if subject != "Update on Relaunch" {
		t.Errorf("subject = %q", subject)
	}
	if html != "<p>Hi Ada, phase two started</p>" {
		t.Errorf("html = %q", html)
	}
}

func TestEventTypeValid(t *testing.T) {
	for _, e := range EventTypes {
		if !e.Valid() {
			t.Errorf("%s should be valid", e)
		}
	}
	if EventType("made_up").Valid() {
		t.Error("unknown event type should be invalid")
	}
}
