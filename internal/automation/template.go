package automation

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/osteele/liquid"
)

// Renderer fills {variable} placeholders in template subject and body using
// the Liquid engine. Unknown variables render as empty strings, so a partial
// variable set degrades the content rather than failing the send.
type Renderer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewRenderer creates a renderer with the custom filters registered.
func NewRenderer() *Renderer {
	r := &Renderer{engine: liquid.NewEngine()}

	// {name | default: "there"} for greeting lines with no known name.
	r.engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		strVal := fmt.Sprintf("%v", value)
		if strVal == "" || strVal == "<nil>" {
			return defaultVal
		}
		return value
	})

	return r
}

// Templates use single-brace {variable} placeholders. Liquid output tags are
// double-braced, so placeholders are rewritten before parsing. Anything
// already double-braced is passed through untouched. The placeholder grammar
// is deliberately narrow: an identifier, optionally piped to the default
// filter with a quoted argument. Any other brace content, CSS rules in a
// <style> block most of all, is left alone and never reaches Liquid.
var placeholderRegex = regexp.MustCompile(`\{\{[^{}]*\}\}|\{([a-zA-Z_][a-zA-Z0-9_]*(?:\s*\|\s*default:\s*(?:"[^"]*"|'[^']*'))?)\}`)

func toLiquid(src string) string {
	return placeholderRegex.ReplaceAllStringFunc(src, func(match string) string {
		if len(match) >= 2 && match[1] == '{' {
			return match
		}
		return "{{ " + match[1:len(match)-1] + " }}"
	})
}

// Render expands placeholders in src with the given variables.
func (r *Renderer) Render(src string, vars map[string]any) (string, error) {
	tmpl, err := r.parse(src)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	out, err := tmpl.RenderString(vars)
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return out, nil
}

// RenderTemplate renders a stored template's subject and HTML body.
func (r *Renderer) RenderTemplate(t *Template, vars map[string]any) (subject, html string, err error) {
	subject, err = r.Render(t.Subject, vars)
	if err != nil {
		return "", "", fmt.Errorf("template %s subject: %w", t.Name, err)
	}
	html, err = r.Render(t.HTML, vars)
	if err != nil {
		return "", "", fmt.Errorf("template %s body: %w", t.Name, err)
	}
	return subject, html, nil
}

func (r *Renderer) parse(src string) (*liquid.Template, error) {
	if cached, ok := r.cache.Load(src); ok {
		return cached.(*liquid.Template), nil
	}
	tmpl, err := r.engine.ParseString(toLiquid(src))
	if err != nil {
		return nil, err
	}
	r.cache.Store(src, tmpl)
	return tmpl, nil
}
