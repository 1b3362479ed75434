// Package prompt is the versioned template library for every LLM call in the
// pipeline. Defaults are compiled in; a resources directory can override any
// template at startup, so prompt iterations ship without code changes. The
// French-solvency and English-report output schemas are registered as
// sibling variants selected by configuration.
package prompt

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"
)

// Template is one reusable prompt with metadata.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
	System  string `json:"system_prompt"`
	User    string `json:"user_prompt_template"` // Go text/template
}

// Registry holds all known templates.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

var globalRegistry *Registry
var once sync.Once

// Get returns the global registry, seeded with the compiled-in defaults.
func Get() *Registry {
	once.Do(func() {
		globalRegistry = &Registry{templates: make(map[string]*Template)}
		registerDefaults(globalRegistry)
	})
	return globalRegistry
}

// Register adds or replaces a template.
func (r *Registry) Register(t *Template) error {
	if t.ID == "" {
		return fmt.Errorf("prompt ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.ID] = t
	return nil
}

// Lookup retrieves a template by ID.
func (r *Registry) Lookup(id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.templates[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("prompt %q not registered", id)
}

// Count returns the number of registered templates.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates)
}

// Render executes the user template of id with vars and returns it together
// with the system prompt.
func (r *Registry) Render(id string, vars map[string]interface{}) (user string, system string, err error) {
	t, err := r.Lookup(id)
	if err != nil {
		return "", "", err
	}
	tmpl, err := template.New(t.ID).Parse(t.User)
	if err != nil {
		return "", "", fmt.Errorf("parse template %s: %w", t.ID, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", "", fmt.Errorf("execute template %s: %w", t.ID, err)
	}
	return buf.String(), t.System, nil
}
