// Package render implements the named template registry and renderer of
// §4.D: Mustache-style expansion with HTML escaping disabled. Go has no
// Mustache library in active use anywhere nearby, so this builds on
// text/template (which, unlike html/template, never escapes output) plus
// Masterminds/sprig's function map for the handful of helpers templates
// commonly need (default, quote, indent, ...).
package render

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/poe-code/poe-code/internal/xerrors"
)

// Loader supplies template text by id, used when templates come from disk
// rather than the bundled registry.
type Loader interface {
	Load(id string) (string, error)
}

// Registry holds named template bodies and renders them with context.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]string
	compiled  map[string]*template.Template
	loader    Loader
}

// New returns an empty registry. Built-in templates are added with Add
// (providers.RegisterTemplates adds every provider's bundled templates).
func New() *Registry {
	return &Registry{
		templates: make(map[string]string),
		compiled:  make(map[string]*template.Template),
	}
}

// WithLoader attaches a disk loader consulted when a template id is not
// already registered in-memory. Returns the registry for chaining.
func (r *Registry) WithLoader(l Loader) *Registry {
	r.loader = l
	return r
}

// Add registers a bundled template body under name, compiling it
// immediately so a malformed template fails fast at startup rather than at
// first use.
func (r *Registry) Add(name, text string) error {
	tmpl, err := compile(name, text)
	if err != nil {
		return &xerrors.TemplateError{TemplateID: name, Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[name] = text
	r.compiled[name] = tmpl
	return nil
}

func compile(name, text string) (*template.Template, error) {
	return template.New(name).Option("missingkey=error").Funcs(sprig.TxtFuncMap()).Parse(text)
}

// guardTraversal rejects template ids that escape the bundle root: ".." or
// absolute segments, mirroring the path-traversal guard required when
// templates are loaded from disk.
func guardTraversal(id string) error {
	if id == "" {
		return &xerrors.ValidationError{Message: "template id must not be empty"}
	}
	if path.IsAbs(id) {
		return &xerrors.ValidationError{Message: fmt.Sprintf("template id %q must not be absolute", id)}
	}
	clean := path.Clean(id)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return &xerrors.ValidationError{Message: fmt.Sprintf("template id %q escapes the template root", id)}
	}
	return nil
}

// Render expands the named template against context. Ids are resolved from
// the in-memory bundle first, then the disk loader (if attached); ids
// loaded from disk are always checked with the traversal guard before use.
func (r *Registry) Render(name string, context any) (string, error) {
	r.mu.RLock()
	tmpl, ok := r.compiled[name]
	r.mu.RUnlock()
	if ok {
		return execute(name, tmpl, context)
	}

	if r.loader == nil {
		return "", &xerrors.TemplateError{TemplateID: name, Err: fmt.Errorf("template %q not found", name)}
	}
	if err := guardTraversal(name); err != nil {
		return "", err
	}

	text, err := r.loader.Load(name)
	if err != nil {
		return "", &xerrors.TemplateError{TemplateID: name, Err: err}
	}

	compiled, err := compile(name, text)
	if err != nil {
		return "", &xerrors.TemplateError{TemplateID: name, Err: err}
	}

	r.mu.Lock()
	r.templates[name] = text
	r.compiled[name] = compiled
	r.mu.Unlock()

	return execute(name, compiled, context)
}

func execute(name string, tmpl *template.Template, context any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, context); err != nil {
		return "", &xerrors.TemplateError{TemplateID: name, Err: err}
	}
	return buf.String(), nil
}

// Has reports whether name is registered in-memory (it does not consult the
// disk loader, since that would require a filesystem round trip).
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.templates[name]
	return ok
}
