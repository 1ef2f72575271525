// Package providers is the manifest registry of §2's "Composition": each
// provider contributes an ordered list of mutations for configure and
// unconfigure, built from the codec/mutate/render primitives. The
// CLI driver dispatches `configure <agent>` / `unconfigure <agent>` here.
package providers

import (
	"sort"

	"github.com/poe-code/poe-code/internal/xerrors"
	"github.com/poe-code/poe-code/mutate"
	"github.com/poe-code/poe-code/render"
)

// Manifest is what a provider contributes to the engine: the mutation list
// for installing Poe routing, and the list for removing it.
type Manifest struct {
	ID          string
	DisplayName string
	Binary      string
	Configure   func(opts mutate.Options) []mutate.Mutation
	Unconfigure func(opts mutate.Options) []mutate.Mutation
}

var registry = map[string]Manifest{}

func register(m Manifest) {
	registry[m.ID] = m
}

// Get looks up a provider by id, returning UnsupportedAgentError if it is
// not registered (§7 "UnsupportedAgentError: surfaces to caller").
func Get(id string) (Manifest, error) {
	m, ok := registry[id]
	if !ok {
		return Manifest{}, &xerrors.UnsupportedAgentError{Agent: id}
	}
	return m, nil
}

// List returns every registered provider id in stable, sorted order.
func List() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var bundledTemplates = map[string]string{}

func registerTemplate(id, body string) {
	bundledTemplates[id] = body
}

// RegisterTemplates loads every provider's bundled template bodies into reg.
// The CLI driver calls this once at startup before dispatching to a
// provider's Configure/Unconfigure mutation list.
func RegisterTemplates(reg *render.Registry) error {
	for id, body := range bundledTemplates {
		if err := reg.Add(id, body); err != nil {
			return err
		}
	}
	return nil
}
