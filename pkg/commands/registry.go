package commands

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateCommand = errors.New("duplicate command name")
	ErrCommandNotFound  = errors.New("command not found")
)

// Registry maps command names and aliases to definitions. It is built once
// at startup; reads after that need no locking.
type Registry struct {
	defs  []*Definition
	names map[string]*Definition
}

func NewRegistry() *Registry {
	return &Registry{names: map[string]*Definition{}}
}

// Register adds a definition. When the name or any alias collides with an
// already registered name or alias, the registry is left unchanged and
// ErrDuplicateCommand is returned.
func (r *Registry) Register(def *Definition) error {
	if def.Name == "" {
		return fmt.Errorf("command definition has no name")
	}

	keys := append([]string{def.Name}, def.Aliases...)
	for _, key := range keys {
		if existing, ok := r.names[key]; ok {
			return fmt.Errorf("%w: %q already registered by /%s", ErrDuplicateCommand, key, existing.Name)
		}
	}
	seen := map[string]bool{}
	for _, key := range keys {
		if seen[key] {
			return fmt.Errorf("%w: %q repeated within one definition", ErrDuplicateCommand, key)
		}
		seen[key] = true
	}

	for _, key := range keys {
		r.names[key] = def
	}
	r.defs = append(r.defs, def)
	return nil
}

// MustRegister registers a batch and panics on collision. Meant for the
// startup roster, where a duplicate is a programming error.
func (r *Registry) MustRegister(defs ...*Definition) {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
}

// Resolve finds the definition for a command name or alias.
func (r *Registry) Resolve(name string) (*Definition, error) {
	def, ok := r.names[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	return def, nil
}

// List returns definitions in registration order.
func (r *Registry) List() []*Definition {
	out := make([]*Definition, len(r.defs))
	copy(out, r.defs)
	return out
}
