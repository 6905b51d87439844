package commands

import (
	"fmt"
	"sort"
)

// Registry maps command names and aliases to commands.
// Commands are registered from init functions; lookups after that are read-only.
type Registry struct {
	byName  map[string]Command
	aliases map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]Command),
		aliases: make(map[string]string),
	}
}

// Register adds c under its name and aliases.
func (r *Registry) Register(c Command) error {
	keys := append([]string{c.Name()}, c.Aliases()...)
	for _, key := range keys {
		if r.taken(key) {
			return fmt.Errorf("duplicate command name: %s", key)
		}
	}

	r.byName[c.Name()] = c
	for _, alias := range c.Aliases() {
		r.aliases[alias] = c.Name()
	}
	return nil
}

func (r *Registry) taken(key string) bool {
	_, isName := r.byName[key]
	_, isAlias := r.aliases[key]
	return isName || isAlias
}

// Find resolves a command by name or alias.
func (r *Registry) Find(key string) (Command, bool) {
	if name, ok := r.aliases[key]; ok {
		key = name
	}
	c, ok := r.byName[key]
	return c, ok
}

// Names lists every name and alias in sorted order, for shell completion.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName)+len(r.aliases))
	for name := range r.byName {
		names = append(names, name)
	}
	for alias := range r.aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in commands.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a duplicate.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
