package tool

import (
	"sort"
)

// Registry holds the tools available to a run, keyed by name.
// It is populated once during startup and read-only afterwards.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a registry containing the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{
		tools: make(map[string]Tool),
	}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool, replacing any existing tool with the same name.
func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Declarations returns the declarations of all registered tools, sorted by
// name so the model sees a stable list.
func (r *Registry) Declarations() []Declaration {
	decls := make([]Declaration, 0, len(r.tools))
	for _, t := range r.tools {
		decls = append(decls, t.Declaration())
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name < decls[j].Name
	})
	return decls
}
