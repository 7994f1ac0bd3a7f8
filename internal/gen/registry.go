// Package gen turns a parsed OpenAPI document into generated source units:
// one validator module per named schema and one request template per
// operation. Both transforms are single-pass and stateless; processing order
// follows document declaration order so repeated runs over identical input
// are byte-for-byte reproducible.
package gen

import (
	"github.com/zodwire/zodwire/internal/spec"
)

// Registry indexes the document's named schemas. Every name is registered
// before any body is compiled, so recursive and mutually-recursive references
// resolve to a symbol without needing the referenced body to exist yet;
// bodies compile in a second pass.
type Registry struct {
	names []string
	nodes map[string]*spec.SchemaNode
}

// NewRegistry registers all named schemas in declaration order.
func NewRegistry(schemas []spec.NamedSchema) *Registry {
	r := &Registry{nodes: make(map[string]*spec.SchemaNode, len(schemas))}
	for _, ns := range schemas {
		if ns.Name == "" {
			continue
		}
		if _, ok := r.nodes[ns.Name]; ok {
			// Duplicate names keep the first declaration.
			continue
		}
		r.names = append(r.names, ns.Name)
		r.nodes[ns.Name] = ns.Schema
	}
	return r
}

// Names returns the registered schema names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Node returns the schema body registered under name, nil if unknown.
func (r *Registry) Node(name string) *spec.SchemaNode {
	return r.nodes[name]
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.nodes[name]
	return ok
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int { return len(r.names) }
