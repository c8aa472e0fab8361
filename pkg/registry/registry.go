// Package registry resolves schema tag names to components.
package registry

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/net/html/atom"

	"github.com/vango-dev/vschema/pkg/vdom"
)

// Registry resolves a tag name to a component. A tag that does not resolve
// is rendered as a host element of that name.
type Registry interface {
	Resolve(name string) (vdom.Component, bool)
}

// Func adapts a function to Registry.
type Func func(name string) (vdom.Component, bool)

// Resolve implements Registry.
func (f Func) Resolve(name string) (vdom.Component, bool) { return f(name) }

// Empty resolves nothing.
var Empty Registry = Func(func(string) (vdom.Component, bool) { return nil, false })

// Map is a concurrency-safe registry of named components.
// Names are matched case-insensitively.
type Map struct {
	mu         sync.RWMutex
	components map[string]vdom.Component
}

// New creates a registry holding components.
func New(components map[string]vdom.Component) *Map {
	m := &Map{components: make(map[string]vdom.Component, len(components))}
	for name, c := range components {
		m.Register(name, c)
	}
	return m
}

// Register adds or replaces a component.
func (m *Map) Register(name string, c vdom.Component) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.components == nil {
		m.components = make(map[string]vdom.Component)
	}
	m.components[normalize(name)] = c
}

// RegisterFunc registers a function component.
func (m *Map) RegisterFunc(name string, fn func(props vdom.Props, slots vdom.Slots) (*vdom.VNode, error)) {
	m.Register(name, vdom.ComponentFunc(fn))
}

// Unregister removes a component.
func (m *Map) Unregister(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.components, normalize(name))
}

// Resolve implements Registry.
func (m *Map) Resolve(name string) (vdom.Component, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.components[normalize(name)]
	return c, ok
}

// Names returns the registered names, sorted.
func (m *Map) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.components))
	for name := range m.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Chain resolves against each registry in turn.
func Chain(registries ...Registry) Registry {
	return Func(func(name string) (vdom.Component, bool) {
		for _, r := range registries {
			if r == nil {
				continue
			}
			if c, ok := r.Resolve(name); ok {
				return c, true
			}
		}
		return nil, false
	})
}

// IsKnownElement reports whether tag is a standard HTML element or a
// custom element name (one containing a hyphen).
func IsKnownElement(tag string) bool {
	if strings.Contains(tag, "-") {
		return true
	}
	return atom.Lookup([]byte(strings.ToLower(tag))) != 0
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
