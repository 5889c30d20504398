package nrfu

import (
	"fmt"
	"strings"
	"sync"
)

// Registry holds domains keyed by test-case name, remembering the order in
// which they were registered.
type Registry struct {
	mu      sync.RWMutex
	domains map[string]Domain
	order   []string
}

// NewRegistry creates an empty domain registry.
func NewRegistry() *Registry {
	return &Registry{domains: make(map[string]Domain)}
}

// DefaultRegistry returns a registry holding every built-in domain.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range Domains() {
		// Built-in names are unique.
		_ = r.Register(d)
	}
	return r
}

// Register adds a domain. Returns an error if the name is already taken.
func (r *Registry) Register(d Domain) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := d.Name()
	if _, exists := r.domains[name]; exists {
		return fmt.Errorf("domain already registered: %s", name)
	}
	r.domains[name] = d
	r.order = append(r.order, name)
	return nil
}

// Resolve looks up a domain by test-case name.
func (r *Registry) Resolve(name string) (Domain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.domains[name]
	if !ok {
		return nil, fmt.Errorf("domain not found: %s", name)
	}
	return d, nil
}

// List returns all domains in registration order.
func (r *Registry) List() []Domain {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Domain, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.domains[name])
	}
	return out
}

// Names returns all domain names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Select returns the domains matching any of the patterns, in registration
// order. No patterns selects everything.
func (r *Registry) Select(patterns ...string) ([]Domain, error) {
	if len(patterns) == 0 {
		return r.List(), nil
	}

	var out []Domain
	for _, d := range r.List() {
		for _, p := range patterns {
			if matchGlob(p, d.Name()) {
				out = append(out, d)
				break
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no domain matches %s", strings.Join(patterns, ","))
	}
	return out, nil
}

// matchGlob checks if name matches a simple glob pattern (only trailing *
// supported). Patterns may omit the "test-" prefix.
func matchGlob(pattern, name string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.HasPrefix(pattern, "test-") {
		pattern = "test-" + pattern
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(name, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == name
}
