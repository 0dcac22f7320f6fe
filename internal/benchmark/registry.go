package benchmark

import (
	"fmt"
	"iter"
	"regexp"
	"sync"
)

// Registry holds benchmark cases in registration order.
type Registry struct {
	mu    sync.RWMutex
	cases []*Case
	index map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds c. It fails with ErrDuplicateName if a case with the same name
// is already registered; the existing case is left in place.
func (r *Registry) Register(c *Case) error {
	if c == nil {
		return fmt.Errorf("register: nil case")
	}
	if c.name == "" {
		return fmt.Errorf("register: case name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.index[c.name]; exists {
		return fmt.Errorf("register %q: %w", c.name, ErrDuplicateName)
	}
	r.index[c.name] = len(r.cases)
	r.cases = append(r.cases, c)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(cases ...*Case) {
	for _, c := range cases {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

// All yields the registered cases in registration order. The sequence can be
// ranged over any number of times.
func (r *Registry) All() iter.Seq[*Case] {
	return func(yield func(*Case) bool) {
		for _, c := range r.Cases() {
			if !yield(c) {
				return
			}
		}
	}
}

// Cases returns a copy of the registered cases in registration order.
func (r *Registry) Cases() []*Case {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Case(nil), r.cases...)
}

// Len returns the number of registered cases.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cases)
}

// Lookup returns the case registered under name.
func (r *Registry) Lookup(name string) (*Case, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.cases[i], true
}

// Filter returns a new registry with the cases whose names match pattern, in
// the original order. An empty pattern selects every case.
func (r *Registry) Filter(pattern string) (*Registry, error) {
	out := NewRegistry()
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		if re, err = regexp.Compile(pattern); err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", pattern, err)
		}
	}
	for c := range r.All() {
		if re != nil && !re.MatchString(c.name) {
			continue
		}
		if err := out.Register(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}
