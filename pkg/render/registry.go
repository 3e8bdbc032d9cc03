package render

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps view names (html, terminal) to the block renderer a session
// should draw with.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]BlockRenderer
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]BlockRenderer)}
}

// Register stores renderer under its Name. Names are unique.
func (r *Registry) Register(renderer BlockRenderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return fmt.Errorf("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[name]; taken {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.byName[name] = renderer
	return nil
}

// MustRegister is Register for wiring code that cannot continue on failure.
func (r *Registry) MustRegister(renderer BlockRenderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(name string) (BlockRenderer, error) {
	r.mu.RLock()
	renderer, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found", name)
	}
	return renderer, nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
