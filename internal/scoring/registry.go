package scoring

import (
	"slices"
	"sync"

	"github.com/hyperengineering/plankdash/internal/config"
)

// Registry holds the scoring producers in registration order.
type Registry struct {
	mu        sync.RWMutex
	producers map[string]Producer
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{producers: make(map[string]Producer)}
}

// NewDefaultRegistry registers the built-in producers configured from cfg.
func NewDefaultRegistry(cfg config.ScoringConfig) *Registry {
	r := NewRegistry()
	for _, p := range Defaults(cfg) {
		r.Register(p)
	}
	return r
}

// Register adds a producer.
// Panics if a producer with the same name is already registered.
func (r *Registry) Register(p Producer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.producers[name]; exists {
		panic("producer already registered: " + name)
	}
	r.producers[name] = p
	r.order = append(r.order, name)
}

// Get returns the producer registered under name.
func (r *Registry) Get(name string) (Producer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.producers[name]
	return p, ok
}

// Names returns the registered producer names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Enabled returns the registered producers whose names are not in disabled,
// in registration order.
func (r *Registry) Enabled(disabled []string) []Producer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Producer, 0, len(r.order))
	for _, name := range r.order {
		if slices.Contains(disabled, name) {
			continue
		}
		out = append(out, r.producers[name])
	}
	return out
}
