package output

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ErrUnknownFormat is returned by Get for names nothing registered.
var ErrUnknownFormat = errors.New("unknown formatter")

// FormatterFactory builds a fresh Formatter. Formatters may carry state,
// such as a template, so every Get gets its own.
type FormatterFactory func() Formatter

// Registry maps output format names to formatter factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]FormatterFactory{}}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
}

// Get builds the formatter registered as name. The error for an unknown
// name lists the ones that exist.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	factory := r.factories[name]
	r.mu.RUnlock()

	if factory == nil {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownFormat, name, strings.Join(r.Available(), ", "))
	}
	return factory(), nil
}

// Available returns the registered names, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// DefaultRegistry holds the built-in formatters.
var DefaultRegistry = NewRegistry()

func Register(name string, factory FormatterFactory) { DefaultRegistry.Register(name, factory) }

func Get(name string) (Formatter, error) { return DefaultRegistry.Get(name) }

func Available() []string { return DefaultRegistry.Available() }
