// Package provider maps enumerated provider identifiers to constructors.
//
// Each capability (llm, search, scraper) gets its own Registry whose key type
// is that capability's identifier enum and whose value type is its interface,
// so a lookup can only ever return the expected capability.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/capitalize-ai/investor-finder/internal/apperr"
)

// Category names a provider capability.
type Category string

const (
	CategoryLLM     Category = "llm"
	CategorySearch  Category = "search"
	CategoryScraper Category = "scraper"
)

// Lifecycle is implemented by every provider.
type Lifecycle interface {
	Initialize(ctx context.Context) error
	Cleanup(ctx context.Context) error
}

// Factory constructs a provider instance.
type Factory[T Lifecycle] func(ctx context.Context) (T, error)

// Registry holds factories for one category. Instances are constructed and
// initialized once, on first Resolve, and cached until re-registration or Close.
type Registry[K ~string, T Lifecycle] struct {
	category Category

	mu        sync.Mutex
	order     []K
	factories map[K]Factory[T]
	instances map[K]T
}

// NewRegistry creates an empty registry for a category.
func NewRegistry[K ~string, T Lifecycle](category Category) *Registry[K, T] {
	return &Registry[K, T]{
		category:  category,
		factories: make(map[K]Factory[T]),
		instances: make(map[K]T),
	}
}

// Category returns the capability this registry serves.
func (r *Registry[K, T]) Category() Category {
	return r.category
}

// Register stores a factory under name. Registering an existing name replaces
// the factory and discards any instance built by the old one.
func (r *Registry[K, T]) Register(name K, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; !exists {
		r.order = append(r.order, name)
	}
	r.factories[name] = factory
	delete(r.instances, name)
}

// Resolve returns the instance registered under name, constructing and
// initializing it on first use.
func (r *Registry[K, T]) Resolve(ctx context.Context, name K) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if inst, ok := r.instances[name]; ok {
		return inst, nil
	}

	factory, ok := r.factories[name]
	if !ok {
		return zero, apperr.Newf(apperr.KindProviderNotFound, "provider.Resolve",
			"no %s provider registered as %q", r.category, string(name))
	}

	inst, err := factory(ctx)
	if err != nil {
		return zero, apperr.Wrap(apperr.KindProviderCallFailure,
			fmt.Sprintf("construct %s/%s", r.category, string(name)), err)
	}
	if err := inst.Initialize(ctx); err != nil {
		return zero, apperr.Wrap(apperr.KindProviderCallFailure,
			fmt.Sprintf("initialize %s/%s", r.category, string(name)), err)
	}

	r.instances[name] = inst
	return inst, nil
}

// Has reports whether name is registered.
func (r *Registry[K, T]) Has(name K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.factories[name]
	return ok
}

// Parse converts a raw identifier into a registered key.
func (r *Registry[K, T]) Parse(raw string) (K, bool) {
	name := K(raw)
	return name, r.Has(name)
}

// Names returns registered identifiers in registration order.
func (r *Registry[K, T]) Names() []K {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]K, len(r.order))
	copy(out, r.order)
	return out
}

// Close cleans up every constructed instance and empties the cache.
func (r *Registry[K, T]) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, inst := range r.instances {
		if err := inst.Cleanup(ctx); err != nil {
			errs = append(errs, fmt.Errorf("cleanup %s/%s: %w", r.category, string(name), err))
		}
	}
	r.instances = make(map[K]T)
	return errors.Join(errs...)
}
