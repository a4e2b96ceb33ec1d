package search

import (
	"context"
	"fmt"

	"github.com/mcpmux/mcpmux/pkg/types"
)

// Factory constructs a fresh, uninitialized Provider for a search method.
type Factory func() Provider

// Registry maps search methods to provider factories. NONE is always
// "supported" but has no factory — it is a non-provider sentinel handled
// entirely in Service, never instantiated.
type Registry struct {
	factories map[types.SearchMethod]Factory
}

// NewRegistry returns a Registry pre-populated with the REGEX and BM25
// providers. EMBEDDINGS is deliberately absent: IsSupported reports false
// for it and Create returns an error.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[types.SearchMethod]Factory)}
	r.Register(types.SearchMethodRegex, func() Provider { return NewRegexProvider() })
	r.Register(types.SearchMethodBM25, func() Provider { return NewBM25Provider() })
	return r
}

// Register installs or replaces the factory for method.
func (r *Registry) Register(method types.SearchMethod, factory Factory) {
	r.factories[method] = factory
}

// IsSupported reports whether method can be instantiated with Create. NONE
// reports true (it is a valid, supported method) even though it has no
// factory and cannot itself be Create'd.
func (r *Registry) IsSupported(method types.SearchMethod) bool {
	if method == types.SearchMethodNone {
		return true
	}
	_, ok := r.factories[method]
	return ok
}

// Create instantiates and initializes a provider for method with config.
// Creating NONE is an error: NONE has no provider, it is handled by
// Service directly.
func (r *Registry) Create(ctx context.Context, method types.SearchMethod, config map[string]any) (Provider, error) {
	if method == types.SearchMethodNone {
		return nil, fmt.Errorf("cannot create a provider for method NONE")
	}
	factory, ok := r.factories[method]
	if !ok {
		if method == types.SearchMethodEmbeddings {
			return nil, ErrEmbeddingsUnsupported
		}
		return nil, fmt.Errorf("unsupported search method: %s", method)
	}
	p := factory()
	if err := p.Initialize(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to initialize %s provider: %w", method, err)
	}
	return p, nil
}

// List returns every method this registry can Create, excluding NONE.
func (r *Registry) List() []types.SearchMethod {
	methods := make([]types.SearchMethod, 0, len(r.factories))
	for m := range r.factories {
		methods = append(methods, m)
	}
	return methods
}
