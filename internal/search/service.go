package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/mcpmux/mcpmux/pkg/types"
	"go.uber.org/zap"
)

// DefaultCacheCapacity bounds the provider cache at 32 entries, per the
// §5 resource budget's suggested figure.
const DefaultCacheCapacity = 32

// Service is the single entry point the rest of the system uses to search:
// component B's public operation. It owns the provider cache and disposes
// evicted or explicitly cleared providers.
type Service struct {
	registry *Registry
	logger   *zap.Logger

	mu    sync.Mutex
	cache *lru
}

// NewService returns a Service backed by registry, with a provider cache
// bounded at DefaultCacheCapacity entries.
func NewService(registry *Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry: registry,
		logger:   logger,
		cache:    newLRU(DefaultCacheCapacity),
	}
}

// Search is component B's public operation (§4.B).
func (s *Service) Search(
	ctx context.Context,
	query types.SearchQuery,
	availableTools []types.AvailableTool,
	resolved types.ResolvedConfig,
) ([]types.SearchResult, error) {
	if resolved.SearchMethod == types.SearchMethodNone {
		return s.noneResults(availableTools, effectiveMaxResults(firstNonZero(query.MaxResults, resolved.MaxResults))), nil
	}

	if query.MaxResults == 0 {
		query.MaxResults = resolved.MaxResults
	}

	provider, err := s.getOrCreate(ctx, resolved.SearchMethod, resolved.ProviderConfig)
	if err != nil {
		return nil, err
	}

	return provider.Search(ctx, query, availableTools)
}

func firstNonZero(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

func (s *Service) noneResults(availableTools []types.AvailableTool, maxResults int) []types.SearchResult {
	n := len(availableTools)
	if n > maxResults {
		n = maxResults
	}
	results := make([]types.SearchResult, 0, n)
	for i := 0; i < n; i++ {
		at := availableTools[i]
		results = append(results, types.SearchResult{
			Tool:        at.Tool,
			ServerUUID:  at.ServerUUID,
			Score:       0.5,
			MatchReason: "Search disabled (method: NONE)",
		})
	}
	return results
}

func (s *Service) getOrCreate(ctx context.Context, method types.SearchMethod, config map[string]any) (Provider, error) {
	key, err := cacheKey(method, config)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider cache key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.cache.get(key); ok {
		return p, nil
	}

	p, err := s.registry.Create(ctx, method, config)
	if err != nil {
		return nil, err
	}

	if evicted := s.cache.put(key, p); evicted != nil {
		s.disposeAsync(evicted)
	}
	return p, nil
}

// Clear disposes every cached provider.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	evicted := s.cache.drain()
	s.mu.Unlock()

	for _, p := range evicted {
		s.dispose(ctx, p)
	}
}

// ClearMethod disposes only the cached providers for method.
func (s *Service) ClearMethod(ctx context.Context, method types.SearchMethod) {
	s.mu.Lock()
	evicted := s.cache.removeMatching(func(key string) bool {
		return keyMethod(key) == string(method)
	})
	s.mu.Unlock()

	for _, p := range evicted {
		s.dispose(ctx, p)
	}
}

func (s *Service) dispose(ctx context.Context, p Provider) {
	if err := p.Dispose(ctx); err != nil {
		s.logger.Warn("provider disposal failed", zap.String("method", string(p.Name())), zap.Error(err))
	}
}

func (s *Service) disposeAsync(p Provider) {
	go s.dispose(context.Background(), p)
}

// cacheKey builds the canonical cache key (method, canonical-json(config)).
func cacheKey(method types.SearchMethod, config map[string]any) (string, error) {
	canon, err := canonicalJSON(config)
	if err != nil {
		return "", err
	}
	return string(method) + "|" + canon, nil
}

func keyMethod(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			return key[:i]
		}
	}
	return key
}

// canonicalJSON marshals v with map keys sorted recursively, so two
// semantically identical configs always produce the same cache key
// regardless of map iteration order.
func canonicalJSON(v any) (string, error) {
	normalized := normalize(v)
	b, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ordered := make([]keyValue, 0, len(keys))
		for _, k := range keys {
			ordered = append(ordered, keyValue{Key: k, Value: normalize(val[k])})
		}
		return ordered
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalize(e)
		}
		return out
	default:
		return val
	}
}

type keyValue struct {
	Key   string `json:"k"`
	Value any    `json:"v"`
}
