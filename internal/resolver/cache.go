package resolver

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mcpmux/mcpmux/internal/model"
	"github.com/mcpmux/mcpmux/internal/store"
	"github.com/mcpmux/mcpmux/pkg/types"
	"golang.org/x/sync/singleflight"
)

// Cache is the process-local, single-flight-coalesced resolver cache (§4.E,
// §5). It implements store.Invalidator so the store can signal it directly
// after a write.
type Cache struct {
	reader store.Reader

	mu      sync.RWMutex
	entries map[uuid.UUID]types.ResolvedConfig

	group singleflight.Group
}

// NewCache returns a Cache backed by reader.
func NewCache(reader store.Reader) *Cache {
	return &Cache{
		reader:  reader,
		entries: make(map[uuid.UUID]types.ResolvedConfig),
	}
}

// GetResolvedConfig returns the cached ResolvedConfig for endpointID if
// present. Otherwise it starts a single-flight fetch: concurrent callers
// for the same endpoint await the in-flight fetch rather than each issuing
// their own store reads. A failed or missing-namespace fetch returns
// FailSafeConfig and is not cached.
func (c *Cache) GetResolvedConfig(ctx context.Context, namespaceID, endpointID uuid.UUID) types.ResolvedConfig {
	c.mu.RLock()
	if cfg, ok := c.entries[endpointID]; ok {
		c.mu.RUnlock()
		return cfg
	}
	c.mu.RUnlock()

	result, err, _ := c.group.Do(endpointID.String(), func() (any, error) {
		cfg, fetchErr := c.fetch(ctx, namespaceID, endpointID)
		if fetchErr != nil {
			return cfg, fetchErr
		}
		c.mu.Lock()
		c.entries[endpointID] = cfg
		c.mu.Unlock()
		return cfg, nil
	})
	if err != nil {
		return FailSafeConfig()
	}
	return result.(types.ResolvedConfig)
}

func (c *Cache) fetch(ctx context.Context, namespaceID, endpointID uuid.UUID) (types.ResolvedConfig, error) {
	namespace, err := c.reader.FindNamespace(ctx, namespaceID)
	if err != nil {
		return types.ResolvedConfig{}, err
	}

	var endpoint *model.Endpoint
	if endpointID != uuid.Nil {
		endpoint, err = c.reader.FindEndpoint(ctx, endpointID)
		if err != nil {
			return types.ResolvedConfig{}, err
		}
	}

	overrides, err := c.reader.FindToolDeferLoadingOverrides(ctx, namespaceID)
	if err != nil {
		return types.ResolvedConfig{}, err
	}

	searchConfig, err := c.reader.FindToolSearchConfig(ctx, namespaceID)
	if err != nil {
		return types.ResolvedConfig{}, err
	}

	return Resolve(namespace, endpoint, overrides, searchConfig), nil
}

// Invalidate evicts the cache entry for endpointID, implementing
// store.Invalidator.
func (c *Cache) Invalidate(endpointID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, endpointID)
	c.mu.Unlock()
}

// Clear evicts every cache entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[uuid.UUID]types.ResolvedConfig)
	c.mu.Unlock()
}
