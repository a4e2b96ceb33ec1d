// Package search implements the pluggable ranked-retrieval layer: the
// Provider contract (§4.A), concrete REGEX and BM25 providers, the reserved
// EMBEDDINGS provider, and the registry/service that instantiates, caches,
// and disposes providers (§4.B).
package search

import (
	"context"

	"github.com/mcpmux/mcpmux/pkg/types"
)

// Provider is a pluggable search method. Initialize is idempotent for the
// same config; Search must not retain references to availableTools between
// calls. Dispose releases any resources held since Initialize.
type Provider interface {
	// Name identifies the provider's method, matching the corresponding
	// types.SearchMethod value.
	Name() types.SearchMethod

	// Initialize configures the provider. It is safe to call repeatedly
	// with an identical config. The service calls it once, when it creates
	// a provider; a cache hit returns the provider without calling it.
	Initialize(ctx context.Context, config map[string]any) error

	// Search ranks availableTools against query and returns results
	// sorted by score descending, truncated to query.MaxResults.
	Search(ctx context.Context, query types.SearchQuery, availableTools []types.AvailableTool) ([]types.SearchResult, error)

	// Dispose releases resources. Errors are logged and swallowed by the
	// registry; Dispose itself should not panic.
	Dispose(ctx context.Context) error
}

// DefaultMaxResults is used when a SearchQuery does not specify MaxResults.
const DefaultMaxResults = 5

// clampScore clamps a raw score into [0, 1].
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// emptyQueryResults implements the empty-query policy shared by REGEX and
// BM25: the first maxResults available tools, each scored 0.5 with a fixed
// matchReason.
func emptyQueryResults(availableTools []types.AvailableTool, maxResults int) []types.SearchResult {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
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
			MatchReason: "No search query provided",
		})
	}
	return results
}

func effectiveMaxResults(maxResults int) int {
	if maxResults <= 0 {
		return DefaultMaxResults
	}
	return maxResults
}
