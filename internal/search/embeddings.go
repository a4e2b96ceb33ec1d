package search

import (
	"context"
	"fmt"

	"github.com/mcpmux/mcpmux/pkg/types"
)

// EmbeddingsConfig is reserved so stored ToolSearchConfig.provider_config
// rows shaped for EMBEDDINGS do not break once the method is implemented.
type EmbeddingsConfig struct {
	Model               string  `json:"model,omitempty"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`
}

// ErrEmbeddingsUnsupported is returned by the registry whenever EMBEDDINGS
// is requested; the method is reserved, not yet implemented.
var ErrEmbeddingsUnsupported = fmt.Errorf("search method EMBEDDINGS is reserved and not yet implemented")

// EmbeddingsProvider exists only so the Provider interface has a named type
// to point to in tests and documentation; the registry never constructs
// one, since isSupported(EMBEDDINGS) reports false.
type EmbeddingsProvider struct{}

func (p *EmbeddingsProvider) Name() types.SearchMethod { return types.SearchMethodEmbeddings }

func (p *EmbeddingsProvider) Initialize(ctx context.Context, config map[string]any) error {
	return ErrEmbeddingsUnsupported
}

func (p *EmbeddingsProvider) Search(
	ctx context.Context, query types.SearchQuery, availableTools []types.AvailableTool,
) ([]types.SearchResult, error) {
	return nil, ErrEmbeddingsUnsupported
}

func (p *EmbeddingsProvider) Dispose(ctx context.Context) error { return nil }
