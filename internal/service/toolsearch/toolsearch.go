// Package toolsearch implements the Tool-Search Config API (§4.H): the
// small CRUD surface for per-namespace provider tuning. It sits directly on
// top of the store contract (§4.G) and the config resolver's invalidation
// signal, and consults an external Authorizer before any write touches an
// owned namespace, per §4.H and §7's propagation policy.
package toolsearch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcpmux/mcpmux/internal/apperr"
	"github.com/mcpmux/mcpmux/internal/model"
	"github.com/mcpmux/mcpmux/internal/store"
	"github.com/mcpmux/mcpmux/pkg/types"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	minMaxResults = 1
	maxMaxResults = 20
)

// Service implements component §4.H. logger may be nil.
type Service struct {
	store      store.Store
	authorizer model.Authorizer
	logger     *zap.Logger
}

// New returns a Service backed by s, consulting authorizer before any write
// that touches an owned namespace.
func New(s store.Store, authorizer model.Authorizer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: s, authorizer: authorizer, logger: logger}
}

// Get implements §6's `get`. A missing config is success with no data, not
// an error (a namespace with no ToolSearchConfig row implies the defaults
// applied by resolver.Resolve). Unexpected store errors are
// converted to {success:false}, never re-raised, per §7's propagation
// policy for `get`.
func (s *Service) Get(ctx context.Context, namespaceUUID uuid.UUID) types.ToolSearchConfigResult {
	cfg, err := s.store.FindToolSearchConfig(ctx, namespaceUUID)
	if err != nil {
		s.logger.Warn("tool search config lookup failed", zap.Error(err))
		return types.ToolSearchConfigResult{Success: false, Message: err.Error()}
	}
	if cfg == nil {
		return types.ToolSearchConfigResult{Success: true}
	}
	return types.ToolSearchConfigResult{Success: true, Data: toData(cfg)}
}

// Upsert implements §6's `upsert`. maxResults and providerConfig are
// validated before the store is touched (§8 boundary behaviors); store
// errors are re-raised rather than swallowed, per §7. No foreign key ties
// the config to a namespace, so an unknown namespace UUID is not rejected.
func (s *Service) Upsert(ctx context.Context, input types.UpsertToolSearchConfigInput) (types.ToolSearchConfigResult, error) {
	if input.MaxResults < minMaxResults || input.MaxResults > maxMaxResults {
		return types.ToolSearchConfigResult{}, apperr.NewInvalid(
			fmt.Sprintf("max_results must be between %d and %d", minMaxResults, maxMaxResults), nil,
		)
	}
	if err := validateProviderConfig(input.ProviderConfig); err != nil {
		return types.ToolSearchConfigResult{}, err
	}

	raw, err := marshalProviderConfig(input.ProviderConfig)
	if err != nil {
		return types.ToolSearchConfigResult{}, apperr.NewInvalid("invalid provider_config", err)
	}

	cfg := &model.ToolSearchConfig{
		NamespaceID:    input.NamespaceUUID,
		MaxResults:     input.MaxResults,
		ProviderConfig: raw,
	}
	if err := s.store.UpsertToolSearchConfig(ctx, cfg); err != nil {
		return types.ToolSearchConfigResult{}, err
	}

	return types.ToolSearchConfigResult{Success: true, Data: toData(cfg)}, nil
}

// UpdateToolDeferLoading implements §6's `update`. Authorization is checked
// before the store is touched: a publicly-owned namespace accepts updates
// from any caller; an owned namespace requires the Authorizer's approval,
// per §4.H and spec.md's rule at §6.
func (s *Service) UpdateToolDeferLoading(
	ctx context.Context, callerID uuid.UUID, input types.UpdateToolDeferLoadingInput,
) types.OperationResult {
	namespace, err := s.store.FindNamespace(ctx, input.NamespaceUUID)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return types.OperationResult{Success: false, Message: "Namespace not found"}
		}
		s.logger.Warn("namespace lookup failed", zap.Error(err))
		return types.OperationResult{Success: false, Message: err.Error()}
	}

	if !namespace.IsPubliclyOwned() && !s.authorizer.CanManageNamespace(callerID, namespace.OwnerID) {
		return types.OperationResult{Success: false, Message: "Access denied"}
	}

	behavior, verr := types.ValidateDeferLoadingBehavior(string(input.DeferLoading))
	if verr != nil {
		return types.OperationResult{Success: false, Message: verr.Error()}
	}

	toolName, err := s.resolveToolName(ctx, input.NamespaceUUID, input.ServerUUID, input.ToolUUID)
	if err != nil {
		s.logger.Warn("tool mapping lookup failed", zap.Error(err))
		return types.OperationResult{Success: false, Message: err.Error()}
	}
	if toolName == "" {
		return types.OperationResult{Success: false, Message: "Tool not found in namespace"}
	}

	if err := s.store.UpdateToolDeferLoading(ctx, input.NamespaceUUID, input.ServerUUID, toolName, behavior); err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return types.OperationResult{Success: false, Message: "Tool not found in namespace"}
		}
		s.logger.Warn("update tool defer loading failed", zap.Error(err))
		return types.OperationResult{Success: false, Message: err.Error()}
	}

	return types.OperationResult{Success: true}
}

// resolveToolName recovers the tool name a toolUuid was minted from
// (uuid.NewSHA1(serverID, toolName), per DESIGN.md's Open Question #2) by
// scanning the server's recorded tool mappings. Returns "" if none match.
func (s *Service) resolveToolName(ctx context.Context, namespaceID, serverID, toolUUID uuid.UUID) (string, error) {
	mappings, err := s.store.ToolMappingsByServer(ctx, namespaceID, serverID)
	if err != nil {
		return "", err
	}
	for _, m := range mappings {
		if m.ToolUUID() == toolUUID {
			return m.ToolName, nil
		}
	}
	return "", nil
}

func toData(cfg *model.ToolSearchConfig) *types.ToolSearchData {
	var providerConfig map[string]any
	if len(cfg.ProviderConfig) > 0 {
		_ = json.Unmarshal(cfg.ProviderConfig, &providerConfig)
	}
	return &types.ToolSearchData{
		NamespaceUUID:  cfg.NamespaceID,
		MaxResults:     cfg.MaxResults,
		ProviderConfig: providerConfig,
	}
}

func marshalProviderConfig(cfg map[string]any) (datatypes.JSON, error) {
	if cfg == nil {
		return nil, nil
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// validateProviderConfig validates the BM25/EMBEDDINGS parameter bounds
// from §3's schema whenever the corresponding keys are present, regardless
// of which method the namespace is currently configured for — the method
// can change independently of the stored provider_config, so bounds are
// enforced structurally rather than conditionally on method.
func validateProviderConfig(cfg map[string]any) error {
	if cfg == nil {
		return nil
	}
	if k1, ok := cfg["k1"]; ok {
		v, isNum := toFloat(k1)
		if !isNum || v < 0 || v > 3 {
			return apperr.NewInvalid("provider_config.k1 must be a number between 0 and 3", nil)
		}
	}
	if b, ok := cfg["b"]; ok {
		v, isNum := toFloat(b)
		if !isNum || v < 0 || v > 1 {
			return apperr.NewInvalid("provider_config.b must be a number between 0 and 1", nil)
		}
	}
	if threshold, ok := cfg["similarity_threshold"]; ok {
		v, isNum := toFloat(threshold)
		if !isNum || v < 0 || v > 1 {
			return apperr.NewInvalid("provider_config.similarity_threshold must be a number between 0 and 1", nil)
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
