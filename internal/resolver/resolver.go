// Package resolver implements the config resolver (§4.E): a pure
// collapsing function from namespace/endpoint/tool-override layers into one
// ResolvedConfig, plus a process-local, single-flight-coalesced cache keyed
// by endpoint UUID.
package resolver

import (
	"encoding/json"

	"github.com/mcpmux/mcpmux/internal/model"
	"github.com/mcpmux/mcpmux/pkg/types"
)

// FailSafeConfig is returned whenever the namespace is missing or the fetch
// fails; it is deliberately not cached so a retry after recovery can
// succeed.
func FailSafeConfig() types.ResolvedConfig {
	return types.ResolvedConfig{
		DeferLoadingEnabled: false,
		SearchMethod:        types.SearchMethodNone,
		ToolVisibility:      types.ToolVisibilityAll,
		ToolOverrides:       map[string]bool{},
		MaxResults:          5,
		ProviderConfig:      nil,
	}
}

// Resolve is the pure function at the heart of component E. endpoint may be
// nil (a request with no endpoint override layer); toolOverrides must
// already be the flattened map produced by the store's
// FindToolDeferLoadingOverrides call — INHERIT entries never appear in it.
func Resolve(
	namespace *model.Namespace,
	endpoint *model.Endpoint,
	toolOverrides map[string]bool,
	searchConfig *model.ToolSearchConfig,
) types.ResolvedConfig {
	cfg := types.ResolvedConfig{
		ToolOverrides: toolOverrides,
	}
	if cfg.ToolOverrides == nil {
		cfg.ToolOverrides = map[string]bool{}
	}

	cfg.DeferLoadingEnabled = resolveDeferLoading(namespace, endpoint)
	cfg.SearchMethod = resolveSearchMethod(namespace, endpoint)
	cfg.ToolVisibility = resolveToolVisibility(namespace, endpoint)

	cfg.MaxResults, cfg.ProviderConfig = resolveSearchConfig(searchConfig)

	return cfg
}

func resolveDeferLoading(namespace *model.Namespace, endpoint *model.Endpoint) bool {
	if endpoint != nil {
		switch endpoint.OverrideDeferLoading {
		case types.DeferLoadingEnabled:
			return true
		case types.DeferLoadingDisabled:
			return false
		}
	}
	return namespace.DefaultDeferLoading
}

func resolveSearchMethod(namespace *model.Namespace, endpoint *model.Endpoint) types.SearchMethod {
	if endpoint != nil && !endpoint.OverrideSearchMethod.IsInherit() {
		return endpoint.OverrideSearchMethod.AsSearchMethod()
	}
	if namespace.DefaultSearchMethod == "" {
		return types.SearchMethodNone
	}
	return namespace.DefaultSearchMethod
}

func resolveToolVisibility(namespace *model.Namespace, endpoint *model.Endpoint) types.ToolVisibilityMode {
	if endpoint != nil &&
		endpoint.OverrideToolVisibility != types.ToolVisibilityInherit &&
		endpoint.OverrideToolVisibility != "" {
		return endpoint.OverrideToolVisibility
	}
	if namespace.DefaultToolVisibility == "" {
		return types.ToolVisibilityAll
	}
	return namespace.DefaultToolVisibility
}

func resolveSearchConfig(cfg *model.ToolSearchConfig) (int, map[string]any) {
	if cfg == nil {
		return 5, nil
	}
	maxResults := cfg.MaxResults
	if maxResults == 0 {
		maxResults = 5
	}
	var providerConfig map[string]any
	if len(cfg.ProviderConfig) > 0 {
		_ = json.Unmarshal(cfg.ProviderConfig, &providerConfig)
	}
	return maxResults, providerConfig
}
