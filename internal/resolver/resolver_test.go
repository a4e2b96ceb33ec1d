package resolver

import (
	"testing"

	"github.com/mcpmux/mcpmux/internal/model"
	"github.com/mcpmux/mcpmux/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestResolve_NoEndpointFallsBackToNamespaceDefaults(t *testing.T) {
	ns := &model.Namespace{
		DefaultDeferLoading:   true,
		DefaultSearchMethod:   types.SearchMethodBM25,
		DefaultToolVisibility: types.ToolVisibilitySearchOnly,
	}

	cfg := Resolve(ns, nil, nil, nil)
	require.True(t, cfg.DeferLoadingEnabled)
	require.Equal(t, types.SearchMethodBM25, cfg.SearchMethod)
	require.Equal(t, types.ToolVisibilitySearchOnly, cfg.ToolVisibility)
	require.NotNil(t, cfg.ToolOverrides)
}

func TestResolve_EndpointOverridesWinOverNamespaceDefaults(t *testing.T) {
	ns := &model.Namespace{
		DefaultDeferLoading:   false,
		DefaultSearchMethod:   types.SearchMethodNone,
		DefaultToolVisibility: types.ToolVisibilityAll,
	}
	ep := &model.Endpoint{
		OverrideDeferLoading:   types.DeferLoadingEnabled,
		OverrideSearchMethod:   types.EndpointSearchMethodOverride(types.SearchMethodRegex),
		OverrideToolVisibility: types.ToolVisibilitySearchOnly,
	}

	cfg := Resolve(ns, ep, nil, nil)
	require.True(t, cfg.DeferLoadingEnabled)
	require.Equal(t, types.SearchMethodRegex, cfg.SearchMethod)
	require.Equal(t, types.ToolVisibilitySearchOnly, cfg.ToolVisibility)
}

func TestResolve_InheritEndpointOverridesFallThroughToNamespace(t *testing.T) {
	ns := &model.Namespace{
		DefaultDeferLoading:   true,
		DefaultSearchMethod:   types.SearchMethodBM25,
		DefaultToolVisibility: types.ToolVisibilityAll,
	}
	ep := &model.Endpoint{
		OverrideDeferLoading:   types.DeferLoadingInherit,
		OverrideSearchMethod:   types.SearchMethodOverrideInherit,
		OverrideToolVisibility: types.ToolVisibilityInherit,
	}

	cfg := Resolve(ns, ep, nil, nil)
	require.True(t, cfg.DeferLoadingEnabled)
	require.Equal(t, types.SearchMethodBM25, cfg.SearchMethod)
	require.Equal(t, types.ToolVisibilityAll, cfg.ToolVisibility)
}

func TestResolve_EmptyNamespaceDefaultsBecomeSafeFallbacks(t *testing.T) {
	ns := &model.Namespace{}

	cfg := Resolve(ns, nil, nil, nil)
	require.Equal(t, types.SearchMethodNone, cfg.SearchMethod)
	require.Equal(t, types.ToolVisibilityAll, cfg.ToolVisibility)
}

func TestResolve_NilToolSearchConfigDefaultsToFiveResults(t *testing.T) {
	cfg := Resolve(&model.Namespace{}, nil, nil, nil)
	require.Equal(t, 5, cfg.MaxResults)
	require.Nil(t, cfg.ProviderConfig)
}

func TestResolve_ToolSearchConfigProviderConfigRoundTrips(t *testing.T) {
	searchCfg := &model.ToolSearchConfig{
		MaxResults:     10,
		ProviderConfig: []byte(`{"k1":1.2,"b":0.75}`),
	}

	cfg := Resolve(&model.Namespace{}, nil, nil, searchCfg)
	require.Equal(t, 10, cfg.MaxResults)
	require.InDelta(t, 1.2, cfg.ProviderConfig["k1"], 0.0001)
}

func TestResolve_ToolOverridesAreCarriedThroughVerbatim(t *testing.T) {
	overrides := map[string]bool{"weather_lookup": true, "translate_text": false}

	cfg := Resolve(&model.Namespace{}, nil, overrides, nil)
	require.Equal(t, overrides, cfg.ToolOverrides)
}

func TestFailSafeConfig_IsPermissiveAndNeverDefersLoading(t *testing.T) {
	cfg := FailSafeConfig()
	require.False(t, cfg.DeferLoadingEnabled)
	require.Equal(t, types.SearchMethodNone, cfg.SearchMethod)
	require.Equal(t, types.ToolVisibilityAll, cfg.ToolVisibility)
	require.NotNil(t, cfg.ToolOverrides)
}
