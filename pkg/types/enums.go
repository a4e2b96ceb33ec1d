package types

import "fmt"

// SearchMethod identifies which search provider resolves a namespace's or
// endpoint's search_tools calls.
type SearchMethod string

const (
	SearchMethodNone       SearchMethod = "NONE"
	SearchMethodRegex      SearchMethod = "REGEX"
	SearchMethodBM25       SearchMethod = "BM25"
	SearchMethodEmbeddings SearchMethod = "EMBEDDINGS"
)

// ValidateSearchMethod validates the input string and returns the
// corresponding SearchMethod. It returns an error if the input is invalid.
func ValidateSearchMethod(input string) (SearchMethod, error) {
	switch input {
	case string(SearchMethodNone):
		return SearchMethodNone, nil
	case string(SearchMethodRegex):
		return SearchMethodRegex, nil
	case string(SearchMethodBM25):
		return SearchMethodBM25, nil
	case string(SearchMethodEmbeddings):
		return SearchMethodEmbeddings, nil
	default:
		return "", fmt.Errorf(
			"unsupported search method: %s (acceptable values: '%s', '%s', '%s', '%s')",
			input, SearchMethodNone, SearchMethodRegex, SearchMethodBM25, SearchMethodEmbeddings,
		)
	}
}

// DeferLoadingBehavior is a tri-state override. It is never represented as a
// nullable boolean: the nil case would lose the distinction between "unset"
// and "deliberately false".
type DeferLoadingBehavior string

const (
	DeferLoadingInherit  DeferLoadingBehavior = "INHERIT"
	DeferLoadingEnabled  DeferLoadingBehavior = "ENABLED"
	DeferLoadingDisabled DeferLoadingBehavior = "DISABLED"
)

// ValidateDeferLoadingBehavior validates the input string and returns the
// corresponding DeferLoadingBehavior. Empty input defaults to INHERIT.
func ValidateDeferLoadingBehavior(input string) (DeferLoadingBehavior, error) {
	switch input {
	case string(DeferLoadingInherit), "":
		return DeferLoadingInherit, nil
	case string(DeferLoadingEnabled):
		return DeferLoadingEnabled, nil
	case string(DeferLoadingDisabled):
		return DeferLoadingDisabled, nil
	default:
		return "", fmt.Errorf(
			"unsupported defer_loading value: %s (acceptable values: '%s', '%s', '%s')",
			input, DeferLoadingInherit, DeferLoadingEnabled, DeferLoadingDisabled,
		)
	}
}

// ToolVisibilityMode controls whether the full tool list or only the
// built-in search surface is advertised to a client.
type ToolVisibilityMode string

const (
	ToolVisibilityInherit    ToolVisibilityMode = "INHERIT"
	ToolVisibilityAll        ToolVisibilityMode = "ALL"
	ToolVisibilitySearchOnly ToolVisibilityMode = "SEARCH_ONLY"
)

// ValidateToolVisibilityMode validates the input string and returns the
// corresponding ToolVisibilityMode. Empty input defaults to INHERIT.
func ValidateToolVisibilityMode(input string) (ToolVisibilityMode, error) {
	switch input {
	case string(ToolVisibilityInherit), "":
		return ToolVisibilityInherit, nil
	case string(ToolVisibilityAll):
		return ToolVisibilityAll, nil
	case string(ToolVisibilitySearchOnly):
		return ToolVisibilitySearchOnly, nil
	default:
		return "", fmt.Errorf(
			"unsupported tool_visibility value: %s (acceptable values: '%s', '%s', '%s')",
			input, ToolVisibilityInherit, ToolVisibilityAll, ToolVisibilitySearchOnly,
		)
	}
}

// EndpointSearchMethodOverride is override_search_method on an Endpoint. It
// extends SearchMethod with the INHERIT sentinel rather than reusing a
// pointer-to-SearchMethod, for the same reason DeferLoadingBehavior exists.
type EndpointSearchMethodOverride string

const (
	SearchMethodOverrideInherit EndpointSearchMethodOverride = "INHERIT"
)

// ValidateSearchMethodOverride validates an endpoint's override_search_method
// value, which may additionally be INHERIT. Empty input defaults to INHERIT.
func ValidateSearchMethodOverride(input string) (EndpointSearchMethodOverride, error) {
	if input == "" || input == string(SearchMethodOverrideInherit) {
		return SearchMethodOverrideInherit, nil
	}
	if _, err := ValidateSearchMethod(input); err != nil {
		return "", fmt.Errorf(
			"unsupported override_search_method value: %s (acceptable values: '%s', 'NONE', 'REGEX', 'BM25', 'EMBEDDINGS')",
			input, SearchMethodOverrideInherit,
		)
	}
	return EndpointSearchMethodOverride(input), nil
}

// IsInherit reports whether the override is the INHERIT sentinel.
func (o EndpointSearchMethodOverride) IsInherit() bool {
	return o == "" || o == SearchMethodOverrideInherit
}

// AsSearchMethod returns the override as a SearchMethod. It must only be
// called once IsInherit has been checked.
func (o EndpointSearchMethodOverride) AsSearchMethod() SearchMethod {
	return SearchMethod(o)
}
