// Package middleware implements the defer-loading & visibility pipeline
// (§4.F): the step that runs on every advertise-tools response to inject
// the search_tools/execute_tool built-ins, apply per-tool defer_loading
// flags, and filter by visibility mode. It never mutates the tools it is
// given — upstream tool objects are immutable — and it never fails the
// advertise call: any internal error returns the original list unchanged.
package middleware

import (
	"github.com/mcpmux/mcpmux/pkg/types"
	"go.uber.org/zap"
)

// BuiltinDefinitions supplies the search_tools/execute_tool tool
// definitions to inject. Kept as an interface rather than a direct
// dependency on internal/builtin so middleware has no import-cycle risk
// with the package that consumes it.
type BuiltinDefinitions interface {
	SearchToolsDefinition() types.Tool
	ExecuteToolDefinition() types.Tool
	IsBuiltin(name string) bool
}

// Pipeline applies the defer-loading and visibility rules to an
// advertise-tools response.
type Pipeline struct {
	builtins        BuiltinDefinitions
	advertiseExec   bool
	logger          *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithExecuteToolAdvertised makes the pipeline unconditionally append
// execute_tool, per §4.F step 1's permission for clients without
// tool_reference support. Off by default.
func WithExecuteToolAdvertised() Option {
	return func(p *Pipeline) { p.advertiseExec = true }
}

// New returns a Pipeline. logger may be nil, in which case a no-op logger
// is used.
func New(builtins BuiltinDefinitions, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{builtins: builtins, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Apply runs the three-step pipeline over upstreamTools. On any internal
// error it logs and returns upstreamTools as AdvertisedTool values with no
// flags applied — the advertise call itself never fails.
func (p *Pipeline) Apply(upstreamTools []types.Tool, resolved types.ResolvedConfig) []types.AdvertisedTool {
	result, err := p.apply(upstreamTools, resolved)
	if err != nil {
		p.logger.Warn("defer-loading/visibility middleware failed, returning upstream tools unchanged", zap.Error(err))
		return passthrough(upstreamTools)
	}
	return result
}

func passthrough(tools []types.Tool) []types.AdvertisedTool {
	out := make([]types.AdvertisedTool, len(tools))
	for i, t := range tools {
		out[i] = t.Advertised()
	}
	return out
}

func (p *Pipeline) apply(upstreamTools []types.Tool, resolved types.ResolvedConfig) ([]types.AdvertisedTool, error) {
	candidates := p.injectBuiltins(upstreamTools, resolved)

	flagged := p.applyDeferLoading(candidates, resolved)

	return p.applyVisibility(flagged, resolved), nil
}

// injectBuiltins is step 1: conditionally appends search_tools iff
// deferLoadingEnabled && searchMethod != NONE, and optionally appends
// execute_tool unconditionally.
func (p *Pipeline) injectBuiltins(upstreamTools []types.Tool, resolved types.ResolvedConfig) []types.Tool {
	candidates := make([]types.Tool, len(upstreamTools), len(upstreamTools)+2)
	copy(candidates, upstreamTools)

	if resolved.DeferLoadingEnabled && resolved.SearchMethod != types.SearchMethodNone {
		candidates = append(candidates, p.builtins.SearchToolsDefinition())
	}
	if p.advertiseExec {
		candidates = append(candidates, p.builtins.ExecuteToolDefinition())
	}
	return candidates
}

// applyDeferLoading is step 2: clone+flag per the rule table in §4.F,
// never mutating the inputs.
func (p *Pipeline) applyDeferLoading(candidates []types.Tool, resolved types.ResolvedConfig) []types.AdvertisedTool {
	out := make([]types.AdvertisedTool, len(candidates))
	for i, tool := range candidates {
		if p.builtins.IsBuiltin(tool.Name) {
			out[i] = tool.Advertised()
			continue
		}

		override, hasOverride := resolved.ToolOverrides[tool.Name]
		switch {
		case hasOverride && !override:
			out[i] = tool.Advertised()
		case hasOverride && override:
			out[i] = tool.WithDeferLoading()
		case resolved.DeferLoadingEnabled:
			out[i] = tool.WithDeferLoading()
		default:
			out[i] = tool.Advertised()
		}
	}
	return out
}

// applyVisibility is step 3: ALL passes through; SEARCH_ONLY retains only
// the built-in(s).
func (p *Pipeline) applyVisibility(tools []types.AdvertisedTool, resolved types.ResolvedConfig) []types.AdvertisedTool {
	if resolved.ToolVisibility != types.ToolVisibilitySearchOnly {
		return tools
	}
	out := make([]types.AdvertisedTool, 0, 2)
	for _, t := range tools {
		if p.builtins.IsBuiltin(t.Name) {
			out = append(out, t)
		}
	}
	return out
}
