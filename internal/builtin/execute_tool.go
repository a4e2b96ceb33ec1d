package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcpmux/mcpmux/internal/jsonschema"
	"github.com/mcpmux/mcpmux/pkg/types"
)

// ExecuteTool implements component D's dispatch algorithm. Unlike
// SearchTools, it never returns a Go error: every failure mode converts to
// an isError:true result with human-readable text, per §7.
func (b *Builtins) ExecuteTool(
	ctx context.Context,
	args map[string]any,
	candidatePool []types.AvailableTool,
) *types.ToolInvokeResult {
	toolName, arguments, ok := parseExecuteArgs(args)
	if !ok {
		return types.TextResult(
			"Invalid arguments: \"tool_name\" must be a string and \"arguments\" must be an object.",
			true,
		)
	}

	// Step 1: cycle safety. Refuse by name, never by tool metadata.
	if b.IsBuiltin(toolName) {
		return types.TextResult(fmt.Sprintf(`Cannot execute builtin tool "%s"`, toolName), true)
	}

	// Step 2: find the unique matching tool.
	tool, found := findTool(candidatePool, toolName)
	if !found {
		return notFoundResult(toolName, candidatePool)
	}

	// Steps 3-4: permissive schema validation.
	schema := jsonschema.CompileSchema(tool.InputSchema)
	errs := jsonschema.Validate(schema, arguments)
	if len(errs) > 0 {
		return invalidArgsResult(tool, errs)
	}

	// Step 5: delegate to the proxy collaborator.
	result, err := b.proxy(ctx, toolName, arguments)
	if err != nil {
		return types.TextResult(fmt.Sprintf(`Error executing tool "%s": %s`, toolName, err.Error()), true)
	}
	return result
}

func parseExecuteArgs(args map[string]any) (toolName string, arguments map[string]any, ok bool) {
	name, nameOK := args["tool_name"].(string)
	if !nameOK {
		return "", nil, false
	}
	rawArgs, present := args["arguments"]
	if !present || rawArgs == nil {
		return "", nil, false
	}
	argMap, argsOK := rawArgs.(map[string]any)
	if !argsOK {
		return "", nil, false
	}
	return name, argMap, true
}

func findTool(pool []types.AvailableTool, name string) (types.Tool, bool) {
	for _, at := range pool {
		if at.Tool.Name == name {
			return at.Tool, true
		}
	}
	return types.Tool{}, false
}

const maxListedCandidates = 10

func notFoundResult(name string, pool []types.AvailableTool) *types.ToolInvokeResult {
	var b strings.Builder
	fmt.Fprintf(&b, "Tool \"%s\" not found.", name)

	if len(pool) > 0 {
		b.WriteString(" Available tools: ")
		limit := len(pool)
		if limit > maxListedCandidates {
			limit = maxListedCandidates
		}
		names := make([]string, 0, limit)
		for i := 0; i < limit; i++ {
			names = append(names, pool[i].Tool.Name)
		}
		b.WriteString(strings.Join(names, ", "))
		if len(pool) > maxListedCandidates {
			fmt.Fprintf(&b, ", ... and %d more tools", len(pool)-maxListedCandidates)
		}
		b.WriteString(".")
	}

	b.WriteString(" Call search_tools to discover available tools.")

	return types.TextResult(b.String(), true)
}

const maxListedErrors = 10

func invalidArgsResult(tool types.Tool, errs []jsonschema.Error) *types.ToolInvokeResult {
	var b strings.Builder
	fmt.Fprintf(&b, "Argument validation failed for tool \"%s\":\n", tool.Name)

	limit := len(errs)
	if limit > maxListedErrors {
		limit = maxListedErrors
	}
	for i := 0; i < limit; i++ {
		path := errs[i].InstancePath
		if path == "" {
			path = "(root)"
		}
		fmt.Fprintf(&b, "  - %s: %s\n", path, errs[i].Message)
	}
	if len(errs) > maxListedErrors {
		fmt.Fprintf(&b, "  ... and %d more errors\n", len(errs)-maxListedErrors)
	}

	pretty, err := json.MarshalIndent(tool.InputSchema, "", "  ")
	if err == nil {
		b.WriteString(string(pretty))
	}

	return types.TextResult(b.String(), true)
}
