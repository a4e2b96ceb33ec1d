package types

// ToolInputSchema is a JSON-Schema object describing a tool's arguments.
// It is kept loose (map[string]any for Properties) because upstream servers
// are free to use keywords this system does not interpret.
type ToolInputSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Required   []string       `json:"required,omitempty"`
}

// Tool is the upstream-supplied tool shape: immutable during a request,
// never mutated by the middleware or the search providers.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema ToolInputSchema `json:"inputSchema,omitempty"`
}

// AdvertisedTool is a Tool as it appears in an advertise-tools response. The
// DeferLoading field is OMITTED when false; when present it is always the
// literal JSON boolean true, never false.
type AdvertisedTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema ToolInputSchema `json:"inputSchema,omitempty"`

	DeferLoading *bool `json:"defer_loading,omitempty"`
}

// WithDeferLoading returns a shallow clone of t with defer_loading set to
// true. Upstream tool objects are never mutated in place; every flag
// application produces a new value.
func (t Tool) WithDeferLoading() AdvertisedTool {
	enabled := true
	return AdvertisedTool{
		Name:         t.Name,
		Description:  t.Description,
		InputSchema:  t.InputSchema,
		DeferLoading: &enabled,
	}
}

// Advertised returns t as an AdvertisedTool with no defer_loading flag set.
func (t Tool) Advertised() AdvertisedTool {
	return AdvertisedTool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.InputSchema,
	}
}

// ToolReferenceBlock is the result format for search_tools: one entry per
// matched tool.
type ToolReferenceBlock struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewToolReferenceBlock constructs a tool_reference content block.
func NewToolReferenceBlock(name, description string) ToolReferenceBlock {
	return ToolReferenceBlock{Type: "tool_reference", Name: name, Description: description}
}

// ToolInvokeResult represents the result of dispatching a tool call,
// whether to a built-in or to an upstream server via the proxy function. It
// is designed to be passed down to the caller verbatim.
type ToolInvokeResult struct {
	Meta    map[string]any `json:"_meta,omitempty"`
	IsError bool           `json:"isError,omitempty"`

	Content           []map[string]any `json:"content"`
	StructuredContent any              `json:"structuredContent,omitempty"`
}

// TextResult builds a ToolInvokeResult with a single text content block.
func TextResult(text string, isError bool) *ToolInvokeResult {
	return &ToolInvokeResult{
		IsError: isError,
		Content: []map[string]any{
			{"type": "text", "text": text},
		},
	}
}
