// Package jsonschema implements the permissive JSON-Schema subset used to
// validate execute_tool arguments (spec §4.D, §9): allErrors=true, unknown
// keywords tolerated, and a schema that fails to compile reported as a
// single synthetic error rather than thrown. No JSON-Schema library in the
// retrieved corpus is imported by name anywhere examined while building
// this module (google/jsonschema-go appears only as an indirect transitive
// dependency of mark3labs/mcp-go, never called), so this narrow subset is
// hand-rolled rather than built on an ungrounded API — see DESIGN.md.
package jsonschema

import (
	"fmt"

	"github.com/mcpmux/mcpmux/pkg/types"
)

// Error is one validation failure. InstancePath is "(root)" when the error
// applies to the whole instance rather than a specific field.
type Error struct {
	InstancePath string
	Keyword      string
	Message      string
}

// DefaultSchema is substituted whenever a tool's inputSchema is missing,
// per §4.D step 3.
func DefaultSchema() map[string]any {
	return map[string]any{"type": "object", "additionalProperties": true}
}

// CompileSchema converts a types.ToolInputSchema into the generic schema
// map the validator walks. A zero-value schema (no Type set) is treated as
// missing and replaced with DefaultSchema.
func CompileSchema(schema types.ToolInputSchema) map[string]any {
	if schema.Type == "" && schema.Properties == nil && len(schema.Required) == 0 {
		return DefaultSchema()
	}
	m := map[string]any{"type": schema.Type}
	if schema.Properties != nil {
		m["properties"] = schema.Properties
	}
	if len(schema.Required) > 0 {
		required := make([]any, len(schema.Required))
		for i, r := range schema.Required {
			required[i] = r
		}
		m["required"] = required
	}
	return m
}

// Validate walks schema against data, collecting every violation
// (allErrors=true) rather than stopping at the first. A schema this
// function cannot make sense of (e.g. a malformed "type") is reported as
// a single {keyword:"schema"} error instead of panicking or returning an
// error value, per §4.D step 3.
func Validate(schema map[string]any, data any) []Error {
	if schema == nil {
		schema = DefaultSchema()
	}
	if !isPlausibleSchema(schema) {
		return []Error{{
			Keyword: "schema",
			Message: fmt.Sprintf("Invalid tool schema: %v", schema),
		}}
	}
	var errs []Error
	validateNode(schema, data, "(root)", &errs)
	return errs
}

// isPlausibleSchema is a shallow sanity check: a schema-compile failure in
// this permissive validator means "type" (if present) isn't a recognized
// string, since every other keyword is tolerated regardless of shape.
func isPlausibleSchema(schema map[string]any) bool {
	t, ok := schema["type"]
	if !ok {
		return true
	}
	s, ok := t.(string)
	if !ok {
		return false
	}
	switch s {
	case "object", "array", "string", "number", "integer", "boolean", "null", "":
		return true
	default:
		return false
	}
}

func validateNode(schema map[string]any, data any, path string, errs *[]Error) {
	if t, ok := schema["type"].(string); ok && t != "" {
		if !matchesType(t, data) {
			*errs = append(*errs, Error{
				InstancePath: path,
				Keyword:      "type",
				Message:      fmt.Sprintf("must be of type %s", t),
			})
			// Keep validating other keywords — allErrors policy. The
			// checks below each run only when data has the shape they
			// need (a number, an object).
		}
	}

	if enumVals, ok := schema["enum"].([]any); ok {
		if !inEnum(enumVals, data) {
			*errs = append(*errs, Error{
				InstancePath: path,
				Keyword:      "enum",
				Message:      "must be one of the allowed values",
			})
		}
	}

	if num, ok := toFloat(data); ok {
		if min, ok := toFloat(schema["minimum"]); ok && num < min {
			*errs = append(*errs, Error{
				InstancePath: path,
				Keyword:      "minimum",
				Message:      fmt.Sprintf("must be >= %v", min),
			})
		}
		if max, ok := toFloat(schema["maximum"]); ok && num > max {
			*errs = append(*errs, Error{
				InstancePath: path,
				Keyword:      "maximum",
				Message:      fmt.Sprintf("must be <= %v", max),
			})
		}
	}

	obj, isObj := data.(map[string]any)
	if !isObj {
		return
	}

	if required, ok := schema["required"].([]any); ok {
		for _, r := range required {
			name, ok := r.(string)
			if !ok {
				continue
			}
			if _, present := obj[name]; !present {
				*errs = append(*errs, Error{
					InstancePath: path,
					Keyword:      "required",
					Message:      fmt.Sprintf("%q is required", name),
				})
			}
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	for name, value := range obj {
		propSchema, hasSchema := asSchemaMap(properties[name])
		if hasSchema {
			validateNode(propSchema, value, joinPath(path, name), errs)
			continue
		}
		if additional, ok := schema["additionalProperties"]; ok {
			if allowed, isBool := additional.(bool); isBool && !allowed {
				*errs = append(*errs, Error{
					InstancePath: joinPath(path, name),
					Keyword:      "additionalProperties",
					Message:      fmt.Sprintf("%q is not a recognized property", name),
				})
			}
		}
	}
}

func asSchemaMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func joinPath(base, name string) string {
	if base == "(root)" {
		return "/" + name
	}
	return base + "/" + name
}

func matchesType(t string, data any) bool {
	switch t {
	case "object":
		_, ok := data.(map[string]any)
		return ok
	case "array":
		_, ok := data.([]any)
		return ok
	case "string":
		_, ok := data.(string)
		return ok
	case "boolean":
		_, ok := data.(bool)
		return ok
	case "number":
		_, ok := toFloat(data)
		return ok
	case "integer":
		f, ok := toFloat(data)
		return ok && f == float64(int64(f))
	case "null":
		return data == nil
	default:
		return true
	}
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

func inEnum(values []any, data any) bool {
	for _, v := range values {
		if fmt.Sprint(v) == fmt.Sprint(data) {
			return true
		}
	}
	return false
}
