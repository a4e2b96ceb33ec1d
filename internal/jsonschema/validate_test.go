package jsonschema

import (
	"testing"

	"github.com/mcpmux/mcpmux/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestCompileSchema_MissingSchemaBecomesDefault(t *testing.T) {
	schema := CompileSchema(types.ToolInputSchema{})
	require.Equal(t, DefaultSchema(), schema)
}

func TestValidate_RequiredFieldMissing(t *testing.T) {
	schema := CompileSchema(types.ToolInputSchema{
		Type:     "object",
		Required: []string{"city"},
		Properties: map[string]any{
			"city": map[string]any{"type": "string"},
		},
	})

	errs := Validate(schema, map[string]any{})
	require.Len(t, errs, 1)
	require.Equal(t, "required", errs[0].Keyword)
	require.Equal(t, "(root)", errs[0].InstancePath)
}

func TestValidate_CollectsEveryViolationRatherThanStoppingAtTheFirst(t *testing.T) {
	schema := CompileSchema(types.ToolInputSchema{
		Type:     "object",
		Required: []string{"city", "days"},
		Properties: map[string]any{
			"city": map[string]any{"type": "string"},
			"days": map[string]any{"type": "number"},
		},
	})

	errs := Validate(schema, map[string]any{"city": 5, "days": "not a number"})
	require.GreaterOrEqual(t, len(errs), 2, "a wrong-typed city and a wrong-typed days must both be reported")
}

func TestValidate_WrongTopLevelType(t *testing.T) {
	schema := CompileSchema(types.ToolInputSchema{Type: "object"})

	errs := Validate(schema, "not an object")
	require.Len(t, errs, 1)
	require.Equal(t, "type", errs[0].Keyword)
}

func TestValidate_NestedPropertyPathIsReported(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"address": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"zip": map[string]any{"type": "string"},
				},
			},
		},
	}

	errs := Validate(schema, map[string]any{"address": map[string]any{"zip": 12345}})
	require.Len(t, errs, 1)
	require.Equal(t, "/address/zip", errs[0].InstancePath)
}

func TestValidate_UnknownKeywordsAreTolerated(t *testing.T) {
	schema := map[string]any{"type": "object", "$comment": "whatever this is"}

	errs := Validate(schema, map[string]any{})
	require.Empty(t, errs)
}

func TestValidate_AdditionalPropertiesFalseRejectsExtras(t *testing.T) {
	schema := map[string]any{
		"type":                 "object",
		"properties":           map[string]any{"city": map[string]any{"type": "string"}},
		"additionalProperties": false,
	}

	errs := Validate(schema, map[string]any{"city": "paris", "extra": true})
	require.Len(t, errs, 1)
	require.Equal(t, "additionalProperties", errs[0].Keyword)
}

func TestValidate_MinimumMaximumBounds(t *testing.T) {
	schema := map[string]any{"type": "number", "minimum": 1.0, "maximum": 10.0}

	require.Empty(t, Validate(schema, 5.0))
	require.Len(t, Validate(schema, 0.0), 1)
	require.Len(t, Validate(schema, 11.0), 1)
}

func TestValidate_EnumRejectsValuesOutsideTheSet(t *testing.T) {
	schema := map[string]any{"enum": []any{"celsius", "fahrenheit"}}

	require.Empty(t, Validate(schema, "celsius"))
	require.Len(t, Validate(schema, "kelvin"), 1)
}

func TestValidate_UnrecognizedTypeIsASingleSyntheticSchemaError(t *testing.T) {
	schema := map[string]any{"type": "not-a-real-type"}

	errs := Validate(schema, map[string]any{})
	require.Len(t, errs, 1)
	require.Equal(t, "schema", errs[0].Keyword)
}

func TestValidate_NilSchemaFallsBackToDefaultAndAcceptsAnything(t *testing.T) {
	require.Empty(t, Validate(nil, map[string]any{"anything": true}))
}
