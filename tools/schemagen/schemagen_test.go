package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
	"github.com/Sumatoshi-tech/codescribe/pkg/engine"
	"github.com/Sumatoshi-tech/codescribe/pkg/narrate"
)

func validate(t *testing.T, doc document, value any) *gojsonschema.Result {
	t.Helper()

	schemaJSON, err := json.Marshal(generateSchema(doc))
	require.NoError(t, err)

	valueJSON, err := json.Marshal(value)
	require.NoError(t, err)

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(valueJSON),
	)
	require.NoError(t, err)

	return result
}

func TestGeneratedSchemasAcceptRealOutput(t *testing.T) {
	t.Parallel()

	res, err := analysis.Submit(analysis.Request{
		Code: "import { x } from \"./mod\";\n// note\nfunction f(a) {\n  if (a) { return 1 }\n}\n",
	})
	require.NoError(t, err)

	values := map[string]any{
		"analysis_result": res,
		"check_result":    analysis.Check(res),
		"narration": engine.Narration{
			Text:    "1 line added and 0 lines removed. Line 2 added: b.",
			Changes: []narrate.Change{{Kind: narrate.ChangeAdded, Line: 2, Text: "b"}},
			Lines:   2,
		},
	}

	for _, doc := range documents {
		result := validate(t, doc, values[doc.name])
		assert.True(t, result.Valid(), "%s: %v", doc.name, result.Errors())
	}
}

func TestGeneratedSchemaRejectsMissingFields(t *testing.T) {
	t.Parallel()

	result := validate(t, documents[0], map[string]any{"explanation": "x"})
	assert.False(t, result.Valid())
}

func TestGenerateSchema_Required(t *testing.T) {
	t.Parallel()

	schema := generateSchema(documents[2])
	assert.Equal(t, []string{"lines", "text"}, schema.Required)
	require.Contains(t, schema.Definitions, "Change")
	assert.Equal(t, "#/definitions/Change", schema.Properties["changes"].Items.Ref)
}

func TestWriteSchema(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, writeSchema(dir, "narration", generateSchema(documents[2])))

	data, err := os.ReadFile(filepath.Join(dir, "narration.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Narration"`)
}
