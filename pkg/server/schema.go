package server

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/*.json
var schemaFS embed.FS

// ErrInvalidRequest is returned when a request body does not match its schema.
var ErrInvalidRequest = errors.New("invalid request")

// ErrMalformedJSON is returned when a request body is not JSON.
var ErrMalformedJSON = errors.New("malformed JSON")

// requestSchemas holds the compiled request schemas.
type requestSchemas struct {
	analyze *gojsonschema.Schema
	narrate *gojsonschema.Schema
}

func loadSchemas() (*requestSchemas, error) {
	analyze, err := compileSchema("schema/analyze.schema.json")
	if err != nil {
		return nil, err
	}

	narrate, err := compileSchema("schema/narrate.schema.json")
	if err != nil {
		return nil, err
	}

	return &requestSchemas{analyze: analyze, narrate: narrate}, nil
}

func compileSchema(name string) (*gojsonschema.Schema, error) {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}

	return schema, nil
}

// validate checks body against schema and joins every violation into one
// error wrapping ErrInvalidRequest.
func validate(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(problems, "; "))
}
