package main

import (
	_ "embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// metaSchema is the subset of draft-07 the exported schemas must satisfy:
// an object schema with $schema, $id, and title, whose properties carry
// well-formed type members.
//
//go:embed meta-schema.json
var metaSchema []byte

// validateSchema validates an exported schema against the embedded
// meta-schema.
func validateSchema(id string, exported []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(metaSchema),
		gojsonschema.NewBytesLoader(exported),
	)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errMsg := fmt.Sprintf("schema %s is invalid:\n", id)
		for _, desc := range result.Errors() {
			errMsg += fmt.Sprintf("  - %s: %s\n", desc.Field(), desc.Description())
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}
