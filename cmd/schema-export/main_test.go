package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/joelkoz/signalk-plugin-base/registry"
)

func TestExportSchemaEnvelope(t *testing.T) {
	reg := registry.New()
	require.NoError(t, registerPlugins(reg))

	factories := reg.ListFactories()
	require.Len(t, factories, 1)

	registration := factories["position-logger"]
	doc, err := reg.Schema("position-logger")
	require.NoError(t, err)

	exported, err := exportSchema(registration, doc)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(exported, &parsed))
	assert.Equal(t, "http://json-schema.org/draft-07/schema#", parsed["$schema"])
	assert.Equal(t, "position-logger.v1.json", parsed["$id"])
	assert.Equal(t, "Position Logger Configuration", parsed["title"])
	assert.Equal(t, "object", parsed["type"])

	// Envelope keys precede the document body.
	assert.Less(t, bytes.Index(exported, []byte(`"$schema"`)), bytes.Index(exported, []byte(`"properties"`)))
	// Declaration order survives the export.
	assert.Less(t, bytes.Index(exported, []byte(`"vesselName"`)), bytes.Index(exported, []byte(`"zones"`)))
}

func TestExportedSchemaValidates(t *testing.T) {
	reg := registry.New()
	require.NoError(t, registerPlugins(reg))

	registration := reg.ListFactories()["position-logger"]
	doc, err := reg.Schema("position-logger")
	require.NoError(t, err)

	exported, err := exportSchema(registration, doc)
	require.NoError(t, err)

	require.NoError(t, validateSchema("position-logger", exported))
}

func TestValidateSchemaRejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		schema string
	}{
		{"missing id", `{"$schema": "http://json-schema.org/draft-07/schema#", "title": "X", "type": "object", "properties": {}}`},
		{"bad id format", `{"$schema": "http://json-schema.org/draft-07/schema#", "$id": "nope", "title": "X", "type": "object", "properties": {}}`},
		{"bad property type", `{"$schema": "http://json-schema.org/draft-07/schema#", "$id": "x.v1.json", "title": "X", "type": "object", "properties": {"a": {"type": "banana"}}}`},
		{"not an object schema", `{"$schema": "http://json-schema.org/draft-07/schema#", "$id": "x.v1.json", "title": "X", "type": "string", "properties": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSchema("x", []byte(tt.schema))
			assert.Error(t, err)
		})
	}
}

func TestWriteCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog", "catalog.yaml")

	entries := []CatalogEntry{
		{ID: "position-logger", Name: "Position Logger", Version: "1.0.0", Schema: "position-logger.v1.json"},
	}
	require.NoError(t, writeCatalog(path, entries))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed map[string][]CatalogEntry
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	require.Len(t, parsed["plugins"], 1)
	assert.Equal(t, "position-logger", parsed["plugins"][0].ID)
	assert.Equal(t, "position-logger.v1.json", parsed["plugins"][0].Schema)
}
