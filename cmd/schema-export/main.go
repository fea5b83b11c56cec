// schema-export renders the configuration schema of every registered plugin
// to versioned JSON Schema files, validates each against the draft-07
// meta-schema, and writes a YAML catalog the host UI can index.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/joelkoz/signalk-plugin-base/examples/positionlogger"
	"github.com/joelkoz/signalk-plugin-base/plugin"
	"github.com/joelkoz/signalk-plugin-base/registry"
	"github.com/joelkoz/signalk-plugin-base/schema"
	"github.com/joelkoz/signalk-plugin-base/stream"
)

func main() {
	outDir := flag.String("out", "./schemas", "Output directory for schemas")
	catalogOut := flag.String("catalog", "./schemas/catalog.yaml", "Output path for the plugin catalog")
	flag.Parse()

	log.Printf("Plugin schema export")
	log.Printf("  Output dir: %s", *outDir)
	log.Printf("  Catalog: %s", *catalogOut)

	reg := registry.New()
	if err := registerPlugins(reg); err != nil {
		log.Fatalf("Failed to register plugins: %v", err)
	}

	factories := reg.ListFactories()
	log.Printf("Found %d plugin types", len(factories))

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	var entries []CatalogEntry
	for id, registration := range factories {
		doc, err := reg.Schema(id)
		if err != nil {
			log.Fatalf("Failed to build schema for %s: %v", id, err)
		}

		exported, err := exportSchema(registration, doc)
		if err != nil {
			log.Fatalf("Failed to export schema for %s: %v", id, err)
		}

		if err := validateSchema(id, exported); err != nil {
			log.Fatalf("Schema validation failed for %s: %v", id, err)
		}

		outFile := filepath.Join(*outDir, fmt.Sprintf("%s.v1.json", id))
		if err := os.WriteFile(outFile, exported, 0644); err != nil {
			log.Fatalf("Failed to write schema for %s: %v", id, err)
		}

		entries = append(entries, CatalogEntry{
			ID:          id,
			Name:        registration.Name,
			Description: registration.Description,
			Version:     registration.Version,
			Schema:      fmt.Sprintf("%s.v1.json", id),
		})
		log.Printf("  Generated: %s", outFile)
	}

	if *catalogOut != "" {
		if err := writeCatalog(*catalogOut, entries); err != nil {
			log.Fatalf("Failed to write catalog: %v", err)
		}
		log.Printf("  Generated catalog: %s", *catalogOut)
	}

	log.Printf("Schema export complete")
}

// registerPlugins registers every plugin type shipped with the module. The
// in-memory source stands in for the transport; factories perform no I/O so
// the placeholder is never exercised.
func registerPlugins(reg *registry.Registry) error {
	return reg.RegisterFactory(&registry.Registration{
		ID:          positionlogger.ID,
		Name:        "Position Logger",
		Description: "Logs and republishes vessel positions",
		Version:     "1.0.0",
		Factory: func(deps plugin.Dependencies) (*plugin.Plugin, error) {
			return positionlogger.New(deps, stream.NewMemorySource()).Plugin, nil
		},
	})
}

// CatalogEntry is one row of the exported plugin catalog.
type CatalogEntry struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
	Schema      string `yaml:"schema"`
}

// exportSchema renders the schema document wrapped in a $schema/$id
// envelope. An ordered map keeps both the envelope keys and the document's
// property declaration order in the output.
func exportSchema(registration registry.Registration, doc *schema.Document) ([]byte, error) {
	out := orderedmap.New[string, any]()
	out.Set("$schema", "http://json-schema.org/draft-07/schema#")
	out.Set("$id", fmt.Sprintf("%s.v1.json", registration.ID))
	out.Set("title", fmt.Sprintf("%s Configuration", registration.Name))
	if registration.Description != "" {
		out.Set("description", registration.Description)
	}
	out.Set("type", "object")
	out.Set("properties", doc.Properties)

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, data, "", "  "); err != nil {
		return nil, fmt.Errorf("indent schema: %w", err)
	}
	return indented.Bytes(), nil
}

// writeCatalog writes the catalog entries as YAML.
func writeCatalog(path string, entries []CatalogEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}

	data, err := yaml.Marshal(map[string][]CatalogEntry{"plugins": entries})
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}
