// Where: cli/internal/config/manifest.go
// What: Deployment manifest (rag.yml) parsing and validation.
// Why: Index schema and naming templates are reviewed configuration, not flags.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Manifest is the declarative input of a deployment: which project and
// environment this is, and the index the knowledge base depends on.
type Manifest struct {
	Project     string        `yaml:"project"`
	Environment string        `yaml:"environment"`
	Index       ManifestIndex `yaml:"index"`
	Naming      NamingRules   `yaml:"naming"`
}

// ManifestIndex is the index schema section of the manifest.
type ManifestIndex struct {
	Name            string `yaml:"name"`
	VectorDimension int    `yaml:"vectorDimension"`
	Metric          string `yaml:"similarityMetric"`
	Shards          int    `yaml:"shards"`
	Replicas        int    `yaml:"replicas"`
}

// NamingRules holds the resource-name templates rendered by internal/naming.
type NamingRules struct {
	IndexName       string `yaml:"indexName"`
	DocumentsBucket string `yaml:"documentsBucket"`
}

const manifestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["project", "index"],
  "properties": {
    "project": {"type": "string", "minLength": 1},
    "environment": {"type": "string"},
    "index": {
      "type": "object",
      "required": ["vectorDimension"],
      "properties": {
        "name": {"type": "string"},
        "vectorDimension": {"type": "integer", "minimum": 1},
        "similarityMetric": {"enum": ["cosine"]},
        "shards": {"type": "integer", "minimum": 1},
        "replicas": {"type": "integer", "minimum": 0}
      },
      "additionalProperties": false
    },
    "naming": {
      "type": "object",
      "properties": {
        "indexName": {"type": "string"},
        "documentsBucket": {"type": "string"}
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadManifestSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("rag-manifest.json", strings.NewReader(manifestSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("rag-manifest.json")
	})
	return compiledSchema, schemaErr
}

// ParseManifest validates and decodes manifest content.
func ParseManifest(content []byte) (Manifest, error) {
	schema, err := loadManifestSchema()
	if err != nil {
		return Manifest{}, err
	}

	var document any
	if err := yaml.Unmarshal(content, &document); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest yaml: %w", err)
	}
	if err := schema.Validate(normalizeYAML(document)); err != nil {
		return Manifest{}, fmt.Errorf("invalid manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(content, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	applyManifestDefaults(&manifest)
	return manifest, nil
}

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(content)
}

func applyManifestDefaults(m *Manifest) {
	if m.Environment == "" {
		m.Environment = DefaultEnvironment
	}
	if m.Index.Name == "" {
		m.Index.Name = DefaultIndexName
	}
	if m.Index.Metric == "" {
		m.Index.Metric = "cosine"
	}
	if m.Index.Shards == 0 {
		m.Index.Shards = 2
	}
}

// normalizeYAML converts yaml.v3 decoding artifacts into the shapes the
// schema validator expects (map[string]any keys throughout).
func normalizeYAML(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprintf("%v", key)] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return value
	}
}
