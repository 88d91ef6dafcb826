// Where: cli/internal/config/manifest_test.go
// What: Tests for manifest parsing and schema validation.
// Why: A bad manifest must fail before any remote call is made.
package config

import (
	"strings"
	"testing"
)

const validManifest = `
project: rag-demo
environment: dev
index:
  name: rag-documents
  vectorDimension: 1024
  similarityMetric: cosine
  shards: 2
  replicas: 0
naming:
  indexName: "{{ .Project }}-{{ .Env }}-documents"
  documentsBucket: "{{ .Project }}-{{ .Env }}-docs"
`

func TestParseManifest(t *testing.T) {
	manifest, err := ParseManifest([]byte(validManifest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manifest.Project != "rag-demo" {
		t.Fatalf("unexpected project: %s", manifest.Project)
	}
	if manifest.Index.VectorDimension != 1024 {
		t.Fatalf("unexpected dimension: %d", manifest.Index.VectorDimension)
	}
	if manifest.Naming.DocumentsBucket != "{{ .Project }}-{{ .Env }}-docs" {
		t.Fatalf("unexpected naming rule: %s", manifest.Naming.DocumentsBucket)
	}
}

func TestParseManifestAppliesDefaults(t *testing.T) {
	manifest, err := ParseManifest([]byte("project: rag-demo\nindex:\n  vectorDimension: 1536\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manifest.Environment != DefaultEnvironment {
		t.Fatalf("unexpected environment: %s", manifest.Environment)
	}
	if manifest.Index.Name != DefaultIndexName {
		t.Fatalf("unexpected index name: %s", manifest.Index.Name)
	}
	if manifest.Index.Metric != "cosine" || manifest.Index.Shards != 2 {
		t.Fatalf("defaults not applied: %+v", manifest.Index)
	}
}

func TestParseManifestRejectsSchemaViolations(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing project", "index:\n  vectorDimension: 1024\n"},
		{"missing dimension", "project: rag-demo\nindex:\n  name: docs\n"},
		{"zero dimension", "project: rag-demo\nindex:\n  vectorDimension: 0\n"},
		{"unknown metric", "project: rag-demo\nindex:\n  vectorDimension: 1024\n  similarityMetric: dotproduct\n"},
		{"unknown key", "project: rag-demo\nbogus: true\nindex:\n  vectorDimension: 1024\n"},
	}
	for _, tc := range cases {
		if _, err := ParseManifest([]byte(tc.content)); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		} else if !strings.Contains(err.Error(), "invalid manifest") && !strings.Contains(err.Error(), "parse") {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
	}
}

func TestParseManifestRejectsMalformedYAML(t *testing.T) {
	if _, err := ParseManifest([]byte("project: [unclosed")); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}
