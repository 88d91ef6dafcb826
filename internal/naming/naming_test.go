// Where: cli/internal/naming/naming_test.go
// What: Tests for naming template rendering.
// Why: Rendered names feed remote APIs that reject invalid characters late.
package naming

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	name, err := Render("{{ .Project }}-{{ .Env }}-documents", Inputs{Project: "rag-demo", Env: "dev"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "rag-demo-dev-documents" {
		t.Fatalf("unexpected name: %s", name)
	}
}

func TestRenderSprigFunctions(t *testing.T) {
	name, err := Render(`{{ .Project | lower }}-{{ .Env | trunc 3 }}`, Inputs{Project: "RAG-Demo", Env: "production"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "rag-demo-pro" {
		t.Fatalf("unexpected name: %s", name)
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := Render("", Inputs{}); err == nil {
		t.Fatalf("expected error for empty template")
	}
	if _, err := Render("{{ .Project", Inputs{}); err == nil {
		t.Fatalf("expected error for malformed template")
	}
}

func TestValidateIndexName(t *testing.T) {
	if err := ValidateIndexName("rag-demo-dev-documents"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	invalid := []string{"", "Has-Upper", "with space", "-leading", strings.Repeat("a", 256)}
	for _, name := range invalid {
		if err := ValidateIndexName(name); err == nil {
			t.Fatalf("expected error for %q", name)
		}
	}
}

func TestIndexName(t *testing.T) {
	name, err := IndexName("{{ .Project }}-{{ .Env }}-documents", Inputs{Project: "rag-demo", Env: "dev"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "rag-demo-dev-documents" {
		t.Fatalf("unexpected name: %s", name)
	}

	if _, err := IndexName("{{ .Project | upper }}", Inputs{Project: "rag"}); err == nil {
		t.Fatalf("expected validation error for uppercase name")
	}
}
