// Where: cli/internal/naming/naming.go
// What: Resource-name template rendering and validation.
// Why: One naming convention across index, bucket, and parameter names.
package naming

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Inputs are the values available to naming templates, e.g.
// "{{ .Project }}-{{ .Env }}-documents".
type Inputs struct {
	Project string
	Env     string
}

// Render executes a naming template against the inputs.
func Render(tmpl string, inputs Inputs) (string, error) {
	if strings.TrimSpace(tmpl) == "" {
		return "", fmt.Errorf("naming template is empty")
	}

	parsed, err := template.New("name").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse naming template: %w", err)
	}

	var buf bytes.Buffer
	if err := parsed.Execute(&buf, inputs); err != nil {
		return "", fmt.Errorf("render naming template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// indexNamePattern mirrors the collection's index-name constraints:
// lowercase, starts with a letter or digit, no spaces or uppercase.
var indexNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

const maxIndexNameLength = 255

// ValidateIndexName rejects names the collection would refuse.
func ValidateIndexName(name string) error {
	if name == "" {
		return fmt.Errorf("index name is empty")
	}
	if len(name) > maxIndexNameLength {
		return fmt.Errorf("index name exceeds %d characters", maxIndexNameLength)
	}
	if !indexNamePattern.MatchString(name) {
		return fmt.Errorf("index name %q contains invalid characters", name)
	}
	return nil
}

// IndexName renders and validates an index name in one step.
func IndexName(tmpl string, inputs Inputs) (string, error) {
	name, err := Render(tmpl, inputs)
	if err != nil {
		return "", err
	}
	if err := ValidateIndexName(name); err != nil {
		return "", err
	}
	return name, nil
}
