// Where: cli/internal/app/validate.go
// What: validate command handler.
// Why: Post-deployment validation with a machine-readable report.
package app

import (
	"context"
	"fmt"
	"io"
)

// runValidate runs all environment checks and prints the report as JSON.
// A failing check fails the command.
func runValidate(cli CLI, deps Dependencies, out io.Writer) int {
	ctx := context.Background()

	cfg, _, err := resolveConfig(ctx, cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	if deps.Validators == nil {
		return exitWithError(out, fmt.Errorf("validator factory not configured"))
	}

	validator, err := deps.Validators.Validator(ctx, cfg)
	if err != nil {
		return exitWithError(out, err)
	}

	report := validator.Run(ctx)
	if err := emitJSON(out, report); err != nil {
		return exitWithError(out, err)
	}
	if !report.OK {
		return 1
	}
	return 0
}
