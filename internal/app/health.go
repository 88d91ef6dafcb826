// Where: cli/internal/app/health.go
// What: health command handler.
// Why: Surface the weighted health score to operators and scripts.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ragkit/rag-demo/cli/internal/health"
)

// runHealth prints the environment health report as JSON. Only an unhealthy
// environment fails the command; degraded is a warning, not a gate.
func runHealth(cli CLI, deps Dependencies, out io.Writer) int {
	ctx := context.Background()

	cfg, _, err := resolveConfig(ctx, cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	if deps.Monitors == nil {
		return exitWithError(out, fmt.Errorf("monitor factory not configured"))
	}

	window := time.Duration(cli.Health.WindowMinutes) * time.Minute
	monitor, err := deps.Monitors.Monitor(ctx, cfg, window)
	if err != nil {
		return exitWithError(out, err)
	}

	report, err := monitor.Check(ctx)
	if err != nil {
		return exitWithError(out, err)
	}

	if err := emitJSON(out, report); err != nil {
		return exitWithError(out, err)
	}
	if report.Status == health.StatusUnhealthy {
		return 1
	}
	return 0
}
