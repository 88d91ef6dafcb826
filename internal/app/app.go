// Where: cli/internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/ragkit/rag-demo/cli/internal/version"
)

// CLI defines the command-line interface structure parsed by Kong.
// It contains global flags and all subcommand definitions.
type CLI struct {
	EnvFile  string `name:"env-file" help:"Path to .env file"`
	Manifest string `short:"m" help:"Path to rag.yml deployment manifest"`

	ProvisionIndex ProvisionIndexCmd `cmd:"" name:"provision-index" help:"Ensure the vector index exists on the collection"`
	Validate       ValidateCmd       `cmd:"" help:"Validate the deployed environment"`
	Query          QueryCmd          `cmd:"" help:"Run a retrieval-augmented query"`
	Health         HealthCmd         `cmd:"" help:"Report environment health from windowed metrics"`
	Version        VersionCmd        `cmd:"" help:"Show version information"`
}

type VersionCmd struct{}

type ProvisionIndexCmd struct {
	Endpoint        string `help:"Collection endpoint (default: from configuration)"`
	IndexName       string `name:"index-name" help:"Index name (default: from manifest/configuration)"`
	Dimension       int    `help:"Vector dimension (default: from manifest/configuration)"`
	DeadlineSeconds int    `name:"deadline-seconds" default:"780" help:"Wall-clock budget for the whole operation"`
}

type ValidateCmd struct{}

type QueryCmd struct {
	Question    string  `arg:"" help:"Question to ask the knowledge base"`
	MaxResults  int     `name:"max-results" default:"5" help:"Maximum passages to retrieve"`
	SearchType  string  `name:"search-type" default:"HYBRID" help:"HYBRID or SEMANTIC"`
	Model       string  `help:"Foundation model id"`
	Temperature float64 `default:"0.7" help:"Model temperature"`
}

type HealthCmd struct {
	WindowMinutes int `name:"window-minutes" default:"60" help:"Metrics window in minutes"`
}

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}

	cli := CLI{}
	parser, err := kong.New(&cli)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return exitWithError(out, err)
	}

	// Load environment file if provided or if .env exists in current directory
	if cli.EnvFile != "" {
		if err := godotenv.Load(cli.EnvFile); err != nil {
			fmt.Fprintf(out, "Warning: failed to load env file %s: %v\n", cli.EnvFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(out, "Warning: failed to load .env: %v\n", err)
		}
	}

	if exitCode, handled := dispatchCommand(ctx.Command(), cli, deps, out); handled {
		return exitCode
	}

	fmt.Fprintln(out, "unknown command")
	return 1
}

type commandHandler func(CLI, Dependencies, io.Writer) int

func dispatchCommand(command string, cli CLI, deps Dependencies, out io.Writer) (int, bool) {
	handlers := map[string]commandHandler{
		"provision-index":  runProvisionIndex,
		"validate":         runValidate,
		"query <question>": runQuery,
		"health":           runHealth,
		"version":          func(_ CLI, _ Dependencies, out io.Writer) int { return runVersion(out) },
	}

	if handler, ok := handlers[command]; ok {
		return handler(cli, deps, out), true
	}
	return 1, false
}

// runVersion prints the version information of the CLI.
func runVersion(out io.Writer) int {
	fmt.Fprintln(out, version.GetVersion())
	return 0
}

// exitWithError writes the error and maps it to exit code 1.
func exitWithError(out io.Writer, err error) int {
	fmt.Fprintf(out, "Error: %v\n", err)
	return 1
}
