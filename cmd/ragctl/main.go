// Where: cli/cmd/ragctl/main.go
// What: CLI entrypoint.
// Why: Execute RAG deployment commands with configured dependencies.
package main

import (
	"fmt"
	"os"

	"github.com/ragkit/rag-demo/cli/internal/app"
)

func main() {
	deps, err := buildDependencies()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(app.Run(os.Args[1:], deps))
}
