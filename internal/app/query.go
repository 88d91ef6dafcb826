// Where: cli/internal/app/query.go
// What: query command handler.
// Why: Smoke-test the deployed RAG pipeline from the command line.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/ragkit/rag-demo/cli/internal/query"
)

// runQuery retrieves passages and generates an answer, printing the combined
// result with source citations as JSON.
func runQuery(cli CLI, deps Dependencies, out io.Writer) int {
	ctx := context.Background()

	cfg, _, err := resolveConfig(ctx, cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	if err := cfg.Validate(); err != nil {
		return exitWithError(out, err)
	}
	if deps.Queriers == nil {
		return exitWithError(out, fmt.Errorf("querier factory not configured"))
	}

	querier, err := deps.Queriers.Querier(ctx, cfg)
	if err != nil {
		return exitWithError(out, err)
	}

	answer, err := querier.QueryAndGenerate(ctx, cli.Query.Question,
		query.RetrieveOptions{
			MaxResults: cli.Query.MaxResults,
			SearchType: cli.Query.SearchType,
		},
		query.GenerateOptions{
			ModelID:     cli.Query.Model,
			Temperature: cli.Query.Temperature,
		},
	)
	if err != nil {
		return exitWithError(out, err)
	}

	if err := emitJSON(out, answer); err != nil {
		return exitWithError(out, err)
	}
	return 0
}
