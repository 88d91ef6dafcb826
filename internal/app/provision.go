// Where: cli/internal/app/provision.go
// What: provision-index command handler.
// Why: The knowledge base stack cannot deploy until the index exists.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ragkit/rag-demo/cli/internal/config"
	"github.com/ragkit/rag-demo/cli/internal/provision"
)

// runProvisionIndex ensures the vector index exists and prints the
// ProvisioningResult as JSON. The exit code mirrors the terminal status so
// deployment scripts can gate the knowledge-base stack on it.
func runProvisionIndex(cli CLI, deps Dependencies, out io.Writer) int {
	ctx := context.Background()

	cfg, manifest, err := resolveConfig(ctx, cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	endpoint := cli.ProvisionIndex.Endpoint
	if endpoint == "" {
		endpoint = cfg.CollectionEndpoint
	}
	if endpoint == "" {
		return exitWithError(out, fmt.Errorf("collection endpoint is not configured (flag --endpoint, manifest, or COLLECTION_ENDPOINT)"))
	}

	if deps.Collections == nil {
		return exitWithError(out, fmt.Errorf("collection factory not configured"))
	}
	collection, err := deps.Collections.Collection(ctx, endpoint)
	if err != nil {
		return exitWithError(out, err)
	}

	spec := indexSpec(cli, cfg, manifest)
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	deadline := now().Add(time.Duration(cli.ProvisionIndex.DeadlineSeconds) * time.Second)

	provisioner := provision.New(collection)
	provisioner.Now = now
	result := provisioner.EnsureIndex(ctx, spec, deadline)

	if err := emitJSON(out, result); err != nil {
		return exitWithError(out, err)
	}
	if !result.Status.OK() {
		return 1
	}
	return 0
}

// indexSpec resolves the index schema: flags win over the manifest, the
// manifest wins over loaded configuration.
func indexSpec(cli CLI, cfg config.Config, manifest *config.Manifest) provision.IndexSpec {
	spec := provision.IndexSpec{
		Name:            cfg.IndexName,
		VectorDimension: cfg.VectorDimension,
		Metric:          provision.MetricCosine,
		ShardCount:      2,
		ReplicaCount:    0,
	}
	if manifest != nil {
		if manifest.Index.Shards > 0 {
			spec.ShardCount = manifest.Index.Shards
		}
		spec.ReplicaCount = manifest.Index.Replicas
	}
	if cli.ProvisionIndex.IndexName != "" {
		spec.Name = cli.ProvisionIndex.IndexName
	}
	if cli.ProvisionIndex.Dimension > 0 {
		spec.VectorDimension = cli.ProvisionIndex.Dimension
	}
	return spec
}
