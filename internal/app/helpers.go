// Where: cli/internal/app/helpers.go
// What: Shared helpers for command handlers.
// Why: Config resolution and JSON emission are identical across commands.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ragkit/rag-demo/cli/internal/config"
	"github.com/ragkit/rag-demo/cli/internal/naming"
)

// defaultManifestPath is picked up when no --manifest flag is given.
const defaultManifestPath = "rag.yml"

// resolveConfig merges the loader's view with the optional deployment
// manifest. Manifest values win: they are the reviewed deployment input.
func resolveConfig(ctx context.Context, cli CLI, deps Dependencies) (config.Config, *config.Manifest, error) {
	var cfg config.Config
	if deps.Loader != nil {
		loaded, err := deps.Loader.Load(ctx)
		if err != nil {
			return config.Config{}, nil, err
		}
		cfg = loaded
	} else {
		cfg = config.FromEnv()
	}

	manifest, err := loadManifest(cli)
	if err != nil {
		return config.Config{}, nil, err
	}
	if manifest == nil {
		return cfg, nil, nil
	}

	if manifest.Environment != "" {
		cfg.Environment = manifest.Environment
	}
	if manifest.Index.VectorDimension != 0 {
		cfg.VectorDimension = manifest.Index.VectorDimension
	}

	inputs := naming.Inputs{Project: manifest.Project, Env: cfg.Environment}
	if manifest.Naming.IndexName != "" {
		name, err := naming.IndexName(manifest.Naming.IndexName, inputs)
		if err != nil {
			return config.Config{}, nil, err
		}
		cfg.IndexName = name
	} else if manifest.Index.Name != "" {
		cfg.IndexName = manifest.Index.Name
	}
	if manifest.Naming.DocumentsBucket != "" {
		bucket, err := naming.Render(manifest.Naming.DocumentsBucket, inputs)
		if err != nil {
			return config.Config{}, nil, err
		}
		cfg.DocumentsBucket = bucket
	}

	return cfg, manifest, nil
}

func loadManifest(cli CLI) (*config.Manifest, error) {
	path := cli.Manifest
	if path == "" {
		if _, err := os.Stat(defaultManifestPath); err != nil {
			return nil, nil
		}
		path = defaultManifestPath
	}
	manifest, err := config.LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return &manifest, nil
}

// emitJSON writes the command's structured result to the output stream,
// which the deployment orchestrator consumes verbatim.
func emitJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
