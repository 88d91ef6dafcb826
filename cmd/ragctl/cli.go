// Where: cli/cmd/ragctl/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize AWS client construction for testability.
package main

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/ragkit/rag-demo/cli/internal/app"
	"github.com/ragkit/rag-demo/cli/internal/config"
	"github.com/ragkit/rag-demo/cli/internal/health"
	"github.com/ragkit/rag-demo/cli/internal/provision"
	"github.com/ragkit/rag-demo/cli/internal/query"
	"github.com/ragkit/rag-demo/cli/internal/search"
	"github.com/ragkit/rag-demo/cli/internal/validate"
)

var loadAWSConfig = awsconfig.LoadDefaultConfig

// buildDependencies constructs all runtime dependencies required by the CLI.
// The AWS config is loaded once and shared by every factory.
func buildDependencies() (app.Dependencies, error) {
	awsCfg, err := loadAWSConfig(context.Background())
	if err != nil {
		return app.Dependencies{}, err
	}

	deps := app.Dependencies{
		Out:         os.Stdout,
		Now:         time.Now,
		Loader:      config.NewLoader(awsCfg, os.Stderr),
		Collections: collectionFactory{awsCfg: awsCfg},
		Validators:  validatorFactory{awsCfg: awsCfg},
		Queriers:    querierFactory{awsCfg: awsCfg},
		Monitors:    monitorFactory{awsCfg: awsCfg},
	}
	return deps, nil
}

// collectionFactory opens signed collection clients for an endpoint.
type collectionFactory struct {
	awsCfg aws.Config
}

func (f collectionFactory) Collection(_ context.Context, endpoint string) (provision.Collection, error) {
	return search.NewClient(endpoint, search.NewSigV4Sender(f.awsCfg))
}

type validatorFactory struct {
	awsCfg aws.Config
}

func (f validatorFactory) Validator(_ context.Context, cfg config.Config) (app.EnvValidator, error) {
	validator := &validate.Validator{
		Config:  cfg,
		Params:  ssm.NewFromConfig(f.awsCfg),
		Buckets: s3.NewFromConfig(f.awsCfg),
	}
	if cfg.CollectionEndpoint != "" {
		collection, err := search.NewClient(cfg.CollectionEndpoint, search.NewSigV4Sender(f.awsCfg))
		if err != nil {
			return nil, err
		}
		validator.Collection = collection
	}
	return validator, nil
}

type querierFactory struct {
	awsCfg aws.Config
}

func (f querierFactory) Querier(_ context.Context, cfg config.Config) (app.RAGQuerier, error) {
	return query.NewClient(f.awsCfg, cfg.KnowledgeBaseID), nil
}

type monitorFactory struct {
	awsCfg aws.Config
}

func (f monitorFactory) Monitor(_ context.Context, cfg config.Config, window time.Duration) (app.HealthChecker, error) {
	monitor := health.NewMonitor(f.awsCfg, cfg.Environment)
	if window > 0 {
		monitor.Window = window
	}
	return monitor, nil
}
