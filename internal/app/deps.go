// Where: cli/internal/app/deps.go
// What: Injected dependency surfaces for CLI commands.
// Why: Keep AWS client construction swappable for tests.
package app

import (
	"context"
	"io"
	"time"

	"github.com/ragkit/rag-demo/cli/internal/config"
	"github.com/ragkit/rag-demo/cli/internal/health"
	"github.com/ragkit/rag-demo/cli/internal/provision"
	"github.com/ragkit/rag-demo/cli/internal/query"
	"github.com/ragkit/rag-demo/cli/internal/validate"
)

// Dependencies holds everything command handlers need. Implementations are
// wired in cmd/ragctl; tests supply fakes.
type Dependencies struct {
	Out io.Writer
	Now func() time.Time

	Loader      ConfigLoader
	Collections CollectionFactory
	Validators  ValidatorFactory
	Queriers    QuerierFactory
	Monitors    MonitorFactory
}

// ConfigLoader produces the merged environment configuration.
type ConfigLoader interface {
	Load(ctx context.Context) (config.Config, error)
}

// CollectionFactory opens a signed-request collection client for an endpoint.
type CollectionFactory interface {
	Collection(ctx context.Context, endpoint string) (provision.Collection, error)
}

// EnvValidator runs the post-deployment checks.
type EnvValidator interface {
	Run(ctx context.Context) validate.Report
}

// ValidatorFactory builds a validator for the loaded configuration.
type ValidatorFactory interface {
	Validator(ctx context.Context, cfg config.Config) (EnvValidator, error)
}

// RAGQuerier runs the retrieve-then-generate pipeline.
type RAGQuerier interface {
	QueryAndGenerate(ctx context.Context, question string, retrieveOpts query.RetrieveOptions, generateOpts query.GenerateOptions) (query.Answer, error)
}

// QuerierFactory builds a querier for the loaded configuration.
type QuerierFactory interface {
	Querier(ctx context.Context, cfg config.Config) (RAGQuerier, error)
}

// HealthChecker computes the environment health report.
type HealthChecker interface {
	Check(ctx context.Context) (health.Report, error)
}

// MonitorFactory builds a health checker for the loaded configuration and
// metrics window.
type MonitorFactory interface {
	Monitor(ctx context.Context, cfg config.Config, window time.Duration) (HealthChecker, error)
}
