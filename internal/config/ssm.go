// Where: cli/internal/config/ssm.go
// What: Parameter-store configuration loader.
// Why: Deployed stacks publish their outputs as SSM parameters.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/smithy-go"
)

// ParameterClient is the narrow slice of the SSM API the loader needs.
type ParameterClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Loader merges parameter-store values over environment defaults.
type Loader struct {
	Params ParameterClient
	Out    io.Writer
}

// NewLoader builds a Loader from a loaded AWS config.
func NewLoader(cfg aws.Config, out io.Writer) *Loader {
	return &Loader{Params: ssm.NewFromConfig(cfg), Out: out}
}

// Load returns the merged configuration. The parameter store is advisory:
// if it is unreachable the environment-derived config is used as-is, so the
// CLI stays usable before the first deployment.
func (l *Loader) Load(ctx context.Context) (Config, error) {
	cfg := FromEnv()
	if l == nil || l.Params == nil {
		return cfg, nil
	}

	overlay, err := l.loadOverlay(ctx, cfg.Environment)
	if err != nil {
		l.warnf("parameter store unavailable: %v", err)
		return cfg, nil
	}
	return cfg.Merge(overlay), nil
}

// loadOverlay reads the consolidated JSON parameter, falling back to the
// individually published parameters when it is absent.
func (l *Loader) loadOverlay(ctx context.Context, environment string) (Config, error) {
	name := fmt.Sprintf("/rag-demo/%s/frontend-config", environment)
	value, err := l.parameter(ctx, name)
	if err == nil {
		return ParseJSON([]byte(value))
	}
	if !isParameterNotFound(err) {
		return Config{}, err
	}

	l.warnf("parameter not found: %s, falling back to individual parameters", name)
	return l.loadIndividual(ctx, environment), nil
}

func (l *Loader) loadIndividual(ctx context.Context, environment string) Config {
	var overlay Config
	lookups := []struct {
		name   string
		target *string
	}{
		{fmt.Sprintf("/rag-demo/%s/frontend-knowledge-base-id", environment), &overlay.KnowledgeBaseID},
		{fmt.Sprintf("/rag-demo/%s/frontend-collection-endpoint", environment), &overlay.CollectionEndpoint},
		{fmt.Sprintf("/rag-demo/%s/documents-bucket-name", environment), &overlay.DocumentsBucket},
		{fmt.Sprintf("/rag-demo/%s/frontend-region", environment), &overlay.Region},
	}
	for _, lookup := range lookups {
		value, err := l.parameter(ctx, lookup.name)
		if err != nil {
			if !isParameterNotFound(err) {
				l.warnf("read parameter %s: %v", lookup.name, err)
			}
			continue
		}
		*lookup.target = value
	}
	return overlay
}

func (l *Loader) parameter(ctx context.Context, name string) (string, error) {
	resp, err := l.Params.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", err
	}
	if resp.Parameter == nil || resp.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", name)
	}
	return *resp.Parameter.Value, nil
}

func (l *Loader) warnf(format string, args ...any) {
	if l.Out == nil {
		return
	}
	fmt.Fprintf(l.Out, "Warning: "+format+"\n", args...)
}

func isParameterNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ParameterNotFound"
	}
	return false
}
