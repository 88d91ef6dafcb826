// Where: cli/internal/validate/validate.go
// What: Post-deployment validation of the RAG environment.
// Why: Catch missing stack outputs before users hit them at query time.
package validate

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/ragkit/rag-demo/cli/internal/config"
	"github.com/ragkit/rag-demo/cli/internal/provision"
)

// BucketAPI is the slice of the S3 API the validator needs.
type BucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Check is one validation outcome in the report.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Report is the full validation result; OK is the conjunction of all checks.
type Report struct {
	OK     bool    `json:"ok"`
	Checks []Check `json:"checks"`
}

// Validator runs the post-deployment checks against one environment.
type Validator struct {
	Config     config.Config
	Params     config.ParameterClient
	Buckets    BucketAPI
	Collection provision.Collection
}

// requiredParameters are the stack outputs every deployment must publish.
func requiredParameters(environment string) []string {
	return []string{
		fmt.Sprintf("/rag-demo/%s/frontend-config", environment),
	}
}

// Run executes every check and never stops early; operators want the full
// picture, not the first failure.
func (v *Validator) Run(ctx context.Context) Report {
	var checks []Check
	checks = append(checks, v.checkKnowledgeBase())
	checks = append(checks, v.checkParameters(ctx)...)
	checks = append(checks, v.checkBucket(ctx))
	checks = append(checks, v.checkIndex(ctx))

	report := Report{OK: true, Checks: checks}
	for _, check := range checks {
		if !check.OK {
			report.OK = false
		}
	}
	return report
}

func (v *Validator) checkKnowledgeBase() Check {
	check := Check{Name: "knowledge-base-id"}
	if v.Config.KnowledgeBaseID == "" {
		check.Detail = "knowledge base id is not configured"
		return check
	}
	check.OK = true
	check.Detail = v.Config.KnowledgeBaseID
	return check
}

func (v *Validator) checkParameters(ctx context.Context) []Check {
	var checks []Check
	for _, name := range requiredParameters(v.Config.Environment) {
		check := Check{Name: "parameter " + name}
		if v.Params == nil {
			check.Detail = "parameter store client not configured"
			checks = append(checks, check)
			continue
		}
		_, err := v.Params.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(name),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			check.Detail = err.Error()
		} else {
			check.OK = true
		}
		checks = append(checks, check)
	}
	return checks
}

func (v *Validator) checkBucket(ctx context.Context) Check {
	check := Check{Name: "documents-bucket"}
	if v.Config.DocumentsBucket == "" {
		check.Detail = "documents bucket is not configured"
		return check
	}
	if v.Buckets == nil {
		check.Detail = "s3 client not configured"
		return check
	}
	_, err := v.Buckets.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(v.Config.DocumentsBucket)})
	if err != nil {
		check.Detail = fmt.Sprintf("bucket %s unreachable: %v", v.Config.DocumentsBucket, err)
		return check
	}
	check.OK = true
	check.Detail = v.Config.DocumentsBucket
	return check
}

// checkIndex reuses the provisioner's existence probe; validation never
// creates anything.
func (v *Validator) checkIndex(ctx context.Context) Check {
	check := Check{Name: "vector-index"}
	if v.Collection == nil {
		check.Detail = "collection endpoint is not configured"
		return check
	}
	probe, err := v.Collection.CheckIndex(ctx, v.Config.IndexName)
	if err != nil {
		check.Detail = err.Error()
		return check
	}
	switch probe.State {
	case provision.StateExists:
		check.OK = true
		check.Detail = v.Config.IndexName
	case provision.StateMissing:
		check.Detail = fmt.Sprintf("index %s does not exist", v.Config.IndexName)
	case provision.StateDenied:
		check.Detail = fmt.Sprintf("access denied checking index %s (status %d)", v.Config.IndexName, probe.HTTPStatus)
	default:
		check.Detail = probe.Detail
	}
	return check
}
