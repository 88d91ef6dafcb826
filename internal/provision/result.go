// Where: cli/internal/provision/result.go
// What: Data model for index provisioning runs.
// Why: Give the deployment orchestrator one structured, terminal answer.
package provision

import (
	"fmt"
	"strings"
	"time"
)

// Metric identifies the similarity metric of the vector field.
type Metric string

const (
	MetricCosine Metric = "cosine"
)

// IndexSpec describes the index to ensure on the remote collection.
// Immutable once submitted to EnsureIndex.
type IndexSpec struct {
	Name            string `json:"name"`
	VectorDimension int    `json:"vectorDimension"`
	Metric          Metric `json:"similarityMetric"`
	ShardCount      int    `json:"shardCount"`
	ReplicaCount    int    `json:"replicaCount"`
}

// Validate checks the spec against the collection's constraints.
func (s IndexSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("index name is required")
	}
	if s.VectorDimension <= 0 {
		return fmt.Errorf("vector dimension must be positive, got %d", s.VectorDimension)
	}
	if s.Metric != "" && s.Metric != MetricCosine {
		return fmt.Errorf("unsupported similarity metric: %s", s.Metric)
	}
	if s.ShardCount < 1 {
		return fmt.Errorf("shard count must be at least 1, got %d", s.ShardCount)
	}
	if s.ReplicaCount < 0 {
		return fmt.Errorf("replica count must not be negative, got %d", s.ReplicaCount)
	}
	return nil
}

// Outcome classifies a single provisioning attempt.
type Outcome string

const (
	OutcomePending         Outcome = "Pending"
	OutcomeSuccess         Outcome = "Success"
	OutcomeTransientDenied Outcome = "TransientDenied"
	OutcomeFailed          Outcome = "Failed"
)

// Attempt records one network round trip against the collection.
// Never mutated after its outcome is set.
type Attempt struct {
	Number     int       `json:"attempt"`
	StartedAt  time.Time `json:"startedAt"`
	Outcome    Outcome   `json:"outcome"`
	HTTPStatus int       `json:"httpStatus,omitempty"`
}

// Status is the terminal state of one EnsureIndex invocation.
type Status string

const (
	StatusAlreadyExists    Status = "AlreadyExists"
	StatusCreated          Status = "Created"
	StatusFailed           Status = "Failed"
	StatusDeadlineExceeded Status = "DeadlineExceeded"
)

// OK reports whether the status leaves the index usable.
func (s Status) OK() bool {
	return s == StatusAlreadyExists || s == StatusCreated
}

// Result is handed back exactly once per invocation, on every exit path.
type Result struct {
	Status              Status    `json:"status"`
	Attempts            []Attempt `json:"attempts"`
	TotalElapsedSeconds float64   `json:"totalElapsedSeconds"`

	// Detail carries the reason for Failed/DeadlineExceeded outcomes.
	Detail string `json:"detail,omitempty"`
}
