// Where: cli/internal/health/health.go
// What: Windowed metric aggregation into a single health score.
// Why: Operators need one number per environment, not raw metric streams.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricsAPI is the slice of the CloudWatch API the monitor needs.
type MetricsAPI interface {
	GetMetricData(ctx context.Context, params *cloudwatch.GetMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricDataOutput, error)
}

// MetricSpec describes one contributing metric and how to score it.
// A value at or below Target scores 100, at or above Ceiling scores 0,
// linear in between.
type MetricSpec struct {
	ID         string
	Label      string
	Namespace  string
	MetricName string
	Stat       string
	Dimensions map[string]string
	Weight     float64
	Target     float64
	Ceiling    float64
}

// DefaultSpecs covers the query path and the collection's search latency.
func DefaultSpecs(environment string) []MetricSpec {
	dims := map[string]string{"Environment": environment}
	return []MetricSpec{
		{
			ID: "invocation_latency", Label: "Model invocation latency (ms)",
			Namespace: "AWS/Bedrock", MetricName: "InvocationLatency", Stat: "Average",
			Dimensions: dims, Weight: 0.4, Target: 1000, Ceiling: 10000,
		},
		{
			ID: "invocation_errors", Label: "Model invocation errors",
			Namespace: "AWS/Bedrock", MetricName: "InvocationClientErrors", Stat: "Sum",
			Dimensions: dims, Weight: 0.3, Target: 0, Ceiling: 20,
		},
		{
			ID: "search_latency", Label: "Collection search latency (ms)",
			Namespace: "AWS/AOSS", MetricName: "SearchRequestLatency", Stat: "Average",
			Dimensions: dims, Weight: 0.3, Target: 100, Ceiling: 2000,
		},
	}
}

// Component is one scored metric inside a report.
type Component struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// Report is the aggregated health of one environment over the window.
type Report struct {
	Status     string      `json:"status"`
	Score      float64     `json:"score"`
	Window     string      `json:"window"`
	Components []Component `json:"components"`
	CheckedAt  time.Time   `json:"checkedAt"`
}

// Status thresholds for the weighted score.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusUnknown   = "unknown"
)

// Monitor fetches windowed metrics and derives the health score.
type Monitor struct {
	Metrics MetricsAPI
	Specs   []MetricSpec
	Window  time.Duration
	Period  time.Duration
	Now     func() time.Time
}

// NewMonitor wires a monitor from a loaded AWS config.
func NewMonitor(cfg aws.Config, environment string) *Monitor {
	return &Monitor{
		Metrics: cloudwatch.NewFromConfig(cfg),
		Specs:   DefaultSpecs(environment),
		Window:  time.Hour,
		Period:  5 * time.Minute,
		Now:     time.Now,
	}
}

// Check fetches the window and computes the weighted score. Metrics without
// datapoints drop out and the remaining weights are renormalized; if nothing
// reported, the status is unknown rather than a misleading zero.
func (m *Monitor) Check(ctx context.Context) (Report, error) {
	if m.Metrics == nil {
		return Report{}, fmt.Errorf("metrics client not configured")
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	window := m.Window
	if window <= 0 {
		window = time.Hour
	}
	period := m.Period
	if period <= 0 {
		period = 5 * time.Minute
	}

	end := now()
	queries := make([]types.MetricDataQuery, 0, len(m.Specs))
	for _, spec := range m.Specs {
		queries = append(queries, buildQuery(spec, period))
	}

	resp, err := m.Metrics.GetMetricData(ctx, &cloudwatch.GetMetricDataInput{
		StartTime:         aws.Time(end.Add(-window)),
		EndTime:           aws.Time(end),
		MetricDataQueries: queries,
	})
	if err != nil {
		return Report{}, fmt.Errorf("fetch metrics: %w", err)
	}

	values := make(map[string][]float64, len(resp.MetricDataResults))
	for _, result := range resp.MetricDataResults {
		values[aws.ToString(result.Id)] = result.Values
	}

	var components []Component
	var weighted, totalWeight float64
	for _, spec := range m.Specs {
		points := values[spec.ID]
		if len(points) == 0 {
			continue
		}
		value := mean(points)
		score := scoreFor(spec, value)
		components = append(components, Component{
			ID:     spec.ID,
			Label:  spec.Label,
			Value:  value,
			Score:  score,
			Weight: spec.Weight,
		})
		weighted += score * spec.Weight
		totalWeight += spec.Weight
	}

	report := Report{Window: window.String(), Components: components, CheckedAt: end}
	if totalWeight == 0 {
		report.Status = StatusUnknown
		return report, nil
	}
	report.Score = weighted / totalWeight
	report.Status = statusFor(report.Score)
	return report, nil
}

func buildQuery(spec MetricSpec, period time.Duration) types.MetricDataQuery {
	dimensions := make([]types.Dimension, 0, len(spec.Dimensions))
	for name, value := range spec.Dimensions {
		dimensions = append(dimensions, types.Dimension{
			Name:  aws.String(name),
			Value: aws.String(value),
		})
	}
	return types.MetricDataQuery{
		Id: aws.String(spec.ID),
		MetricStat: &types.MetricStat{
			Metric: &types.Metric{
				Namespace:  aws.String(spec.Namespace),
				MetricName: aws.String(spec.MetricName),
				Dimensions: dimensions,
			},
			Period: aws.Int32(int32(period.Seconds())),
			Stat:   aws.String(spec.Stat),
		},
	}
}

// scoreFor maps a metric value onto 0..100 between Target and Ceiling.
func scoreFor(spec MetricSpec, value float64) float64 {
	if value <= spec.Target {
		return 100
	}
	if value >= spec.Ceiling || spec.Ceiling <= spec.Target {
		return 0
	}
	return 100 * (spec.Ceiling - value) / (spec.Ceiling - spec.Target)
}

func statusFor(score float64) string {
	switch {
	case score >= 90:
		return StatusHealthy
	case score >= 70:
		return StatusDegraded
	default:
		return StatusUnhealthy
	}
}

func mean(points []float64) float64 {
	var sum float64
	for _, point := range points {
		sum += point
	}
	return sum / float64(len(points))
}
