// Where: cli/internal/health/health_test.go
// What: Tests for the weighted health score.
// Why: The score drives operator decisions; its math must be exact.
package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type fakeMetrics struct {
	input  *cloudwatch.GetMetricDataInput
	output *cloudwatch.GetMetricDataOutput
	err    error
}

func (f *fakeMetrics) GetMetricData(_ context.Context, params *cloudwatch.GetMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricDataOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func testMonitor(metrics MetricsAPI) *Monitor {
	return &Monitor{
		Metrics: metrics,
		Specs: []MetricSpec{
			{ID: "latency", Label: "latency", Weight: 0.5, Target: 100, Ceiling: 1100, Stat: "Average"},
			{ID: "errors", Label: "errors", Weight: 0.5, Target: 0, Ceiling: 10, Stat: "Sum"},
		},
		Window: time.Hour,
		Period: 5 * time.Minute,
		Now:    func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func result(id string, values ...float64) types.MetricDataResult {
	return types.MetricDataResult{Id: aws.String(id), Values: values}
}

func TestCheckComputesWeightedScore(t *testing.T) {
	metrics := &fakeMetrics{output: &cloudwatch.GetMetricDataOutput{
		MetricDataResults: []types.MetricDataResult{
			// mean 600 → halfway between target and ceiling → score 50
			result("latency", 500, 700),
			// mean 0 → at target → score 100
			result("errors", 0, 0),
		},
	}}
	monitor := testMonitor(metrics)

	report, err := monitor.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Score != 75 {
		t.Fatalf("unexpected score: %v", report.Score)
	}
	if report.Status != StatusDegraded {
		t.Fatalf("unexpected status: %s", report.Status)
	}
	if len(report.Components) != 2 {
		t.Fatalf("unexpected components: %+v", report.Components)
	}

	// Window bounds come from the injected clock.
	start := aws.ToTime(metrics.input.StartTime)
	end := aws.ToTime(metrics.input.EndTime)
	if end.Sub(start) != time.Hour {
		t.Fatalf("unexpected window: %v", end.Sub(start))
	}
}

func TestCheckRenormalizesMissingMetrics(t *testing.T) {
	metrics := &fakeMetrics{output: &cloudwatch.GetMetricDataOutput{
		MetricDataResults: []types.MetricDataResult{
			result("errors", 0),
		},
	}}
	monitor := testMonitor(metrics)

	report, err := monitor.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Score != 100 || report.Status != StatusHealthy {
		t.Fatalf("expected remaining metric to carry full weight: %+v", report)
	}
	if len(report.Components) != 1 {
		t.Fatalf("unexpected components: %+v", report.Components)
	}
}

func TestCheckUnknownWithoutData(t *testing.T) {
	metrics := &fakeMetrics{output: &cloudwatch.GetMetricDataOutput{}}
	monitor := testMonitor(metrics)

	report, err := monitor.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Status != StatusUnknown {
		t.Fatalf("unexpected status: %s", report.Status)
	}
	if report.Score != 0 {
		t.Fatalf("unexpected score: %v", report.Score)
	}
}

func TestCheckPropagatesFetchError(t *testing.T) {
	monitor := testMonitor(&fakeMetrics{err: errors.New("throttled")})
	if _, err := monitor.Check(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestScoreFor(t *testing.T) {
	spec := MetricSpec{Target: 100, Ceiling: 1100}
	cases := []struct {
		value float64
		score float64
	}{
		{50, 100},
		{100, 100},
		{600, 50},
		{1100, 0},
		{5000, 0},
	}
	for _, tc := range cases {
		if got := scoreFor(spec, tc.value); got != tc.score {
			t.Fatalf("value %v: expected %v, got %v", tc.value, tc.score, got)
		}
	}
}

func TestStatusFor(t *testing.T) {
	if statusFor(95) != StatusHealthy || statusFor(75) != StatusDegraded || statusFor(30) != StatusUnhealthy {
		t.Fatalf("unexpected threshold mapping")
	}
}
