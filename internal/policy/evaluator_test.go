package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"material-lca/pkg/api"
)

const qualityPolicy = `package lca

deny[msg] {
	input.overall_confidence < 0.30
	msg := sprintf("overall confidence %.2f is below the release floor 0.30", [input.overall_confidence])
}

deny[msg] {
	input.metrics.carbon_footprint_total > 1000000
	msg := "carbon footprint exceeds the reporting cap"
}

warn[msg] {
	input.low_confidence
	msg := "one or more metrics fell below the confidence floor"
}
`

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "quality.rego"), []byte(body), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	return dir
}

func sampleResult() *api.AnalysisResult {
	return &api.AnalysisResult{
		AnalysisType:      api.AnalysisFull,
		Material:          api.MaterialSteel,
		Metrics:           map[string]api.MetricValue{api.MetricCarbonTotal: {Value: 150000, Confidence: 1.0}},
		OverallConfidence: 0.92,
	}
}

func TestHighConfidenceResultPasses(t *testing.T) {
	e := NewEvaluator(writePolicy(t, qualityPolicy))
	verdict, err := e.Evaluate(context.Background(), sampleResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.Passed || len(verdict.Denials) != 0 || len(verdict.Warnings) != 0 {
		t.Fatalf("expected a clean pass, got %+v", verdict)
	}
}

func TestLowOverallConfidenceIsDenied(t *testing.T) {
	result := sampleResult()
	result.OverallConfidence = 0.12

	e := NewEvaluator(writePolicy(t, qualityPolicy))
	verdict, err := e.Evaluate(context.Background(), result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Passed {
		t.Fatal("expected denial for confidence 0.12")
	}
	if len(verdict.Denials) != 1 {
		t.Fatalf("expected 1 denial, got %v", verdict.Denials)
	}
}

func TestMetricThresholdReadsFlattenedMetrics(t *testing.T) {
	result := sampleResult()
	result.Metrics[api.MetricCarbonTotal] = api.MetricValue{Value: 2500000, Confidence: 1.0}

	e := NewEvaluator(writePolicy(t, qualityPolicy))
	verdict, err := e.Evaluate(context.Background(), result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Passed {
		t.Fatal("expected denial for the carbon cap")
	}
	if len(verdict.Denials) != 1 || verdict.Denials[0] != "carbon footprint exceeds the reporting cap" {
		t.Fatalf("expected the carbon cap denial, got %v", verdict.Denials)
	}
}

func TestLowConfidenceMarkingWarnsWithoutDenying(t *testing.T) {
	result := sampleResult()
	result.LowConfidence = true

	e := NewEvaluator(writePolicy(t, qualityPolicy))
	verdict, err := e.Evaluate(context.Background(), result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.Passed {
		t.Fatalf("warnings must not deny, got %+v", verdict)
	}
	if len(verdict.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", verdict.Warnings)
	}
}

func TestMissingPolicyDirPassesEverything(t *testing.T) {
	e := NewEvaluator(filepath.Join(t.TempDir(), "absent"))
	result := sampleResult()
	result.OverallConfidence = 0.01

	verdict, err := e.Evaluate(context.Background(), result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.Passed {
		t.Fatalf("no policies means no gate, got %+v", verdict)
	}
}

func TestValidatePoliciesRejectsBrokenRules(t *testing.T) {
	e := NewEvaluator(writePolicy(t, "package lca\n\ndeny[msg] {\n\tmsg :=\n}\n"))
	if err := e.ValidatePolicies(); err == nil {
		t.Fatal("expected a compile error for a broken rule")
	}
}

func TestValidatePoliciesAcceptsShippedStyle(t *testing.T) {
	e := NewEvaluator(writePolicy(t, qualityPolicy))
	if err := e.ValidatePolicies(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
