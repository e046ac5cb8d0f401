// Package policy provides OPA policy evaluation over analysis results.
package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/open-policy-agent/opa/rego"

	"material-lca/pkg/api"
)

// Result holds policy evaluation outcomes.
type Result struct {
	Denials  []string `json:"denials"`
	Warnings []string `json:"warnings"`
	Passed   bool     `json:"passed"`
}

// Evaluator runs OPA policies against analysis results. Policies live as
// *.rego files under a directory and gate on the metrics and confidence of
// a run, e.g. denying reports whose overall confidence is below a floor or
// whose carbon footprint exceeds a cap.
type Evaluator struct {
	policiesDir string
}

func NewEvaluator(policiesDir string) *Evaluator {
	return &Evaluator{policiesDir: policiesDir}
}

// Evaluate collects data.lca.deny and data.lca.warn messages from every
// policy file. A missing or empty policy directory passes everything.
func (e *Evaluator) Evaluate(ctx context.Context, result *api.AnalysisResult) (*Result, error) {
	out := &Result{Denials: []string{}, Warnings: []string{}, Passed: true}

	input := policyInput(result)

	files, err := filepath.Glob(filepath.Join(e.policiesDir, "*.rego"))
	if err != nil || len(files) == 0 {
		return out, nil
	}

	for _, file := range files {
		policy, err := os.ReadFile(file)
		if err != nil {
			continue
		}

		denials, err := e.evalQuery(ctx, string(policy), "data.lca.deny", input)
		if err == nil {
			out.Denials = append(out.Denials, denials...)
		}

		warnings, err := e.evalQuery(ctx, string(policy), "data.lca.warn", input)
		if err == nil {
			out.Warnings = append(out.Warnings, warnings...)
		}
	}

	out.Passed = len(out.Denials) == 0
	return out, nil
}

// policyInput flattens the result into the document policies query. Metric
// values and confidences are keyed by metric name so rules stay readable.
func policyInput(result *api.AnalysisResult) map[string]any {
	metrics := make(map[string]any, len(result.Metrics))
	confidences := make(map[string]any, len(result.Metrics))
	for name, m := range result.Metrics {
		metrics[name] = m.Value
		confidences[name] = m.Confidence
	}
	return map[string]any{
		"analysis_type":      string(result.AnalysisType),
		"material":           string(result.Material),
		"metrics":            metrics,
		"confidences":        confidences,
		"overall_confidence": result.OverallConfidence,
		"low_confidence":     result.LowConfidence,
		"used_prediction":    result.UsedPrediction(),
		"gap_count":          len(result.Gaps),
		"rating":             string(result.Rating),
	}
}

func (e *Evaluator) evalQuery(ctx context.Context, policy, query string, input map[string]any) ([]string, error) {
	r := rego.New(
		rego.Query(query),
		rego.Module("policy.rego", policy),
		rego.Input(input),
	)

	rs, err := r.Eval(ctx)
	if err != nil {
		return nil, err
	}

	var messages []string
	for _, result := range rs {
		for _, expr := range result.Expressions {
			if set, ok := expr.Value.([]interface{}); ok {
				for _, v := range set {
					if msg, ok := v.(string); ok {
						messages = append(messages, msg)
					}
				}
			}
		}
	}
	return messages, nil
}

// ValidatePolicies compiles every policy file, so a broken rule fails at
// startup instead of silently passing runs.
func (e *Evaluator) ValidatePolicies() error {
	files, err := filepath.Glob(filepath.Join(e.policiesDir, "*.rego"))
	if err != nil {
		return fmt.Errorf("failed to list policies: %w", err)
	}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		_, err = rego.New(rego.Query("data.lca"), rego.Module(file, string(content))).PrepareForEval(context.Background())
		if err != nil {
			return fmt.Errorf("invalid policy %s: %w", file, err)
		}
	}
	return nil
}
