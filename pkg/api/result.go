package api

import (
	"time"

	"github.com/google/uuid"
)

// Source tags where a metric or parameter value came from.
type Source string

const (
	SourceMeasured  Source = "measured"  // supplied by the caller and valid
	SourceComputed  Source = "computed"  // deterministic formula over measured inputs
	SourcePredicted Source = "predicted" // estimated by a model, heuristic, or default
)

// Flags attached to individual metric values.
const (
	FlagUndefinedInput = "undefined-input" // structural zero denominator
	FlagLowConfidence  = "low-confidence"  // confidence below the configured floor
)

// MetricValue is one metric in an AnalysisResult with full provenance.
type MetricValue struct {
	Value float64 `json:"value"`
	// Label carries the class name for categorical metrics; numeric
	// metrics leave it empty.
	Label      string   `json:"label,omitempty"`
	Unit       string   `json:"unit,omitempty"`
	Source     Source   `json:"source"`
	Confidence float64  `json:"confidence"` // 1.0 for measured/computed over measured inputs
	Flags      []string `json:"flags,omitempty"`
	// Inputs lists parameter names the value was derived from, for
	// explainability. Empty for measured values.
	Inputs []string `json:"inputs,omitempty"`
}

// Flagged reports whether the value carries the given flag.
func (m MetricValue) Flagged(flag string) bool {
	for _, f := range m.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// FilledParameter is one gap-filled input parameter with its estimate.
type FilledParameter struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
	// Method names the fallback tier that produced the estimate:
	// "model", "heuristic", or "default".
	Method    string `json:"method"`
	Predictor string `json:"predictor,omitempty"`
}

// Rating is a qualitative band for a composite score.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
)

// Recommendation is a deterministic improvement suggestion derived from
// computed metrics.
type Recommendation struct {
	Priority string `json:"priority"` // High, Medium, Low
	Category string `json:"category"`
	Action   string `json:"action"`
	Impact   string `json:"impact"`
}

// AnalysisResult is the immutable output of one engine run. Every metric
// required by the requested analysis type is present, either computed from
// input or predicted; partial results are never returned as success.
type AnalysisResult struct {
	RunID        uuid.UUID    `json:"run_id"`
	AnalysisType AnalysisType `json:"analysis_type"`
	Material     MaterialType `json:"material"`
	AnalyzedAt   time.Time    `json:"analyzed_at"`

	Metrics map[string]MetricValue `json:"metrics"`

	// Parameters echoes the full parameter set the metrics were computed
	// over, including gap-filled values.
	Parameters map[string]FilledParameter `json:"parameters"`

	Gaps []DataGap `json:"gaps,omitempty"`

	// OverallConfidence aggregates per-metric confidences (geometric mean,
	// so one weak prediction drags the whole run down).
	OverallConfidence float64 `json:"overall_confidence"`
	LowConfidence     bool    `json:"low_confidence"`

	Rating          Rating           `json:"rating,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}

// UsedPrediction reports whether any metric or parameter was predicted.
func (r AnalysisResult) UsedPrediction() bool {
	for _, m := range r.Metrics {
		if m.Source == SourcePredicted {
			return true
		}
	}
	for _, p := range r.Parameters {
		if p.Source == SourcePredicted {
			return true
		}
	}
	return false
}
