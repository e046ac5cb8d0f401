// Package errors provides severity-aware error types for the analysis
// engine.
package errors

import (
	"fmt"
	"strings"
)

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error codes
const (
	ErrCodeUnknownParameter   = "UNKNOWN_PARAMETER"
	ErrCodeOutOfRange         = "OUT_OF_RANGE"
	ErrCodeWrongType          = "WRONG_TYPE"
	ErrCodeUnknownMaterial    = "UNKNOWN_MATERIAL"
	ErrCodeNegativeQuantity   = "NEGATIVE_QUANTITY"
	ErrCodeModelMissing       = "MODEL_MISSING"
	ErrCodeFeatureShape       = "FEATURE_SHAPE"
	ErrCodeInconsistentActual = "INCONSISTENT_ACTUAL"
)

// FieldViolation is one invalid input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError reports every invalid field of a request at once rather
// than failing on the first. Recoverable by the caller correcting input.
type ValidationError struct {
	Violations []FieldViolation `json:"violations"`
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s (%s)", v.Field, v.Message, v.Code))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Add appends a violation and returns the error for chaining.
func (e *ValidationError) Add(field, code, message string) *ValidationError {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Code: code, Message: message})
	return e
}

// HasViolations reports whether any field failed validation.
func (e *ValidationError) HasViolations() bool { return len(e.Violations) > 0 }

// PredictorUnavailable signals that a named statistical model could not be
// evaluated. Callers recover locally via heuristic or default fallback;
// this never fails a whole analysis.
type PredictorUnavailable struct {
	Predictor string `json:"predictor"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func (e *PredictorUnavailable) Error() string {
	return fmt.Sprintf("predictor %s unavailable: %s (%s)", e.Predictor, e.Message, e.Code)
}

// NewModelMissing reports an absent predictor artifact.
func NewModelMissing(predictor string) *PredictorUnavailable {
	return &PredictorUnavailable{
		Predictor: predictor,
		Code:      ErrCodeModelMissing,
		Message:   "no artifact registered",
	}
}

// NewFeatureShape reports a feature vector that does not match the
// predictor's declared inputs.
func NewFeatureShape(predictor, detail string) *PredictorUnavailable {
	return &PredictorUnavailable{
		Predictor: predictor,
		Code:      ErrCodeFeatureShape,
		Message:   detail,
	}
}

// InconsistentFeedback rejects a feedback record whose actual value falls
// outside the parameter's valid range. The performance aggregate is left
// untouched.
type InconsistentFeedback struct {
	Parameter string  `json:"parameter"`
	Actual    float64 `json:"actual"`
	Message   string  `json:"message"`
}

func (e *InconsistentFeedback) Error() string {
	return fmt.Sprintf("inconsistent feedback for %s: actual %v %s", e.Parameter, e.Actual, e.Message)
}

// NotFound signals a read for an unknown predictor or record.
type NotFound struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}
