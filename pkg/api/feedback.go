package api

import "time"

// PredictionFeedback correlates a predicted parameter value with a later
// user-confirmed actual. Records are immutable once created and feed only
// ModelPerformance updates.
type PredictionFeedback struct {
	Parameter string    `json:"parameter"`
	Predicted float64   `json:"predicted"`
	Actual    float64   `json:"actual"`
	Accuracy  float64   `json:"accuracy"` // normalized deviation score in [0,1]
	CreatedAt time.Time `json:"created_at"`
}

// Trend direction of a predictor's rolling accuracy.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// ModelPerformance is the running accuracy aggregate for one predictor,
// updated incrementally on each feedback record.
type ModelPerformance struct {
	Predictor        string    `json:"predictor"`
	SampleCount      int64     `json:"sample_count"`
	MeanAccuracy     float64   `json:"mean_accuracy"`
	AccuracyVariance float64   `json:"accuracy_variance"`
	Trend            Trend     `json:"trend"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// GapStatistics summarizes gap-fill activity per parameter, mirroring the
// tracker's observability read path.
type GapStatistics struct {
	TotalGaps        int64            `json:"total_gaps"`
	ConfirmedGaps    int64            `json:"confirmed_gaps"`
	PendingGaps      int64            `json:"pending_gaps"`
	ConfirmationRate float64          `json:"confirmation_rate"`
	FieldPerformance []FieldGapStats  `json:"field_performance"`
}

// FieldGapStats is per-parameter gap-fill detail.
type FieldGapStats struct {
	Parameter     string  `json:"parameter"`
	Fills         int64   `json:"fills"`
	Confirmed     int64   `json:"confirmed"`
	AvgConfidence float64 `json:"avg_confidence"`
}
