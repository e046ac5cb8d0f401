package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"material-lca/internal/feedback"
	"material-lca/internal/predict"
	"material-lca/internal/schema"
	"material-lca/pkg/api"
	lcaerrors "material-lca/pkg/errors"
)

func newEngine(opts Options) *Engine {
	opts.Logger = zerolog.Nop()
	return New(predict.NewAdapter(), feedback.NewTracker(), opts)
}

func completeSteelInput() map[string]any {
	return map[string]any{
		"material":                 "steel",
		"production_rate":          100.0,
		"energy_use":               550000.0,
		"water_use":                280000.0,
		"transport_distance":       450.0,
		"recycling_rate":           0.85,
		"renewable_energy_percent": 22.0,
	}
}

func TestAnalyzeCompleteInputUsesNoParameterPredictions(t *testing.T) {
	e := newEngine(Options{})
	result, err := e.Analyze(context.Background(), completeSteelInput(), api.AnalysisFull)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Gaps) != 0 {
		t.Fatalf("expected no gaps, got %v", result.Gaps)
	}
	for name, p := range result.Parameters {
		if p.Source != api.SourceMeasured {
			t.Fatalf("parameter %s: expected measured, got %s", name, p.Source)
		}
		if p.Confidence != 1.0 {
			t.Fatalf("parameter %s: expected confidence 1.0, got %v", name, p.Confidence)
		}
	}
	for _, name := range api.MetricsFor(api.AnalysisFull) {
		if _, ok := result.Metrics[name]; !ok {
			t.Fatalf("missing required metric %s", name)
		}
	}
	if result.RunID == uuid.Nil {
		t.Fatal("expected a run id")
	}
	if result.Rating == "" {
		t.Fatal("expected a rating")
	}
}

func TestAnalyzeDeterministicMetricsFullyTrusted(t *testing.T) {
	e := newEngine(Options{})
	result, err := e.Analyze(context.Background(), completeSteelInput(), api.AnalysisEnvironmental)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := result.Metrics[api.MetricCarbonTotal]
	if m.Source != api.SourceComputed {
		t.Fatalf("expected computed carbon total, got %s", m.Source)
	}
	if m.Confidence != 1.0 {
		t.Fatalf("expected confidence 1.0, got %v", m.Confidence)
	}
}

func TestAnalyzeMissingParameterYieldsPredictedMetric(t *testing.T) {
	raw := completeSteelInput()
	delete(raw, "recycling_rate")

	e := newEngine(Options{})
	result, err := e.Analyze(context.Background(), raw, api.AnalysisFull)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Gaps) != 1 || result.Gaps[0].Parameter != schema.ParamRecyclingRate {
		t.Fatalf("expected one recycling_rate gap, got %v", result.Gaps)
	}

	filledConf := result.Parameters[schema.ParamRecyclingRate].Confidence
	if filledConf >= 1.0 {
		t.Fatalf("estimate confidence %v not strictly below 1.0", filledConf)
	}

	cmur := result.Metrics[api.MetricCMUR]
	if cmur.Source != api.SourcePredicted {
		t.Fatalf("expected predicted CMUR, got %s", cmur.Source)
	}
	if cmur.Confidence >= filledConf {
		t.Fatalf("CMUR confidence %v not strictly below its predicted input %v", cmur.Confidence, filledConf)
	}
	if cmur.Value < 0 || cmur.Value > 1 {
		t.Fatalf("CMUR %v outside [0,1]", cmur.Value)
	}
	if !result.UsedPrediction() {
		t.Fatal("expected UsedPrediction")
	}
}

func TestAnalyzeValidationReportsEverything(t *testing.T) {
	raw := map[string]any{
		"material":        "adamantium",
		"production_rate": -5.0,
	}
	e := newEngine(Options{})
	_, err := e.Analyze(context.Background(), raw, api.AnalysisFull)

	var verr *lcaerrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %v", verr.Violations)
	}
}

func TestAnalyzeEmptyInputStillCompletes(t *testing.T) {
	e := newEngine(Options{})
	result, err := e.Analyze(context.Background(), map[string]any{"material": "aluminum"}, api.AnalysisFull)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Gaps) != 6 {
		t.Fatalf("expected 6 gaps, got %d", len(result.Gaps))
	}
	for _, name := range api.MetricsFor(api.AnalysisFull) {
		if _, ok := result.Metrics[name]; !ok {
			t.Fatalf("missing required metric %s", name)
		}
	}
	if !result.LowConfidence {
		t.Fatal("expected low-confidence marking for an all-estimated run")
	}
	if result.OverallConfidence >= 1 || result.OverallConfidence <= 0 {
		t.Fatalf("overall confidence %v outside (0,1)", result.OverallConfidence)
	}
}

func TestAnalyzeClassificationCarriesLabel(t *testing.T) {
	e := newEngine(Options{})
	result, err := e.Analyze(context.Background(), completeSteelInput(), api.AnalysisFull)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	class := result.Metrics[api.MetricProcessClass]
	if class.Label != "secondary" {
		t.Fatalf("expected secondary route for recycling 0.85, got %q", class.Label)
	}
	if class.Source != api.SourcePredicted {
		t.Fatalf("expected predicted source, got %s", class.Source)
	}
}

func TestDetectGapsDoesNotFill(t *testing.T) {
	raw := completeSteelInput()
	delete(raw, "water_use")

	e := newEngine(Options{})
	gapList, err := e.DetectGaps(context.Background(), raw, api.AnalysisEnvironmental)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gapList) != 1 || gapList[0].Parameter != schema.ParamWaterUse {
		t.Fatalf("expected one water_use gap, got %v", gapList)
	}
}

func TestPredictReturnsEstimatesForGaps(t *testing.T) {
	raw := completeSteelInput()
	delete(raw, "recycling_rate")
	delete(raw, "water_use")

	e := newEngine(Options{})
	gapList, filled, err := e.Predict(context.Background(), raw, api.AnalysisFull)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gapList) != 2 {
		t.Fatalf("expected 2 gaps, got %v", gapList)
	}
	if len(filled) != 2 {
		t.Fatalf("expected 2 estimates, got %v", filled)
	}
	for name, p := range filled {
		if p.Source != api.SourcePredicted {
			t.Fatalf("%s: expected predicted source, got %s", name, p.Source)
		}
		if p.Confidence <= 0 || p.Confidence >= 1 {
			t.Fatalf("%s: confidence %v outside (0,1)", name, p.Confidence)
		}
	}
}

func TestRecordFeedbackRoundTrip(t *testing.T) {
	e := newEngine(Options{})
	at := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

	perf, err := e.RecordFeedback(context.Background(), schema.ParamRecyclingRate, 0.60, 0.75, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if perf.SampleCount != 1 {
		t.Fatalf("expected 1 sample, got %d", perf.SampleCount)
	}

	// Replay is a no-op.
	perf, err = e.RecordFeedback(context.Background(), schema.ParamRecyclingRate, 0.60, 0.75, at)
	if err != nil {
		t.Fatalf("unexpected error on replay: %v", err)
	}
	if perf.SampleCount != 1 {
		t.Fatalf("replay changed sample count to %d", perf.SampleCount)
	}

	got, err := e.GetPerformance(context.Background(), schema.ParamRecyclingRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SampleCount != 1 || got.MeanAccuracy != perf.MeanAccuracy {
		t.Fatalf("performance mismatch: %+v vs %+v", got, perf)
	}
}

func TestGetPerformanceUnknown(t *testing.T) {
	e := newEngine(Options{})
	_, err := e.GetPerformance(context.Background(), "never_seen")
	var notFound *lcaerrors.NotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

type failingStore struct {
	gapSaves int
}

func (s *failingStore) SaveGaps(ctx context.Context, runID uuid.UUID, gaps []api.DataGap) error {
	s.gapSaves++
	return fmt.Errorf("clickhouse down")
}
func (s *failingStore) SaveFeedback(ctx context.Context, record api.PredictionFeedback) error {
	return fmt.Errorf("clickhouse down")
}
func (s *failingStore) SavePerformance(ctx context.Context, perf api.ModelPerformance) error {
	return fmt.Errorf("clickhouse down")
}

func TestStoreFailuresNeverFailTheRun(t *testing.T) {
	store := &failingStore{}
	e := newEngine(Options{Store: store})

	raw := completeSteelInput()
	delete(raw, "recycling_rate")
	if _, err := e.Analyze(context.Background(), raw, api.AnalysisFull); err != nil {
		t.Fatalf("store failure leaked into the analysis: %v", err)
	}
	if store.gapSaves != 1 {
		t.Fatalf("expected 1 gap save attempt, got %d", store.gapSaves)
	}

	perf, err := e.RecordFeedback(context.Background(), schema.ParamRecyclingRate, 0.6, 0.7, time.Now())
	if err != nil {
		t.Fatalf("store failure leaked into feedback: %v", err)
	}
	if perf.SampleCount != 1 {
		t.Fatalf("in-memory aggregate rolled back: %+v", perf)
	}
}

func TestGapStatisticsTracksFills(t *testing.T) {
	e := newEngine(Options{})
	raw := completeSteelInput()
	delete(raw, "recycling_rate")
	if _, err := e.Analyze(context.Background(), raw, api.AnalysisFull); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := e.GapStatistics()
	if stats.TotalGaps != 1 {
		t.Fatalf("expected 1 tracked fill, got %d", stats.TotalGaps)
	}
	if len(stats.FieldPerformance) != 1 || stats.FieldPerformance[0].Parameter != schema.ParamRecyclingRate {
		t.Fatalf("unexpected field stats: %+v", stats.FieldPerformance)
	}
}
