// Package engine orchestrates the analysis pipeline: validation, gap
// detection, gap filling, deterministic calculation, statistical scoring,
// and feedback tracking. It is the boundary contract the transport
// adapters call into.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"material-lca/internal/circular"
	"material-lca/internal/fill"
	"material-lca/internal/gaps"
	"material-lca/internal/metrics"
	"material-lca/internal/predict"
	"material-lca/internal/recommend"
	"material-lca/internal/validate"
	"material-lca/pkg/api"
	"material-lca/pkg/confidence"
	lcaerrors "material-lca/pkg/errors"
)

// RecordStore is the persistence collaborator. The engine hands records
// over for durability and owns none of the storage semantics; a nil store
// disables durability entirely.
type RecordStore interface {
	SaveGaps(ctx context.Context, runID uuid.UUID, gapList []api.DataGap) error
	SaveFeedback(ctx context.Context, record api.PredictionFeedback) error
	SavePerformance(ctx context.Context, perf api.ModelPerformance) error
}

// Tracker is the feedback/performance dependency of the engine.
type Tracker interface {
	Record(parameter string, predicted, actual float64, at time.Time) (api.ModelPerformance, api.PredictionFeedback, error)
	Performance(predictor string) (api.ModelPerformance, error)
	RecordFill(parameter string, conf float64)
	Statistics() api.GapStatistics
}

// Options configures an Engine.
type Options struct {
	// ConfidenceFloor marks dependent metrics low-confidence when an
	// estimate falls below it. Zero means the default.
	ConfidenceFloor float64
	Store           RecordStore
	Logger          zerolog.Logger
}

// Engine is safe for concurrent use: every analysis is an independent
// stateless unit of work, and the tracker serializes its own writes.
type Engine struct {
	detector *gaps.Detector
	filler   *fill.Filler
	calc     *metrics.Calculator
	circ     *circular.Calculator
	adapter  *predict.Adapter
	tracker  Tracker
	store    RecordStore
	floor    float64
	log      zerolog.Logger
}

func New(adapter *predict.Adapter, tracker Tracker, opts Options) *Engine {
	floor := opts.ConfidenceFloor
	if floor == 0 {
		floor = confidence.Floor
	}
	return &Engine{
		detector: gaps.NewDetector(),
		filler:   fill.NewFiller(adapter),
		calc:     metrics.NewCalculator(),
		circ:     circular.NewCalculator(),
		adapter:  adapter,
		tracker:  tracker,
		store:    opts.Store,
		floor:    floor,
		log:      opts.Logger,
	}
}

// Analyze runs the full pipeline over a raw process description. It
// returns either a complete, provenance-annotated result or a
// *errors.ValidationError listing every invalid field; never a silent
// partial.
func (e *Engine) Analyze(ctx context.Context, raw map[string]any, analysisType api.AnalysisType) (*api.AnalysisResult, error) {
	desc, verr := validate.Validate(raw, analysisType)
	if verr != nil {
		return nil, verr
	}

	gapList := e.detector.Detect(desc, analysisType)
	filled, complete := e.filler.Fill(desc, gapList)
	for _, p := range filled {
		e.tracker.RecordFill(p.Name, p.Confidence)
	}

	params := assembleParameters(complete, filled)

	results := e.calc.Compute(desc.Material, params)
	for name, m := range e.circ.Compute(desc.Material, params) {
		results[name] = m
	}
	e.score(desc, complete, params, results, analysisType)

	result := &api.AnalysisResult{
		RunID:        uuid.New(),
		AnalysisType: analysisType,
		Material:     desc.Material,
		AnalyzedAt:   time.Now().UTC(),
		Metrics:      make(map[string]api.MetricValue),
		Parameters:   params,
		Gaps:         gapList,
	}

	// Every metric the analysis type demands must be present; the gap
	// filler guarantees the inputs, so a hole here is a programming error
	// surfaced loudly rather than a silent partial.
	var confidences []float64
	for _, name := range api.MetricsFor(analysisType) {
		m, ok := results[name]
		if !ok {
			return nil, &lcaerrors.NotFound{Kind: "metric", Name: name}
		}
		if m.Confidence < e.floor && !m.Flagged(api.FlagLowConfidence) {
			m.Flags = append(m.Flags, api.FlagLowConfidence)
			result.LowConfidence = true
		}
		result.Metrics[name] = m
		confidences = append(confidences, m.Confidence)
	}
	// Opportunistic metrics ride along when computable.
	if m, ok := results[api.MetricWasteRate]; ok {
		result.Metrics[api.MetricWasteRate] = m
	}

	result.OverallConfidence = confidence.Aggregate(confidences)
	result.Rating = e.rating(result, analysisType)
	result.Recommendations = recommend.Build(desc.Material, params, results)

	e.persistGaps(ctx, result.RunID, gapList)
	return result, nil
}

// DetectGaps validates and reports the ordered gap sequence without
// running the rest of the pipeline.
func (e *Engine) DetectGaps(ctx context.Context, raw map[string]any, analysisType api.AnalysisType) ([]api.DataGap, error) {
	desc, verr := validate.Validate(raw, analysisType)
	if verr != nil {
		return nil, verr
	}
	return e.detector.Detect(desc, analysisType), nil
}

// PredictMissing estimates values for the supplied gaps and returns the
// parameter → estimate mapping. Confidence is always in [0,1] and strictly
// below 1 for every estimate.
func (e *Engine) PredictMissing(ctx context.Context, desc api.ProcessDescription, gapList []api.DataGap) map[string]api.FilledParameter {
	filled, _ := e.filler.Fill(desc, gapList)
	for _, p := range filled {
		e.tracker.RecordFill(p.Name, p.Confidence)
	}
	return filled
}

// Predict validates raw input, detects gaps, and fills them in one call.
func (e *Engine) Predict(ctx context.Context, raw map[string]any, analysisType api.AnalysisType) ([]api.DataGap, map[string]api.FilledParameter, error) {
	desc, verr := validate.Validate(raw, analysisType)
	if verr != nil {
		return nil, nil, verr
	}
	gapList := e.detector.Detect(desc, analysisType)
	return gapList, e.PredictMissing(ctx, desc, gapList), nil
}

// RecordFeedback ingests a confirmed actual for a previously predicted
// parameter and returns the updated performance summary. Aggregate-update
// durability failures never roll back the in-memory update.
func (e *Engine) RecordFeedback(ctx context.Context, parameter string, predicted, actual float64, at time.Time) (api.ModelPerformance, error) {
	perf, record, err := e.tracker.Record(parameter, predicted, actual, at)
	if err != nil {
		return api.ModelPerformance{}, err
	}
	if e.store != nil {
		if err := e.store.SaveFeedback(ctx, record); err != nil {
			e.log.Warn().Err(err).Str("parameter", parameter).Msg("feedback record not persisted")
		}
		if err := e.store.SavePerformance(ctx, perf); err != nil {
			e.log.Warn().Err(err).Str("parameter", parameter).Msg("performance snapshot not persisted")
		}
	}
	return perf, nil
}

// GetPerformance returns the current aggregate for a named predictor.
func (e *Engine) GetPerformance(ctx context.Context, predictor string) (api.ModelPerformance, error) {
	return e.tracker.Performance(predictor)
}

// GapStatistics summarizes gap-fill activity for observability.
func (e *Engine) GapStatistics() api.GapStatistics {
	return e.tracker.Statistics()
}

// assembleParameters merges measured values with gap-filled estimates into
// the provenance-tagged parameter set the calculators consume.
func assembleParameters(complete api.ProcessDescription, filled map[string]api.FilledParameter) map[string]api.FilledParameter {
	params := make(map[string]api.FilledParameter, len(complete.Values))
	for name, value := range complete.Values {
		if p, ok := filled[name]; ok {
			params[name] = p
			continue
		}
		params[name] = api.FilledParameter{
			Name:       name,
			Value:      value,
			Confidence: confidence.Measured,
			Source:     api.SourceMeasured,
		}
	}
	return params
}

func (e *Engine) persistGaps(ctx context.Context, runID uuid.UUID, gapList []api.DataGap) {
	if e.store == nil || len(gapList) == 0 {
		return
	}
	if err := e.store.SaveGaps(ctx, runID, gapList); err != nil {
		e.log.Warn().Err(err).Str("run_id", runID.String()).Msg("gaps not persisted")
	}
}

func (e *Engine) rating(result *api.AnalysisResult, analysisType api.AnalysisType) api.Rating {
	switch analysisType {
	case api.AnalysisCircularity:
		return circular.RatingFor(result.Metrics[api.MetricCEIndex].Value)
	case api.AnalysisEnvironmental:
		return circular.RatingFor(result.Metrics[api.MetricEnvironmentalScore].Value)
	default:
		avg := (result.Metrics[api.MetricCEIndex].Value + result.Metrics[api.MetricEnvironmentalScore].Value) / 2
		return circular.RatingFor(avg)
	}
}
