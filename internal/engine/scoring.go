package engine

import (
	"errors"
	"sort"

	"material-lca/internal/metrics"
	"material-lca/internal/predict"
	"material-lca/internal/schema"
	"material-lca/pkg/api"
	"material-lca/pkg/confidence"
	lcaerrors "material-lca/pkg/errors"
	"material-lca/pkg/units"
)

// Composite-score metrics have no closed form: a trained predictor supplies
// them when its artifact is loaded, and a deterministic heuristic stands in
// when it is not. A predictor failure lowers confidence, never the run.

func (e *Engine) score(desc api.ProcessDescription, complete api.ProcessDescription, params map[string]api.FilledParameter, results map[string]api.MetricValue, analysisType api.AnalysisType) {
	features := featuresFrom(complete)

	if analysisType == api.AnalysisEnvironmental || analysisType == api.AnalysisFull {
		results[api.MetricEnvironmentalScore] = e.envScore(desc.Material, features, params, results)
	}
	if analysisType == api.AnalysisCircularity || analysisType == api.AnalysisFull {
		results[api.MetricCircularityScore] = e.circScore(features, params, results)
	}
	if analysisType == api.AnalysisFull {
		results[api.MetricProcessClass] = e.classify(features, params)
	}
}

func (e *Engine) envScore(material api.MaterialType, features predict.Features, params map[string]api.FilledParameter, results map[string]api.MetricValue) api.MetricValue {
	if m, ok := e.fromPredictor(predict.PredictorEnvironmental, features, params); ok {
		return m
	}

	// Heuristic: score the carbon footprint per ton against twice the
	// material's process factor, so a process at the factor baseline lands
	// mid-scale and anything past double the baseline bottoms out.
	total := results[api.MetricCarbonTotal]
	rate, okRate := params[schema.ParamProductionRate]
	m := api.MetricValue{
		Unit:       string(units.UnitScore),
		Source:     api.SourcePredicted,
		Confidence: e.heuristicConfidence(params, schema.ParamProductionRate, schema.ParamEnergyUse, schema.ParamRecyclingRate),
		Inputs:     total.Inputs,
	}
	if !okRate || rate.Value == 0 {
		m.Flags = append(m.Flags, api.FlagUndefinedInput)
		return m
	}
	perTon := total.Value / rate.Value
	baseline := 2 * (metrics.ProcessFactor(material) + metrics.EOLFactor(material))
	m.Value = units.RatioToPercent(confidence.Clamp(1 - perTon/baseline))
	return m
}

func (e *Engine) circScore(features predict.Features, params map[string]api.FilledParameter, results map[string]api.MetricValue) api.MetricValue {
	if m, ok := e.fromPredictor(predict.PredictorCircularity, features, params); ok {
		return m
	}

	// Heuristic: mirror the composite index, discounted for coming from
	// the fallback tier rather than a trained model.
	index := results[api.MetricCEIndex]
	return api.MetricValue{
		Value:      index.Value,
		Unit:       string(units.UnitScore),
		Source:     api.SourcePredicted,
		Confidence: confidence.Chain(confidence.HeuristicBase, []float64{index.Confidence}),
		Inputs:     index.Inputs,
	}
}

func (e *Engine) classify(features predict.Features, params map[string]api.FilledParameter) api.MetricValue {
	if pred, err := e.adapter.Evaluate(predict.PredictorClassifier, features); err == nil {
		return api.MetricValue{
			Label:      pred.Label,
			Source:     api.SourcePredicted,
			Confidence: e.chainPredicted(pred.Score, params),
			Inputs:     sortedNames(params),
		}
	} else if !isUnavailable(err) {
		e.log.Warn().Err(err).Str("predictor", predict.PredictorClassifier).Msg("classifier evaluation failed")
	}

	// Heuristic: a process feeding mostly on recycled input runs a
	// secondary (remelt/reprocess) route, otherwise a primary one.
	label := "primary"
	if rec, ok := params[schema.ParamRecyclingRate]; ok && rec.Value >= 0.5 {
		label = "secondary"
	}
	return api.MetricValue{
		Label:      label,
		Source:     api.SourcePredicted,
		Confidence: e.heuristicConfidence(params, schema.ParamRecyclingRate),
		Inputs:     []string{schema.ParamRecyclingRate},
	}
}

// fromPredictor runs a score predictor and wraps its output, reporting
// false when the predictor is unavailable so the caller falls back.
func (e *Engine) fromPredictor(name string, features predict.Features, params map[string]api.FilledParameter) (api.MetricValue, bool) {
	pred, err := e.adapter.Evaluate(name, features)
	if err != nil {
		if !isUnavailable(err) {
			e.log.Warn().Err(err).Str("predictor", name).Msg("score evaluation failed")
		}
		return api.MetricValue{}, false
	}
	return api.MetricValue{
		Value:      pred.Value,
		Unit:       string(units.UnitScore),
		Source:     api.SourcePredicted,
		Confidence: e.chainPredicted(pred.Score, params),
		Inputs:     sortedNames(params),
	}, true
}

// chainPredicted discounts a predictor score by the weakest predicted
// input feeding it, keeping confidence strictly below any estimate it
// depends on.
func (e *Engine) chainPredicted(score float64, params map[string]api.FilledParameter) float64 {
	var predicted []float64
	for _, p := range params {
		if p.Source == api.SourcePredicted {
			predicted = append(predicted, p.Confidence)
		}
	}
	if len(predicted) == 0 {
		return confidence.Clamp(score)
	}
	return confidence.Chain(score, predicted)
}

func (e *Engine) heuristicConfidence(params map[string]api.FilledParameter, inputs ...string) float64 {
	var predicted []float64
	for _, name := range inputs {
		if p, ok := params[name]; ok && p.Source == api.SourcePredicted {
			predicted = append(predicted, p.Confidence)
		}
	}
	if len(predicted) == 0 {
		return confidence.HeuristicBase
	}
	return confidence.Chain(confidence.HeuristicBase, predicted)
}

func featuresFrom(desc api.ProcessDescription) predict.Features {
	features := make(predict.Features, len(desc.Values))
	for name, value := range desc.Values {
		features[name] = value
	}
	return features
}

func sortedNames(params map[string]api.FilledParameter) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isUnavailable(err error) bool {
	var unavailable *lcaerrors.PredictorUnavailable
	return errors.As(err, &unavailable)
}
