// Package fill estimates missing parameters with a confidence score.
// Estimation per gap follows a fixed fallback order: trained predictor via
// the adapter, then material heuristic, then global default. The analysis
// always completes; weak estimates are annotated, never withheld.
package fill

import (
	"errors"

	"material-lca/internal/materials"
	"material-lca/internal/predict"
	"material-lca/internal/schema"
	"material-lca/pkg/api"
	"material-lca/pkg/confidence"
	lcaerrors "material-lca/pkg/errors"
)

// Estimation method tags recorded on filled parameters.
const (
	MethodModel     = "model"
	MethodHeuristic = "heuristic"
	MethodDefault   = "default"
)

// Filler estimates values for data gaps.
type Filler struct {
	adapter *predict.Adapter
}

func NewFiller(adapter *predict.Adapter) *Filler {
	return &Filler{adapter: adapter}
}

// Fill estimates every gap, highest priority first, so heavily-depended-on
// parameters are available as context for later estimates. It returns the
// estimates plus the completed description with predictions overlaid.
// Out-of-range and inconsistent supplied values are replaced by their
// estimates.
func (f *Filler) Fill(desc api.ProcessDescription, gapList []api.DataGap) (map[string]api.FilledParameter, api.ProcessDescription) {
	working := desc.Clone()
	filled := make(map[string]api.FilledParameter, len(gapList))

	// Suspect values must not feed other predictions.
	for _, g := range gapList {
		if g.Category != api.GapMissing {
			delete(working.Values, g.Parameter)
		}
	}

	// Confidence of everything currently in the working set. Measured
	// values start at full confidence; estimates join as they are made.
	conf := make(map[string]float64, len(working.Values))
	for name := range working.Values {
		conf[name] = confidence.Measured
	}

	for _, g := range gapList {
		p := f.estimate(working, conf, g)
		filled[g.Parameter] = p
		working.Values[g.Parameter] = p.Value
		conf[g.Parameter] = p.Confidence
	}

	return filled, working
}

func (f *Filler) estimate(working api.ProcessDescription, conf map[string]float64, g api.DataGap) api.FilledParameter {
	if p, ok := f.fromModel(working, conf, g); ok {
		return p
	}
	if p, ok := f.fromHeuristic(working, conf, g); ok {
		return p
	}
	return f.fromDefault(g)
}

// fromModel consults a predictor trained for this (parameter, material)
// pair. PredictorUnavailable is absorbed here; any other failure also
// falls through to the heuristic tier.
func (f *Filler) fromModel(working api.ProcessDescription, conf map[string]float64, g api.DataGap) (api.FilledParameter, bool) {
	name := predict.ParameterPredictorName(g.Parameter, string(g.Material))
	if !f.adapter.Has(name) {
		return api.FilledParameter{}, false
	}

	features := make(predict.Features, len(working.Values))
	for k, v := range working.Values {
		features[k] = v
	}

	pred, err := f.adapter.Evaluate(name, features)
	if err != nil {
		var unavailable *lcaerrors.PredictorUnavailable
		_ = errors.As(err, &unavailable)
		return api.FilledParameter{}, false
	}

	// Discount for context that was itself predicted.
	var predictedInputs []float64
	for fname := range features {
		if c, ok := conf[fname]; ok && c < confidence.Measured {
			predictedInputs = append(predictedInputs, c)
		}
	}
	score := confidence.Chain(pred.Score, predictedInputs)

	return api.FilledParameter{
		Name:       g.Parameter,
		Value:      clampToSchema(g.Parameter, pred.Value),
		Confidence: capPredicted(score),
		Source:     api.SourcePredicted,
		Method:     MethodModel,
		Predictor:  pred.Predictor,
	}, true
}

// fromHeuristic uses the material profile tables.
func (f *Filler) fromHeuristic(working api.ProcessDescription, conf map[string]float64, g api.DataGap) (api.FilledParameter, bool) {
	rate := working.Values[schema.ParamProductionRate]
	value, ok := materials.HeuristicValue(g.Material, g.Parameter, rate)
	if !ok {
		return api.FilledParameter{}, false
	}

	profile, known := materials.ProfileFor(g.Material)
	base := profile.BaseConfidence
	if !known {
		base = confidence.DefaultFallback
	}

	// Per-ton heuristics scale by the production rate; if that rate was
	// itself predicted, the estimate inherits its discount.
	var predictedInputs []float64
	if c, ok := conf[schema.ParamProductionRate]; ok && c < confidence.Measured {
		predictedInputs = append(predictedInputs, c)
	}

	return api.FilledParameter{
		Name:       g.Parameter,
		Value:      clampToSchema(g.Parameter, value),
		Confidence: capPredicted(confidence.Chain(base, predictedInputs)),
		Source:     api.SourcePredicted,
		Method:     MethodHeuristic,
	}, true
}

// fromDefault is the last resort: a global constant at floor confidence.
func (f *Filler) fromDefault(g api.DataGap) api.FilledParameter {
	value, _ := materials.GlobalDefault(g.Parameter)
	return api.FilledParameter{
		Name:       g.Parameter,
		Value:      clampToSchema(g.Parameter, value),
		Confidence: confidence.DefaultFallback,
		Source:     api.SourcePredicted,
		Method:     MethodDefault,
	}
}

// capPredicted keeps every estimate strictly below measured confidence.
func capPredicted(score float64) float64 {
	if score > confidence.HighConfidence {
		return confidence.HighConfidence
	}
	if score < 0 {
		return 0
	}
	return score
}

// clampToSchema bounds an estimate to the parameter's declared range so a
// model can never emit an impossible physical value.
func clampToSchema(name string, value float64) float64 {
	p, ok := schema.Lookup(name)
	if !ok {
		return value
	}
	if value < p.Min {
		return p.Min
	}
	if value > p.Max {
		return p.Max
	}
	return value
}
