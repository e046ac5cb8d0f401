package predict

import (
	"sort"
	"sync"

	lcaerrors "material-lca/pkg/errors"
)

// Well-known predictor names the engine asks for. Parameter estimators use
// ParameterPredictorName instead.
const (
	PredictorEnvironmental = "environmental_impact"
	PredictorCircularity   = "circularity_index"
	PredictorClassifier    = "process_classifier"
)

// ParameterPredictorName is the registry key for a parameter estimator
// trained for one (parameter, material) pair, e.g. "recycling_rate@steel".
func ParameterPredictorName(parameter, material string) string {
	return parameter + "@" + material
}

// Adapter is the only component allowed to invoke predictors. It holds the
// immutable post-startup registry; Register is called during artifact
// loading only.
type Adapter struct {
	mu     sync.RWMutex
	models map[string]Predictor
}

func NewAdapter() *Adapter {
	return &Adapter{models: make(map[string]Predictor)}
}

// Register adds a predictor under its name. Later registrations of the
// same name replace earlier ones (higher artifact versions win by loading
// order).
func (a *Adapter) Register(p Predictor) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.models[p.Name()] = p
}

// Has reports whether a predictor is registered.
func (a *Adapter) Has(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.models[name]
	return ok
}

// Names returns the registered predictor names, sorted.
func (a *Adapter) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.models))
	for n := range a.models {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Evaluate runs the named predictor over the feature vector. A missing
// artifact or wrong feature shape yields *errors.PredictorUnavailable;
// callers fall back to heuristic estimation rather than failing the
// analysis.
func (a *Adapter) Evaluate(name string, features Features) (Prediction, error) {
	a.mu.RLock()
	p, ok := a.models[name]
	a.mu.RUnlock()
	if !ok {
		return Prediction{}, lcaerrors.NewModelMissing(name)
	}
	return p.Predict(features)
}
