// Package predict presents trained statistical models as opaque scoring
// functions behind a uniform capability interface. Models are loaded once
// from versioned artifacts at startup and are immutable afterwards, so
// concurrent requests may evaluate the same predictor safely.
package predict

import (
	"fmt"
	"math"

	lcaerrors "material-lca/pkg/errors"
)

// Features is a named feature vector. Predictors declare the feature names
// they require; evaluation with an incomplete vector fails as a shape
// error rather than guessing.
type Features map[string]float64

// Prediction is the uniform output of any predictor role.
type Prediction struct {
	Value float64 `json:"value"`
	// Label is set by classifiers only.
	Label string `json:"label,omitempty"`
	// Score is the predictor's self-reported reliability in [0,1],
	// recorded at training time.
	Score     float64 `json:"score"`
	Predictor string  `json:"predictor"`
	Version   string  `json:"version"`
}

// Predictor is the capability interface every scoring function satisfies.
type Predictor interface {
	Name() string
	Version() string
	Predict(features Features) (Prediction, error)
}

// linearModel is a regressor artifact: weighted sum plus intercept, with
// optional output bounds.
type linearModel struct {
	name      string
	version   string
	features  []string
	weights   []float64
	intercept float64
	bounds    *[2]float64
	score     float64
}

func (m *linearModel) Name() string    { return m.name }
func (m *linearModel) Version() string { return m.version }

func (m *linearModel) Predict(features Features) (Prediction, error) {
	vec, err := vectorize(m.name, m.features, features)
	if err != nil {
		return Prediction{}, err
	}
	v := m.intercept
	for i, w := range m.weights {
		v += w * vec[i]
	}
	if m.bounds != nil {
		v = math.Max(m.bounds[0], math.Min(m.bounds[1], v))
	}
	return Prediction{Value: v, Score: m.score, Predictor: m.name, Version: m.version}, nil
}

// centroidClassifier assigns the label of the nearest centroid in feature
// space. The self-reported score shrinks with the margin between the two
// closest centroids.
type centroidClassifier struct {
	name      string
	version   string
	features  []string
	labels    []string
	centroids [][]float64
	score     float64
}

func (m *centroidClassifier) Name() string    { return m.name }
func (m *centroidClassifier) Version() string { return m.version }

func (m *centroidClassifier) Predict(features Features) (Prediction, error) {
	vec, err := vectorize(m.name, m.features, features)
	if err != nil {
		return Prediction{}, err
	}

	best, second := -1, -1
	bestDist, secondDist := math.Inf(1), math.Inf(1)
	for i, c := range m.centroids {
		d := euclidean(vec, c)
		switch {
		case d < bestDist:
			second, secondDist = best, bestDist
			best, bestDist = i, d
		case d < secondDist:
			second, secondDist = i, d
		}
	}
	if best < 0 {
		return Prediction{}, lcaerrors.NewFeatureShape(m.name, "classifier has no centroids")
	}

	score := m.score
	if second >= 0 && secondDist > 0 {
		// Tight margins mean an ambiguous class; discount the score.
		margin := (secondDist - bestDist) / secondDist
		score *= 0.5 + 0.5*margin
	}
	return Prediction{
		Value:     float64(best),
		Label:     m.labels[best],
		Score:     score,
		Predictor: m.name,
		Version:   m.version,
	}, nil
}

// vectorize assembles the model's declared feature order from the named
// vector, failing on any missing feature.
func vectorize(name string, declared []string, features Features) ([]float64, error) {
	vec := make([]float64, len(declared))
	for i, f := range declared {
		v, ok := features[f]
		if !ok {
			return nil, lcaerrors.NewFeatureShape(name, fmt.Sprintf("missing feature %q", f))
		}
		vec[i] = v
	}
	return vec, nil
}

func euclidean(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
