package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"material-lca/internal/artifacts"
)

// Artifact is the on-disk JSON form of one trained scoring function.
type Artifact struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Role     string   `json:"role"` // "regressor" or "classifier"
	Features []string `json:"features"`

	// Regressor fields
	Weights   []float64   `json:"weights,omitempty"`
	Intercept float64     `json:"intercept,omitempty"`
	Bounds    *[2]float64 `json:"bounds,omitempty"`

	// Classifier fields
	Labels    []string    `json:"labels,omitempty"`
	Centroids [][]float64 `json:"centroids,omitempty"`

	// Self-reported reliability from training, in [0,1].
	Score float64 `json:"score"`
}

// Build materializes the artifact into a predictor, validating shape.
func (a Artifact) Build() (Predictor, error) {
	if a.Name == "" {
		return nil, fmt.Errorf("artifact missing name")
	}
	if a.Score < 0 || a.Score > 1 {
		return nil, fmt.Errorf("artifact %s: score %v outside [0,1]", a.Name, a.Score)
	}
	switch a.Role {
	case "regressor":
		if len(a.Weights) != len(a.Features) {
			return nil, fmt.Errorf("artifact %s: %d weights for %d features", a.Name, len(a.Weights), len(a.Features))
		}
		return &linearModel{
			name: a.Name, version: a.Version, features: a.Features,
			weights: a.Weights, intercept: a.Intercept, bounds: a.Bounds,
			score: a.Score,
		}, nil
	case "classifier":
		if len(a.Labels) != len(a.Centroids) {
			return nil, fmt.Errorf("artifact %s: %d labels for %d centroids", a.Name, len(a.Labels), len(a.Centroids))
		}
		for i, c := range a.Centroids {
			if len(c) != len(a.Features) {
				return nil, fmt.Errorf("artifact %s: centroid %d has %d dims for %d features", a.Name, i, len(c), len(a.Features))
			}
		}
		return &centroidClassifier{
			name: a.Name, version: a.Version, features: a.Features,
			labels: a.Labels, centroids: a.Centroids, score: a.Score,
		}, nil
	default:
		return nil, fmt.Errorf("artifact %s: unknown role %q", a.Name, a.Role)
	}
}

// LoadAll reads every JSON artifact from the store and returns a populated
// adapter. A malformed artifact fails the load: a process that starts must
// have a coherent model registry.
func LoadAll(ctx context.Context, store artifacts.Store) (*Adapter, error) {
	keys, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}

	adapter := NewAdapter()
	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		data, err := store.Read(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("reading artifact %s: %w", key, err)
		}
		var art Artifact
		if err := json.Unmarshal(data, &art); err != nil {
			return nil, fmt.Errorf("parsing artifact %s: %w", key, err)
		}
		model, err := art.Build()
		if err != nil {
			return nil, err
		}
		adapter.Register(model)
	}
	return adapter, nil
}
