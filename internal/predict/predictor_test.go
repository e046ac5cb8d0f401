package predict

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"material-lca/internal/artifacts"
	lcaerrors "material-lca/pkg/errors"
)

func TestLinearModelPredict(t *testing.T) {
	m := &linearModel{
		name: "energy_use@steel", version: "v3",
		features: []string{"production_rate", "recycling_rate"},
		weights:  []float64{5200, -1000}, intercept: 300,
		score: 0.88,
	}

	pred, err := m.Predict(Features{"production_rate": 10, "recycling_rate": 0.5, "extra": 99})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 5200.0*10 - 1000*0.5 + 300
	if math.Abs(pred.Value-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, pred.Value)
	}
	if pred.Score != 0.88 {
		t.Fatalf("expected score 0.88, got %v", pred.Score)
	}
	if pred.Predictor != "energy_use@steel" || pred.Version != "v3" {
		t.Fatalf("unexpected identity: %+v", pred)
	}
}

func TestLinearModelBounds(t *testing.T) {
	bounds := [2]float64{0, 1}
	m := &linearModel{
		name: "recycling_rate@steel", features: []string{"production_rate"},
		weights: []float64{1}, intercept: 5, bounds: &bounds, score: 0.8,
	}
	pred, err := m.Predict(Features{"production_rate": 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.Value != 1 {
		t.Fatalf("expected bounded output 1, got %v", pred.Value)
	}
}

func TestLinearModelMissingFeature(t *testing.T) {
	m := &linearModel{
		name: "m", features: []string{"production_rate"},
		weights: []float64{1}, score: 0.8,
	}
	_, err := m.Predict(Features{"energy_use": 1})
	var unavailable *lcaerrors.PredictorUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected PredictorUnavailable, got %v", err)
	}
	if unavailable.Code != lcaerrors.ErrCodeFeatureShape {
		t.Fatalf("expected FEATURE_SHAPE, got %s", unavailable.Code)
	}
}

func TestCentroidClassifierNearestLabel(t *testing.T) {
	m := &centroidClassifier{
		name: "process_classifier", version: "v1",
		features:  []string{"recycling_rate", "energy_intensity"},
		labels:    []string{"primary", "secondary"},
		centroids: [][]float64{{0.1, 0.9}, {0.9, 0.2}},
		score:     0.9,
	}

	pred, err := m.Predict(Features{"recycling_rate": 0.85, "energy_intensity": 0.25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.Label != "secondary" {
		t.Fatalf("expected secondary, got %s", pred.Label)
	}
	if pred.Score > 0.9 {
		t.Fatalf("margin discount must never exceed the base score, got %v", pred.Score)
	}
}

func TestCentroidClassifierAmbiguityDiscount(t *testing.T) {
	m := &centroidClassifier{
		name:      "process_classifier",
		features:  []string{"x"},
		labels:    []string{"a", "b"},
		centroids: [][]float64{{0}, {1}},
		score:     0.9,
	}

	// Midpoint is maximally ambiguous, far point is not.
	mid, _ := m.Predict(Features{"x": 0.5})
	clear, _ := m.Predict(Features{"x": 0.02})
	if mid.Score >= clear.Score {
		t.Fatalf("ambiguous score %v should be below clear score %v", mid.Score, clear.Score)
	}
}

func TestAdapterMissingModel(t *testing.T) {
	a := NewAdapter()
	_, err := a.Evaluate("nope", Features{})
	var unavailable *lcaerrors.PredictorUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected PredictorUnavailable, got %v", err)
	}
	if unavailable.Code != lcaerrors.ErrCodeModelMissing {
		t.Fatalf("expected MODEL_MISSING, got %s", unavailable.Code)
	}
}

func TestArtifactBuildValidatesShape(t *testing.T) {
	bad := Artifact{
		Name: "m", Role: "regressor",
		Features: []string{"a", "b"}, Weights: []float64{1},
		Score: 0.5,
	}
	if _, err := bad.Build(); err == nil {
		t.Fatal("expected shape error for mismatched weights")
	}

	badScore := Artifact{Name: "m", Role: "regressor", Score: 1.5}
	if _, err := badScore.Build(); err == nil {
		t.Fatal("expected error for score outside [0,1]")
	}
}

func TestLoadAllFromLocalStore(t *testing.T) {
	dir := t.TempDir()
	artifact := `{
		"name": "circularity_index",
		"version": "v2",
		"role": "regressor",
		"features": ["recycling_rate", "renewable_energy_percent"],
		"weights": [60, 0.3],
		"intercept": 5,
		"bounds": [0, 100],
		"score": 0.82
	}`
	if err := os.WriteFile(filepath.Join(dir, "circularity.json"), []byte(artifact), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o600); err != nil {
		t.Fatal(err)
	}

	adapter, err := LoadAll(context.Background(), artifacts.NewLocalStore(dir))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !adapter.Has("circularity_index") {
		t.Fatalf("expected circularity_index registered, have %v", adapter.Names())
	}

	pred, err := adapter.Evaluate("circularity_index", Features{
		"recycling_rate":           0.8,
		"renewable_energy_percent": 30,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 60*0.8 + 0.3*30 + 5
	if math.Abs(pred.Value-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, pred.Value)
	}
}

func TestLoadAllFailsOnMalformedArtifact(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAll(context.Background(), artifacts.NewLocalStore(dir)); err == nil {
		t.Fatal("expected error for malformed artifact")
	}
}

func TestLoadAllMissingDirectoryIsEmptyRegistry(t *testing.T) {
	adapter, err := LoadAll(context.Background(), artifacts.NewLocalStore(filepath.Join(t.TempDir(), "absent")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(adapter.Names()) != 0 {
		t.Fatalf("expected empty registry, got %v", adapter.Names())
	}
}
