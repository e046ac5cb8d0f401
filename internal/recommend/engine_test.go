package recommend

import (
	"strings"
	"testing"

	"material-lca/internal/schema"
	"material-lca/pkg/api"
)

func measured(name string, value float64) api.FilledParameter {
	return api.FilledParameter{Name: name, Value: value, Confidence: 1.0, Source: api.SourceMeasured}
}

func TestLowRenewableShareRecommendsEnergyAction(t *testing.T) {
	params := map[string]api.FilledParameter{
		schema.ParamRenewablePercent: measured(schema.ParamRenewablePercent, 20),
	}
	recs := Build(api.MaterialSteel, params, nil)

	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %v", recs)
	}
	r := recs[0]
	if r.Priority != "High" || r.Category != "Energy" {
		t.Fatalf("expected High/Energy, got %s/%s", r.Priority, r.Category)
	}
	if !strings.Contains(r.Action, "20%") || !strings.Contains(r.Action, "35%") {
		t.Fatalf("expected a 20%% to 35%% target, got %q", r.Action)
	}
}

func TestRenewableTargetCapsAtHundred(t *testing.T) {
	params := map[string]api.FilledParameter{
		schema.ParamRenewablePercent: measured(schema.ParamRenewablePercent, 92),
	}
	recs := Build(api.MaterialSteel, params, nil)
	if len(recs) != 0 {
		t.Fatalf("92%% renewable should not trigger the energy rule, got %v", recs)
	}
}

func TestRecyclingBelowBenchmarkRecommendsCircularity(t *testing.T) {
	params := map[string]api.FilledParameter{
		schema.ParamRecyclingRate: measured(schema.ParamRecyclingRate, 0.40),
	}
	recs := Build(api.MaterialSteel, params, nil)

	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %v", recs)
	}
	if recs[0].Category != "Circularity" || recs[0].Priority != "High" {
		t.Fatalf("expected High/Circularity, got %s/%s", recs[0].Priority, recs[0].Category)
	}
	if !strings.Contains(recs[0].Action, "steel") {
		t.Fatalf("action should name the material benchmark, got %q", recs[0].Action)
	}
}

func TestRecyclingAtBenchmarkIsQuiet(t *testing.T) {
	params := map[string]api.FilledParameter{
		schema.ParamRecyclingRate: measured(schema.ParamRecyclingRate, 0.90),
	}
	if recs := Build(api.MaterialSteel, params, nil); len(recs) != 0 {
		t.Fatalf("expected no recommendations, got %v", recs)
	}
}

func TestTransportHeavyFootprintSuggestsRail(t *testing.T) {
	results := map[string]api.MetricValue{
		api.MetricCarbonTotal:     {Value: 1000},
		api.MetricCarbonTransport: {Value: 300},
	}
	recs := Build(api.MaterialSteel, nil, results)

	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %v", recs)
	}
	if recs[0].Category != "Transport" || recs[0].Priority != "Medium" {
		t.Fatalf("expected Medium/Transport, got %s/%s", recs[0].Priority, recs[0].Category)
	}
	if !strings.Contains(recs[0].Impact, "30%") {
		t.Fatalf("impact should cite the 30%% transport share, got %q", recs[0].Impact)
	}
}

func TestMinorTransportShareIsQuiet(t *testing.T) {
	results := map[string]api.MetricValue{
		api.MetricCarbonTotal:     {Value: 1000},
		api.MetricCarbonTransport: {Value: 100},
	}
	if recs := Build(api.MaterialSteel, nil, results); len(recs) != 0 {
		t.Fatalf("10%% transport share should not trigger the rail rule, got %v", recs)
	}
}

func TestPredictedParametersRecommendMeasurement(t *testing.T) {
	params := map[string]api.FilledParameter{
		schema.ParamWaterUse: {
			Name: schema.ParamWaterUse, Value: 1500, Confidence: 0.6, Source: api.SourcePredicted,
		},
		schema.ParamEnergyUse: {
			Name: schema.ParamEnergyUse, Value: 15000, Confidence: 0.5, Source: api.SourcePredicted,
		},
	}
	recs := Build(api.MaterialAluminum, params, nil)

	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %v", recs)
	}
	r := recs[0]
	if r.Priority != "Low" || r.Category != "Data Quality" {
		t.Fatalf("expected Low/Data Quality, got %s/%s", r.Priority, r.Category)
	}
	// Parameter list is sorted so repeated runs produce identical text.
	if !strings.Contains(r.Action, "[energy_use water_use]") {
		t.Fatalf("expected sorted parameter list, got %q", r.Action)
	}
}

func TestRecommendationsOrderedByPriority(t *testing.T) {
	params := map[string]api.FilledParameter{
		schema.ParamRenewablePercent: measured(schema.ParamRenewablePercent, 10),
		schema.ParamRecyclingRate: {
			Name: schema.ParamRecyclingRate, Value: 0.30, Confidence: 0.6, Source: api.SourcePredicted,
		},
	}
	results := map[string]api.MetricValue{
		api.MetricCarbonTotal:     {Value: 1000},
		api.MetricCarbonTransport: {Value: 400},
	}
	recs := Build(api.MaterialSteel, params, results)

	want := []string{"High", "High", "Medium", "Low"}
	if len(recs) != len(want) {
		t.Fatalf("expected %d recommendations, got %v", len(want), recs)
	}
	for i, priority := range want {
		if recs[i].Priority != priority {
			t.Fatalf("position %d: expected %s, got %s", i, priority, recs[i].Priority)
		}
	}
	// Ties break on category so output stays deterministic.
	if recs[0].Category != "Circularity" || recs[1].Category != "Energy" {
		t.Fatalf("expected Circularity before Energy at equal priority, got %s, %s",
			recs[0].Category, recs[1].Category)
	}
}

func TestCapAtFiveRecommendations(t *testing.T) {
	params := map[string]api.FilledParameter{
		schema.ParamRenewablePercent: measured(schema.ParamRenewablePercent, 10),
		schema.ParamRecyclingRate: {
			Name: schema.ParamRecyclingRate, Value: 0.30, Confidence: 0.6, Source: api.SourcePredicted,
		},
	}
	results := map[string]api.MetricValue{
		api.MetricCarbonTotal:     {Value: 1000},
		api.MetricCarbonTransport: {Value: 400},
		api.MetricEnergyIntensity: {Value: 9000},
	}
	recs := Build(api.MaterialSteel, params, results)
	if len(recs) != 5 {
		t.Fatalf("expected exactly 5 recommendations, got %d", len(recs))
	}
}
