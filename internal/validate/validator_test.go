package validate

import (
	"testing"

	"material-lca/internal/schema"
	"material-lca/pkg/api"
	lcaerrors "material-lca/pkg/errors"
)

func TestValidateAcceptsCompleteInput(t *testing.T) {
	raw := map[string]any{
		"material":                 "steel",
		"process_stage":            "production",
		"production_rate":          100.0,
		"energy_use":               550000.0,
		"water_use":                280000.0,
		"transport_distance":       450.0,
		"recycling_rate":           0.85,
		"renewable_energy_percent": 22.0,
	}

	desc, verr := Validate(raw, api.AnalysisFull)
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if desc.Material != api.MaterialSteel {
		t.Fatalf("expected steel, got %s", desc.Material)
	}
	if desc.Stage != "production" {
		t.Fatalf("expected stage production, got %q", desc.Stage)
	}
	if len(desc.Values) != 6 {
		t.Fatalf("expected 6 numeric parameters, got %d", len(desc.Values))
	}
}

func TestValidateReportsEveryViolationAtOnce(t *testing.T) {
	raw := map[string]any{
		"material":        "unobtainium",
		"production_rate": -40.0,
		"recycling_rate":  "high",
		"blast_pressure":  12.0,
	}

	_, verr := Validate(raw, api.AnalysisFull)
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if len(verr.Violations) != 4 {
		t.Fatalf("expected 4 violations, got %d: %v", len(verr.Violations), verr)
	}

	codes := map[string]string{}
	for _, v := range verr.Violations {
		codes[v.Field] = v.Code
	}
	if codes["material"] != lcaerrors.ErrCodeUnknownMaterial {
		t.Fatalf("expected UNKNOWN_MATERIAL for material, got %s", codes["material"])
	}
	if codes["production_rate"] != lcaerrors.ErrCodeNegativeQuantity {
		t.Fatalf("expected NEGATIVE_QUANTITY for production_rate, got %s", codes["production_rate"])
	}
	if codes["recycling_rate"] != lcaerrors.ErrCodeWrongType {
		t.Fatalf("expected WRONG_TYPE for recycling_rate, got %s", codes["recycling_rate"])
	}
	if codes["blast_pressure"] != lcaerrors.ErrCodeUnknownParameter {
		t.Fatalf("expected UNKNOWN_PARAMETER for blast_pressure, got %s", codes["blast_pressure"])
	}
}

func TestValidateViolationOrderIsDeterministic(t *testing.T) {
	raw := map[string]any{
		"zeta_field":  1.0,
		"alpha_field": 1.0,
	}

	_, first := Validate(raw, api.AnalysisFull)
	for i := 0; i < 20; i++ {
		_, again := Validate(raw, api.AnalysisFull)
		if len(again.Violations) != len(first.Violations) {
			t.Fatal("violation count changed between runs")
		}
		for j := range again.Violations {
			if again.Violations[j].Field != first.Violations[j].Field {
				t.Fatalf("violation order changed at index %d", j)
			}
		}
	}
}

func TestValidateClampsWithinTolerance(t *testing.T) {
	raw := map[string]any{
		"material":                 "aluminum",
		"recycling_rate":           1.005,
		"renewable_energy_percent": 100.8,
	}

	desc, verr := Validate(raw, api.AnalysisCircularity)
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if got := desc.Values[schema.ParamRecyclingRate]; got != 1.0 {
		t.Fatalf("expected recycling_rate clamped to 1.0, got %v", got)
	}
	if got := desc.Values[schema.ParamRenewablePercent]; got != 100.0 {
		t.Fatalf("expected renewable clamped to 100, got %v", got)
	}
}

func TestValidateRejectsBeyondTolerance(t *testing.T) {
	raw := map[string]any{
		"material":       "aluminum",
		"recycling_rate": 1.5,
	}

	_, verr := Validate(raw, api.AnalysisCircularity)
	if verr == nil {
		t.Fatal("expected validation error for recycling_rate 1.5")
	}
	if verr.Violations[0].Code != lcaerrors.ErrCodeOutOfRange {
		t.Fatalf("expected OUT_OF_RANGE, got %s", verr.Violations[0].Code)
	}
}

func TestValidateRequiresMaterial(t *testing.T) {
	_, verr := Validate(map[string]any{"production_rate": 10.0}, api.AnalysisFull)
	if verr == nil {
		t.Fatal("expected validation error for missing material")
	}
	found := false
	for _, v := range verr.Violations {
		if v.Field == "material" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a material violation")
	}
}

func TestValidateAcceptsIntegerValues(t *testing.T) {
	raw := map[string]any{
		"material":        "glass",
		"production_rate": 100,
	}
	desc, verr := Validate(raw, api.AnalysisCircularity)
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if desc.Values[schema.ParamProductionRate] != 100 {
		t.Fatalf("expected 100, got %v", desc.Values[schema.ParamProductionRate])
	}
}
