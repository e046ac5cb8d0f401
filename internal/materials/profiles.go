// Package materials holds immutable reference data keyed by material
// class: typical parameter profiles used as heuristic fallbacks when no
// trained predictor applies, and expected ranges used to flag suspect
// measured values. Loaded once, never mutated at runtime.
package materials

import (
	"material-lca/internal/schema"
	"material-lca/pkg/api"
	"material-lca/pkg/confidence"
)

// Profile describes typical process characteristics for a material class.
// Extensive quantities are expressed per ton of output so the gap filler
// can scale them by the production rate.
type Profile struct {
	EnergyPerTon       float64 // kWh/t
	WaterPerTon        float64 // L/t
	TypicalTransportKm float64
	RecyclingRate      float64 // ratio
	RenewablePercent   float64
	WastePerTon        float64 // t waste per t output
	RecoveryEfficiency float64 // share of collected material actually recovered
	BaseConfidence     float64
}

// profiles are representative industry-average values, version tagged as
// heuristics/v1. They are fallback estimates, not inventory data.
var profiles = map[api.MaterialType]Profile{
	api.MaterialAluminum: {
		EnergyPerTon: 15000, WaterPerTon: 1500, TypicalTransportKm: 550,
		RecyclingRate: 0.76, RenewablePercent: 35, WastePerTon: 0.08,
		RecoveryEfficiency: 0.90, BaseConfidence: 0.65,
	},
	api.MaterialCopper: {
		EnergyPerTon: 3800, WaterPerTon: 2200, TypicalTransportKm: 600,
		RecyclingRate: 0.65, RenewablePercent: 28, WastePerTon: 0.12,
		RecoveryEfficiency: 0.88, BaseConfidence: 0.62,
	},
	api.MaterialSteel: {
		EnergyPerTon: 5500, WaterPerTon: 2800, TypicalTransportKm: 450,
		RecyclingRate: 0.85, RenewablePercent: 22, WastePerTon: 0.10,
		RecoveryEfficiency: 0.92, BaseConfidence: 0.68,
	},
	api.MaterialPlastic: {
		EnergyPerTon: 1900, WaterPerTon: 900, TypicalTransportKm: 500,
		RecyclingRate: 0.24, RenewablePercent: 18, WastePerTon: 0.15,
		RecoveryEfficiency: 0.75, BaseConfidence: 0.58,
	},
	api.MaterialGlass: {
		EnergyPerTon: 1600, WaterPerTon: 700, TypicalTransportKm: 400,
		RecyclingRate: 0.74, RenewablePercent: 26, WastePerTon: 0.06,
		RecoveryEfficiency: 0.85, BaseConfidence: 0.63,
	},
	api.MaterialPaper: {
		EnergyPerTon: 1300, WaterPerTon: 12000, TypicalTransportKm: 350,
		RecyclingRate: 0.68, RenewablePercent: 45, WastePerTon: 0.09,
		RecoveryEfficiency: 0.80, BaseConfidence: 0.63,
	},
}

// fallback profile for requests whose material has no entry. Conservative
// mid-range values at reduced confidence.
var genericProfile = Profile{
	EnergyPerTon: 4000, WaterPerTon: 2000, TypicalTransportKm: 500,
	RecyclingRate: 0.50, RenewablePercent: 25, WastePerTon: 0.10,
	RecoveryEfficiency: 0.80, BaseConfidence: confidence.DefaultFallback,
}

// ProfileFor returns the heuristic profile for a material and whether a
// material-specific entry exists. Callers treat ok=false as the global
// default tier.
func ProfileFor(m api.MaterialType) (Profile, bool) {
	if p, ok := profiles[m]; ok {
		return p, true
	}
	return genericProfile, false
}

// Range is an expected value band for a (material, parameter) pair.
type Range struct {
	Min, Max float64
}

// expectedRanges flag measured values that are technically valid but
// implausible for the material, producing out-of-range gaps.
var expectedRanges = map[api.MaterialType]map[string]Range{
	api.MaterialAluminum: {
		schema.ParamRecyclingRate: {Min: 0.40, Max: 0.98},
		schema.ParamEnergyUse:     {Min: 0, Max: 5e7},
	},
	api.MaterialCopper: {
		schema.ParamRecyclingRate: {Min: 0.30, Max: 0.95},
	},
	api.MaterialSteel: {
		schema.ParamRecyclingRate: {Min: 0.50, Max: 0.99},
	},
	api.MaterialPlastic: {
		schema.ParamRecyclingRate: {Min: 0.0, Max: 0.70},
	},
	api.MaterialGlass: {
		schema.ParamRecyclingRate: {Min: 0.30, Max: 0.95},
	},
	api.MaterialPaper: {
		schema.ParamRecyclingRate: {Min: 0.30, Max: 0.90},
	},
}

// ExpectedRange returns the plausible band for a parameter of a material,
// when one is declared.
func ExpectedRange(m api.MaterialType, param string) (Range, bool) {
	if byParam, ok := expectedRanges[m]; ok {
		if r, ok := byParam[param]; ok {
			return r, true
		}
	}
	return Range{}, false
}

// HeuristicValue estimates a parameter from the material profile, scaling
// per-ton quantities by productionRate when positive. ok=false means the
// parameter has no heuristic and the caller must use the global default.
func HeuristicValue(m api.MaterialType, param string, productionRate float64) (float64, bool) {
	p, _ := ProfileFor(m)
	switch param {
	case schema.ParamEnergyUse:
		if productionRate > 0 {
			return p.EnergyPerTon * productionRate, true
		}
		return 0, false
	case schema.ParamWaterUse:
		if productionRate > 0 {
			return p.WaterPerTon * productionRate, true
		}
		return 0, false
	case schema.ParamWasteGeneration:
		if productionRate > 0 {
			return p.WastePerTon * productionRate, true
		}
		return 0, false
	case schema.ParamTransportDist:
		return p.TypicalTransportKm, true
	case schema.ParamRecyclingRate:
		return p.RecyclingRate, true
	case schema.ParamRenewablePercent:
		return p.RenewablePercent, true
	}
	return 0, false
}

// GlobalDefault is the last-resort estimate for a parameter, independent
// of material. Values sit at the low-confidence floor.
func GlobalDefault(param string) (float64, bool) {
	switch param {
	case schema.ParamProductionRate:
		return 100, true
	case schema.ParamEnergyUse:
		return 4000 * 100, true
	case schema.ParamWaterUse:
		return 2000 * 100, true
	case schema.ParamTransportDist:
		return 500, true
	case schema.ParamRecyclingRate:
		return 0.50, true
	case schema.ParamRenewablePercent:
		return 25, true
	case schema.ParamWasteGeneration:
		return 10, true
	case schema.ParamProcessTemp:
		return 800, true
	}
	return 0, false
}
