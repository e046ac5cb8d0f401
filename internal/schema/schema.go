// Package schema declares the recognized process parameters: units, valid
// ranges, clamp policies, analysis-type requirements, and the downstream
// metrics each parameter feeds. The declaration order here is load-bearing:
// it breaks priority ties in gap ordering.
package schema

import (
	"material-lca/pkg/api"
	"material-lca/pkg/units"
)

// Parameter names. These are the only names the validator accepts;
// unrecognized names are rejected, never silently stored.
const (
	ParamProductionRate   = "production_rate"
	ParamEnergyUse        = "energy_use"
	ParamWaterUse         = "water_use"
	ParamTransportDist    = "transport_distance"
	ParamRecyclingRate    = "recycling_rate"
	ParamRenewablePercent = "renewable_energy_percent"
	ParamWasteGeneration  = "waste_generation"
	ParamProcessTemp      = "process_temperature"
)

// Parameter declares one recognized numeric process parameter.
type Parameter struct {
	Name string
	Unit units.Unit
	Min  float64
	Max  float64
	// ClampTol is the tolerance band outside [Min,Max] treated as a
	// recoverable rounding error and clamped. Values beyond it are
	// rejected as semantically invalid.
	ClampTol float64
	// RequiredBy lists the analysis types that cannot run without this
	// parameter. Parameters absent from a type's list are opportunistic.
	RequiredBy []api.AnalysisType
	// UsedBy lists downstream metrics consuming the parameter. Its length
	// is the gap priority.
	UsedBy []string
}

// RequiredFor reports whether the parameter is mandatory for the type.
func (p Parameter) RequiredFor(t api.AnalysisType) bool {
	for _, r := range p.RequiredBy {
		if r == t {
			return true
		}
	}
	return false
}

// Priority is the number of downstream metrics depending on the parameter.
func (p Parameter) Priority() int { return len(p.UsedBy) }

var allTypes = []api.AnalysisType{api.AnalysisEnvironmental, api.AnalysisCircularity, api.AnalysisFull}
var envAndFull = []api.AnalysisType{api.AnalysisEnvironmental, api.AnalysisFull}

// registry holds every parameter in declaration order.
var registry = []Parameter{
	{
		Name: ParamProductionRate, Unit: units.UnitTons,
		Min: 0, Max: 1e6,
		RequiredBy: allTypes,
		UsedBy: []string{
			api.MetricCarbonTotal, api.MetricEnergyIntensity,
			api.MetricWaterIntensity, api.MetricWasteRate, api.MetricCMUR,
		},
	},
	{
		Name: ParamEnergyUse, Unit: units.UnitKWh,
		Min: 0, Max: 1e9,
		RequiredBy: envAndFull,
		UsedBy:     []string{api.MetricCarbonTotal, api.MetricEnergyIntensity},
	},
	{
		Name: ParamWaterUse, Unit: units.UnitLiters,
		Min: 0, Max: 1e9,
		RequiredBy: envAndFull,
		UsedBy:     []string{api.MetricWaterIntensity},
	},
	{
		Name: ParamTransportDist, Unit: units.UnitKilometers,
		Min: 0, Max: 2e4,
		RequiredBy: envAndFull,
		UsedBy:     []string{api.MetricCarbonTotal},
	},
	{
		Name: ParamRecyclingRate, Unit: units.UnitRatio,
		Min: 0, Max: 1, ClampTol: 0.01,
		RequiredBy: allTypes,
		UsedBy: []string{
			api.MetricCarbonTotal, api.MetricCMUR,
			api.MetricRecoveryRate, api.MetricCEIndex,
		},
	},
	{
		Name: ParamRenewablePercent, Unit: units.UnitPercent,
		Min: 0, Max: 100, ClampTol: 1.0,
		RequiredBy: allTypes,
		UsedBy:     []string{api.MetricCarbonTotal, api.MetricCEIndex},
	},
	{
		Name: ParamWasteGeneration, Unit: units.UnitTons,
		Min: 0, Max: 1e6,
		UsedBy: []string{api.MetricWasteRate},
	},
	{
		Name: ParamProcessTemp, Unit: units.UnitCelsius,
		Min: -50, Max: 3000,
	},
}

var byName = func() map[string]Parameter {
	m := make(map[string]Parameter, len(registry))
	for _, p := range registry {
		m[p.Name] = p
	}
	return m
}()

// Lookup returns the declared parameter and whether the name is recognized.
func Lookup(name string) (Parameter, bool) {
	p, ok := byName[name]
	return p, ok
}

// All returns every parameter in declaration order.
func All() []Parameter {
	out := make([]Parameter, len(registry))
	copy(out, registry)
	return out
}

// RequiredFor returns the parameters mandatory for the analysis type, in
// declaration order.
func RequiredFor(t api.AnalysisType) []Parameter {
	var out []Parameter
	for _, p := range registry {
		if p.RequiredFor(t) {
			out = append(out, p)
		}
	}
	return out
}

// DeclarationIndex returns the position of the parameter in the registry,
// used for deterministic tie-breaking. Unknown names sort last.
func DeclarationIndex(name string) int {
	for i, p := range registry {
		if p.Name == name {
			return i
		}
	}
	return len(registry)
}

// RangeWidth is the span of the valid range, used to normalize deviation
// when scoring feedback accuracy.
func (p Parameter) RangeWidth() float64 { return p.Max - p.Min }
