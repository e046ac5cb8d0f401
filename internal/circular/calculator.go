// Package circular computes circularity metrics: the Circular Material
// Use Rate, material recovery rate, and the composite circular-economy
// index.
package circular

import (
	"sort"

	"material-lca/internal/materials"
	"material-lca/internal/schema"
	"material-lca/pkg/api"
	"material-lca/pkg/confidence"
	"material-lca/pkg/units"
)

// Composite index weights, version ce-index/v1. Recycling dominates, as in
// the upstream scoring emphasis; the three weights sum to 1.
const (
	WeightRecycling = 0.40
	WeightRecovery  = 0.35
	WeightRenewable = 0.25
)

// Calculator evaluates circularity metrics.
type Calculator struct{}

func NewCalculator() *Calculator { return &Calculator{} }

// Compute evaluates every circularity metric whose inputs are present,
// returning metric name → value with provenance.
func (c *Calculator) Compute(material api.MaterialType, params map[string]api.FilledParameter) map[string]api.MetricValue {
	out := make(map[string]api.MetricValue)

	if m, ok := c.cmur(params); ok {
		out[api.MetricCMUR] = m
	}
	if m, ok := c.recoveryRate(material, params); ok {
		out[api.MetricRecoveryRate] = m
	}
	if m, ok := c.ceIndex(material, params); ok {
		out[api.MetricCEIndex] = m
	}
	return out
}

// cmur is the ratio of recycled/reused input mass to total input mass,
// bounded to [0,1]. Zero total input mass yields CMUR 0 with an explicit
// undefined-input flag rather than a division error.
func (c *Calculator) cmur(params map[string]api.FilledParameter) (api.MetricValue, bool) {
	rate, okRate := params[schema.ParamProductionRate]
	recycling, okRec := params[schema.ParamRecyclingRate]
	if !okRate || !okRec {
		return api.MetricValue{}, false
	}

	m := derived(0, units.UnitRatio, rate, recycling)
	totalMass := rate.Value
	if totalMass == 0 {
		m.Flags = append(m.Flags, api.FlagUndefinedInput)
		return m, true
	}
	recycledMass := totalMass * recycling.Value
	m.Value = confidence.Clamp(recycledMass / totalMass)
	return m, true
}

// recoveryRate is the recycling rate discounted by the material's recovery
// efficiency: collected material that is lost in reprocessing does not
// count as recovered.
func (c *Calculator) recoveryRate(material api.MaterialType, params map[string]api.FilledParameter) (api.MetricValue, bool) {
	recycling, ok := params[schema.ParamRecyclingRate]
	if !ok {
		return api.MetricValue{}, false
	}
	profile, _ := materials.ProfileFor(material)
	m := derived(confidence.Clamp(recycling.Value*profile.RecoveryEfficiency), units.UnitRatio, recycling)
	return m, true
}

// ceIndex is the weighted composite of recycling rate, recovery rate, and
// renewable-energy share, reported on a 0-100 scale.
func (c *Calculator) ceIndex(material api.MaterialType, params map[string]api.FilledParameter) (api.MetricValue, bool) {
	recycling, okRec := params[schema.ParamRecyclingRate]
	renewable, okRen := params[schema.ParamRenewablePercent]
	if !okRec || !okRen {
		return api.MetricValue{}, false
	}
	profile, _ := materials.ProfileFor(material)
	recovery := confidence.Clamp(recycling.Value * profile.RecoveryEfficiency)

	index := confidence.WeightedAverage(
		[]float64{recycling.Value, recovery, units.PercentToRatio(renewable.Value)},
		[]float64{WeightRecycling, WeightRecovery, WeightRenewable},
	)
	m := derived(units.RatioToPercent(index), units.UnitScore, recycling, renewable)
	return m, true
}

func derived(value float64, unit units.Unit, inputs ...api.FilledParameter) api.MetricValue {
	source, conf := api.DeriveProvenance(inputs)
	names := make([]string, 0, len(inputs))
	for _, in := range inputs {
		names = append(names, in.Name)
	}
	sort.Strings(names)
	return api.MetricValue{Value: value, Unit: string(unit), Source: source, Confidence: conf, Inputs: names}
}

// RatingFor maps a 0-100 composite score onto the qualitative bands used
// in reports.
func RatingFor(score float64) api.Rating {
	switch {
	case score >= 80:
		return api.RatingExcellent
	case score >= 60:
		return api.RatingGood
	case score >= 40:
		return api.RatingFair
	default:
		return api.RatingPoor
	}
}
