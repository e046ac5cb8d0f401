// Package metrics computes the deterministic life-cycle metrics: carbon
// footprint components, energy and water intensity, and waste generation
// rate. Every formula is a pure function of a fixed named subset of the
// process parameters; when any input of that subset is absent the metric
// is deferred to prediction, never computed with a default.
package metrics

import (
	"sort"

	"material-lca/internal/schema"
	"material-lca/pkg/api"
	"material-lca/pkg/units"
)

// Calculator evaluates closed-form LCA metrics.
type Calculator struct{}

func NewCalculator() *Calculator { return &Calculator{} }

// Compute evaluates every deterministic metric whose inputs are present in
// params, returning metric name → value with provenance. Negative physical
// quantities never reach this point; the validator rejects them.
func (c *Calculator) Compute(material api.MaterialType, params map[string]api.FilledParameter) map[string]api.MetricValue {
	out := make(map[string]api.MetricValue)

	if mv, ok := c.carbonFootprint(material, params); ok {
		for name, m := range mv {
			out[name] = m
		}
	}
	if m, ok := c.energyIntensity(params); ok {
		out[api.MetricEnergyIntensity] = m
	}
	if m, ok := c.waterIntensity(params); ok {
		out[api.MetricWaterIntensity] = m
	}
	if m, ok := c.wasteRate(params); ok {
		out[api.MetricWasteRate] = m
	}
	return out
}

// carbonFootprint sums production, transport, and end-of-life components.
// Inputs: production_rate, energy_use, transport_distance, recycling_rate,
// renewable_energy_percent.
func (c *Calculator) carbonFootprint(material api.MaterialType, params map[string]api.FilledParameter) (map[string]api.MetricValue, bool) {
	names := []string{
		schema.ParamProductionRate, schema.ParamEnergyUse,
		schema.ParamTransportDist, schema.ParamRecyclingRate,
		schema.ParamRenewablePercent,
	}
	inputs, ok := gather(params, names)
	if !ok {
		return nil, false
	}

	rate := inputs[schema.ParamProductionRate].Value
	energy := inputs[schema.ParamEnergyUse].Value
	distance := inputs[schema.ParamTransportDist].Value
	recycling := inputs[schema.ParamRecyclingRate].Value
	renewable := units.PercentToRatio(inputs[schema.ParamRenewablePercent].Value)

	production := energy*GridIntensity(renewable) + rate*ProcessFactor(material)
	transport := rate * distance * TransportFactor(ModeTruck)
	endOfLife := rate * (1 - recycling) * EOLFactor(material)

	out := make(map[string]api.MetricValue, 4)
	out[api.MetricCarbonProduction] = metric(production, units.UnitKgCO2e,
		pick(inputs, schema.ParamProductionRate, schema.ParamEnergyUse, schema.ParamRenewablePercent))
	out[api.MetricCarbonTransport] = metric(transport, units.UnitKgCO2e,
		pick(inputs, schema.ParamProductionRate, schema.ParamTransportDist))
	out[api.MetricCarbonEndOfLife] = metric(endOfLife, units.UnitKgCO2e,
		pick(inputs, schema.ParamProductionRate, schema.ParamRecyclingRate))
	out[api.MetricCarbonTotal] = metric(production+transport+endOfLife, units.UnitKgCO2e, values(inputs))
	return out, true
}

// energyIntensity is energy_use / production_rate in kWh per ton.
func (c *Calculator) energyIntensity(params map[string]api.FilledParameter) (api.MetricValue, bool) {
	inputs, ok := gather(params, []string{schema.ParamEnergyUse, schema.ParamProductionRate})
	if !ok {
		return api.MetricValue{}, false
	}
	return ratioMetric(
		inputs[schema.ParamEnergyUse].Value,
		inputs[schema.ParamProductionRate].Value,
		units.UnitKWhPerTon, values(inputs),
	), true
}

// waterIntensity is water_use / production_rate in liters per ton.
func (c *Calculator) waterIntensity(params map[string]api.FilledParameter) (api.MetricValue, bool) {
	inputs, ok := gather(params, []string{schema.ParamWaterUse, schema.ParamProductionRate})
	if !ok {
		return api.MetricValue{}, false
	}
	return ratioMetric(
		inputs[schema.ParamWaterUse].Value,
		inputs[schema.ParamProductionRate].Value,
		units.UnitLitersPerTon, values(inputs),
	), true
}

// wasteRate is waste_generation / production_rate, opportunistic: only
// computed when waste_generation was supplied or filled.
func (c *Calculator) wasteRate(params map[string]api.FilledParameter) (api.MetricValue, bool) {
	inputs, ok := gather(params, []string{schema.ParamWasteGeneration, schema.ParamProductionRate})
	if !ok {
		return api.MetricValue{}, false
	}
	return ratioMetric(
		inputs[schema.ParamWasteGeneration].Value,
		inputs[schema.ParamProductionRate].Value,
		units.UnitRatio, values(inputs),
	), true
}

// gather collects the named inputs, reporting ok=false when any is absent
// so the metric defers to prediction.
func gather(params map[string]api.FilledParameter, names []string) (map[string]api.FilledParameter, bool) {
	out := make(map[string]api.FilledParameter, len(names))
	for _, n := range names {
		p, ok := params[n]
		if !ok {
			return nil, false
		}
		out[n] = p
	}
	return out, true
}

func pick(inputs map[string]api.FilledParameter, names ...string) []api.FilledParameter {
	out := make([]api.FilledParameter, 0, len(names))
	for _, n := range names {
		out = append(out, inputs[n])
	}
	return out
}

func values(inputs map[string]api.FilledParameter) []api.FilledParameter {
	out := make([]api.FilledParameter, 0, len(inputs))
	for _, p := range inputs {
		out = append(out, p)
	}
	return out
}

func metric(value float64, unit units.Unit, inputs []api.FilledParameter) api.MetricValue {
	source, conf := api.DeriveProvenance(inputs)
	names := make([]string, 0, len(inputs))
	for _, in := range inputs {
		names = append(names, in.Name)
	}
	sort.Strings(names)
	return api.MetricValue{Value: value, Unit: string(unit), Source: source, Confidence: conf, Inputs: names}
}

// ratioMetric guards structural zero denominators: the metric is reported
// as 0 with an undefined-input flag instead of a division error.
func ratioMetric(numerator, denominator float64, unit units.Unit, inputs []api.FilledParameter) api.MetricValue {
	m := metric(0, unit, inputs)
	if denominator == 0 {
		m.Flags = append(m.Flags, api.FlagUndefinedInput)
		return m
	}
	m.Value = numerator / denominator
	return m
}
