package api

// Metric names produced by the engine. Deterministic metrics come from the
// calculators; scored metrics come from the statistical predictor adapter.
const (
	MetricCarbonTotal      = "carbon_footprint_total"
	MetricCarbonProduction = "carbon_footprint_production"
	MetricCarbonTransport  = "carbon_footprint_transport"
	MetricCarbonEndOfLife  = "carbon_footprint_endoflife"
	MetricEnergyIntensity  = "energy_intensity"
	MetricWaterIntensity   = "water_intensity"
	MetricWasteRate        = "waste_generation_rate"

	MetricCMUR         = "cmur"
	MetricRecoveryRate = "material_recovery_rate"
	MetricCEIndex      = "circular_economy_index"

	MetricEnvironmentalScore = "environmental_impact_score"
	MetricCircularityScore   = "circularity_score"
	MetricProcessClass       = "process_classification"
)

// MetricsFor returns the metric set an analysis type must produce.
// waste_generation_rate is opportunistic: computed when waste_generation is
// supplied, never demanded.
func MetricsFor(t AnalysisType) []string {
	env := []string{
		MetricCarbonTotal, MetricCarbonProduction, MetricCarbonTransport,
		MetricCarbonEndOfLife, MetricEnergyIntensity, MetricWaterIntensity,
		MetricEnvironmentalScore,
	}
	circ := []string{
		MetricCMUR, MetricRecoveryRate, MetricCEIndex, MetricCircularityScore,
	}
	switch t {
	case AnalysisEnvironmental:
		return env
	case AnalysisCircularity:
		return circ
	case AnalysisFull:
		out := append(append([]string{}, env...), circ...)
		return append(out, MetricProcessClass)
	}
	return nil
}
