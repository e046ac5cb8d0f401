// Package recommend derives deterministic improvement recommendations
// from a finished analysis. Same input, same output: rules fire off the
// computed metrics, never off randomness or model calls.
package recommend

import (
	"fmt"
	"sort"

	"material-lca/internal/materials"
	"material-lca/internal/metrics"
	"material-lca/internal/schema"
	"material-lca/pkg/api"
	"material-lca/pkg/units"
)

const maxRecommendations = 5

// Build produces prioritized recommendations for the analyzed process.
func Build(material api.MaterialType, params map[string]api.FilledParameter, results map[string]api.MetricValue) []api.Recommendation {
	var out []api.Recommendation
	profile, _ := materials.ProfileFor(material)

	if p, ok := params[schema.ParamRenewablePercent]; ok && p.Value < 50 {
		target := p.Value + 15
		if target > 100 {
			target = 100
		}
		out = append(out, api.Recommendation{
			Priority: "High",
			Category: "Energy",
			Action:   fmt.Sprintf("Increase renewable energy share from %.0f%% to %.0f%%", p.Value, target),
			Impact:   "Cuts the grid-intensity component of the production footprint",
		})
	}

	if p, ok := params[schema.ParamRecyclingRate]; ok && p.Value < profile.RecyclingRate {
		out = append(out, api.Recommendation{
			Priority: "High",
			Category: "Circularity",
			Action: fmt.Sprintf("Raise recycling rate from %.0f%% toward the %s benchmark of %.0f%%",
				units.RatioToPercent(p.Value), material, units.RatioToPercent(profile.RecyclingRate)),
			Impact: "Improves CMUR and reduces end-of-life emissions",
		})
	}

	if transport, ok := results[api.MetricCarbonTransport]; ok {
		if total, ok := results[api.MetricCarbonTotal]; ok && total.Value > 0 {
			share := transport.Value / total.Value
			if share > 0.15 {
				railSavings := transport.Value * (1 - metrics.TransportFactor(metrics.ModeRail)/metrics.TransportFactor(metrics.ModeTruck))
				out = append(out, api.Recommendation{
					Priority: "Medium",
					Category: "Transport",
					Action:   "Shift long-haul transport from truck to rail",
					Impact:   fmt.Sprintf("Up to %.0f kgCO2e saved (%.0f%% of total footprint is transport)", railSavings, share*100),
				})
			}
		}
	}

	if intensity, ok := results[api.MetricEnergyIntensity]; ok && intensity.Value > profile.EnergyPerTon {
		out = append(out, api.Recommendation{
			Priority: "Medium",
			Category: "Energy",
			Action: fmt.Sprintf("Reduce process energy intensity from %.0f toward %.0f kWh/t",
				intensity.Value, profile.EnergyPerTon),
			Impact: "Lowers both energy cost and the production footprint",
		})
	}

	var predicted []string
	for name, p := range params {
		if p.Source == api.SourcePredicted {
			predicted = append(predicted, name)
		}
	}
	if len(predicted) > 0 {
		sort.Strings(predicted)
		out = append(out, api.Recommendation{
			Priority: "Low",
			Category: "Data Quality",
			Action:   fmt.Sprintf("Provide measured values for estimated parameters: %v", predicted),
			Impact:   "Replaces predictions with measurements and raises result confidence",
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if r := priorityRank(out[i].Priority) - priorityRank(out[j].Priority); r != 0 {
			return r > 0
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out
}

func priorityRank(p string) int {
	switch p {
	case "High":
		return 3
	case "Medium":
		return 2
	default:
		return 1
	}
}
