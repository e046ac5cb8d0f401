package metrics

import "material-lca/pkg/api"

// Emission factor tables, version factors/v1. Fixed, documented constants:
// representative magnitudes for the supported material classes, not a
// claim of authoritative inventory data.

// materialProcessFactor is the non-energy process emission share in
// kgCO2e per ton of output (e.g. anode consumption for aluminum,
// calcination for glass).
var materialProcessFactor = map[api.MaterialType]float64{
	api.MaterialAluminum: 1500,
	api.MaterialCopper:   900,
	api.MaterialSteel:    1800,
	api.MaterialPlastic:  2200,
	api.MaterialGlass:    600,
	api.MaterialPaper:    700,
}

// endOfLifeFactor is kgCO2e per ton of material NOT recycled (landfill,
// incineration, residue processing).
var endOfLifeFactor = map[api.MaterialType]float64{
	api.MaterialAluminum: 400,
	api.MaterialCopper:   300,
	api.MaterialSteel:    200,
	api.MaterialPlastic:  2800,
	api.MaterialGlass:    50,
	api.MaterialPaper:    1000,
}

// Grid carbon intensity in kgCO2e per kWh.
const (
	gridIntensityFossil    = 0.45
	gridIntensityRenewable = 0.02
)

// TransportMode for the transport emission table.
type TransportMode string

const (
	ModeTruck TransportMode = "truck"
	ModeRail  TransportMode = "rail"
	ModeShip  TransportMode = "ship"
)

// transportFactor is kgCO2e per ton-km by mode. Analyses assume truck
// unless told otherwise; the recommendations layer uses the cheaper modes
// to quantify savings.
var transportFactor = map[TransportMode]float64{
	ModeTruck: 0.12,
	ModeRail:  0.030,
	ModeShip:  0.015,
}

const defaultMaterialFactor = 1000.0
const defaultEOLFactor = 800.0

// ProcessFactor returns the process emission factor for a material.
func ProcessFactor(m api.MaterialType) float64 {
	if f, ok := materialProcessFactor[m]; ok {
		return f
	}
	return defaultMaterialFactor
}

// EOLFactor returns the end-of-life emission factor for a material.
func EOLFactor(m api.MaterialType) float64 {
	if f, ok := endOfLifeFactor[m]; ok {
		return f
	}
	return defaultEOLFactor
}

// GridIntensity blends fossil and renewable grid intensity by the
// renewable-energy share (a [0,1] ratio).
func GridIntensity(renewableShare float64) float64 {
	if renewableShare < 0 {
		renewableShare = 0
	}
	if renewableShare > 1 {
		renewableShare = 1
	}
	return renewableShare*gridIntensityRenewable + (1-renewableShare)*gridIntensityFossil
}

// TransportFactor returns kgCO2e per ton-km for a mode, defaulting to
// truck for unknown modes.
func TransportFactor(mode TransportMode) float64 {
	if f, ok := transportFactor[mode]; ok {
		return f
	}
	return transportFactor[ModeTruck]
}
