// Package units provides canonical unit types and conversions for process
// parameters.
package units

// Unit represents a measurable quantity.
type Unit string

const (
	// Mass and throughput
	UnitTons        Unit = "t"
	UnitTonsPerDay  Unit = "t/day"
	UnitKilograms   Unit = "kg"

	// Energy
	UnitKWh       Unit = "kWh"
	UnitMWh       Unit = "MWh"
	UnitKWhPerTon Unit = "kWh/t"

	// Water
	UnitLiters       Unit = "L"
	UnitCubicMeters  Unit = "m3"
	UnitLitersPerTon Unit = "L/t"

	// Transport
	UnitKilometers Unit = "km"
	UnitTonKm      Unit = "t-km"

	// Emissions
	UnitKgCO2e       Unit = "kgCO2e"
	UnitKgCO2ePerKWh Unit = "kgCO2e/kWh"

	// Dimensionless
	UnitRatio   Unit = "ratio"   // [0,1]
	UnitPercent Unit = "percent" // [0,100]
	UnitCelsius Unit = "degC"
	UnitScore   Unit = "score" // [0,100] composite
)

// KgPerTon converts tons to kilograms.
const KgPerTon = 1000.0

// TonsToKg converts a mass in tons to kilograms.
func TonsToKg(t float64) float64 { return t * KgPerTon }

// KgToTons converts a mass in kilograms to tons.
func KgToTons(kg float64) float64 { return kg / KgPerTon }

// PercentToRatio converts a [0,100] percentage to a [0,1] ratio.
func PercentToRatio(p float64) float64 { return p / 100.0 }

// RatioToPercent converts a [0,1] ratio to a [0,100] percentage.
func RatioToPercent(r float64) float64 { return r * 100.0 }

// MWhToKWh converts megawatt-hours to kilowatt-hours.
func MWhToKWh(mwh float64) float64 { return mwh * 1000.0 }

// CubicMetersToLiters converts cubic meters to liters.
func CubicMetersToLiters(m3 float64) float64 { return m3 * 1000.0 }

// GramsToKg converts grams to kilograms.
func GramsToKg(g float64) float64 { return g / 1000.0 }
