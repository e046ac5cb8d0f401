// Package api defines the contract types exchanged between the analysis
// engine and its boundary adapters (HTTP, CLI, storage).
package api

// AnalysisType selects which metric set an analysis run must produce.
type AnalysisType string

const (
	AnalysisEnvironmental AnalysisType = "environmental"
	AnalysisCircularity   AnalysisType = "circularity"
	AnalysisFull          AnalysisType = "full"
)

// Valid reports whether t is a recognized analysis type.
func (t AnalysisType) Valid() bool {
	switch t {
	case AnalysisEnvironmental, AnalysisCircularity, AnalysisFull:
		return true
	}
	return false
}

// MaterialType identifies the material class of a process.
type MaterialType string

const (
	MaterialAluminum MaterialType = "aluminum"
	MaterialCopper   MaterialType = "copper"
	MaterialSteel    MaterialType = "steel"
	MaterialPlastic  MaterialType = "plastic"
	MaterialGlass    MaterialType = "glass"
	MaterialPaper    MaterialType = "paper"
)

// KnownMaterials lists every recognized material class in declaration order.
var KnownMaterials = []MaterialType{
	MaterialAluminum, MaterialCopper, MaterialSteel,
	MaterialPlastic, MaterialGlass, MaterialPaper,
}

// Known reports whether m is a recognized material class.
func (m MaterialType) Known() bool {
	for _, k := range KnownMaterials {
		if m == k {
			return true
		}
	}
	return false
}

// ProcessDescription is a normalized, validated view of one industrial
// process. Numeric parameters absent from the request are absent from the
// map rather than zero-valued, so downstream components can distinguish
// "not provided" from "measured as zero".
type ProcessDescription struct {
	Material MaterialType       `json:"material"`
	Stage    string             `json:"process_stage,omitempty"`
	Values   map[string]float64 `json:"values"`
}

// Has reports whether the named parameter carries a value.
func (p ProcessDescription) Has(name string) bool {
	_, ok := p.Values[name]
	return ok
}

// Get returns the named parameter value and whether it is present.
func (p ProcessDescription) Get(name string) (float64, bool) {
	v, ok := p.Values[name]
	return v, ok
}

// Clone returns a deep copy, used when the gap filler overlays predicted
// values without mutating the caller's description.
func (p ProcessDescription) Clone() ProcessDescription {
	out := ProcessDescription{Material: p.Material, Stage: p.Stage, Values: make(map[string]float64, len(p.Values))}
	for k, v := range p.Values {
		out.Values[k] = v
	}
	return out
}
