// Package gaps classifies the parameters of a validated process
// description as present-valid, present-invalid, or absent, and emits one
// DataGap per parameter that needs filling.
package gaps

import (
	"fmt"
	"sort"

	"material-lca/internal/materials"
	"material-lca/internal/schema"
	"material-lca/pkg/api"
)

// Detector finds missing and suspect parameters for an analysis type.
type Detector struct{}

func NewDetector() *Detector { return &Detector{} }

// Detect returns the gaps for every required parameter that is absent,
// implausible for the material, or inconsistent with other supplied
// values. The sequence is ordered highest priority first, ties broken by
// schema declaration order, and is deterministic for identical input.
func (d *Detector) Detect(desc api.ProcessDescription, analysisType api.AnalysisType) []api.DataGap {
	var out []api.DataGap

	for _, param := range schema.All() {
		value, present := desc.Get(param.Name)
		if !present {
			// Optional parameters never gap when absent.
			if param.RequiredFor(analysisType) {
				out = append(out, gap(desc.Material, param, api.GapMissing, ""))
			}
			continue
		}
		if g, bad := d.classifyPresent(desc, param, value); bad {
			out = append(out, g)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return schema.DeclarationIndex(out[i].Parameter) < schema.DeclarationIndex(out[j].Parameter)
	})
	return out
}

// classifyPresent checks a supplied value for plausibility and internal
// consistency. Hard range violations never reach here; the validator
// rejects those outright.
func (d *Detector) classifyPresent(desc api.ProcessDescription, param schema.Parameter, value float64) (api.DataGap, bool) {
	if r, ok := materials.ExpectedRange(desc.Material, param.Name); ok {
		if value < r.Min || value > r.Max {
			detail := fmt.Sprintf("%v outside expected range [%v, %v] for %s", value, r.Min, r.Max, desc.Material)
			return gap(desc.Material, param, api.GapOutOfRange, detail), true
		}
	}

	// A process cannot emit more waste mass than it produces.
	if param.Name == schema.ParamWasteGeneration {
		if rate, ok := desc.Get(schema.ParamProductionRate); ok && value > rate {
			detail := fmt.Sprintf("waste %v exceeds production rate %v", value, rate)
			return gap(desc.Material, param, api.GapInconsistent, detail), true
		}
	}

	return api.DataGap{}, false
}

func gap(material api.MaterialType, param schema.Parameter, category api.GapCategory, detail string) api.DataGap {
	return api.DataGap{
		Parameter: param.Name,
		Material:  material,
		Category:  category,
		Priority:  param.Priority(),
		Detail:    detail,
	}
}
