// Package validate normalizes raw process input against the parameter
// schema. Validation is a pure function: it reports every violation at
// once and has no side effects.
package validate

import (
	"fmt"
	"sort"

	"material-lca/internal/schema"
	"material-lca/pkg/api"
	lcaerrors "material-lca/pkg/errors"
)

// Reserved non-numeric fields accepted alongside schema parameters.
const (
	fieldMaterial = "material"
	fieldStage    = "process_stage"
)

// Validate normalizes a raw parameter mapping into a ProcessDescription.
// Recoverable out-of-range values (within the schema clamp tolerance) are
// clamped; semantically invalid values and unrecognized names are rejected.
// The returned ValidationError is nil when every field passed.
func Validate(raw map[string]any, analysisType api.AnalysisType) (api.ProcessDescription, *lcaerrors.ValidationError) {
	verr := &lcaerrors.ValidationError{}
	desc := api.ProcessDescription{Values: make(map[string]float64)}

	if !analysisType.Valid() {
		verr.Add("analysis_type", lcaerrors.ErrCodeWrongType,
			fmt.Sprintf("unknown analysis type %q", analysisType))
	}

	// Deterministic violation ordering regardless of map iteration.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		value := raw[name]
		switch name {
		case fieldMaterial:
			mat, ok := value.(string)
			if !ok {
				verr.Add(name, lcaerrors.ErrCodeWrongType, "material must be a string")
				continue
			}
			m := api.MaterialType(mat)
			if !m.Known() {
				verr.Add(name, lcaerrors.ErrCodeUnknownMaterial,
					fmt.Sprintf("unrecognized material %q", mat))
				continue
			}
			desc.Material = m
		case fieldStage:
			stage, ok := value.(string)
			if !ok {
				verr.Add(name, lcaerrors.ErrCodeWrongType, "process_stage must be a string")
				continue
			}
			desc.Stage = stage
		default:
			param, known := schema.Lookup(name)
			if !known {
				verr.Add(name, lcaerrors.ErrCodeUnknownParameter,
					fmt.Sprintf("unrecognized parameter %q", name))
				continue
			}
			num, ok := toFloat(value)
			if !ok {
				verr.Add(name, lcaerrors.ErrCodeWrongType,
					fmt.Sprintf("%s must be numeric (%s)", name, param.Unit))
				continue
			}
			normalized, ok := normalize(param, num)
			if !ok {
				code := lcaerrors.ErrCodeOutOfRange
				if num < 0 && param.Min >= 0 {
					code = lcaerrors.ErrCodeNegativeQuantity
				}
				verr.Add(name, code,
					fmt.Sprintf("%v outside valid range [%v, %v] %s", num, param.Min, param.Max, param.Unit))
				continue
			}
			desc.Values[name] = normalized
		}
	}

	if _, hasMaterial := raw[fieldMaterial]; !hasMaterial {
		verr.Add(fieldMaterial, lcaerrors.ErrCodeUnknownMaterial, "material is required")
	}

	if verr.HasViolations() {
		return api.ProcessDescription{}, verr
	}
	return desc, nil
}

// normalize clamps values inside the schema tolerance band and rejects the
// rest. Returns the normalized value and whether it is usable.
func normalize(p schema.Parameter, v float64) (float64, bool) {
	if v >= p.Min && v <= p.Max {
		return v, true
	}
	if v < p.Min && p.Min-v <= p.ClampTol {
		return p.Min, true
	}
	if v > p.Max && v-p.Max <= p.ClampTol {
		return p.Max, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
