package api

import "material-lca/pkg/confidence"

// DeriveProvenance determines the source tag and confidence of a value
// computed from the given input parameters. A formula over purely measured
// inputs is "computed" at full confidence; once any input was predicted,
// the result is "predicted" and its confidence is chained strictly below
// the weakest input.
func DeriveProvenance(inputs []FilledParameter) (Source, float64) {
	var predicted []float64
	for _, in := range inputs {
		if in.Source == SourcePredicted {
			predicted = append(predicted, in.Confidence)
		}
	}
	if len(predicted) == 0 {
		return SourceComputed, confidence.Measured
	}
	return SourcePredicted, confidence.Chain(confidence.Measured, predicted)
}
