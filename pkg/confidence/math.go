// Package confidence provides confidence score math utilities.
package confidence

import "math"

// Aggregate combines multiple confidence scores.
// Uses geometric mean to penalize low-confidence components.
func Aggregate(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}

	product := 1.0
	for _, s := range scores {
		if s <= 0 {
			return 0
		}
		product *= s
	}

	return math.Pow(product, 1.0/float64(len(scores)))
}

// Decay applies uncertainty decay to a base confidence.
// Each factor reduces confidence by 10%.
func Decay(base float64, factors int) float64 {
	if factors <= 0 {
		return base
	}
	decayRate := 0.9
	return base * math.Pow(decayRate, float64(factors))
}

// Chain discounts a score derived from predicted inputs. The result is
// strictly below both the base score and the weakest input confidence, so
// predictions built on predictions always lose reliability.
func Chain(base float64, inputConfidences []float64) float64 {
	if len(inputConfidences) == 0 {
		return Clamp(base)
	}
	lowest := 1.0
	for _, c := range inputConfidences {
		if c < lowest {
			lowest = c
		}
	}
	return Clamp(Decay(base*lowest, 1))
}

// AboveThreshold checks if confidence meets minimum requirement.
func AboveThreshold(score, threshold float64) bool {
	return score >= threshold
}

// WeightedAverage calculates weighted confidence.
func WeightedAverage(scores []float64, weights []float64) float64 {
	if len(scores) == 0 || len(scores) != len(weights) {
		return 0
	}

	var sum, weightSum float64
	for i, s := range scores {
		sum += s * weights[i]
		weightSum += weights[i]
	}

	if weightSum == 0 {
		return 0
	}
	return sum / weightSum
}

// Clamp ensures confidence is in valid range [0, 1].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Default confidence bands.
const (
	Measured        = 1.0
	HighConfidence  = 0.95
	HeuristicBase   = 0.60
	DefaultFallback = 0.30

	// Floor below which dependent metrics are annotated low-confidence.
	// Results are still returned, never withheld.
	Floor = 0.30
)
