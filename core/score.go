package core

import (
	"math"

	"github.com/nutrily/rationer/schema"
)

// WeightedRMSE computes the weighted root-mean-square error between a
// target and an achieved nutrient total. Each squared difference is scaled
// by its nutrient's weight; the mean runs over the number of nutrient
// kinds, not the sum of weights. Lower is better; 0 is a perfect match.
func WeightedRMSE(target, achieved schema.Vector, weights schema.WeightMap) float64 {
	var sum float64
	for k := range schema.NumNutrients {
		diff := target[k] - achieved[k]
		sum += weights[k] * diff * diff
	}
	return math.Sqrt(sum / float64(schema.NumNutrients))
}
