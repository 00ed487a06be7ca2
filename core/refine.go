package core

import (
	"math"

	"github.com/nutrily/rationer/schema"
)

// DefaultMaxIterations bounds refinement passes within a single trial.
const DefaultMaxIterations = 10

// runTrial drives the residual toward zero for one product visitation
// order, translating the solver's continuous increments into discrete,
// capacity-bounded allocations. It returns assigned grams per product
// (aligned with products) and the final residual.
//
// Each pass filters eligible products, scales the residual by the pacing
// factor alpha, solves for increments, snaps them to serving steps and
// applies them. The loop stops on full coverage, on a pass that adds
// nothing, or at the iteration cap.
func runTrial(products []schema.Product, order []int, target schema.Vector, alpha float64, weights schema.WeightMap, maxIter int) ([]float64, schema.Vector) {
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	assigned := make([]float64, len(products))
	residual := target

	// Already covered at entry: zero iterations.
	if residual.AllNonPositive() {
		return assigned, residual
	}

	eligible := make([]int, 0, len(order))
	rows := make([]schema.Vector, 0, len(order))

	for range maxIter {
		// A product stays eligible only with a positive step and at least
		// half a step of remaining capacity. Since assigned weights never
		// shrink, a product excluded here is excluded for good.
		eligible = eligible[:0]
		rows = rows[:0]
		for _, idx := range order {
			p := products[idx]
			if p.StepGrams <= 0 {
				continue
			}
			if p.MaxWeight()-assigned[idx] < p.StepGrams/2 {
				continue
			}
			eligible = append(eligible, idx)
			rows = append(rows, p.PerHundredGrams.Scale(1.0/100.0))
		}
		if len(eligible) == 0 {
			break
		}

		// Target only a fraction of the remaining need per pass so a
		// single iteration cannot overshoot.
		scaled := residual.Scale(alpha)
		increments, ok := activeSetSolve(rows, scaled, weights)
		if !ok {
			break
		}

		anyAdded := false
		for i, idx := range eligible {
			grams := increments[i]
			if grams <= 0 {
				continue
			}
			p := products[idx]
			remaining := p.MaxWeight() - assigned[idx]
			if remaining <= 0 {
				continue
			}
			if grams > remaining {
				grams = remaining
			}
			grams = roundToStep(grams, p.StepGrams, remaining)
			if grams <= 0 {
				continue
			}
			assigned[idx] += grams
			residual = residual.Sub(p.Contribution(grams))
			anyAdded = true
		}
		if !anyAdded {
			break
		}
		if residual.AllNonPositive() {
			break
		}
	}
	return assigned, residual
}

// roundToStep snaps a continuous increment to the product's serving step.
// Increments round half up; when that overshoots the remaining capacity
// the value re-floors to the largest multiple that still fits. The
// asymmetry is a fixed behavioral contract.
func roundToStep(grams, step, remaining float64) float64 {
	if step <= 0 {
		return grams
	}
	rounded := math.Floor(grams/step+0.5) * step
	if rounded > remaining {
		rounded = math.Floor(remaining/step) * step
	}
	if rounded < 0 {
		return 0
	}
	return rounded
}
