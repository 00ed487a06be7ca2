package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrily/rationer/schema"
)

// TestRoundToStep pins the snapping contract: round half up, then re-floor
// when the rounded value exceeds remaining capacity.
func TestRoundToStep(t *testing.T) {
	tests := []struct {
		name      string
		grams     float64
		step      float64
		remaining float64
		expected  float64
	}{
		{
			name:      "exact multiple stays",
			grams:     60,
			step:      30,
			remaining: 300,
			expected:  60,
		},
		{
			name:      "half rounds up",
			grams:     25,
			step:      10,
			remaining: 300,
			expected:  30,
		},
		{
			name:      "below half rounds down",
			grams:     34,
			step:      10,
			remaining: 300,
			expected:  30,
		},
		{
			name:      "overshoot re-floors to capacity",
			grams:     50,
			step:      30,
			remaining: 40,
			expected:  30,
		},
		{
			name:      "tiny increment rounds to zero",
			grams:     4,
			step:      10,
			remaining: 300,
			expected:  0,
		},
		{
			name:      "capacity below one step yields zero",
			grams:     25,
			step:      30,
			remaining: 20,
			expected:  0,
		},
		{
			name:      "nonpositive step passes through",
			grams:     17,
			step:      0,
			remaining: 300,
			expected:  17,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, roundToStep(tt.grams, tt.step, tt.remaining), 1e-9)
		})
	}
}

// TestRunTrialCoveredAtEntry expects zero work when the target is already
// non-positive everywhere.
func TestRunTrialCoveredAtEntry(t *testing.T) {
	products := []schema.Product{{
		Name:            "chicken",
		PerHundredGrams: schema.Vector{schema.Protein: 31}.WithDerivedCalories(),
		StepGrams:       50,
		MaxPortions:     4,
	}}

	assigned, residual := runTrial(products, []int{0}, schema.Vector{}, 0.9, schema.DefaultWeights(), 0)
	assert.InDelta(t, 0.0, assigned[0], 1e-9)
	assert.True(t, residual.AllNonPositive())
}

// TestRunTrialExactCoverage solves a target that is an exact step multiple
// of a single product.
func TestRunTrialExactCoverage(t *testing.T) {
	product := schema.Product{
		Name:            "chicken",
		PerHundredGrams: schema.Vector{schema.Protein: 20}.WithDerivedCalories(),
		StepGrams:       50,
		MaxPortions:     10,
	}
	target := product.Contribution(500)

	assigned, residual := runTrial([]schema.Product{product}, []int{0}, target, 1.0, schema.DefaultWeights(), 0)
	require.Len(t, assigned, 1)
	assert.InDelta(t, 500.0, assigned[0], 1e-6)
	for _, kind := range schema.Nutrients() {
		assert.InDelta(t, 0.0, residual[kind], 1e-6, "residual %s", kind)
	}
}

// TestRunTrialRespectsCapacity clamps the allocation to the product's
// maximum weight even when the target wants far more.
func TestRunTrialRespectsCapacity(t *testing.T) {
	product := schema.Product{
		Name:            "chicken",
		PerHundredGrams: schema.Vector{schema.Protein: 20}.WithDerivedCalories(),
		StepGrams:       50,
		MaxPortions:     2,
	}
	target := schema.Vector{schema.Protein: 100}.WithDerivedCalories()

	assigned, residual := runTrial([]schema.Product{product}, []int{0}, target, 1.0, schema.DefaultWeights(), 0)
	assert.InDelta(t, 100.0, assigned[0], 1e-9)
	assert.Greater(t, residual[schema.Protein], 0.0)
}

// TestRunTrialIneligibleStep never allocates to a product without a
// positive serving step.
func TestRunTrialIneligibleStep(t *testing.T) {
	products := []schema.Product{{
		Name:            "broken",
		PerHundredGrams: schema.Vector{schema.Protein: 20}.WithDerivedCalories(),
		StepGrams:       0,
		MaxPortions:     10,
	}}
	target := schema.Vector{schema.Protein: 100}.WithDerivedCalories()

	assigned, residual := runTrial(products, []int{0}, target, 1.0, schema.DefaultWeights(), 0)
	assert.InDelta(t, 0.0, assigned[0], 1e-9)
	assert.InDelta(t, target[schema.Protein], residual[schema.Protein], 1e-9)
}

// TestRunTrialResidualMonotone traces the refinement pass by pass: since
// runTrial is deterministic for a fixed order, capping the iterations at k
// yields the state after exactly k passes. The squared residual norm must
// never grow between passes, and the eligible set must only shrink.
func TestRunTrialResidualMonotone(t *testing.T) {
	products := []schema.Product{
		{
			Name:            "oats",
			PerHundredGrams: schema.Vector{schema.Protein: 13.5, schema.ComplexCarbs: 55, schema.InsolubleFiber: 6.5}.WithDerivedCalories(),
			StepGrams:       30,
			MaxPortions:     3,
		},
		{
			Name:            "chicken",
			PerHundredGrams: schema.Vector{schema.Protein: 31, schema.UnsaturatedFat: 2.5}.WithDerivedCalories(),
			StepGrams:       50,
			MaxPortions:     4,
		},
		{
			Name:            "rice",
			PerHundredGrams: schema.Vector{schema.Protein: 7, schema.ComplexCarbs: 77}.WithDerivedCalories(),
			StepGrams:       40,
			MaxPortions:     5,
		},
	}
	target := schema.Vector{
		schema.Protein:      120,
		schema.ComplexCarbs: 200,
	}.WithDerivedCalories()
	order := []int{0, 1, 2}
	weights := schema.DefaultWeights()

	squaredNorm := func(v schema.Vector) float64 {
		var sum float64
		for _, c := range v {
			sum += c * c
		}
		return sum
	}
	eligibleSet := func(assigned []float64) map[int]bool {
		set := map[int]bool{}
		for i, p := range products {
			if p.StepGrams > 0 && p.MaxWeight()-assigned[i] >= p.StepGrams/2 {
				set[i] = true
			}
		}
		return set
	}

	prevNorm := squaredNorm(target)
	prevEligible := eligibleSet(make([]float64, len(products)))
	for k := 1; k <= DefaultMaxIterations; k++ {
		assigned, residual := runTrial(products, order, target, 0.9, weights, k)

		norm := squaredNorm(residual)
		assert.LessOrEqual(t, norm, prevNorm+1e-9, "pass %d grew the residual norm", k)

		// Assigned weights never shrink, so a product that fell out of
		// the eligible set must stay out.
		eligible := eligibleSet(assigned)
		for idx := range eligible {
			assert.True(t, prevEligible[idx], "pass %d readmitted %s", k, products[idx].Name)
		}

		prevNorm = norm
		prevEligible = eligible
	}
}

// TestRunTrialInvariants checks the structural guarantees across a mixed
// catalog: step multiples, capacity bounds and residual bookkeeping.
func TestRunTrialInvariants(t *testing.T) {
	products := []schema.Product{
		{
			Name:            "oats",
			PerHundredGrams: schema.Vector{schema.Protein: 13.5, schema.ComplexCarbs: 55, schema.InsolubleFiber: 6.5}.WithDerivedCalories(),
			StepGrams:       30,
			MaxPortions:     3,
		},
		{
			Name:            "chicken",
			PerHundredGrams: schema.Vector{schema.Protein: 31, schema.UnsaturatedFat: 2.5}.WithDerivedCalories(),
			StepGrams:       50,
			MaxPortions:     4,
		},
		{
			Name:            "rice",
			PerHundredGrams: schema.Vector{schema.Protein: 7, schema.ComplexCarbs: 77}.WithDerivedCalories(),
			StepGrams:       40,
			MaxPortions:     5,
		},
	}
	target := schema.Vector{
		schema.Protein:      120,
		schema.ComplexCarbs: 200,
	}.WithDerivedCalories()

	assigned, residual := runTrial(products, []int{2, 0, 1}, target, 0.8, schema.DefaultWeights(), 0)
	require.Len(t, assigned, len(products))

	achieved := schema.Vector{}
	for i, p := range products {
		steps := assigned[i] / p.StepGrams
		assert.InDelta(t, math.Round(steps), steps, 1e-9, "%s not a step multiple", p.Name)
		assert.LessOrEqual(t, assigned[i], p.MaxWeight()+1e-9, "%s over capacity", p.Name)
		assert.GreaterOrEqual(t, assigned[i], 0.0, "%s negative", p.Name)
		achieved = achieved.Add(p.Contribution(assigned[i]))
	}

	// residual must equal target minus the sum of contributions.
	want := target.Sub(achieved)
	for _, kind := range schema.Nutrients() {
		assert.InDelta(t, want[kind], residual[kind], 1e-6, "residual %s", kind)
	}
}
