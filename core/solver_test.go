package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrily/rationer/schema"
)

// uniformWeights gives every nutrient unit weight so solver tests stay
// readable.
func uniformWeights() schema.WeightMap {
	var w schema.WeightMap
	for i := range w {
		w[i] = 1
	}
	return w
}

// TestGaussianSolve checks elimination on small systems, including the
// pivoting and singular-column paths.
func TestGaussianSolve(t *testing.T) {
	tests := []struct {
		name     string
		a        [][]float64
		b        []float64
		expected []float64
	}{
		{
			name:     "diagonal system",
			a:        [][]float64{{2, 0}, {0, 4}},
			b:        []float64{2, 8},
			expected: []float64{1, 2},
		},
		{
			name:     "pivot swap required",
			a:        [][]float64{{0, 1}, {1, 0}},
			b:        []float64{3, 5},
			expected: []float64{5, 3},
		},
		{
			name:     "full 3x3 system",
			a:        [][]float64{{2, 1, -1}, {-3, -1, 2}, {-2, 1, 2}},
			b:        []float64{8, -11, -3},
			expected: []float64{2, 3, -1},
		},
		{
			name:     "singular column yields zero component",
			a:        [][]float64{{1, 1}, {1, 1}},
			b:        []float64{2, 2},
			expected: []float64{2, 0},
		},
		{
			name:     "fully singular system yields zeros",
			a:        [][]float64{{0, 0}, {0, 0}},
			b:        []float64{1, 1},
			expected: []float64{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := gaussianSolve(tt.a, tt.b)
			require.Len(t, x, len(tt.expected))
			for i := range tt.expected {
				assert.InDelta(t, tt.expected[i], x[i], 1e-9, "component %d", i)
			}
		})
	}
}

// TestActiveSetSolveExact verifies that a single candidate whose profile
// spans the target recovers the exact continuous amount.
func TestActiveSetSolveExact(t *testing.T) {
	perGram := schema.Vector{schema.Protein: 0.2}.WithDerivedCalories()
	target := perGram.Scale(500)

	sol, ok := activeSetSolve([]schema.Vector{perGram}, target, schema.DefaultWeights())
	require.True(t, ok)
	require.Len(t, sol, 1)
	assert.InDelta(t, 500.0, sol[0], 1e-6)
}

// TestActiveSetSolveDropsNegative forces one candidate negative and
// expects it removed with the remaining system re-solved.
func TestActiveSetSolveDropsNegative(t *testing.T) {
	rows := []schema.Vector{
		{schema.Protein: 1},
		{schema.Protein: 1, schema.SaturatedFat: 1},
	}
	// The second candidate can only help by going negative on fat, so the
	// unconstrained least squares assigns it -1. It must be dropped.
	target := schema.Vector{schema.Protein: 2, schema.SaturatedFat: -1}

	sol, ok := activeSetSolve(rows, target, uniformWeights())
	require.True(t, ok)
	require.Len(t, sol, 2)
	assert.InDelta(t, 2.0, sol[0], 1e-9)
	assert.InDelta(t, 0.0, sol[1], 1e-9)
}

// TestActiveSetSolveDuplicateRows exercises the singular Gram matrix path:
// identical candidates must not crash, and one of them absorbs the need.
func TestActiveSetSolveDuplicateRows(t *testing.T) {
	row := schema.Vector{schema.Protein: 1}
	rows := []schema.Vector{row, row}
	target := schema.Vector{schema.Protein: 5}

	sol, ok := activeSetSolve(rows, target, uniformWeights())
	require.True(t, ok)
	assert.InDelta(t, 5.0, sol[0]+sol[1], 1e-9)
	for i, v := range sol {
		assert.GreaterOrEqual(t, v, 0.0, "component %d", i)
	}
}

// TestActiveSetSolveEmpty covers the degenerate empty candidate set.
func TestActiveSetSolveEmpty(t *testing.T) {
	sol, ok := activeSetSolve(nil, schema.Vector{}, uniformWeights())
	assert.False(t, ok)
	assert.Nil(t, sol)
}
