package core

import (
	"math"

	"github.com/nutrily/rationer/schema"
)

// pivotTolerance is the magnitude below which a pivot is treated as
// numerically singular and its column is skipped.
const pivotTolerance = 1e-12

// activeSetSolve computes nonnegative continuous gram increments for a set
// of candidate products against a scaled residual target. rows holds one
// per-gram contribution vector per candidate. It builds the weighted normal
// equations once, then repeatedly solves shrinking subsystems: candidates
// whose solved increment is negative are removed from the active set and
// the smaller system is re-solved, for at most len(rows) rounds.
//
// The returned slice is aligned with rows; removed candidates get 0. ok is
// false when the active set empties before a nonnegative solution is found.
// Step sizes and capacity caps are the caller's concern.
func activeSetSolve(rows []schema.Vector, target schema.Vector, weights schema.WeightMap) ([]float64, bool) {
	m := len(rows)
	if m == 0 {
		return nil, false
	}

	// Weighted Gram matrix and right-hand side over the full candidate set.
	gram := make([][]float64, m)
	rhs := make([]float64, m)
	for i := range m {
		gram[i] = make([]float64, m)
		for k := range schema.NumNutrients {
			rhs[i] += weights[k] * target[k] * rows[i][k]
		}
		for j := range m {
			var sum float64
			for k := range schema.NumNutrients {
				sum += weights[k] * rows[i][k] * rows[j][k]
			}
			gram[i][j] = sum
		}
	}

	// Index arena plus scratch buffers; removal rounds extract subsystems
	// from gram/rhs instead of rebuilding them.
	active := make([]int, m)
	for i := range active {
		active[i] = i
	}
	sub := make([][]float64, m)
	for i := range sub {
		sub[i] = make([]float64, m)
	}
	subRHS := make([]float64, m)

	for len(active) > 0 {
		n := len(active)
		for i, ai := range active {
			for j, aj := range active {
				sub[i][j] = gram[ai][aj]
			}
			subRHS[i] = rhs[ai]
		}
		rowsView := make([][]float64, n)
		for i := range rowsView {
			rowsView[i] = sub[i][:n]
		}
		sol := gaussianSolve(rowsView, subRHS[:n])

		negative := false
		for i := range n {
			if sol[i] < 0 {
				negative = true
				break
			}
		}
		if !negative {
			result := make([]float64, m)
			for i, ai := range active {
				result[ai] = sol[i]
			}
			return result, true
		}

		kept := active[:0]
		for i, ai := range active {
			if sol[i] >= 0 {
				kept = append(kept, ai)
			}
		}
		active = kept
	}
	return nil, false
}

// gaussianSolve solves a·x = b in place using Gaussian elimination with
// partial pivoting. A column whose best available pivot falls below
// pivotTolerance is treated as singular: elimination skips it and its
// solution component stays zero, degrading gracefully instead of failing
// the whole system. Both a and b are destroyed.
func gaussianSolve(a [][]float64, b []float64) []float64 {
	n := len(b)
	singular := make([]bool, n)

	for col := range n {
		// Choose the row with the largest magnitude in this column among
		// the remaining rows.
		pivot := col
		best := math.Abs(a[col][col])
		for r := col + 1; r < n; r++ {
			if abs := math.Abs(a[r][col]); abs > best {
				pivot, best = r, abs
			}
		}
		if best < pivotTolerance {
			singular[col] = true
			continue
		}
		if pivot != col {
			a[col], a[pivot] = a[pivot], a[col]
			b[col], b[pivot] = b[pivot], b[col]
		}
		for r := col + 1; r < n; r++ {
			factor := a[r][col] / a[col][col]
			if factor == 0 {
				continue
			}
			for c := col; c < n; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for col := n - 1; col >= 0; col-- {
		if singular[col] {
			continue
		}
		sum := b[col]
		for c := col + 1; c < n; c++ {
			sum -= a[col][c] * x[c]
		}
		x[col] = sum / a[col][col]
	}
	return x
}
