// Package schema has models, enums and global defaults for all parts of rationer.
package schema

// Calorie multipliers for the derived-calories formula.
const (
	kcalPerGramProtein = 4
	kcalPerGramFat     = 9
	kcalPerGramCarb    = 4
	kcalPerGramFiber   = 1.5
)

// Vector is an ordered, fixed-length tuple of nutrient amounts in grams
// (kilocalories for the Calories component). The component order is the
// fixed Nutrient ordering.
type Vector [NumNutrients]float64

// DeriveCalories computes the calorie content implied by the base
// components of v. The Calories component of v itself is ignored.
func DeriveCalories(v Vector) float64 {
	proteins := v[Protein]
	fats := v[SaturatedFat] + v[UnsaturatedFat]
	carbs := v[SimpleCarbs] + v[ComplexCarbs]
	fiber := v[SolubleFiber] + v[InsolubleFiber]
	return proteins*kcalPerGramProtein + fats*kcalPerGramFat + carbs*kcalPerGramCarb + fiber*kcalPerGramFiber
}

// WithDerivedCalories returns a copy of v with the Calories component
// recomputed from the base components. Targets are always constructed through
// this so that Calories is never entered independently.
func (v Vector) WithDerivedCalories() Vector {
	v[Calories] = DeriveCalories(v)
	return v
}

// Sub returns v - o component-wise.
func (v Vector) Sub(o Vector) Vector {
	for i := range v {
		v[i] -= o[i]
	}
	return v
}

// Add returns v + o component-wise.
func (v Vector) Add(o Vector) Vector {
	for i := range v {
		v[i] += o[i]
	}
	return v
}

// Scale returns v scaled by f component-wise.
func (v Vector) Scale(f float64) Vector {
	for i := range v {
		v[i] *= f
	}
	return v
}

// AllNonPositive reports whether every component of v is <= 0, i.e. the
// residual it represents is fully covered.
func (v Vector) AllNonPositive() bool {
	for _, c := range v {
		if c > 0 {
			return false
		}
	}
	return true
}

// Product is an immutable catalog entry: nutrient content per 100 grams,
// the smallest adjustable increment in grams, and the maximum number of
// portions that may be assigned.
type Product struct {
	Name            string  `json:"name"`
	PerHundredGrams Vector  `json:"per_100g"`
	StepGrams       float64 `json:"step_grams"`
	MaxPortions     float64 `json:"max_portions"`
}

// MaxWeight returns the maximum total weight in grams that may be
// assigned to the product.
func (p Product) MaxWeight() float64 {
	return p.MaxPortions * p.StepGrams
}

// Contribution returns the nutrient content of the given weight of the
// product, scaling the per-100g values component-wise.
func (p Product) Contribution(grams float64) Vector {
	return p.PerHundredGrams.Scale(grams / 100.0)
}

// Portion is a single product's assigned weight in a solution.
type Portion struct {
	Name  string  `json:"name"`
	Grams float64 `json:"grams"`
}

// SearchResult is the best allocation found by the search controller,
// together with the trial parameters that produced it.
type SearchResult struct {
	// Weights holds the assigned grams per product, aligned with the
	// catalog order that was passed to the search.
	Weights []float64 `json:"-"`

	// Portions lists products with a positive assigned weight, in
	// catalog order.
	Portions []Portion `json:"portions"`

	Target   Vector `json:"target"`
	Achieved Vector `json:"achieved"`
	Residual Vector `json:"residual"`

	RMSE   float64 `json:"rmse"`
	Alpha  int     `json:"alpha"`
	Run    int     `json:"run"`
	Trials int     `json:"trials"`
}

// CatalogStatus reports state of the product catalog store.
type CatalogStatus struct {
	Backend        string `json:"backend"`
	Connected      bool   `json:"connected"`
	TotalProducts  int64  `json:"total_products"`
	TableSizeBytes int64  `json:"table_size_bytes,omitempty"`
}
