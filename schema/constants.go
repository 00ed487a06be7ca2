package schema

// Custom string types for type safety.
type (
	// Nutrient indexes a component of a nutrient vector.
	Nutrient int

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the catalog.
	DatabaseBackend string
)

// Nutrient kinds in their fixed order. Every vector in the system uses
// this ordering; Calories is always last and always derived.
const (
	Protein Nutrient = iota
	SaturatedFat
	UnsaturatedFat
	SimpleCarbs
	ComplexCarbs
	SolubleFiber
	InsolubleFiber
	Calories

	// NumNutrients is the fixed length of a nutrient vector.
	NumNutrients = int(Calories) + 1
)

// nutrientNames maps each nutrient to its canonical name, used in CSV
// headers, JSON payloads and table output.
var nutrientNames = [NumNutrients]string{
	Protein:        "protein",
	SaturatedFat:   "sat_fat",
	UnsaturatedFat: "unsat_fat",
	SimpleCarbs:    "simple_carbs",
	ComplexCarbs:   "complex_carbs",
	SolubleFiber:   "soluble_fiber",
	InsolubleFiber: "insoluble_fiber",
	Calories:       "kcal",
}

// nutrientLabels maps each nutrient to a human-readable label for tables.
var nutrientLabels = [NumNutrients]string{
	Protein:        "Protein",
	SaturatedFat:   "Saturated fat",
	UnsaturatedFat: "Unsaturated fat",
	SimpleCarbs:    "Simple carbs",
	ComplexCarbs:   "Complex carbs",
	SolubleFiber:   "Soluble fiber",
	InsolubleFiber: "Insoluble fiber",
	Calories:       "Calories",
}

// String returns the canonical name of the nutrient.
func (n Nutrient) String() string {
	if n < 0 || int(n) >= NumNutrients {
		return "unknown"
	}
	return nutrientNames[n]
}

// Label returns the human-readable label of the nutrient.
func (n Nutrient) Label() string {
	if n < 0 || int(n) >= NumNutrients {
		return "Unknown"
	}
	return nutrientLabels[n]
}

// Nutrients returns all nutrient kinds in their fixed order.
func Nutrients() [NumNutrients]Nutrient {
	var kinds [NumNutrients]Nutrient
	for i := range kinds {
		kinds[i] = Nutrient(i)
	}
	return kinds
}

// BaseNutrients returns the nutrient kinds an operator enters directly,
// which is every kind except the derived Calories.
func BaseNutrients() []Nutrient {
	kinds := Nutrients()
	return kinds[:NumNutrients-1]
}

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All catalog backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid catalog backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// WeightMap assigns a positive scoring weight to each nutrient kind.
// It scales per-nutrient error contributions both in the solver's normal
// equations and in the RMSE computation.
type WeightMap [NumNutrients]float64

// DefaultWeights returns the default scoring weights. Protein and Calories
// dominate; every other kind contributes with unit weight.
func DefaultWeights() WeightMap {
	return WeightMap{
		Protein:        2,
		SaturatedFat:   1,
		UnsaturatedFat: 1,
		SimpleCarbs:    1,
		ComplexCarbs:   1,
		SolubleFiber:   1,
		InsolubleFiber: 1,
		Calories:       3,
	}
}
