package contract

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"time"

	"github.com/nutrily/rationer/schema"
)

// Default values for configuration.
const (
	DefaultStartAlpha   = 90
	DefaultRunsPerAlpha = 1
	DefaultPrecision    = 2
	MaxPrecision        = 6
	DefaultListenAddr   = ":8080"
)

// DefaultWorkers is the default number of concurrent trial workers.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the validated, final runtime configuration.
type Config struct {
	// Target is the nutrient target with Calories already derived.
	Target schema.Vector

	StartAlpha    int
	RunsPerAlpha  int
	Workers       int
	Seed          int64
	MaxIterations int

	// Weights is the final weight map: defaults merged with any
	// overrides from the config file.
	Weights schema.WeightMap

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	CatalogBackend   schema.DatabaseBackend
	CatalogDBConnect string // Please use env var as this is plaintext

	ListenAddr string
}

// WeightsRawInput holds scoring weight overrides from the YAML config
// file. Only set fields override the defaults.
type WeightsRawInput struct {
	Protein        *float64 `mapstructure:"protein"`
	SatFat         *float64 `mapstructure:"sat_fat"`
	UnsatFat       *float64 `mapstructure:"unsat_fat"`
	SimpleCarbs    *float64 `mapstructure:"simple_carbs"`
	ComplexCarbs   *float64 `mapstructure:"complex_carbs"`
	SolubleFiber   *float64 `mapstructure:"soluble_fiber"`
	InsolubleFiber *float64 `mapstructure:"insoluble_fiber"`
	Calories       *float64 `mapstructure:"kcal"`
}

// ConfigRawInput holds the raw inputs from all sources (flags, env,
// config file). Viper unmarshals into this struct; ProcessAndValidate
// turns it into a Config.
type ConfigRawInput struct {
	// --- Nutrient targets in grams (Calories is always derived) ---
	Protein        float64 `mapstructure:"protein"`
	SatFat         float64 `mapstructure:"sat-fat"`
	UnsatFat       float64 `mapstructure:"unsat-fat"`
	SimpleCarbs    float64 `mapstructure:"simple-carbs"`
	ComplexCarbs   float64 `mapstructure:"complex-carbs"`
	SolubleFiber   float64 `mapstructure:"soluble-fiber"`
	InsolubleFiber float64 `mapstructure:"insoluble-fiber"`

	// --- Search parameters ---
	StartAlpha    int   `mapstructure:"start-alpha"`
	RunsPerAlpha  int   `mapstructure:"runs"`
	Workers       int   `mapstructure:"workers"`
	Seed          int64 `mapstructure:"seed"`
	MaxIterations int   `mapstructure:"max-iterations"`

	// --- Output ---
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`

	// --- Catalog ---
	CatalogBackend   string `mapstructure:"catalog-backend"`
	CatalogDBConnect string `mapstructure:"catalog-db-connect"`

	// --- Server ---
	Listen string `mapstructure:"listen"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`
}

// TargetVector assembles the entered nutrient amounts into a vector
// with the Calories component derived.
func (input *ConfigRawInput) TargetVector() schema.Vector {
	v := schema.Vector{
		schema.Protein:        input.Protein,
		schema.SaturatedFat:   input.SatFat,
		schema.UnsaturatedFat: input.UnsatFat,
		schema.SimpleCarbs:    input.SimpleCarbs,
		schema.ComplexCarbs:   input.ComplexCarbs,
		schema.SolubleFiber:   input.SolubleFiber,
		schema.InsolubleFiber: input.InsolubleFiber,
	}
	return v.WithDerivedCalories()
}

// ProcessAndValidate performs all parsing and validation on the raw
// inputs and populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := processTarget(cfg, input); err != nil {
		return err
	}
	if err := processSearchParams(cfg, input); err != nil {
		return err
	}
	if err := processWeights(cfg, input); err != nil {
		return err
	}
	if err := processOutput(cfg, input); err != nil {
		return err
	}
	if err := processCatalogBackend(cfg, input); err != nil {
		return err
	}

	cfg.ListenAddr = input.Listen
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	return nil
}

func processTarget(cfg *Config, input *ConfigRawInput) error {
	target := input.TargetVector()
	for _, kind := range schema.Nutrients() {
		v := target[kind]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("target %s must be finite, got %v", kind, v)
		}
		if v < 0 {
			return fmt.Errorf("target %s must be >= 0, got %v", kind, v)
		}
	}
	cfg.Target = target
	return nil
}

func processSearchParams(cfg *Config, input *ConfigRawInput) error {
	if input.StartAlpha < 1 || input.StartAlpha > 100 {
		return fmt.Errorf("start-alpha must be in [1,100], got %d", input.StartAlpha)
	}
	if input.RunsPerAlpha < 0 || input.RunsPerAlpha > 100 {
		return fmt.Errorf("runs must be in [0,100], got %d", input.RunsPerAlpha)
	}
	if input.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", input.Workers)
	}
	if input.MaxIterations < 0 {
		return fmt.Errorf("max-iterations must be >= 0, got %d", input.MaxIterations)
	}

	cfg.StartAlpha = input.StartAlpha
	cfg.RunsPerAlpha = input.RunsPerAlpha
	cfg.Workers = input.Workers
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
	cfg.MaxIterations = input.MaxIterations

	// Seed 0 means "not fixed": derive one from the clock so repeated
	// invocations explore different orders. Any other value reproduces
	// the exact trial sequence.
	cfg.Seed = input.Seed
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return nil
}

func processWeights(cfg *Config, input *ConfigRawInput) error {
	weights := schema.DefaultWeights()
	overrides := [schema.NumNutrients]*float64{
		schema.Protein:        input.Weights.Protein,
		schema.SaturatedFat:   input.Weights.SatFat,
		schema.UnsaturatedFat: input.Weights.UnsatFat,
		schema.SimpleCarbs:    input.Weights.SimpleCarbs,
		schema.ComplexCarbs:   input.Weights.ComplexCarbs,
		schema.SolubleFiber:   input.Weights.SolubleFiber,
		schema.InsolubleFiber: input.Weights.InsolubleFiber,
		schema.Calories:       input.Weights.Calories,
	}
	for _, kind := range schema.Nutrients() {
		if overrides[kind] == nil {
			continue
		}
		w := *overrides[kind]
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("weight for %s must be a positive finite number, got %v", kind, w)
		}
		weights[kind] = w
	}
	cfg.Weights = weights
	return nil
}

func processOutput(cfg *Config, input *ConfigRawInput) error {
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output '%s'. must be text, csv, json, parquet", input.Output)
	}
	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be in [0,%d], got %d", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	useColors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid color setting: %w", err)
	}
	cfg.UseColors = useColors
	return nil
}

func processCatalogBackend(cfg *Config, input *ConfigRawInput) error {
	cfg.CatalogBackend = schema.DatabaseBackend(strings.ToLower(input.CatalogBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CatalogBackend]; !ok {
		return fmt.Errorf("invalid catalog backend '%s'. must be sqlite, mysql, postgresql, none", input.CatalogBackend)
	}
	cfg.CatalogDBConnect = input.CatalogDBConnect
	return ValidateDatabaseConnectionString(cfg.CatalogBackend, cfg.CatalogDBConnect)
}

// ValidateDatabaseConnectionString validates the format of database
// connection strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("catalog-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("catalog-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// Clone returns a copy of the Config struct. Config holds no reference
// types beyond strings, so a shallow copy is a deep one.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
