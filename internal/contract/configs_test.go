package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrily/rationer/schema"
)

// validInput returns raw input equivalent to the built-in defaults plus a
// plausible target.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Protein:        120,
		SatFat:         20,
		UnsatFat:       40,
		SimpleCarbs:    50,
		ComplexCarbs:   200,
		SolubleFiber:   15,
		InsolubleFiber: 20,
		StartAlpha:     DefaultStartAlpha,
		RunsPerAlpha:   DefaultRunsPerAlpha,
		Output:         "text",
		Precision:      DefaultPrecision,
		Color:          "yes",
		CatalogBackend: "sqlite",
	}
}

// TestProcessAndValidateDefaults covers the happy path with default-like
// inputs and checks the derived fields.
func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	input := validInput()

	require.NoError(t, ProcessAndValidate(cfg, input))

	// Calories derived from macros: 4*120 + 9*60 + 4*250 + 1.5*35.
	assert.InDelta(t, 2072.5, cfg.Target[schema.Calories], 1e-9)
	assert.Equal(t, DefaultStartAlpha, cfg.StartAlpha)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.NotZero(t, cfg.Seed, "unset seed should derive from the clock")
	assert.Equal(t, schema.DefaultWeights(), cfg.Weights)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.True(t, cfg.UseColors)
	assert.Equal(t, schema.SQLiteBackend, cfg.CatalogBackend)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
}

// TestProcessAndValidateErrors enumerates rejected inputs.
func TestProcessAndValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConfigRawInput)
		msg    string
	}{
		{
			name:   "negative target",
			mutate: func(in *ConfigRawInput) { in.Protein = -1 },
			msg:    "must be >= 0",
		},
		{
			name:   "start alpha too low",
			mutate: func(in *ConfigRawInput) { in.StartAlpha = 0 },
			msg:    "start-alpha",
		},
		{
			name:   "start alpha too high",
			mutate: func(in *ConfigRawInput) { in.StartAlpha = 101 },
			msg:    "start-alpha",
		},
		{
			name:   "runs out of range",
			mutate: func(in *ConfigRawInput) { in.RunsPerAlpha = 1000 },
			msg:    "runs",
		},
		{
			name:   "negative workers",
			mutate: func(in *ConfigRawInput) { in.Workers = -2 },
			msg:    "workers",
		},
		{
			name:   "bad output mode",
			mutate: func(in *ConfigRawInput) { in.Output = "yaml" },
			msg:    "invalid output",
		},
		{
			name:   "precision too high",
			mutate: func(in *ConfigRawInput) { in.Precision = 9 },
			msg:    "precision",
		},
		{
			name:   "bad color flag",
			mutate: func(in *ConfigRawInput) { in.Color = "maybe" },
			msg:    "invalid color setting",
		},
		{
			name:   "bad backend",
			mutate: func(in *ConfigRawInput) { in.CatalogBackend = "oracle" },
			msg:    "invalid catalog backend",
		},
		{
			name:   "mysql without connection string",
			mutate: func(in *ConfigRawInput) { in.CatalogBackend = "mysql" },
			msg:    "catalog-db-connect is required",
		},
		{
			name: "zero weight override",
			mutate: func(in *ConfigRawInput) {
				zero := 0.0
				in.Weights.Protein = &zero
			},
			msg: "weight for protein",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			err := ProcessAndValidate(&Config{}, input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

// TestProcessWeightsOverride merges config file overrides onto defaults.
func TestProcessWeightsOverride(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	five := 5.0
	half := 0.5
	input.Weights.Protein = &five
	input.Weights.SolubleFiber = &half

	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.InDelta(t, 5.0, cfg.Weights[schema.Protein], 1e-9)
	assert.InDelta(t, 0.5, cfg.Weights[schema.SolubleFiber], 1e-9)
	// Untouched kinds keep their defaults.
	assert.InDelta(t, 3.0, cfg.Weights[schema.Calories], 1e-9)
	assert.InDelta(t, 1.0, cfg.Weights[schema.ComplexCarbs], 1e-9)
}

// TestProcessSeedFixed keeps an explicit seed verbatim.
func TestProcessSeedFixed(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.Seed = 42

	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, int64(42), cfg.Seed)
}

// TestValidateDatabaseConnectionString covers backend-specific formats.
func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{name: "sqlite ignores conn string", backend: schema.SQLiteBackend, connStr: "", wantErr: false},
		{name: "none ignores conn string", backend: schema.NoneBackend, connStr: "", wantErr: false},
		{name: "mysql valid", backend: schema.MySQLBackend, connStr: "user:pass@tcp(localhost:3306)/rationer", wantErr: false},
		{name: "mysql missing tcp", backend: schema.MySQLBackend, connStr: "user:pass/rationer", wantErr: true},
		{name: "postgres valid", backend: schema.PostgreSQLBackend, connStr: "host=localhost port=5432 user=postgres dbname=rationer", wantErr: false},
		{name: "postgres missing dbname", backend: schema.PostgreSQLBackend, connStr: "host=localhost", wantErr: true},
		{name: "postgres empty", backend: schema.PostgreSQLBackend, connStr: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestConfigClone verifies clones are independent.
func TestConfigClone(t *testing.T) {
	cfg := &Config{StartAlpha: 90, Target: schema.Vector{schema.Protein: 10}}
	clone := cfg.Clone()
	clone.StartAlpha = 50
	clone.Target[schema.Protein] = 99

	assert.Equal(t, 90, cfg.StartAlpha)
	assert.InDelta(t, 10.0, cfg.Target[schema.Protein], 1e-9)
}
