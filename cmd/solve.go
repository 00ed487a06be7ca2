package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nutrily/rationer/core"
	"github.com/nutrily/rationer/internal/contract"
)

// solveCmd computes the portion weights for the given nutrient targets.
var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Compute portion weights for your daily nutrient targets.",
	Long: `Search portion weights over the product catalog so the combined
nutrients land as close to your targets as the serving steps allow.

Targets are entered in grams per nutrient; calories are always derived
from the macros (4/9/4 for protein/fat/carbs, 1.5 for fiber) and never
entered directly.

The search sweeps pacing values from --start-alpha up to 100 and runs
--runs randomized product orderings per pacing value, keeping the
candidate with the lowest weighted RMSE. Protein and calorie deviations
weigh heavier than the rest by default; override per nutrient via the
'weights' section of the config file.

Examples:
  # Solve for a typical training day
  rationer solve --protein 150 --sat-fat 20 --unsat-fat 40 \
    --simple-carbs 50 --complex-carbs 200 \
    --soluble-fiber 15 --insoluble-fiber 20

  # Reproducible run with a wider sweep
  rationer solve --protein 120 --complex-carbs 180 --start-alpha 50 --runs 5 --seed 42

  # Export the winning ration for tracking
  rationer solve --protein 150 --complex-carbs 200 --output csv --output-file ration.csv`,
	PreRunE: sharedSetupWrapper,
	PostRun: closeStore,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSolve(rootCtx, cfg, store); err != nil {
			contract.LogFatal("Cannot solve ration", err)
		}
	},
}
