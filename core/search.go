package core

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/nutrily/rationer/schema"
)

// Bounds for the pacing sweep.
const (
	MinAlpha        = 1
	MaxAlpha        = 100
	MaxRunsPerAlpha = 100
)

// SearchOptions control the (pacing, ordering) sweep.
type SearchOptions struct {
	// StartAlpha is the first pacing value of the sweep, in percent [1,100].
	StartAlpha int

	// RunsPerAlpha is the number of shuffled trials per pacing value, in
	// [0,100]; 0 still runs a single trial.
	RunsPerAlpha int

	// Workers bounds the number of concurrent trials; values <= 0 run
	// trials sequentially.
	Workers int

	// Seed makes the per-trial shuffles reproducible: trial i draws its
	// visitation order from a source seeded with Seed+i.
	Seed int64

	// MaxIterations caps refinement passes per trial; <= 0 uses the
	// default of 10.
	MaxIterations int

	// Weights scales per-nutrient error contributions. The zero value
	// falls back to the defaults.
	Weights schema.WeightMap
}

type trialSpec struct {
	index int
	alpha int
	run   int
}

type trialOutcome struct {
	weights  []float64
	residual schema.Vector
	rmse     float64
	done     bool
}

// Search sweeps every integer pacing value from StartAlpha to 100 with
// randomized product visitation orders, keeping the single best trial by
// strictly lower RMSE. The shuffle biases which products the active-set
// removal favors on near-ties and shifts rounding path dependence; it does
// not change the mathematical target.
//
// Trials are independent and run on a bounded worker pool; outcomes are
// reduced in trial order afterwards, so exact RMSE ties keep the
// first-evaluated trial regardless of scheduling. A context deadline
// aborts the sweep early and returns the best result found so far.
func Search(ctx context.Context, products []schema.Product, target schema.Vector, opts SearchOptions) (*schema.SearchResult, error) {
	if opts.StartAlpha < MinAlpha || opts.StartAlpha > MaxAlpha {
		return nil, fmt.Errorf("start alpha %d out of range [%d,%d]", opts.StartAlpha, MinAlpha, MaxAlpha)
	}
	if opts.RunsPerAlpha < 0 || opts.RunsPerAlpha > MaxRunsPerAlpha {
		return nil, fmt.Errorf("runs per alpha %d out of range [0,%d]", opts.RunsPerAlpha, MaxRunsPerAlpha)
	}
	weights := opts.Weights
	if weights == (schema.WeightMap{}) {
		weights = schema.DefaultWeights()
	}
	workers := max(1, opts.Workers)

	repeats := max(1, opts.RunsPerAlpha)
	specs := make([]trialSpec, 0, (MaxAlpha-opts.StartAlpha+1)*repeats)
	for alpha := opts.StartAlpha; alpha <= MaxAlpha; alpha++ {
		for run := 1; run <= repeats; run++ {
			specs = append(specs, trialSpec{index: len(specs), alpha: alpha, run: run})
		}
	}

	outcomes := make([]trialOutcome, len(specs))
	specCh := make(chan trialSpec, len(specs))
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for spec := range specCh {
				if ctx.Err() != nil {
					continue // deadline hit: drain remaining trials
				}
				rng := rand.New(rand.NewSource(opts.Seed + int64(spec.index)))
				order := rng.Perm(len(products))
				grams, residual := runTrial(products, order, target, float64(spec.alpha)/100.0, weights, opts.MaxIterations)
				outcomes[spec.index] = trialOutcome{
					weights:  grams,
					residual: residual,
					rmse:     WeightedRMSE(target, target.Sub(residual), weights),
					done:     true,
				}
			}
		})
	}
	for _, spec := range specs {
		specCh <- spec
	}
	close(specCh)
	wg.Wait()

	best := -1
	for i := range outcomes {
		if !outcomes[i].done {
			continue
		}
		if best < 0 || outcomes[i].rmse < outcomes[best].rmse {
			best = i
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("no trials completed: %w", ctx.Err())
	}

	win := outcomes[best]
	portions := make([]schema.Portion, 0, len(products))
	for i, g := range win.weights {
		if g > 0 {
			portions = append(portions, schema.Portion{Name: products[i].Name, Grams: g})
		}
	}
	return &schema.SearchResult{
		Weights:  win.weights,
		Portions: portions,
		Target:   target,
		Achieved: target.Sub(win.residual),
		Residual: win.residual,
		RMSE:     win.rmse,
		Alpha:    specs[best].alpha,
		Run:      specs[best].run,
		Trials:   len(specs),
	}, nil
}
