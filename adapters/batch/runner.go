// Package batch hosts N independent relocation engines over a bounded
// worker pool, grounded on sixy6e-go-gsf's pond-based GSF conversion pool
// (cmd/main.go's convert_gsf_list): one engine per submitted request, all
// sharing the same read-only auxiliary reference data.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/alitto/pond"

	"locatego/adapters/wire"
	"locatego/src"
)

// Runner fans relocation requests out across a fixed-size pond pool. Per
// spec §5: "a host wishing to locate N events concurrently must instantiate
// N independent engines over shared-read-only auxiliary data... and
// independent mutable state" — each submitted task builds its own Engine,
// sharing only Config and Predictor (both side-effect free per call).
type Runner struct {
	Config    locate.EngineConfig
	Predictor locate.TravelTimePredictor
	Workers   int
}

// NewRunner constructs a Runner with the given worker count (RunAll uses 4
// workers when the count is 0 or less).
func NewRunner(cfg locate.EngineConfig, predictor locate.TravelTimePredictor, workers int) *Runner {
	return &Runner{Config: cfg, Predictor: predictor, Workers: workers}
}

// Result pairs one request's outcome (or error) with its originating index,
// so callers can match results back to input order after concurrent
// completion.
type Result struct {
	Index    int
	Response wire.Response
	Err      error
}

// RunAll relocates every request in reqs concurrently, returning results in
// input order. A malformed or failed request does not abort the batch; its
// Result carries the error instead.
func (r *Runner) RunAll(ctx context.Context, reqs []wire.Request) []Result {
	workers := r.Workers
	if workers <= 0 {
		workers = 4
	}
	pool := pond.New(workers, 0, pond.Context(ctx))
	defer pool.StopAndWait()

	results := make([]Result, len(reqs))
	var wg sync.WaitGroup
	wg.Add(len(reqs))

	for i := range reqs {
		idx := i
		req := reqs[i]
		pool.Submit(func() {
			defer wg.Done()
			results[idx] = r.runOne(ctx, idx, req)
		})
	}
	wg.Wait()
	return results
}

func (r *Runner) runOne(ctx context.Context, idx int, req wire.Request) Result {
	if err := req.Validate(); err != nil {
		return Result{Index: idx, Err: fmt.Errorf("request %d: %w", idx, err)}
	}
	engine := req.BuildEngine(r.Predictor, r.Config)
	locResult := engine.Run(ctx)
	return Result{Index: idx, Response: wire.FromEngineResult(req.ID, locResult)}
}
