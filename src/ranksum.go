package locate

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
)

// RSumResult is the rank-sum (R-estimator) objective for a set of weighted
// residuals (spec §4.4): the step length that produced it (filled in by the
// caller, not this package — the stepper and driver are the only callers
// that know the trial length), the median, the robust spread, and the
// dispersion penalty the stepper's line search minimizes.
type RSumResult struct {
	StepLength float64
	Median     float64
	Spread     float64
	Dispersion float64
}

// Evaluate computes RSumResult for a slice of WeightedResidual (spec §4.4).
// projected selects the decorrelated path (median forced to 0); useLinear
// selects LinEstResidual/LinEstWeight over the raw Residual/Weight, for
// evaluating a trial step without mutating the underlying residuals.
func Evaluate(items []WeightedResidual, projected, useLinear bool) RSumResult {
	n := len(items)
	if n == 0 {
		return RSumResult{}
	}

	median := 0.0
	if !projected {
		median = medianOf(items, useLinear)
	}

	dispersion := dispersionOf(items, median, useLinear)
	spread := spreadOf(items, median, useLinear)

	return RSumResult{Median: median, Spread: spread, Dispersion: dispersion}
}

func residualValue(w *WeightedResidual, useLinear bool) float64 {
	if useLinear {
		return w.LinEstResidual
	}
	return w.Residual
}

func weightValue(w *WeightedResidual, useLinear bool) float64 {
	if useLinear {
		return w.LinEstWeight
	}
	return w.Weight
}

// medianOf sorts by residual value (Bayesian sentinel tied to the tail, per
// spec §4.2/§4.4/§8) and returns the middle value(s) of the non-sentinel
// entries, so the Bayesian-depth sentinel never moves the median.
func medianOf(items []WeightedResidual, useLinear bool) float64 {
	n := len(items)
	m := 0
	for i := range items {
		if !items[i].isBayesianSentinel {
			m++
		}
	}
	if m == 0 {
		return 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	keyOf := func(i int) float64 {
		if items[i].isBayesianSentinel {
			return math.Inf(1)
		}
		return residualValue(&items[i], useLinear)
	}
	sort.SliceStable(idx, func(a, b int) bool { return keyOf(idx[a]) < keyOf(idx[b]) })

	valAt := func(pos int) float64 { return residualValue(&items[idx[pos]], useLinear) }
	mid := m / 2
	if m%2 == 1 {
		return valAt(mid)
	}
	return (valAt(mid-1) + valAt(mid)) / 2.0
}

// dispersionOf sorts by (residual-median)*weight — the Bayesian sentinel
// participates normally here, per spec §8's sort-key test ("under
// dispersion mode it is weighted normally") — and sums rank(k)*(r_k-m)*w_k
// using the reconstituted rank-sum score table.
func dispersionOf(items []WeightedResidual, median float64, useLinear bool) float64 {
	n := len(items)
	idx := make([]int, n)
	vals := make([]float64, n)
	for i := range items {
		idx[i] = i
		vals[i] = (residualValue(&items[i], useLinear) - median) * weightValue(&items[i], useLinear)
	}
	sort.SliceStable(idx, func(a, b int) bool { return vals[idx[a]] < vals[idx[b]] })

	dispersion := 0.0
	for rank, i := range idx {
		dispersion += rankScoreForIndex(rank, n) * vals[i]
	}
	return dispersion
}

// spreadOf sorts by |residual-median| and reports the 90th percentile (spec
// §4.4 step 3).
func spreadOf(items []WeightedResidual, median float64, useLinear bool) float64 {
	abs := make([]float64, len(items))
	for i := range items {
		abs[i] = math.Abs(residualValue(&items[i], useLinear) - median)
	}
	if len(abs) == 0 {
		return 0
	}
	p, err := mstats.Percentile(abs, 90)
	if err != nil {
		sort.Float64s(abs)
		return abs[len(abs)-1]
	}
	return p
}
