package locate

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// CovarianceModel supplies the pick-pair covariance kernel C(i,j) (spec
// §4.3). Implementations key by pick index (into the engine's pick arena),
// not by position within the residual slice being decorrelated, since
// triage can drop and reorder entries independently of that arena.
// Self-correlation C(i,i) must be 1; off-diagonal values come from the
// caller's station-source geometry model.
type CovarianceModel interface {
	Covariance(pickIndexI, pickIndexJ int) float64
}

// DecorrelatorConfig carries the tunables spec §4.3/§9 call out by name,
// seeded from the package defaults the way the teacher seeds PrcOpt from
// DefaultProcOpt.
type DecorrelatorConfig struct {
	MaxPicksToDecorrelate  int
	EigenvalueSumLimit     float64
	EigenvalueTopThreshold float64
}

// DefaultDecorrelatorConfig returns the spec-default tunables.
func DefaultDecorrelatorConfig() DecorrelatorConfig {
	return DecorrelatorConfig{
		MaxPicksToDecorrelate:  DefaultMaxPicksToDecorrelate,
		EigenvalueSumLimit:     DefaultEigenvalueSumLimit,
		EigenvalueTopThreshold: DefaultEigenvalueTopThreshold,
	}
}

// Decorrelate implements spec §4.3: triage, symmetric eigendecomposition,
// truncation, projection into virtual WeightedResiduals, and (when
// canonicalizeSigns is set) eigenvector sign canonicalization. raw excludes
// the Bayesian-depth sentinel; bayesian, if non-nil, is appended to the
// output verbatim. picks is the engine's pick arena, mutated in place to
// set the permanent triage flag on evicted picks.
func Decorrelate(raw []WeightedResidual, picks []Pick, cov CovarianceModel, bayesian *WeightedResidual, cfg DecorrelatorConfig, canonicalizeSigns bool) ([]WeightedResidual, error) {
	n := len(raw)
	if n == 0 {
		if bayesian != nil {
			return []WeightedResidual{*bayesian}, nil
		}
		return nil, nil
	}

	retained := triage(raw, picks, cov, cfg.MaxPicksToDecorrelate)

	m := len(retained)
	c := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			c.SetSym(i, j, cov.Covariance(retained[i].PickIndex, retained[j].PickIndex))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(c, true); !ok {
		return nil, fmt.Errorf("locate: decorrelator eigendecomposition failed to converge")
	}
	values := eig.Values(nil) /* ascending, per gonum contract */
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	k := truncationIndex(values, cfg.EigenvalueSumLimit, cfg.EigenvalueTopThreshold)
	out := make([]WeightedResidual, 0, m-k+1)

	for col := k; col < m; col++ {
		lambda := values[col]
		if lambda <= 0 {
			continue
		}
		v := make([]float64, m)
		for row := 0; row < m; row++ {
			v[row] = vectors.At(row, col)
		}

		virtual := WeightedResidual{PickIndex: -1, Weight: 1.0 / math.Sqrt(lambda)}
		for j := 0; j < m; j++ {
			virtual.Project(&retained[j], v[j])
		}

		if canonicalizeSigns {
			canonicalizeSign(&virtual, v, retained)
		}

		out = append(out, virtual)
	}

	if bayesian != nil {
		out = append(out, *bayesian)
	}
	return out, nil
}

// triage bounds the working set to max (spec §4.3 step 1-5 when N exceeds
// MAX_PICKS_TO_DECORRELATE): evicting rows with the largest covariance
// row-sum one at a time, tie-breaking on initial row index, and marking the
// corresponding picks permanently excluded for this relocation.
func triage(raw []WeightedResidual, picks []Pick, cov CovarianceModel, max int) []WeightedResidual {
	n := len(raw)
	if max <= 0 || n <= max {
		return append([]WeightedResidual(nil), raw...)
	}

	c := make([][]float64, n)
	rowSum := make([]float64, n)
	for i := 0; i < n; i++ {
		c[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			v := cov.Covariance(raw[i].PickIndex, raw[j].PickIndex)
			c[i][j] = v
			rowSum[i] += v
		}
	}

	alive := make([]bool, n)
	for i := range alive {
		alive[i] = true
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	remaining := n
	for remaining > max {
		sort.SliceStable(order, func(a, b int) bool {
			ia, ib := order[a], order[b]
			if !alive[ia] {
				return false
			}
			if !alive[ib] {
				return true
			}
			return rowSum[ia] > rowSum[ib]
		})
		evict := -1
		for _, i := range order {
			if alive[i] {
				evict = i
				break
			}
		}
		if evict == -1 {
			break
		}
		alive[evict] = false
		remaining--
		if pi := raw[evict].PickIndex; pi >= 0 && pi < len(picks) {
			picks[pi].triaged = true
		}
		for l := 0; l < n; l++ {
			if alive[l] {
				rowSum[l] -= c[l][evict]
			}
		}
	}

	retained := make([]WeightedResidual, 0, max)
	for i := 0; i < n; i++ {
		if alive[i] {
			retained = append(retained, raw[i])
		}
	}
	return retained
}

// truncationIndex implements the §4.3 truncation rule: walk from the
// largest eigenvalue downward accumulating acc, stop at the smallest index
// k such that acc > sumLimit*S AND values[k] <= topThreshold*lambdaMax.
// Indices strictly below k are discarded.
func truncationIndex(values []float64, sumLimit, topThreshold float64) int {
	n := len(values)
	if n == 0 {
		return 0
	}
	s := 0.0
	for _, v := range values {
		s += v
	}
	lambdaMax := values[n-1]

	acc := 0.0
	k := 0
	for i := n - 1; i >= 0; i-- {
		acc += values[i]
		if acc > sumLimit*s && values[i] <= topThreshold*lambdaMax {
			k = i
			break
		}
		k = i
	}
	return k
}

// canonicalizeSign applies the §4.3 eigenvector sign decision rule to a
// freshly projected virtual observation, flipping it (and the eigenvector
// coefficients it was built from) when the rule says the sign is wrong.
func canonicalizeSign(virtual *WeightedResidual, v []float64, contributors []WeightedResidual) {
	var cMax, cMin float64
	haveAny := false
	dSum := 0.0

	for j, coeff := range v {
		if math.Abs(coeff) <= DTOL {
			continue
		}
		corr := virtual.Correlate(&contributors[j])
		if !haveAny || corr > cMax {
			cMax = corr
		}
		if !haveAny || corr < cMin {
			cMin = corr
		}
		haveAny = true
		dSum += contributors[j].Deriv[2]
	}
	if !haveAny {
		return
	}

	virtualDepthDeriv := virtual.Deriv[2]
	correct := true
	switch {
	case cMax*cMin >= 0:
		correct = signOf(dSum) == signOf(virtualDepthDeriv)
	default:
		disagree := signOf(dSum) != signOf(virtualDepthDeriv)
		if disagree {
			if math.Abs(cMax+cMin) < SignCanonAmbiguousCorrBand {
				correct = !(math.Abs(virtualDepthDeriv) > SignCanonAmbiguousDepthDerivTh)
			} else {
				correct = false
			}
		}
	}

	if !correct {
		virtual.ChangeSign()
		for i := range v {
			v[i] = -v[i]
		}
	}
}

func signOf(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
