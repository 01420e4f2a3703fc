package locate

import "math"

// SortMode selects which scalar setSortKey computes (spec §4.2, §9
// "sort-mode polymorphism": the sort key is a plain scalar the caller
// primes before sorting, rather than a stored function pointer/comparator).
type SortMode int

const (
	SortResidual SortMode = iota
	SortAbsResidual
	SortWeightedResidual
	SortLinearEstimate
	SortWeightedLinearEstimate
	SortDispersion
)

// WeightedResidual is one decorrelation-ready observation: a used pick's
// residual/weight/derivatives, or the synthetic Bayesian-depth entry (spec
// §3). PickIndex is -1 for the sentinel; it stores an index rather than a
// *Pick for the same arena-ownership reason PickGroup does (see pick.go).
type WeightedResidual struct {
	PickIndex int

	Residual float64
	Weight   float64
	Deriv    [3]float64 /* ∂T/∂lat,∂T/∂lon,∂T/∂depth */

	SpreadDeriv [3]float64

	demedianedDeriv [3]float64
	hasDemedianed   bool

	LinEstResidual float64
	LinEstWeight   float64

	sortKey float64

	isBayesianSentinel bool
}

// IsBayesianSentinel reports whether this entry is the synthetic
// Bayesian-depth pseudo-observation (spec §3 invariant: it always sorts
// last except under dispersion mode).
func (w *WeightedResidual) IsBayesianSentinel() bool { return w.isBayesianSentinel }

// NewBayesianResidual builds the synthetic Bayesian-depth entry (spec §4.7:
// "injected into the residual set whenever the Bayesian prior is supplied").
func NewBayesianResidual(h *Hypocenter) WeightedResidual {
	w := WeightedResidual{PickIndex: -1, isBayesianSentinel: true}
	w.Residual = h.BayesianResidual()
	w.Weight = h.BayesianWeight
	w.Deriv = [3]float64{0, 0, 1.0} /* depth-only sensitivity */
	return w
}

// DeMedianResidual subtracts m from the residual, unless this is the
// Bayesian-depth sentinel (spec §4.2).
func (w *WeightedResidual) DeMedianResidual(m float64) {
	if w.isBayesianSentinel {
		return
	}
	w.Residual -= m
}

// DeMedianDerivatives computes a demedianed derivative copy, leaving the raw
// Deriv untouched (spec §4.2); the sentinel is left alone.
func (w *WeightedResidual) DeMedianDerivatives(m [3]float64) {
	if w.isBayesianSentinel {
		w.demedianedDeriv = w.Deriv
		w.hasDemedianed = true
		return
	}
	for i := 0; i < 3; i++ {
		w.demedianedDeriv[i] = w.Deriv[i] - m[i]
	}
	w.hasDemedianed = true
}

// DemedianedDeriv returns the demedianed derivative computed by the last
// call to DeMedianDerivatives, falling back to the raw derivative if none
// was computed yet.
func (w *WeightedResidual) DemedianedDeriv() [3]float64 {
	if w.hasDemedianed {
		return w.demedianedDeriv
	}
	return w.Deriv
}

// UpdateLinearEstimate computes linEstResidual = residual - sum(delta[j]*deriv[j])
// over ndof components (spec §4.2), using the demedianed derivative in
// projected mode per §4.5.
func (w *WeightedResidual) UpdateLinearEstimate(delta []float64, useDemedianedDeriv bool) {
	d := w.Deriv
	if useDemedianedDeriv {
		d = w.DemedianedDeriv()
	}
	r := w.Residual
	for j := 0; j < len(delta); j++ {
		r -= delta[j] * d[j]
	}
	w.LinEstResidual = r
}

// UpdateLinearWeight computes linEstWeight = 1/(1/weight + sum(delta[j]*spreadDeriv[j])).
func (w *WeightedResidual) UpdateLinearWeight(delta []float64) {
	inv := 1.0 / w.Weight
	for j := 0; j < len(delta) && j < 3; j++ {
		inv += delta[j] * w.SpreadDeriv[j]
	}
	if inv <= 0 {
		w.LinEstWeight = w.Weight
		return
	}
	w.LinEstWeight = 1.0 / inv
}

// SetSortKey primes the scalar sort key for the given mode (spec §4.2/§9).
// median is ignored under SortResidual/SortLinearEstimate. The unweighted
// and weighted residual/linear-estimate variants are separate modes rather
// than a flag.
func (w *WeightedResidual) SetSortKey(mode SortMode, median float64) {
	switch mode {
	case SortResidual:
		if w.isBayesianSentinel {
			w.sortKey = math.Inf(1)
			return
		}
		w.sortKey = w.Residual
	case SortAbsResidual:
		if w.isBayesianSentinel {
			w.sortKey = math.Inf(1)
			return
		}
		w.sortKey = math.Abs(w.Residual - median)
	case SortWeightedResidual:
		w.sortKey = (w.Residual - median) * w.Weight
	case SortLinearEstimate:
		if w.isBayesianSentinel {
			w.sortKey = math.Inf(1)
			return
		}
		w.sortKey = w.LinEstResidual
	case SortWeightedLinearEstimate:
		w.sortKey = (w.LinEstResidual - median) * w.LinEstWeight
	case SortDispersion:
		w.sortKey = (w.Residual - median) * w.Weight
	}
}

func (w *WeightedResidual) SortKey() float64 { return w.sortKey }

// Project folds other's residual/derivatives into this record scaled by
// eigElem (spec §4.3): residual += eigElem*other.residual, componentwise
// for derivatives.
func (w *WeightedResidual) Project(other *WeightedResidual, eigElem float64) {
	w.Residual += eigElem * other.Residual
	for i := 0; i < 3; i++ {
		w.Deriv[i] += eigElem * other.Deriv[i]
	}
}

// ProjectLinear folds only linEstResidual (spec §4.3).
func (w *WeightedResidual) ProjectLinear(other *WeightedResidual, eigElem float64) {
	w.LinEstResidual += eigElem * other.LinEstResidual
}

// ChangeSign flips residual and all derivative components (spec §4.2/§4.3
// eigenvector sign canonicalization).
func (w *WeightedResidual) ChangeSign() {
	w.Residual = -w.Residual
	for i := 0; i < 3; i++ {
		w.Deriv[i] = -w.Deriv[i]
	}
}

// TwoNorm returns the horizontal-only (lat,lon) Euclidean norm of the
// derivative vector (spec §4.2), used by the eigenvector sign check.
func (w *WeightedResidual) TwoNorm() float64 {
	return math.Hypot(w.Deriv[0], w.Deriv[1])
}

// Correlate returns the cosine similarity of the horizontal derivative
// vectors of w and other (spec §4.2).
func (w *WeightedResidual) Correlate(other *WeightedResidual) float64 {
	na, nb := w.TwoNorm(), other.TwoNorm()
	if na < 1e-12 || nb < 1e-12 {
		return 0
	}
	dot := w.Deriv[0]*other.Deriv[0] + w.Deriv[1]*other.Deriv[1]
	return dot / (na * nb)
}
