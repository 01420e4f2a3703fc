package locate

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ConfidenceScale converts the inverse-normal-matrix eigenvalues into km
// semi-axis lengths; 2.79 is the standard chi-square(3) 95% confidence
// radius used by NEIC-style location error ellipsoids.
const ConfidenceScale = 2.79

// Ellipsoid is the error-ellipsoid companion result (spec §1: "a companion
// routine, not part of the iterative core"). SemiAxesKm and Directions
// share an index: Directions' column i is the unit direction of
// SemiAxesKm[i].
type Ellipsoid struct {
	SemiAxesKm []float64
	Directions *mat.Dense
}

// ComputeEllipsoid derives a confidence ellipsoid from the final iteration's
// weighted residual set via a second symmetric eigendecomposition of the
// normal matrix (spec §4.7/§7: failure here is non-fatal, mapped to
// ELLIPSOID_FAILED -> ERRORS_NOT_COMPUTED rather than aborting the whole
// location). The normal matrix is assembled the same way the stepper
// assembles it for the final accepted step, over the full (non-demedianed)
// spatial+origin-time system so the ellipsoid reflects the complete
// parameter covariance.
func ComputeEllipsoid(items []WeightedResidual, ndof int) (Ellipsoid, LocStatus) {
	idx := spatialIndices(ndof)
	N, _, ncols := assembleNormalEquations(items, idx, true)

	sym := mat.NewSymDense(ncols, nil)
	for i := 0; i < ncols; i++ {
		for j := i; j < ncols; j++ {
			sym.SetSym(i, j, N.At(i, j))
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return Ellipsoid{}, StatusEllipsoidFailed
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	axes := make([]float64, ncols)
	for i, lambda := range values {
		if lambda <= 0 {
			return Ellipsoid{}, StatusEllipsoidFailed
		}
		axes[i] = ConfidenceScale / math.Sqrt(lambda)
	}

	return Ellipsoid{SemiAxesKm: axes, Directions: &vectors}, StatusSuccess
}
