package locate

import (
	"gonum.org/v1/gonum/mat"
)

// spatialIndices returns the Deriv/demedianedDeriv component indices
// (lat=0, lon=1, depth=2) active for ndof degrees of freedom.
func spatialIndices(ndof int) []int {
	if ndof <= 2 {
		return []int{0, 1}
	}
	return []int{0, 1, 2}
}

// StepOutcome is the accepted (or rejected) trial step from one call to
// Step (spec §4.5).
type StepOutcome struct {
	Status      LocStatus
	L           float64 /* km */
	U           []float64 /* unit direction, length ndof */
	DT          float64 /* origin-time shift, seconds */
	NumDampings int
	Dispersion  float64 /* dispersion after the accepted step */
}

// Step performs one linearized-stepper iteration (spec §4.5): assembles
// weighted normal equations, solves for the Newton step, then runs a
// damped line search accepting the first geometrically-halved trial length
// whose rank-sum dispersion beats the pre-step value.
//
// In projected mode (decorrelated residuals), externalDT is the origin-time
// shift already determined from the pre-decorrelation raw median (projected
// mode's demedianed derivatives cancel dT out of the normal equations
// entirely, per spec §4.5 step 1); it passes straight through to the
// outcome. In non-projected mode externalDT is ignored — the normal
// equations solve for dT jointly with the spatial components.
func Step(items []WeightedResidual, ndof int, projected bool, externalDT float64, dampLimit int) (StepOutcome, error) {
	idx := spatialIndices(ndof)
	includeDT := !projected

	N, g, ncols := assembleNormalEquations(items, idx, includeDT)

	x, err := solveNormalEquations(N, g, ncols)
	if err != nil {
		return StepOutcome{Status: StatusSingularMatrix}, nil
	}

	var dT float64
	spatial := x
	if includeDT {
		dT = x[0]
		spatial = x[1:]
	} else {
		dT = externalDT
	}

	L := Norm(spatial, len(spatial))
	uOut := make([]float64, ndof)
	if L > 1e-12 {
		for i, v := range spatial {
			uOut[idx[i]] = v / L
		}
	}

	preDispersion := Evaluate(items, projected, false).Dispersion

	outcome := StepOutcome{L: L, U: uOut, DT: dT, Status: StatusUnstableSolution}
	scale := 1.0
	for trial := 0; trial < dampLimit; trial++ {
		trialL := L * scale
		trialDT := dT
		if includeDT {
			trialDT = dT * scale
		}
		delta3 := deltaVector(uOut, trialL, ndof)
		evaluateTrial(items, delta3, trialDT, projected)

		trialDispersion := Evaluate(items, projected, true).Dispersion
		if trialDispersion < preDispersion {
			outcome.Status = StatusRunning
			outcome.L = trialL
			outcome.DT = trialDT
			outcome.NumDampings = trial
			outcome.Dispersion = trialDispersion
			return outcome, nil
		}
		scale /= 2.0
	}
	return outcome, nil
}

// assembleNormalEquations builds the weighted normal matrix N=AᵀA and
// right-hand side g=Aᵀ(w·r) for the given residual set (spec §4.5 steps
// 1-2), returning N alongside g and the column count so both Step and the
// final-fit ellipsoid routine (ellipsoid.go) can share one assembly path.
func assembleNormalEquations(items []WeightedResidual, idx []int, includeDT bool) (*mat.Dense, []float64, int) {
	ncols := len(idx)
	if includeDT {
		ncols++
	}

	A := Mat(len(items), ncols) /* column-major, rows = observations */
	wr := make([]float64, len(items))

	projected := !includeDT
	for row, item := range items {
		d := item.Deriv
		if projected {
			d = item.DemedianedDeriv()
		}
		col := 0
		if includeDT {
			A[row+col*len(items)] = item.Weight * 1.0
			col++
		}
		for _, c := range idx {
			A[row+col*len(items)] = item.Weight * d[c]
			col++
		}
		wr[row] = item.Weight * item.Residual
	}

	nDense := mat.NewDense(len(items), ncols, toRowMajor(A, len(items), ncols))
	var N mat.Dense
	N.Mul(nDense.T(), nDense)
	g := make([]float64, ncols)
	gVec := mat.NewVecDense(ncols, nil)
	gVec.MulVec(nDense.T(), mat.NewVecDense(len(items), wr))
	for i := 0; i < ncols; i++ {
		g[i] = gVec.AtVec(i)
	}
	return &N, g, ncols
}

// deltaVector expands a (possibly 2-element) unit direction scaled by L
// into a full [lat,lon,depth] delta, zero in the held-depth slot.
func deltaVector(u []float64, L float64, ndof int) [3]float64 {
	var d [3]float64
	for i := 0; i < ndof && i < 3; i++ {
		d[i] = L * u[i]
	}
	return d
}

// evaluateTrial updates every item's LinEstResidual/LinEstWeight for a
// trial step, accounting for the origin-time shift that UpdateLinearEstimate
// itself has no notion of (spec §4.2 defines LinEstResidual purely in terms
// of spatial derivatives).
//
// In projected mode the origin-time bias is already folded into every
// residual by buildWorkingSet's pre-decorrelation demedianing, so it must
// not be subtracted again here — doing so double-counts the shift on every
// trial and corrupts the dispersion comparison the line search relies on.
// Only the non-projected path, whose residuals are still raw, subtracts the
// trial's origin-time step directly.
func evaluateTrial(items []WeightedResidual, delta3 [3]float64, trialDT float64, projected bool) {
	delta := delta3[:]
	for i := range items {
		tmp := items[i]
		if !projected {
			tmp.Residual -= trialDT
		}
		tmp.UpdateLinearEstimate(delta, projected)
		items[i].LinEstResidual = tmp.LinEstResidual
		items[i].UpdateLinearWeight(delta)
	}
}

// solveNormalEquations solves N*x=g via Cholesky, falling back to the
// teacher's LU-based SolveSmall for matrices Cholesky rejects as
// non-positive-definite but that are not exactly singular.
func solveNormalEquations(N *mat.Dense, g []float64, n int) ([]float64, error) {
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, N.At(i, j))
		}
	}
	var chol mat.Cholesky
	if chol.Factorize(sym) {
		var x mat.VecDense
		if err := chol.SolveVecTo(&x, mat.NewVecDense(n, g)); err == nil {
			out := make([]float64, n)
			for i := 0; i < n; i++ {
				out[i] = x.AtVec(i)
			}
			return out, nil
		}
	}

	flat := Mat(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			flat[i+j*n] = N.At(i, j)
		}
	}
	x := make([]float64, n)
	if SolveSmall(flat, g, n, x) != 0 {
		return nil, errSingular
	}
	return x, nil
}

var errSingular = &singularMatrixError{}

type singularMatrixError struct{}

func (*singularMatrixError) Error() string { return "locate: singular normal matrix" }

// toRowMajor converts the column-major Mat() layout into the row-major
// flat slice gonum's mat.NewDense expects.
func toRowMajor(colMajor []float64, rows, cols int) []float64 {
	out := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i*cols+j] = colMajor[i+j*rows]
		}
	}
	return out
}
