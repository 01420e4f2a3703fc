package locate

import "math"

// Physical and geometric constants, following the teacher library's habit of
// collecting these at package scope rather than threading them through
// function arguments.
const (
	PI  float64 = math.Pi
	D2R float64 = PI / 180.0 /* deg to rad */
	R2D float64 = 180.0 / PI /* rad to deg */

	DEG2KM float64 = 111.194 /* deg of arc to km, spherical earth */

	// WGS-84 flattening, used only to convert geographic to geocentric
	// colatitude; the travel-time predictor is assumed to bake the same
	// constant into its own ellipsoid corrections.
	FE_WGS84 float64 = 1.0 / 298.257223563

	DEPTHMIN float64 = 0.0   /* km */
	DEPTHMAX float64 = 750.0 /* km */
)

// Engine-wide tunables with the teacher's defaults-as-constants style
// (PrcOpt/SolOpt fields are likewise seeded from package constants in
// DefaultProcOpt/DefaultSolOpt).
const (
	DefaultMaxPicksToDecorrelate   = 450
	DefaultEigenvalueSumLimit      = 0.95
	DefaultEigenvalueTopThreshold  = 0.01
	DefaultDampLimit               = 5
	DefaultMaxReidsPerStage        = 3
	DefaultMaxIterationsPerStage   = 10
	DTOL                           = 1e-6 /* eigenvector coefficient tolerance, §4.3 sign canonicalization */
	SignCanonAmbiguousCorrBand     = 0.05
	SignCanonAmbiguousDepthDerivTh = 1e-4
)
