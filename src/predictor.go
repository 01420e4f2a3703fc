package locate

import "math"

// PhaseCandidate is one candidate phase identification for a pick, as
// returned by the travel-time predictor (spec §6): a named ray path with a
// predicted arrival time, its robust scale, derivatives with respect to the
// hypocentral parameters, and a bias the interlock uses to favor keeping an
// analyst's original label.
type PhaseCandidate struct {
	Code            string
	Time            float64 /* predicted travel time from the source, seconds */
	Spread          float64 /* predicted robust scale, seconds */
	TangentialDeriv float64 /* ∂T/∂Δ, s/deg — resolved into ∂T/∂lat,∂T/∂lon via the pick's azimuth */
	DepthDeriv      float64 /* ∂T/∂depth, s/km */
	AffinityBias    float64 /* additive score bonus for matching the analyst's reported phase */
}

// ResolveDeriv converts a predictor's (radial, depth) derivative pair into
// the (lat, lon, depth) basis WeightedResidual.Deriv expects, using the
// pick's azimuth from source to station (spec §4.1/§4.6: "azimuthal context
// supplied by the PickGroup"). Colatitude increases southward, so a
// positive radial step towards the station (azimuth az) decreases
// colatitude by cos(az) and increases longitude by sin(az)/sinColat;
// ∂T/∂lat = -∂T/∂colat.
func (c PhaseCandidate) ResolveDeriv(azimuthDeg, sinColat float64) [3]float64 {
	azRad := azimuthDeg * D2R
	dTdColat := c.TangentialDeriv * math.Cos(azRad)
	dTdLon := c.TangentialDeriv * math.Sin(azRad) * sinColat
	return [3]float64{-dTdColat, dTdLon, c.DepthDeriv}
}

// TravelTimePredictor is the core's sole window onto ray-path physics (spec
// §1/§6): "the travel-time predictor that, given a hypocenter and station,
// returns travel time and its partial derivatives for each candidate phase
// and an identification score." The core treats it as a pure function of
// its inputs once a session handle is established; it must not be shared
// across concurrently-running engines unless the implementation itself
// provides per-call isolation (spec §5).
type TravelTimePredictor interface {
	// SetSession establishes (or switches) the earth model the predictor
	// uses for subsequent Predict calls.
	SetSession(earthModelName string) error

	// Predict returns every candidate phase consistent with the given
	// source depth, distance, and station elevation.
	Predict(hypocenterDepthKm, deltaDeg, stationElevKm float64) ([]PhaseCandidate, error)
}
