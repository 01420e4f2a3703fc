package locate

import "math"

// SyntheticPredictor is the deterministic fixed travel-time model spec §8's
// concrete scenarios are defined against ("predictor is a fixed synthetic
// model"). It models travel time as a straight chord through a
// constant-velocity half-space — enough to exercise the core's geometry,
// derivative, and phase-relabeling machinery without a real ray tracer,
// the same role the teacher's DefaultProcOpt fixture plays for its own
// positioning math in unittest/.
type SyntheticPredictor struct {
	earthModel    string
	pVelocityKmS  float64
	reflectDeltaDeg float64
}

// NewSyntheticPredictor constructs a predictor with a nominal P-wave
// velocity; reflectDeltaDeg bounds the distance within which a PcP
// candidate is offered alongside P (spec scenario 5's re-ID path).
func NewSyntheticPredictor() *SyntheticPredictor {
	return &SyntheticPredictor{pVelocityKmS: 8.0, reflectDeltaDeg: 20.0}
}

func (p *SyntheticPredictor) SetSession(earthModelName string) error {
	p.earthModel = earthModelName
	return nil
}

func (p *SyntheticPredictor) Predict(depthKm, deltaDeg, stationElevKm float64) ([]PhaseCandidate, error) {
	distKm := deltaDeg * DEG2KM
	out := make([]PhaseCandidate, 0, 2)
	out = append(out, p.chordPhase("P", distKm, depthKm, stationElevKm, 1.0, 0.0))
	if deltaDeg <= p.reflectDeltaDeg {
		pcp := p.chordPhase("PcP", distKm, 2*depthKm, stationElevKm, 1.15, -0.3)
		pcp.DepthDeriv *= 2 // vertical leg is 2*depth, so ∂T/∂depth = 2·∂T/∂vertical
		out = append(out, pcp)
	}
	return out, nil
}

// chordPhase computes a straight-chord travel time of length
// sqrt(distKm^2 + verticalKm^2), scaled by pathScale to approximate a
// longer (e.g. reflected) ray, along with its derivatives with respect to
// delta and verticalKm (Predict rescales the latter to true depth when the
// vertical leg is not the depth itself).
func (p *SyntheticPredictor) chordPhase(code string, distKm, verticalKm, stationElevKm, pathScale, affinityBias float64) PhaseCandidate {
	chord := math.Hypot(distKm, verticalKm)
	pathLen := chord * pathScale
	t := pathLen/p.pVelocityKmS - stationElevKm/p.pVelocityKmS

	var dTdDelta, dTdDepth float64
	if chord > 1e-9 {
		dTdDelta = pathScale * distKm * DEG2KM / (p.pVelocityKmS * chord)
		dTdDepth = pathScale * verticalKm / (p.pVelocityKmS * chord)
	}

	return PhaseCandidate{
		Code:            code,
		Time:            t,
		Spread:          0.5,
		TangentialDeriv: dTdDelta,
		DepthDeriv:      dTdDepth,
		AffinityBias:    affinityBias,
	}
}
