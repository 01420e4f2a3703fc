package locate

// AuthorType biases analyst affinity weighting in the phase-ID interlock
// (spec §3 Pick, §4.6), mirrored from the wire Request.Pick.source.authorType
// enum in spec §6.
type AuthorType int

const (
	ContributedAutomatic AuthorType = iota
	LocalAutomatic
	ContributedHuman
	LocalHuman
)

// Pick is one reported phase arrival, held in a flat arena slice owned by
// the Engine (spec §9 design note) rather than linked by pointer; PickGroup
// and WeightedResidual both reference picks by index into that slice, the
// same way the teacher's ObsD/Eph records are addressed by satellite index
// rather than pointer chains (see common.go's GetTgd, which walks nav.Ephs
// by index to find a matching satellite).
type Pick struct {
	ID         string
	StationIdx int /* index into Engine.stations */

	ArrivalTime float64 /* seconds since epoch */

	Phase         string /* current phase code, mutated by the interlock */
	OriginalPhase string /* phase code as reported, never mutated */
	Author        AuthorType

	IsUsed   bool
	Affinity float64 /* analyst affinity weight, biases interlock relabeling */
	Quality  float64 /* quality sigma, seconds */

	triaged bool /* set permanently once excluded by decorrelation triage */

	travelTime float64
	Residual   float64
	Weight     float64

	// Spatial derivatives ∂T/∂lat,∂T/∂lon,∂T/∂depth (s/deg, s/deg, s/km),
	// resolved from the predictor's (radial,depth) derivative pair via the
	// pick's azimuth (see PhaseCandidate.ResolveDeriv). SpreadDeriv is left
	// zero: the predictor interface (spec §6) reports a scalar spread per
	// candidate but no spread derivative, so the weight update in
	// WeightedResidual.UpdateLinearWeight degrades gracefully to a constant
	// weight during the line search.
	Deriv       [3]float64
	SpreadDeriv [3]float64

	Importance float64
}

// IsTriaged reports whether decorrelation triage has permanently excluded
// this pick for the remainder of the current relocation run.
func (p *Pick) IsTriaged() bool { return p.triaged }
