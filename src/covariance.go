package locate

import "math"

// azimuthalCovarianceScale controls how quickly the kernel decays with
// angular separation; picks arriving from similar azimuths share more of
// their ray path through the near-source medium and are treated as more
// correlated.
const azimuthalCovarianceScale = 45.0

// phaseMismatchPenalty discounts correlation between picks whose current
// phase labels differ, since they sample different ray geometries even
// when reported from similar azimuths.
const phaseMismatchPenalty = 0.5

// AzimuthalCovarianceModel implements CovarianceModel (spec §4.3's "the
// caller's covariance model") from pick azimuth and phase alone: an
// exponential decay in angular separation between two picks' source-to-
// receiver azimuths, discounted when their phase labels disagree. Spec §9
// Open Question (a) leaves the exact kernel externally supplied; this is
// the package's own reconstitution rather than a guess at a
// network-specific calibration (see DESIGN.md).
type AzimuthalCovarianceModel struct {
	picks  []Pick
	groups []PickGroup
}

// NewAzimuthalCovarianceModel builds the kernel from the current pick
// arena and pick-group geometry; it must be rebuilt whenever PickGroup
// azimuths are recomputed for a new hypocenter.
func NewAzimuthalCovarianceModel(picks []Pick, groups []PickGroup) *AzimuthalCovarianceModel {
	return &AzimuthalCovarianceModel{picks: picks, groups: groups}
}

func (m *AzimuthalCovarianceModel) azimuthFor(pickIndex int) float64 {
	for i := range m.groups {
		g := &m.groups[i]
		if pickIndex >= g.PickLo && pickIndex < g.PickHi {
			return g.AzimuthDeg
		}
	}
	return 0
}

func (m *AzimuthalCovarianceModel) Covariance(i, j int) float64 {
	if i == j {
		return 1.0
	}
	if i < 0 || j < 0 || i >= len(m.picks) || j >= len(m.picks) {
		return 0
	}
	daz := angularSeparation(m.azimuthFor(i), m.azimuthFor(j))
	corr := math.Exp(-daz / azimuthalCovarianceScale)
	if m.picks[i].Phase != m.picks[j].Phase {
		corr *= phaseMismatchPenalty
	}
	return corr
}

// angularSeparation returns the absolute shortest angular distance (deg)
// between two azimuths in [0,360).
func angularSeparation(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360.0)
	if d > 180.0 {
		d = 360.0 - d
	}
	return d
}
