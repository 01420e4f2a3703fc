package locate

import (
	"fmt"
	"math"
)

// affinityKeepBonus scales how strongly an analyst's affinity weight biases
// the interlock toward keeping a pick's originally-labeled phase over a
// marginally better-fitting candidate (spec §4.6 (a)).
const affinityKeepBonus = 2.0

// InterlockResult summarizes one phase-ID interlock pass (spec §4.6).
type InterlockResult struct {
	Changed        bool
	ChangedPickIDs []string
}

// RunPhaseID re-identifies every used pick's phase label against the
// current hypocenter (spec §4.6): invoked after any accepted step and at
// iteration entry. Unused picks are still sent through the predictor (their
// derivatives must stay current for if they're later re-enabled) but never
// count toward InterlockResult.Changed.
func RunPhaseID(picks []Pick, groups []PickGroup, stations []Station, h *Hypocenter, predictor TravelTimePredictor) (InterlockResult, error) {
	result := InterlockResult{}

	for gi := range groups {
		g := &groups[gi]
		station := &stations[g.StationIdx]

		candidates, err := predictor.Predict(h.Depth, g.DeltaDeg, station.Elev)
		if err != nil {
			return result, fmt.Errorf("locate: travel-time predictor failed for station %s: %w", station.ID(), err)
		}
		if len(candidates) == 0 {
			continue
		}

		for pi := g.PickLo; pi < g.PickHi; pi++ {
			p := &picks[pi]
			if p.IsTriaged() {
				continue
			}
			rel := *p
			rel.ArrivalTime -= h.OriginTime
			best := bestCandidate(candidates, &rel)
			p.Deriv = best.ResolveDeriv(g.AzimuthDeg, h.SinColat())
			p.travelTime = best.Time
			p.Residual = rel.ArrivalTime - best.Time
			if best.Spread > 0 {
				p.Weight = 1.0 / best.Spread
			}

			if p.IsUsed && best.Code != p.Phase {
				p.Phase = best.Code
				result.Changed = true
				result.ChangedPickIDs = append(result.ChangedPickIDs, p.ID)
			}
		}
	}

	return result, nil
}

// bestCandidate scores every candidate phase by fit quality plus affinity
// bias (spec §4.6 (a)): a candidate matching the pick's current label gets
// a bonus scaled by the pick's analyst affinity, so a high-affinity analyst
// pick resists relabeling even when a marginally better-fitting alternative
// phase exists. p's ArrivalTime is compared directly with each candidate's
// travel time, so RunPhaseID passes a copy whose arrival time is measured
// from the origin time.
func bestCandidate(candidates []PhaseCandidate, p *Pick) PhaseCandidate {
	best := candidates[0]
	bestScore := math.Inf(-1)
	for _, c := range candidates {
		spread := c.Spread
		if spread <= 0 {
			spread = 1.0
		}
		score := -math.Abs(p.ArrivalTime-c.Time)/spread + c.AffinityBias
		if c.Code == p.Phase {
			score += p.Affinity * affinityKeepBonus
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}
