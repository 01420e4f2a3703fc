package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPhaseIDUpdatesResidualsAndWeights(t *testing.T) {
	stations := []Station{NewStation("AAA", "XX", "", 1.0, 0.0, 0.0)}
	h := NewHypocenter(0, 0, 0, 10)
	groups := []PickGroup{{StationIdx: 0, PickLo: 0, PickHi: 1}}
	groups[0].RecomputeGeometry(h, stations)

	picks := []Pick{{ID: "p1", StationIdx: 0, ArrivalTime: 20.0, Phase: "P", IsUsed: true}}
	predictor := NewSyntheticPredictor()
	require.NoError(t, predictor.SetSession("iasp91"))

	_, err := RunPhaseID(picks, groups, stations, h, predictor)
	require.NoError(t, err)
	assert.NotEqual(t, 0.0, picks[0].travelTime)
	assert.Greater(t, picks[0].Weight, 0.0)
}

func TestRunPhaseIDSkipsTriagedPicks(t *testing.T) {
	stations := []Station{NewStation("AAA", "XX", "", 1.0, 0.0, 0.0)}
	h := NewHypocenter(0, 0, 0, 10)
	groups := []PickGroup{{StationIdx: 0, PickLo: 0, PickHi: 1}}
	groups[0].RecomputeGeometry(h, stations)

	picks := []Pick{{ID: "p1", StationIdx: 0, ArrivalTime: 20.0, Phase: "P", IsUsed: true, triaged: true}}
	predictor := NewSyntheticPredictor()
	require.NoError(t, predictor.SetSession("iasp91"))

	_, err := RunPhaseID(picks, groups, stations, h, predictor)
	require.NoError(t, err)
	assert.Equal(t, 0.0, picks[0].travelTime)
}

func TestBestCandidateAffinityResistsRelabel(t *testing.T) {
	candidates := []PhaseCandidate{
		{Code: "P", Time: 20.0, Spread: 0.5},
		{Code: "PcP", Time: 20.05, Spread: 0.5},
	}
	p := &Pick{ArrivalTime: 20.05, Phase: "P", Affinity: 10.0}
	best := bestCandidate(candidates, p)
	assert.Equal(t, "P", best.Code)
}

func TestBestCandidateNoAffinityPicksClosestFit(t *testing.T) {
	candidates := []PhaseCandidate{
		{Code: "P", Time: 20.0, Spread: 0.5},
		{Code: "PcP", Time: 20.05, Spread: 0.5},
	}
	p := &Pick{ArrivalTime: 20.05, Phase: "P", Affinity: 0.0}
	best := bestCandidate(candidates, p)
	assert.Equal(t, "PcP", best.Code)
}
