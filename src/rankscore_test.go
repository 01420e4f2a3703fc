package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankScoreSymmetricAboutZero(t *testing.T) {
	for _, u := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		assert.InDelta(t, -rankScore(u), rankScore(-u), 1e-9)
	}
}

func TestRankScoreZeroAtCenter(t *testing.T) {
	assert.Equal(t, 0.0, rankScore(0.0))
}

func TestRankScoreSaturatesInTails(t *testing.T) {
	assert.Equal(t, -1.0, rankScore(-2.0))
	assert.Equal(t, 1.0, rankScore(2.0))
	assert.Equal(t, -1.0, rankScore(-1.0))
	assert.Equal(t, 1.0, rankScore(1.0))
}

func TestRankScoreMonotoneNonDecreasing(t *testing.T) {
	prev := rankScore(-1.0)
	for u := -0.9; u <= 1.0; u += 0.1 {
		cur := rankScore(u)
		assert.GreaterOrEqual(t, cur, prev-1e-9)
		prev = cur
	}
}

func TestRankScoreForIndexSingleObservation(t *testing.T) {
	assert.Equal(t, 0.0, rankScoreForIndex(0, 1))
}

func TestRankScoreForIndexEndpointsAreExtremal(t *testing.T) {
	n := 9
	assert.InDelta(t, -1.0, rankScoreForIndex(0, n), 1e-9)
	assert.InDelta(t, 1.0, rankScoreForIndex(n-1, n), 1e-9)
}

func TestRankScoreForIndexMedianIsZero(t *testing.T) {
	n := 9
	mid := n / 2
	assert.InDelta(t, 0.0, rankScoreForIndex(mid, n), 1e-9)
}
