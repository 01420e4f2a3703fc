package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAzimuthalCovarianceSelfIsOne(t *testing.T) {
	picks := []Pick{{Phase: "P"}, {Phase: "P"}}
	groups := []PickGroup{{PickLo: 0, PickHi: 2, AzimuthDeg: 30}}
	m := NewAzimuthalCovarianceModel(picks, groups)
	assert.Equal(t, 1.0, m.Covariance(0, 0))
}

func TestAzimuthalCovarianceOutOfRangeIsZero(t *testing.T) {
	picks := []Pick{{Phase: "P"}}
	groups := []PickGroup{{PickLo: 0, PickHi: 1, AzimuthDeg: 0}}
	m := NewAzimuthalCovarianceModel(picks, groups)
	assert.Equal(t, 0.0, m.Covariance(0, 5))
}

func TestAzimuthalCovarianceDecaysWithSeparation(t *testing.T) {
	picks := []Pick{{Phase: "P"}, {Phase: "P"}, {Phase: "P"}}
	groups := []PickGroup{
		{PickLo: 0, PickHi: 1, AzimuthDeg: 0},
		{PickLo: 1, PickHi: 2, AzimuthDeg: 10},
		{PickLo: 2, PickHi: 3, AzimuthDeg: 170},
	}
	m := NewAzimuthalCovarianceModel(picks, groups)
	closeCorr := m.Covariance(0, 1)
	farCorr := m.Covariance(0, 2)
	assert.Greater(t, closeCorr, farCorr)
}

func TestAzimuthalCovariancePhaseMismatchDiscount(t *testing.T) {
	picks := []Pick{{Phase: "P"}, {Phase: "S"}}
	groups := []PickGroup{
		{PickLo: 0, PickHi: 1, AzimuthDeg: 0},
		{PickLo: 1, PickHi: 2, AzimuthDeg: 0},
	}
	m := NewAzimuthalCovarianceModel(picks, groups)
	mismatched := m.Covariance(0, 1)

	samePicks := []Pick{{Phase: "P"}, {Phase: "P"}}
	m2 := NewAzimuthalCovarianceModel(samePicks, groups)
	matched := m2.Covariance(0, 1)

	assert.Less(t, mismatched, matched)
}

func TestAngularSeparationWraparound(t *testing.T) {
	assert.InDelta(t, 20.0, angularSeparation(350, 10), 1e-9)
	assert.InDelta(t, 0.0, angularSeparation(10, 10), 1e-9)
	assert.InDelta(t, 180.0, angularSeparation(0, 180), 1e-9)
}
