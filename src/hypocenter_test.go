package locate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHypocenterClampsDepth(t *testing.T) {
	h := NewHypocenter(0, 10, 20, -5)
	assert.Equal(t, DEPTHMIN, h.Depth)

	h2 := NewHypocenter(0, 10, 20, 10000)
	assert.Equal(t, DEPTHMAX, h2.Depth)
}

func TestNewHypocenterWrapsLon(t *testing.T) {
	h := NewHypocenter(0, 0, 190, 5)
	assert.InDelta(t, -170.0, h.Lon, 1e-9)
}

func TestNewHypocenterColatInvariant(t *testing.T) {
	h := NewHypocenter(0, 45, 0, 5)
	expectedColat := geographicToGeocentricColatitude(45)
	assert.InDelta(t, expectedColat, h.Colatitude(), 1e-9)
	assert.InDelta(t, math.Sin(expectedColat*D2R), h.SinColat(), 1e-9)
}

func TestSetBayesianDepthWeight(t *testing.T) {
	h := NewHypocenter(0, 0, 0, 10)
	h.SetBayesianDepth(15.0, 3.0)
	assert.True(t, h.HasBayesianDepth)
	assert.InDelta(t, 1.0, h.BayesianWeight, 1e-9)
	assert.InDelta(t, 5.0, h.BayesianResidual(), 1e-9)
}

func TestSetDepthResyncsBayesianResidual(t *testing.T) {
	h := NewHypocenter(0, 0, 0, 10)
	h.SetBayesianDepth(15.0, 3.0)
	h.SetDepth(12.0)
	assert.InDelta(t, 3.0, h.BayesianResidual(), 1e-9)
}

func TestNDOF(t *testing.T) {
	assert.Equal(t, 0, NDOF(true, false))
	assert.Equal(t, 0, NDOF(true, true))
	assert.Equal(t, 2, NDOF(false, true))
	assert.Equal(t, 3, NDOF(false, false))
}

func TestApplyStepUpdatesColatLonConsistently(t *testing.T) {
	h := NewHypocenter(100.0, 10.0, 20.0, 5.0)
	u := []float64{1.0, 0.0, 0.0}
	h.ApplyStep(10.0, u, 2.5, 3)

	assert.InDelta(t, 102.5, h.OriginTime, 1e-9)
	assert.InDelta(t, 2.5, h.LastOriginShift, 1e-9)
	wantSin, wantCos := math.Sincos(h.colat * D2R)
	assert.InDelta(t, wantSin, h.sinColat, 1e-9)
	assert.InDelta(t, wantCos, h.cosColat, 1e-9)
	assert.InDelta(t, geocentricColatitudeToGeographic(h.colat), h.Lat, 1e-9)
}

func TestApplyStepHeldDepthLeavesDepthUnchanged(t *testing.T) {
	h := NewHypocenter(0, 10, 20, 5.0)
	u := []float64{1.0, 0.0}
	h.ApplyStep(5.0, u, 0, 2)
	assert.Equal(t, 5.0, h.Depth)
	assert.Equal(t, 0.0, h.VerticalStep)
}

func TestApplyStepClampsDepthAtSurface(t *testing.T) {
	h := NewHypocenter(0, 10, 20, 1.0)
	u := []float64{0.0, 0.0, -1.0}
	h.ApplyStep(50.0, u, 0, 3)
	assert.Equal(t, DEPTHMIN, h.Depth)
}

func TestAuditTagString(t *testing.T) {
	assert.Equal(t, "INITIAL", AuditInitial.String())
	assert.Equal(t, "HELD", AuditHeld.String())
	assert.Equal(t, "INTERMEDIATE", AuditIntermediate.String())
	assert.Equal(t, "FINAL", AuditFinal.String())
}
