package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocStatusInternalExternalDisjoint(t *testing.T) {
	assert.True(t, StatusSuccess.IsInternal())
	assert.False(t, StatusSuccess.IsExternal())
	assert.True(t, SuccessfulLocation.IsExternal())
	assert.False(t, SuccessfulLocation.IsInternal())
}

func TestLocStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusSuccess.IsTerminal())
	assert.True(t, StatusSingularMatrix.IsTerminal())
	assert.False(t, StatusRunning.IsTerminal())
	assert.False(t, StatusPhaseIDChanged.IsTerminal())
}

func TestToExternalMapping(t *testing.T) {
	assert.Equal(t, SuccessfulLocation, StatusSuccess.ToExternal())
	assert.Equal(t, SuccessfulLocation, StatusNearlyConverged.ToExternal())
	assert.Equal(t, DidNotMove, StatusDidNotMove.ToExternal())
	assert.Equal(t, LocationFailed, StatusSingularMatrix.ToExternal())
	assert.Equal(t, NotEnoughUseableData, StatusInsufficientData.ToExternal())
	assert.Equal(t, DidNotConverge, StatusUnstableSolution.ToExternal())
	assert.Equal(t, ErrorsNotComputed, StatusEllipsoidFailed.ToExternal())
}

func TestToExternalUnknownDefaultsToLocationFailed(t *testing.T) {
	assert.Equal(t, LocationFailed, StatusPhaseIDChanged.ToExternal())
}

func TestLocStatusStringKnownValues(t *testing.T) {
	assert.Equal(t, "SUCCESS", StatusSuccess.String())
	assert.Equal(t, "SUCCESSFUL_LOCATION", SuccessfulLocation.String())
	assert.Equal(t, "SINGULAR_MATRIX", StatusSingularMatrix.String())
}

func TestLocStatusStringUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", LocStatus(-99).String())
}
