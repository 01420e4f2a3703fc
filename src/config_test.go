package locate

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultEngineConfigStageThresholdsTighten(t *testing.T) {
	cfg := DefaultEngineConfig()
	assert.Greater(t, cfg.Stages[0].StepKm, cfg.Stages[1].StepKm)
	assert.Greater(t, cfg.Stages[1].StepKm, cfg.Stages[2].StepKm)
	assert.Greater(t, cfg.Stages[0].DispersionS, cfg.Stages[1].DispersionS)
	assert.Greater(t, cfg.Stages[1].DispersionS, cfg.Stages[2].DispersionS)
}

func TestDefaultEngineConfigExclusionProbeOffByDefault(t *testing.T) {
	cfg := DefaultEngineConfig()
	assert.False(t, cfg.EnableExclusionProbe)
}

func TestLoadEngineConfigFromEnvOverridesDefaults(t *testing.T) {
	os.Setenv("LOCATEGO_DEBUG", "true")
	os.Setenv("LOCATEGO_DAMPING_BUDGET", "7")
	os.Setenv("LOCATEGO_EARTH_MODEL", "ak135")
	defer func() {
		os.Unsetenv("LOCATEGO_DEBUG")
		os.Unsetenv("LOCATEGO_DAMPING_BUDGET")
		os.Unsetenv("LOCATEGO_EARTH_MODEL")
	}()

	cfg := LoadEngineConfigFromEnv()
	assert.True(t, cfg.Debug)
	assert.Equal(t, 7, cfg.DampingBudget)
	assert.Equal(t, "ak135", cfg.EarthModel)
}

func TestLoadEngineConfigFromEnvIgnoresUnparsable(t *testing.T) {
	os.Setenv("LOCATEGO_DAMPING_BUDGET", "not-a-number")
	defer os.Unsetenv("LOCATEGO_DAMPING_BUDGET")

	cfg := LoadEngineConfigFromEnv()
	assert.Equal(t, DefaultDampLimit, cfg.DampingBudget)
}

func TestDecorrelatorConfigMirrorsEngineConfig(t *testing.T) {
	cfg := DefaultEngineConfig()
	dc := cfg.decorrelatorConfig()
	assert.Equal(t, cfg.MaxPicksToDecorrelate, dc.MaxPicksToDecorrelate)
	assert.Equal(t, cfg.EigenvalueSumLimit, dc.EigenvalueSumLimit)
	assert.Equal(t, cfg.EigenvalueTopThreshold, dc.EigenvalueTopThreshold)
}
