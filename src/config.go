package locate

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// StageThresholds is one entry of the three-stage convergence schedule
// (spec §4.5/§9): "stages {initial, refine, final}... defaults {1.0, 0.5,
// 0.2} km, {0.5, 0.25, 0.1} s, {10, 20, 20}."
type StageThresholds struct {
	StepKm      float64
	DispersionS float64
	IterCap     int
}

// EngineConfig is the driver-constructor argument spec §9's design note
// calls out by name, replacing the teacher's process-wide debug level
// (common.go's package-level trace state) with an explicit value threaded
// through the constructor.
type EngineConfig struct {
	Debug bool

	DampingBudget          int
	EigenvalueSumLimit     float64
	EigenvalueTopThreshold float64
	MaxPicksToDecorrelate  int
	MaxReidsPerStage       int

	Stages [3]StageThresholds

	// EnableExclusionProbe gates the RAIM-style single-pick exclusion
	// fallback before a SINGULAR_MATRIX is declared fatal (default off:
	// spec.md's scenario 3 expects a bare SINGULAR_MATRIX).
	EnableExclusionProbe bool

	EarthModel string
}

// DefaultEngineConfig returns the spec-default tunables (spec §4.3, §4.5,
// §4.6, §9).
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DampingBudget:          DefaultDampLimit,
		EigenvalueSumLimit:     DefaultEigenvalueSumLimit,
		EigenvalueTopThreshold: DefaultEigenvalueTopThreshold,
		MaxPicksToDecorrelate:  DefaultMaxPicksToDecorrelate,
		MaxReidsPerStage:       DefaultMaxReidsPerStage,
		Stages: [3]StageThresholds{
			{StepKm: 1.0, DispersionS: 0.5, IterCap: DefaultMaxIterationsPerStage},
			{StepKm: 0.5, DispersionS: 0.25, IterCap: 20},
			{StepKm: 0.2, DispersionS: 0.1, IterCap: 20},
		},
		EarthModel: "iasp91",
	}
}

// LoadEngineConfigFromEnv overlays DefaultEngineConfig with any
// LOCATEGO_-prefixed environment variables, loading a .env file first if
// present (grounded on jndunlap-gohypo's own godotenv-based runtime
// configuration). Unset or unparsable variables silently keep the default.
func LoadEngineConfigFromEnv() EngineConfig {
	_ = godotenv.Load()

	cfg := DefaultEngineConfig()

	if v, ok := os.LookupEnv("LOCATEGO_DEBUG"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if v, ok := os.LookupEnv("LOCATEGO_DAMPING_BUDGET"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DampingBudget = n
		}
	}
	if v, ok := os.LookupEnv("LOCATEGO_EIGENVALUE_SUM_LIMIT"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.EigenvalueSumLimit = f
		}
	}
	if v, ok := os.LookupEnv("LOCATEGO_EIGENVALUE_TOP_THRESHOLD"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.EigenvalueTopThreshold = f
		}
	}
	if v, ok := os.LookupEnv("LOCATEGO_MAX_PICKS_TO_DECORRELATE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxPicksToDecorrelate = n
		}
	}
	if v, ok := os.LookupEnv("LOCATEGO_MAX_REIDS_PER_STAGE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxReidsPerStage = n
		}
	}
	if v, ok := os.LookupEnv("LOCATEGO_ENABLE_EXCLUSION_PROBE"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnableExclusionProbe = b
		}
	}
	if v, ok := os.LookupEnv("LOCATEGO_EARTH_MODEL"); ok && v != "" {
		cfg.EarthModel = v
	}

	return cfg
}

func (c EngineConfig) decorrelatorConfig() DecorrelatorConfig {
	return DecorrelatorConfig{
		MaxPicksToDecorrelate:  c.MaxPicksToDecorrelate,
		EigenvalueSumLimit:     c.EigenvalueSumLimit,
		EigenvalueTopThreshold: c.EigenvalueTopThreshold,
	}
}
