package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locatego/adapters/wire"
	"locatego/src"
)

func pickAt(station string, lat, lon float64, arrival float64) wire.Pick {
	return wire.Pick{
		Site:        wire.Site{Station: station, Latitude: lat, Longitude: lon},
		Time:        int64(arrival * 1000.0),
		PickedPhase: "P",
		Use:         true,
	}
}

func TestRunAllPreservesInputOrder(t *testing.T) {
	predictor := locate.NewSyntheticPredictor()
	require.NoError(t, predictor.SetSession("test"))
	runner := NewRunner(locate.DefaultEngineConfig(), predictor, 2)

	reqs := make([]wire.Request, 5)
	for i := range reqs {
		reqs[i] = wire.Request{
			ID:        "req",
			SourceLat: 10.0,
			SourceLon: 20.0,
			InputData: []wire.Pick{
				pickAt("AAA", 40.0, 20.0, 100.0),
				pickAt("BBB", 41.0, 21.0, 101.0),
				pickAt("CCC", 39.0, 19.0, 99.0),
				pickAt("DDD", 42.0, 22.0, 102.0),
			},
		}
	}

	results := runner.RunAll(context.Background(), reqs)
	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.NoError(t, r.Err)
	}
}

func TestRunAllCarriesPerRequestValidationError(t *testing.T) {
	predictor := locate.NewSyntheticPredictor()
	require.NoError(t, predictor.SetSession("test"))
	runner := NewRunner(locate.DefaultEngineConfig(), predictor, 0)

	reqs := []wire.Request{
		{SourceLat: 10.0, SourceLon: 20.0}, // no InputData: fails validation
	}
	results := runner.RunAll(context.Background(), reqs)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestRunAllDefaultsWorkerCountWhenZero(t *testing.T) {
	predictor := locate.NewSyntheticPredictor()
	require.NoError(t, predictor.SetSession("test"))
	runner := NewRunner(locate.DefaultEngineConfig(), predictor, 0)
	assert.Equal(t, 0, runner.Workers)

	reqs := []wire.Request{
		{
			SourceLat: 10.0, SourceLon: 20.0,
			InputData: []wire.Pick{pickAt("AAA", 40.0, 20.0, 100.0)},
		},
	}
	results := runner.RunAll(context.Background(), reqs)
	require.Len(t, results, 1)
}
