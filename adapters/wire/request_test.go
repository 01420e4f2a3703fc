package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locatego/src"
)

func validPick() Pick {
	return Pick{
		Site: Site{
			Station:   "ABC",
			Latitude:  35.0,
			Longitude: -120.0,
		},
		Time:        1000000,
		PickedPhase: "P",
		Use:         true,
	}
}

func TestRequestValidateSynthesizesIDs(t *testing.T) {
	req := &Request{
		SourceLat: 10.0,
		SourceLon: 20.0,
		InputData: []Pick{validPick()},
	}
	require.NoError(t, req.Validate())
	assert.NotEmpty(t, req.ID)
	assert.NotEmpty(t, req.InputData[0].ID)
}

func TestRequestValidatePreservesExistingIDs(t *testing.T) {
	req := &Request{
		ID:        "req-1",
		SourceLat: 10.0,
		SourceLon: 20.0,
		InputData: []Pick{validPick()},
	}
	pick := req.InputData[0]
	pick.ID = "pick-1"
	req.InputData[0] = pick

	require.NoError(t, req.Validate())
	assert.Equal(t, "req-1", req.ID)
	assert.Equal(t, "pick-1", req.InputData[0].ID)
}

func TestRequestValidateRejectsEmptyInputData(t *testing.T) {
	req := &Request{SourceLat: 10.0, SourceLon: 20.0}
	assert.Error(t, req.Validate())
}

func TestRequestValidateRejectsBadLatitude(t *testing.T) {
	req := &Request{SourceLat: 200.0, SourceLon: 20.0, InputData: []Pick{validPick()}}
	assert.Error(t, req.Validate())
}

func TestRequestValidateRejectsMissingSite(t *testing.T) {
	req := &Request{
		SourceLat: 10.0,
		SourceLon: 20.0,
		InputData: []Pick{{Time: 1, PickedPhase: "P"}},
	}
	assert.Error(t, req.Validate())
}

func TestToEngineInputsConvertsUnitsAndFields(t *testing.T) {
	req := &Request{
		SourceLat:        1.0,
		SourceLon:        2.0,
		SourceDepth:      15.0,
		SourceOriginTime: 5000,
		InputData:        []Pick{validPick()},
	}
	require.NoError(t, req.Validate())

	stations, picks, hypo := req.ToEngineInputs()
	require.Len(t, stations, 1)
	require.Len(t, picks, 1)

	assert.InDelta(t, 5.0, hypo.OriginTime, 1e-9)
	assert.Equal(t, "ABC", stations[0].Code)
	assert.InDelta(t, 1000.0, picks[0].ArrivalTime, 1e-9)
	assert.Equal(t, "P", picks[0].Phase)
	assert.True(t, picks[0].IsUsed)
}

func TestToEngineInputsSharesStationAcrossPhases(t *testing.T) {
	pPick := validPick()
	pPick.PickedPhase = "P"
	pPick.Time = 100000
	sPick := validPick()
	sPick.PickedPhase = "S"
	sPick.Time = 117300

	req := &Request{
		SourceLat: 10.0,
		SourceLon: 20.0,
		InputData: []Pick{pPick, sPick},
	}
	require.NoError(t, req.Validate())

	stations, picks, _ := req.ToEngineInputs()
	require.Len(t, stations, 1, "P and S from the same station must share one Station entry")
	require.Len(t, picks, 2)
	assert.Equal(t, picks[0].StationIdx, picks[1].StationIdx)
}

func TestToEngineInputsAssignsDistinctIndicesForDistinctStations(t *testing.T) {
	p1 := validPick()
	p2 := validPick()
	p2.Site.Station = "XYZ"

	req := &Request{
		SourceLat: 10.0,
		SourceLon: 20.0,
		InputData: []Pick{p1, p2},
	}
	require.NoError(t, req.Validate())

	stations, picks, _ := req.ToEngineInputs()
	require.Len(t, stations, 2)
	assert.NotEqual(t, picks[0].StationIdx, picks[1].StationIdx)
}

func TestBuildEngineAppliesRequestFlags(t *testing.T) {
	req := &Request{
		SourceLat:       1.0,
		SourceLon:       2.0,
		InputData:       []Pick{validPick()},
		IsLocationHeld:  true,
		IsDepthHeld:     true,
		UseSVD:          true,
		IsBayesianDepth: true,
		BayesianDepth:   30.0,
		BayesianSpread:  4.0,
	}
	require.NoError(t, req.Validate())

	predictor := locate.NewSyntheticPredictor()
	require.NoError(t, predictor.SetSession("test"))

	engine := req.BuildEngine(predictor, locate.DefaultEngineConfig())
	assert.True(t, engine.HeldLocation)
	assert.True(t, engine.HeldDepth)
	assert.True(t, engine.UseSVD)
	assert.True(t, engine.HasBayesian)
	assert.InDelta(t, 30.0, engine.BayesianDepth, 1e-9)
}

func TestParseAuthorTypeKnownAndDefault(t *testing.T) {
	assert.Equal(t, locate.LocalAutomatic, parseAuthorType("LocalAutomatic"))
	assert.Equal(t, locate.ContributedHuman, parseAuthorType("ContributedHuman"))
	assert.Equal(t, locate.LocalHuman, parseAuthorType("LocalHuman"))
	assert.Equal(t, locate.ContributedAutomatic, parseAuthorType("garbage"))
}
