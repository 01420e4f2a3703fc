// Package wire defines the JSON-compatible request/response structs for the
// locate engine's host boundary, validated the way de-bkg-gognss validates
// its site-log structs: struct tags plus a single shared validator.Validate
// instance.
package wire

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"locatego/src"
)

var validate = validator.New()

// Site mirrors spec §6's Pick.site sub-object.
type Site struct {
	Station   string  `json:"station" validate:"required"`
	Channel   string  `json:"channel"`
	Network   string  `json:"network"`
	Location  string  `json:"location"`
	Latitude  float64 `json:"latitude" validate:"required,latitude"`
	Longitude float64 `json:"longitude" validate:"required,longitude"`
	Elevation float64 `json:"elevation"`
}

// Source mirrors spec §6's Pick.source sub-object.
type Source struct {
	Agency     string `json:"agency"`
	Author     string `json:"author"`
	AuthorType string `json:"authorType" validate:"omitempty,oneof=ContributedAutomatic LocalAutomatic ContributedHuman LocalHuman"`
}

// Pick is the wire representation of one reported phase arrival (spec §6).
type Pick struct {
	ID              string  `json:"id"`
	Site            Site    `json:"site" validate:"required"`
	Source          Source  `json:"source"`
	Time            int64   `json:"time" validate:"required"` /* UTC ms */
	Affinity        float64 `json:"affinity"`
	Quality         float64 `json:"quality"`
	Use             bool    `json:"use"`
	PickedPhase     string  `json:"pickedPhase" validate:"required"`
	AssociatedPhase string  `json:"associatedPhase"`
}

// Request is the wire representation of a relocation request (spec §6).
type Request struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	EarthModel       string  `json:"earthModel"`
	SourceLat        float64 `json:"sourceLat" validate:"latitude"`
	SourceLon        float64 `json:"sourceLon" validate:"longitude"`
	SourceOriginTime int64   `json:"sourceOriginTime"` /* UTC ms */
	SourceDepth      float64 `json:"sourceDepth"`
	IsLocationNew    bool    `json:"isLocationNew"`
	IsLocationHeld   bool    `json:"isLocationHeld"`
	IsDepthHeld      bool    `json:"isDepthHeld"`
	IsBayesianDepth  bool    `json:"isBayesianDepth"`
	BayesianDepth    float64 `json:"bayesianDepth"`
	BayesianSpread   float64 `json:"bayesianSpread"`
	UseSVD           bool    `json:"useSVD"`
	InputData        []Pick  `json:"inputData" validate:"required,min=1,dive"`
}

// Validate runs struct-tag validation and synthesizes any missing IDs
// (spec.md is silent on ID generation; grounded on the teacher's own
// `gnssgo_app` use of google/uuid for run identifiers).
func (r *Request) Validate() error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	for i := range r.InputData {
		if r.InputData[i].ID == "" {
			r.InputData[i].ID = uuid.NewString()
		}
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("wire: invalid request: %w", err)
	}
	return nil
}

// stationKey identifies a physical station by network/code/location, the
// same triple Station.ID concatenates, so multiple phases reported from one
// station share a single PickGroup (spec §3) instead of each pick minting
// its own singleton station.
type stationKey struct {
	network, code, loc string
}

// ToEngineInputs translates the validated wire request into the core
// package's Station/Pick/Hypocenter construction inputs.
func (r *Request) ToEngineInputs() (stations []locate.Station, picks []locate.Pick, hypo *locate.Hypocenter) {
	originTime := float64(r.SourceOriginTime) / 1000.0
	hypo = locate.NewHypocenter(originTime, r.SourceLat, r.SourceLon, r.SourceDepth)

	byStation := make(map[stationKey]int, len(r.InputData))
	picks = make([]locate.Pick, len(r.InputData))
	for i, p := range r.InputData {
		key := stationKey{p.Site.Network, p.Site.Station, p.Site.Location}
		idx, ok := byStation[key]
		if !ok {
			idx = len(stations)
			stations = append(stations, locate.NewStation(p.Site.Station, p.Site.Network, p.Site.Location, p.Site.Latitude, p.Site.Longitude, p.Site.Elevation))
			byStation[key] = idx
		}
		picks[i] = locate.Pick{
			ID:            p.ID,
			StationIdx:    idx,
			ArrivalTime:   float64(p.Time) / 1000.0,
			Phase:         p.PickedPhase,
			OriginalPhase: p.PickedPhase,
			Author:        parseAuthorType(p.Source.AuthorType),
			IsUsed:        p.Use,
			Affinity:      p.Affinity,
			Quality:       p.Quality,
		}
	}
	return stations, picks, hypo
}

// BuildEngine constructs a ready-to-run locate.Engine from a validated
// Request, applying the held-location/held-depth/Bayesian-depth/useSVD
// flags spec §6 attaches to the request rather than to EngineConfig.
func (r *Request) BuildEngine(predictor locate.TravelTimePredictor, cfg locate.EngineConfig) *locate.Engine {
	stations, picks, hypo := r.ToEngineInputs()
	e := locate.NewEngine(stations, picks, hypo, predictor, cfg)
	e.HeldLocation = r.IsLocationHeld
	e.HeldDepth = r.IsDepthHeld
	e.UseSVD = r.UseSVD
	if r.IsBayesianDepth {
		e.HasBayesian = true
		e.BayesianDepth = r.BayesianDepth
		e.BayesianSpread = r.BayesianSpread
	}
	return e
}

func parseAuthorType(s string) locate.AuthorType {
	switch s {
	case "LocalAutomatic":
		return locate.LocalAutomatic
	case "ContributedHuman":
		return locate.ContributedHuman
	case "LocalHuman":
		return locate.LocalHuman
	default:
		return locate.ContributedAutomatic
	}
}
