// Command neicloc locates earthquake hypocenters from Hydra or JSON pick
// files, single-event or batch, following the teacher's own
// app/rnx2rtkp command-line voice (help text registered against the
// option list) but built on urfave/cli/v2 (grounded on de-bkg-gognss's
// cmd/rnxgo and sixy6e-go-gsf's cmd/main.go, both cli/v2-based CLIs)
// instead of the teacher's own flag-package surface.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"locatego/adapters/batch"
	"locatego/adapters/hydra"
	"locatego/adapters/wire"
	"locatego/src"
)

var progname = "neicloc"

func main() {
	app := &cli.App{
		Name:  progname,
		Usage: "relocate earthquake hypocenters from Hydra or JSON pick files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "modelPath", Usage: "path to the travel-time model directory"},
			&cli.StringFlag{Name: "filePath", Usage: "input file path (single mode)"},
			&cli.StringFlag{Name: "fileType", Value: "json", Usage: "input format: hydra|json"},
			&cli.StringFlag{Name: "mode", Value: "single", Usage: "single|batch"},
			&cli.StringFlag{Name: "inputDir", Usage: "input directory (batch mode)"},
			&cli.StringFlag{Name: "outputDir", Usage: "output directory for Response JSON"},
			&cli.StringFlag{Name: "archiveDir", Usage: "directory to move processed input files into"},
			&cli.StringFlag{Name: "logLevel", Value: "info", Usage: "debug|info|quiet"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(locate.LocationFailed))
	}
}

func run(c *cli.Context) error {
	cfg := locate.LoadEngineConfigFromEnv()
	cfg.Debug = c.String("logLevel") == "debug"
	if m := c.String("modelPath"); m != "" {
		cfg.EarthModel = m
	}

	predictor := locate.NewSyntheticPredictor()
	if err := predictor.SetSession(cfg.EarthModel); err != nil {
		return exitError(locate.BadReadTTData, err)
	}

	switch c.String("mode") {
	case "single":
		return runSingle(c, cfg, predictor)
	case "batch":
		return runBatch(c, cfg, predictor)
	default:
		return exitError(locate.BadEventInput, fmt.Errorf("unknown mode %q", c.String("mode")))
	}
}

func runSingle(c *cli.Context, cfg locate.EngineConfig, predictor locate.TravelTimePredictor) error {
	path := c.String("filePath")
	if path == "" {
		return exitError(locate.BadEventInput, fmt.Errorf("--filePath is required in single mode"))
	}

	req, err := loadRequest(path, c.String("fileType"))
	if err != nil {
		return exitError(locate.BadEventInput, err)
	}
	if err := req.Validate(); err != nil {
		return exitError(locate.BadEventInput, err)
	}

	engine := req.BuildEngine(predictor, cfg)
	result := engine.Run(context.Background())
	resp := wire.FromEngineResult(req.ID, result)

	if err := writeResponse(c.String("outputDir"), req.ID, resp); err != nil {
		return exitError(locate.LocationFailed, err)
	}
	archiveInput(path, c.String("archiveDir"))

	os.Exit(int(result.Status))
	return nil
}

func runBatch(c *cli.Context, cfg locate.EngineConfig, predictor locate.TravelTimePredictor) error {
	dir := c.String("inputDir")
	if dir == "" {
		return exitError(locate.BadEventInput, fmt.Errorf("--inputDir is required in batch mode"))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return exitError(locate.BadEventInput, err)
	}

	var paths []string
	var reqs []wire.Request
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name())
		req, err := loadRequest(p, c.String("fileType"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", p, err)
			continue
		}
		paths = append(paths, p)
		reqs = append(reqs, req)
	}

	runner := batch.NewRunner(cfg, predictor, 0)
	results := runner.RunAll(context.Background(), reqs)

	worstStatus := locate.SuccessfulLocation
	for i, res := range results {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", paths[i], res.Err)
			worstStatus = locate.LocationFailed
			continue
		}
		if err := writeResponse(c.String("outputDir"), res.Response.RequestID, res.Response); err != nil {
			fmt.Fprintf(os.Stderr, "%s: write failed: %v\n", paths[i], err)
			continue
		}
		archiveInput(paths[i], c.String("archiveDir"))
	}

	os.Exit(int(worstStatus))
	return nil
}

func loadRequest(path, fileType string) (wire.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return wire.Request{}, err
	}
	defer f.Close()

	switch fileType {
	case "hydra":
		stations, picks, err := hydra.ReadPicks(f)
		if err != nil {
			return wire.Request{}, err
		}
		return requestFromStationsPicks(stations, picks), nil
	case "json":
		var req wire.Request
		if err := json.NewDecoder(f).Decode(&req); err != nil {
			return wire.Request{}, err
		}
		return req, nil
	default:
		return wire.Request{}, fmt.Errorf("unknown fileType %q", fileType)
	}
}

// requestFromStationsPicks synthesizes a wire.Request directly from
// already-parsed Hydra station/pick arrays, skipping the wire.Pick
// round-trip since the Hydra format carries no JSON-shaped nesting.
func requestFromStationsPicks(stations []locate.Station, picks []locate.Pick) wire.Request {
	req := wire.Request{Type: "hydra", InputData: make([]wire.Pick, len(picks))}
	for i, p := range picks {
		st := stations[p.StationIdx]
		req.InputData[i] = wire.Pick{
			ID: p.ID,
			Site: wire.Site{
				Station:   st.Code,
				Network:   st.Network,
				Location:  st.Loc,
				Latitude:  st.Lat,
				Longitude: st.Lon,
				Elevation: st.Elev,
			},
			Time:            int64(p.ArrivalTime * 1000.0),
			Affinity:        p.Affinity,
			Quality:         p.Quality,
			Use:             p.IsUsed,
			PickedPhase:     p.Phase,
			AssociatedPhase: p.Phase,
		}
	}
	return req
}

func writeResponse(outputDir, id string, resp wire.Response) error {
	if outputDir == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	out, err := os.Create(filepath.Join(outputDir, id+".json"))
	if err != nil {
		return err
	}
	defer out.Close()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func archiveInput(path, archiveDir string) {
	if archiveDir == "" {
		return
	}
	_ = os.MkdirAll(archiveDir, 0o755)
	_ = os.Rename(path, filepath.Join(archiveDir, filepath.Base(path)))
}

func exitError(status locate.LocStatus, err error) error {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(int(status))
	return nil
}
