// Package hydra parses the legacy fixed-column Hydra pick format into
// locate.Station/locate.Pick records, with a bufio.Scanner plus the same
// column-sliced Str2Num idiom the teacher's RINEX observation reader uses
// (src/renix.go's DecodeObsData/Decode_ObsEpoch).
package hydra

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"locatego/src"
)

// Column layout of one Hydra pick record. Spec.md specifies the format only
// abstractly ("legacy fixed-column Hydra pick format"); this layout is
// reconstituted from the field list spec §6 requires a Pick to carry,
// ordered station-block first then phase/time/weight block, matching the
// teacher's own header-then-body column grouping in RINEX obs records.
const (
	colStation  = 0
	widStation  = 6
	colNetwork  = 6
	widNetwork  = 3
	colLocation = 9
	widLocation = 3
	colChannel  = 12
	widChannel  = 4
	colPhase    = 16
	widPhase    = 9
	colLat      = 25
	widLat      = 10
	colLon      = 35
	widLon      = 10
	colElev     = 45
	widElev     = 8
	colTime     = 53
	widTime     = 17 /* seconds since epoch, fixed-point */
	colAffinity = 70
	widAffinity = 6
	colQuality  = 76
	widQuality  = 6
	colUse      = 82
	widUse      = 1

	minLineLen = colUse + widUse
)

// stationKey identifies a physical station by network/code/location so
// repeated phases from the same station (the ordinary multi-phase case)
// collapse onto one Station/StationIdx instead of minting a singleton per
// pick, letting buildPickGroups' StationIdx-equality grouping (driver.go)
// actually do its job.
type stationKey struct {
	network, code, loc string
}

// ReadPicks reads Hydra-format pick records from r, returning parallel
// Station/Pick slices in line order, with picks sharing a physical station
// sharing its StationIdx.
func ReadPicks(r io.Reader) ([]locate.Station, []locate.Pick, error) {
	scanner := bufio.NewScanner(r)
	var stations []locate.Station
	var picks []locate.Pick
	byStation := make(map[stationKey]int)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if len(line) < minLineLen {
			return nil, nil, fmt.Errorf("hydra: line %d: record too short (%d bytes)", lineNo, len(line))
		}

		station := locate.Str2Field(line, colStation, widStation)
		network := locate.Str2Field(line, colNetwork, widNetwork)
		location := locate.Str2Field(line, colLocation, widLocation)

		key := stationKey{network, station, location}
		idx, ok := byStation[key]
		if !ok {
			lat := locate.Str2Num(line, colLat, widLat)
			lon := locate.Str2Num(line, colLon, widLon)
			elevKm := locate.Str2Num(line, colElev, widElev) / 1000.0
			idx = len(stations)
			stations = append(stations, locate.NewStation(station, network, location, lat, lon, elevKm))
			byStation[key] = idx
		}

		phase := locate.Str2Field(line, colPhase, widPhase)
		use := locate.Str2Field(line, colUse, widUse) == "1"

		picks = append(picks, locate.Pick{
			ID:            fmt.Sprintf("%s.%s.%d", station, network, lineNo),
			StationIdx:    idx,
			ArrivalTime:   locate.Str2Num(line, colTime, widTime),
			Phase:         phase,
			OriginalPhase: phase,
			Author:        locate.ContributedAutomatic,
			IsUsed:        use,
			Affinity:      locate.Str2Num(line, colAffinity, widAffinity),
			Quality:       locate.Str2Num(line, colQuality, widQuality),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("hydra: scan: %w", err)
	}
	return stations, picks, nil
}
