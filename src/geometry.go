package locate

import "math"

// Geometry utilities (spec §4.1), adapted from the teacher's Ecef2Pos/
// Pos2Ecef/GeoDist/SatAzel/DOPs family in common.go: same small-fixed-array,
// no-allocation style, same D2R/R2D constants, but rebuilt against
// spherical-earth geocentric colatitude rather than WGS-84 ECEF cartesian
// coordinates, since the hypocenter/station geometry here is purely
// surface-and-depth, not a 3-D receiver-satellite line of sight.

// geographicToGeocentricColatitude converts a geographic latitude in degrees
// to geocentric colatitude in degrees, applying the WGS-84 flattening
// correction the same way the external travel-time utility is assumed to
// (spec §4.1). Round-trips through its own inverse within 1e-9 deg.
func geographicToGeocentricColatitude(latDeg float64) float64 {
	latRad := latDeg * D2R
	geocentricLat := math.Atan((1.0 - FE_WGS84) * (1.0 - FE_WGS84) * math.Tan(latRad))
	return 90.0 - geocentricLat*R2D
}

// geocentricColatitudeToGeographic is the inverse of
// geographicToGeocentricColatitude, used only by its own round-trip test.
func geocentricColatitudeToGeographic(colatDeg float64) float64 {
	geocentricLat := (90.0 - colatDeg) * D2R
	latRad := math.Atan(math.Tan(geocentricLat) / ((1.0 - FE_WGS84) * (1.0 - FE_WGS84)))
	return latRad * R2D
}

// computeDistanceAzimuth returns the great-circle distance (deg) and azimuth
// (deg, clockwise from geographic north at the station) from a hypocenter to
// a station, via the spherical law of cosines on geocentric coordinates.
// Degenerate (co-located) inputs return (0, 0).
func computeDistanceAzimuth(h *Hypocenter, s *Station) (deltaDeg, azDeg float64) {
	cosDelta := h.cosColat*s.cosColat + h.sinColat*s.sinColat*math.Cos((s.Lon-h.Lon)*D2R)
	if cosDelta > 1.0 {
		cosDelta = 1.0
	} else if cosDelta < -1.0 {
		cosDelta = -1.0
	}
	delta := math.Acos(cosDelta)
	if delta < 1e-12 {
		return 0.0, 0.0
	}
	sinDelta := math.Sin(delta)
	cosAz := (h.cosColat - s.cosColat*cosDelta) / (s.sinColat * sinDelta)
	if cosAz > 1.0 {
		cosAz = 1.0
	} else if cosAz < -1.0 {
		cosAz = -1.0
	}
	az := math.Acos(cosAz)
	if math.Sin((h.Lon-s.Lon)*D2R) < 0.0 {
		az = 2*PI - az
	}
	return delta * R2D, az * R2D
}

// wrapColatLon renormalizes a (colat,lon) pair into the canonical ranges
// colat in [0,180], lon in (-180,180], per spec §4.8 step 4.
func wrapColatLon(colat, lon float64) (float64, float64) {
	if colat < 0 {
		colat = -colat
		lon += 180.0
	}
	if colat > 180.0 {
		colat = 360.0 - colat
		lon += 180.0
	}
	for lon <= -180.0 {
		lon += 360.0
	}
	for lon > 180.0 {
		lon -= 360.0
	}
	return colat, lon
}

// GeometrySpread reports the maximum azimuthal gap (deg) among a set of
// station azimuths as seen from the hypocenter — the standard seismic
// network-geometry diagnostic, grounded on the teacher's DOPs (a
// design-matrix-conditioning geometry diagnostic attached to the final
// solution) but using the azimuthal-gap form actually used in hypocenter
// location rather than a GDOP-style covariance trace.
func GeometrySpread(azimuthsDeg []float64) float64 {
	if len(azimuthsDeg) == 0 {
		return 360.0
	}
	sorted := append([]float64(nil), azimuthsDeg...)
	insertionSort(sorted)
	maxGap := 360.0 - sorted[len(sorted)-1] + sorted[0]
	for i := 1; i < len(sorted); i++ {
		if gap := sorted[i] - sorted[i-1]; gap > maxGap {
			maxGap = gap
		}
	}
	return maxGap
}

func insertionSort(a []float64) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}
