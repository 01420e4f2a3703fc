package locate

// PickGroup is one station plus its picks in arrival-time order (spec §3).
// Like Pick, it addresses its members by index range into the Engine's pick
// arena rather than by slice-of-pointers, so recomputing distance/azimuth on
// every hypocenter update (see RecomputeGeometry) touches no allocations.
type PickGroup struct {
	StationIdx    int
	PickLo, PickHi int /* [PickLo,PickHi) into Engine.picks, arrival-time order */

	DeltaDeg float64 /* source-receiver distance (deg) */
	AzimuthDeg float64
}

// RecomputeGeometry updates DeltaDeg/AzimuthDeg for the current hypocenter,
// per the invariant in spec §3: "distance/azimuth are recomputed on every
// hypocenter update."
func (g *PickGroup) RecomputeGeometry(h *Hypocenter, stations []Station) {
	g.DeltaDeg, g.AzimuthDeg = computeDistanceAzimuth(h, &stations[g.StationIdx])
}
