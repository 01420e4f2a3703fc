package wire

import "locatego/src"

// AuditEntry is one wire-serializable audit snapshot.
type AuditEntry struct {
	Tag            string  `json:"tag"`
	OriginTime     int64   `json:"originTime"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Depth          float64 `json:"depth"`
	StepLength     float64 `json:"stepLength"`
	GeometryGapDeg float64 `json:"geometryGapDeg,omitempty"`
}

// PickResult is one pick's diagnostic output (spec §6 Response).
type PickResult struct {
	ID         string  `json:"id"`
	Residual   float64 `json:"residual"`
	DeltaDeg   float64 `json:"delta"`
	AzimuthDeg float64 `json:"azimuth"`
	Weight     float64 `json:"weight"`
	Importance float64 `json:"importance"`
	Used       bool    `json:"used"`
	ErrorCode  string  `json:"errorCode"`
}

// Response is the wire-serializable relocation result (spec §6).
type Response struct {
	RequestID  string       `json:"requestId"`
	Status     string       `json:"status"`
	OriginTime int64        `json:"originTime"`
	Lat        float64      `json:"lat"`
	Lon        float64      `json:"lon"`
	Depth      float64      `json:"depth"`
	SemiAxesKm []float64    `json:"semiAxesKm,omitempty"`
	Ellipsoid  string       `json:"ellipsoidStatus"`
	Audit      []AuditEntry `json:"audit"`
	Picks      []PickResult `json:"picks"`
}

// FromEngineResult translates a locate.LocateResult into its wire form.
func FromEngineResult(requestID string, result locate.LocateResult) Response {
	resp := Response{
		RequestID:  requestID,
		Status:     result.Status.String(),
		OriginTime: int64(result.Hypocenter.OriginTime * 1000.0),
		Lat:        result.Hypocenter.Lat,
		Lon:        result.Hypocenter.Lon,
		Depth:      result.Hypocenter.Depth,
		Ellipsoid:  result.EllipsoidStatus.String(),
	}
	if result.Ellipsoid.SemiAxesKm != nil {
		resp.SemiAxesKm = result.Ellipsoid.SemiAxesKm
	}

	resp.Audit = make([]AuditEntry, len(result.Audit))
	for i, snap := range result.Audit {
		resp.Audit[i] = AuditEntry{
			Tag:            snap.Tag.String(),
			OriginTime:     int64(snap.Hypocenter.OriginTime * 1000.0),
			Lat:            snap.Hypocenter.Lat,
			Lon:            snap.Hypocenter.Lon,
			Depth:          snap.Hypocenter.Depth,
			StepLength:     snap.Hypocenter.StepLength,
			GeometryGapDeg: snap.GeometryGapDeg,
		}
	}

	resp.Picks = make([]PickResult, len(result.PerPick))
	for i, p := range result.PerPick {
		resp.Picks[i] = PickResult{
			ID:         p.PickID,
			Residual:   p.Residual,
			DeltaDeg:   p.DeltaDeg,
			AzimuthDeg: p.AzimuthDeg,
			Weight:     p.Weight,
			Importance: p.Importance,
			Used:       p.Used,
			ErrorCode:  p.ErrorCode.String(),
		}
	}
	return resp
}
