package locate

// SyntheticDepthOracle is the table-driven Bayesian depth oracle test
// double (spec §1/§6's "out of scope" collaborator, stubbed here so
// spec §8's concrete scenarios run without a real slab/zone-statistics
// deployment). Resolution order follows the provenance list in spec §6:
// craton containment first (shallow, stable continental crust), then
// zone statistics, finally a shallow-earth fallback.
type SyntheticDepthOracle struct {
	Cratons       *CratonSet
	ZoneTable     *ZoneStatsTable
	FallbackDepth float64
	FallbackSpread float64
}

// NewSyntheticDepthOracle builds an oracle with the spec's shallow-crust
// fallback (mean 10km, generous spread) when neither a craton nor a zone
// record applies.
func NewSyntheticDepthOracle(cratons *CratonSet, zoneTable *ZoneStatsTable) *SyntheticDepthOracle {
	return &SyntheticDepthOracle{
		Cratons:        cratons,
		ZoneTable:      zoneTable,
		FallbackDepth:  10.0,
		FallbackSpread: 25.0,
	}
}

func (o *SyntheticDepthOracle) DepthPrior(latDeg, lonDeg float64) (DepthPrior, error) {
	if o.Cratons != nil {
		if _, ok := o.Cratons.Contains(latDeg, lonDeg); ok {
			return DepthPrior{MeanDepth: 15.0, Spread: 8.0, Source: SourceCraton}, nil
		}
	}
	if o.ZoneTable != nil {
		if rec, ok := o.ZoneTable.LookupByLatLon(latDeg, lonDeg); ok {
			spread := float64(rec.MaxDepth-rec.MinDepth) / 2.0
			if spread <= 0 {
				spread = o.FallbackSpread
			}
			return DepthPrior{MeanDepth: float64(rec.MeanDepth), Spread: spread, Source: SourceZoneStats}, nil
		}
	}
	return DepthPrior{MeanDepth: o.FallbackDepth, Spread: o.FallbackSpread, Source: SourceShallow}, nil
}
