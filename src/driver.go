package locate

import (
	"context"
	"sort"

	mstats "github.com/montanaflynn/stats"
)

// PickOutput is one pick's entry in the final Response (spec §6): residual,
// geometry, final weight, importance, use flag, and an error code for
// picks the engine could not use.
type PickOutput struct {
	PickID     string
	Residual   float64
	DeltaDeg   float64
	AzimuthDeg float64
	Weight     float64
	Importance float64
	Used       bool
	ErrorCode  LocStatus
}

// LocateResult is the engine's complete output (spec §6 Response, minus
// wire-format JSON tags — those live in adapters/wire).
type LocateResult struct {
	Hypocenter      Hypocenter
	Audit           []AuditSnapshot
	PerPick         []PickOutput
	Status          LocStatus /* external taxonomy (spec §7) */
	Ellipsoid       Ellipsoid
	EllipsoidStatus LocStatus
}

// Engine owns one relocation run's mutable state (spec §5: "one engine per
// request"). Construct with NewEngine and call Run exactly once.
type Engine struct {
	Stations []Station
	Picks    []Pick
	Groups   []PickGroup

	Hypocenter *Hypocenter
	Config     EngineConfig

	Predictor   TravelTimePredictor
	DepthOracle DepthOracle

	HeldLocation   bool
	HeldDepth      bool
	UseSVD         bool
	HasBayesian    bool
	BayesianDepth  float64
	BayesianSpread float64

	audit []AuditSnapshot
}

// NewEngine constructs an Engine, grouping picks by station in
// arrival-time order (spec §3 PickGroup invariant).
func NewEngine(stations []Station, picks []Pick, hypo *Hypocenter, predictor TravelTimePredictor, cfg EngineConfig) *Engine {
	e := &Engine{
		Stations:   stations,
		Picks:      append([]Pick(nil), picks...),
		Hypocenter: hypo,
		Config:     cfg,
		Predictor:  predictor,
	}
	e.Groups = buildPickGroups(e.Picks)
	return e
}

func buildPickGroups(picks []Pick) []PickGroup {
	sort.SliceStable(picks, func(i, j int) bool {
		if picks[i].StationIdx != picks[j].StationIdx {
			return picks[i].StationIdx < picks[j].StationIdx
		}
		return picks[i].ArrivalTime < picks[j].ArrivalTime
	})

	var groups []PickGroup
	i := 0
	for i < len(picks) {
		j := i + 1
		for j < len(picks) && picks[j].StationIdx == picks[i].StationIdx {
			j++
		}
		groups = append(groups, PickGroup{StationIdx: picks[i].StationIdx, PickLo: i, PickHi: j})
		i = j
	}
	return groups
}

func minUsablePicks(ndof int) int {
	if ndof <= 2 {
		return 3
	}
	return 4
}

// Run executes the full iteration driver state machine (spec §4.7) and
// returns the engine's result. Run must be called at most once per Engine.
func (e *Engine) Run(ctx context.Context) LocateResult {
	e.recomputeGroupGeometry()

	ndof := NDOF(e.HeldLocation, e.HeldDepth)
	if e.HasBayesian && !e.HeldDepth {
		e.Hypocenter.SetBayesianDepth(e.BayesianDepth, e.BayesianSpread)
	}

	e.audit = append(e.audit, e.snapshot(AuditInitial, 0, 0))

	if _, err := RunPhaseID(e.Picks, e.Groups, e.Stations, e.Hypocenter, e.Predictor); err != nil {
		return e.finish(BadReadTTData)
	}

	if used := e.usablePickCount(); used < minUsablePicks(ndof) {
		return e.finish(StatusInsufficientData)
	}

	if ndof == 0 {
		return e.runHeld()
	}

	status := e.runStages(ctx, ndof)
	return e.finish(status)
}

// runHeld performs the single no-step audit pass for isLocationHeld (spec
// §8: "yields exactly one [HELD] audit snapshot... zero step length").
func (e *Engine) runHeld() LocateResult {
	residuals, bayesian := e.assemble()
	all := residuals
	if bayesian != nil {
		all = append(append([]WeightedResidual(nil), residuals...), *bayesian)
	}
	result := Evaluate(all, false, false)
	e.Hypocenter.StepLength = 0
	e.Hypocenter.LastDispersion = result.Dispersion
	e.Hypocenter.LastSpread = result.Spread
	e.audit = append(e.audit, e.snapshot(AuditHeld, 0, 0))
	return e.finish(StatusSuccess)
}

// didNotMoveToleranceKm/didNotMoveToleranceS bound the "effectively zero"
// step that trips the StatusDidNotMove exit: an accepted first step, on the
// very first iteration of the first stage, whose spatial length and
// origin-time shift are both indistinguishable from no movement at all.
const (
	didNotMoveToleranceKm = 1e-6
	didNotMoveToleranceS  = 1e-6
)

// runStages drives the three-stage convergence schedule (spec §4.7),
// returning an internal LocStatus that Run routes through ToExternal.
func (e *Engine) runStages(ctx context.Context, ndof int) LocStatus {
	consecutiveUnstable := 0
	priorDispersion := 0.0
	haveProbed := false

	for stageIdx := 0; stageIdx < len(e.Config.Stages); stageIdx++ {
		stage := e.Config.Stages[stageIdx]
		reidCount := 0

		for iter := 0; ; iter++ {
			select {
			case <-ctx.Done():
				return LocationFailed
			default:
			}

			idResult, err := RunPhaseID(e.Picks, e.Groups, e.Stations, e.Hypocenter, e.Predictor)
			if err != nil {
				return LocationFailed
			}
			if idResult.Changed {
				reidCount++
				if reidCount <= e.Config.MaxReidsPerStage {
					continue
				}
				// budget exhausted: force acceptance of current labels
			}

			residuals, bayesian := e.assemble()
			if len(residuals) < minUsablePicks(ndof) {
				return StatusInsufficientData
			}

			workingSet, projected, externalDT, err := e.buildWorkingSet(residuals, bayesian, idResult.Changed)
			if err != nil {
				return LocationFailed
			}

			stepOut, _ := Step(workingSet, ndof, projected, externalDT, e.Config.DampingBudget)

			switch stepOut.Status {
			case StatusSingularMatrix:
				if e.Config.EnableExclusionProbe && !haveProbed {
					haveProbed = true
					if excluded := e.probeExclusions(workingSet, ndof, projected, externalDT); excluded {
						continue
					}
				}
				return StatusSingularMatrix

			case StatusUnstableSolution:
				consecutiveUnstable++
				if consecutiveUnstable >= 2 {
					return StatusUnstableSolution
				}
				continue
			}

			if stageIdx == 0 && iter == 0 &&
				stepOut.L < didNotMoveToleranceKm && absf(stepOut.DT) < didNotMoveToleranceS {
				return StatusDidNotMove
			}

			consecutiveUnstable = 0
			e.Hypocenter.ApplyStep(stepOut.L, stepOut.U, stepOut.DT, ndof)
			e.Hypocenter.StepLength = stepOut.L
			e.Hypocenter.LastDispersion = stepOut.Dispersion
			e.Hypocenter.DampingCount = stepOut.NumDampings
			e.recomputeGroupGeometry()

			converged := stepOut.L <= stage.StepKm && absf(priorDispersion-stepOut.Dispersion) <= stage.DispersionS
			priorDispersion = stepOut.Dispersion

			if converged {
				if stageIdx == len(e.Config.Stages)-1 {
					return StatusSuccess
				}
				e.audit = append(e.audit, e.snapshot(AuditIntermediate, stageIdx, iter))
				break
			}
			if iter+1 >= stage.IterCap {
				if stepOut.L < 2*stage.StepKm {
					if stageIdx == len(e.Config.Stages)-1 {
						return StatusNearlyConverged
					}
					e.audit = append(e.audit, e.snapshot(AuditIntermediate, stageIdx, iter))
					break
				}
				return StatusUnstableSolution
			}
		}
	}
	return StatusSuccess
}

// buildWorkingSet runs the decorrelation path (when UseSVD is set) or
// passes the raw residual set straight through, matching spec §4.3/§4.5's
// projected/non-projected mode split.
func (e *Engine) buildWorkingSet(residuals []WeightedResidual, bayesian *WeightedResidual, phaseIDChanged bool) ([]WeightedResidual, bool, float64, error) {
	if !e.UseSVD {
		all := residuals
		if bayesian != nil {
			all = append(append([]WeightedResidual(nil), residuals...), *bayesian)
		}
		return all, false, 0, nil
	}

	rawMedian := Evaluate(residuals, false, false).Median
	derivMedian := medianDeriv(residuals)
	for i := range residuals {
		residuals[i].DeMedianResidual(rawMedian)
		residuals[i].DeMedianDerivatives(derivMedian)
	}

	cov := NewAzimuthalCovarianceModel(e.Picks, e.Groups)
	out, err := Decorrelate(residuals, e.Picks, cov, bayesian, e.Config.decorrelatorConfig(), phaseIDChanged)
	if err != nil {
		return nil, false, 0, err
	}
	return out, true, rawMedian, nil
}

// medianDeriv computes the component-wise median derivative across a
// residual set, excluding the Bayesian sentinel (spec §4.2).
func medianDeriv(items []WeightedResidual) [3]float64 {
	var out [3]float64
	for c := 0; c < 3; c++ {
		vals := make([]float64, 0, len(items))
		for _, it := range items {
			if it.IsBayesianSentinel() {
				continue
			}
			vals = append(vals, it.Deriv[c])
		}
		if len(vals) == 0 {
			continue
		}
		m, err := mstats.Median(vals)
		if err == nil {
			out[c] = m
		}
	}
	return out
}

// probeExclusions implements the RAIM-style single-pick exclusion fallback
// (SPEC_FULL.md supplement, grounded on the teacher's RaimFde in
// pntpos.go): retry the step with each single used pick excluded in turn,
// accepting the first exclusion that produces a non-singular solve.
func (e *Engine) probeExclusions(workingSet []WeightedResidual, ndof int, projected bool, externalDT float64) bool {
	for i := range workingSet {
		if workingSet[i].IsBayesianSentinel() {
			continue
		}
		trial := append(append([]WeightedResidual(nil), workingSet[:i]...), workingSet[i+1:]...)
		out, _ := Step(trial, ndof, projected, externalDT, e.Config.DampingBudget)
		if out.Status != StatusSingularMatrix {
			if pi := workingSet[i].PickIndex; pi >= 0 && pi < len(e.Picks) {
				e.Picks[pi].triaged = true
			}
			return true
		}
	}
	return false
}

// assemble builds the used, non-triaged residual set from the current pick
// arena, plus the Bayesian-depth sentinel when a prior is installed.
func (e *Engine) assemble() ([]WeightedResidual, *WeightedResidual) {
	out := make([]WeightedResidual, 0, len(e.Picks))
	for i := range e.Picks {
		p := &e.Picks[i]
		if !p.IsUsed || p.IsTriaged() {
			continue
		}
		out = append(out, WeightedResidual{
			PickIndex:   i,
			Residual:    p.Residual,
			Weight:      p.Weight,
			Deriv:       p.Deriv,
			SpreadDeriv: p.SpreadDeriv,
		})
	}
	var bayesian *WeightedResidual
	if e.Hypocenter.HasBayesianDepth {
		b := NewBayesianResidual(e.Hypocenter)
		bayesian = &b
	}
	return out, bayesian
}

func (e *Engine) usablePickCount() int {
	n := 0
	for i := range e.Picks {
		if e.Picks[i].IsUsed && !e.Picks[i].IsTriaged() {
			n++
		}
	}
	return n
}

func (e *Engine) recomputeGroupGeometry() {
	for i := range e.Groups {
		e.Groups[i].RecomputeGeometry(e.Hypocenter, e.Stations)
	}
}

// activeAzimuths collects the station azimuths of every group contributing
// at least one used, non-triaged pick, for the final audit snapshot's
// GeometrySpread diagnostic.
func (e *Engine) activeAzimuths() []float64 {
	azimuths := make([]float64, 0, len(e.Groups))
	for gi := range e.Groups {
		g := &e.Groups[gi]
		for pi := g.PickLo; pi < g.PickHi; pi++ {
			p := &e.Picks[pi]
			if p.IsUsed && !p.IsTriaged() {
				azimuths = append(azimuths, g.AzimuthDeg)
				break
			}
		}
	}
	return azimuths
}

func (e *Engine) snapshot(tag AuditTag, stage, iteration int) AuditSnapshot {
	return AuditSnapshot{Tag: tag, Hypocenter: *e.Hypocenter, Stage: stage, Iteration: iteration}
}

// finish routes status through ToExternal (spec §9's internal/external
// split: the driver loop reasons in internal states, the host only ever
// sees the external exit codes), appends the final audit snapshot, computes
// the companion error ellipsoid (non-fatal on failure, spec §4.7/§7), and
// assembles the per-pick diagnostic output.
func (e *Engine) finish(status LocStatus) LocateResult {
	external := status
	if status.IsInternal() {
		external = status.ToExternal()
	}

	final := AuditFinal
	if external == SuccessfulLocation && len(e.audit) > 0 && e.audit[len(e.audit)-1].Tag == AuditHeld {
		final = AuditHeld
	}
	if final == AuditFinal {
		e.audit = append(e.audit, e.snapshot(AuditFinal, len(e.Config.Stages)-1, 0))
	}
	e.audit[len(e.audit)-1].GeometryGapDeg = GeometrySpread(e.activeAzimuths())

	residuals, bayesian := e.assemble()
	all := residuals
	if bayesian != nil {
		all = append(all, *bayesian)
	}

	ellipsoid := Ellipsoid{}
	ellipsoidStatus := ErrorsNotComputed
	ndof := NDOF(e.HeldLocation, e.HeldDepth)
	if len(all) > 0 && ndof > 0 {
		var internalStatus LocStatus
		ellipsoid, internalStatus = ComputeEllipsoid(all, ndof)
		if internalStatus == StatusSuccess {
			ellipsoidStatus = StatusSuccess
		}
	}

	return LocateResult{
		Hypocenter:      *e.Hypocenter,
		Audit:           e.audit,
		PerPick:         e.perPickOutput(),
		Status:          external,
		Ellipsoid:       ellipsoid,
		EllipsoidStatus: ellipsoidStatus,
	}
}

func (e *Engine) perPickOutput() []PickOutput {
	out := make([]PickOutput, 0, len(e.Picks))
	for gi := range e.Groups {
		g := &e.Groups[gi]
		for pi := g.PickLo; pi < g.PickHi; pi++ {
			p := &e.Picks[pi]
			errCode := StatusSuccess
			if p.IsTriaged() {
				errCode = StatusInsufficientData
			}
			out = append(out, PickOutput{
				PickID:     p.ID,
				Residual:   p.Residual,
				DeltaDeg:   g.DeltaDeg,
				AzimuthDeg: g.AzimuthDeg,
				Weight:     p.Weight,
				Importance: p.Importance,
				Used:       p.IsUsed && !p.IsTriaged(),
				ErrorCode:  errCode,
			})
		}
	}
	return out
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
