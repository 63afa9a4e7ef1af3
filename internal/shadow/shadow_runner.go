package shadow

import (
	"context"
	"log"

	"github.com/sourcecred/credrank/internal/graphcore"
	"github.com/sourcecred/credrank/internal/metrics"
	"github.com/sourcecred/credrank/internal/solver"
	"github.com/sourcecred/credrank/internal/store"
)

// driftStore is the persistence surface ShadowRunner needs, satisfied
// by *store.Store.
type driftStore interface {
	SaveDriftReport(ctx context.Context, r store.DriftReport) (string, error)
}

// DriftReportRow is an alias for the store's row shape, so callers of
// this package don't need to import internal/store just to read back
// a RunShadowAnalysis result.
type DriftReportRow = store.DriftReport

// ShadowRunner reruns the solver against an experimental strategy or
// an adjusted parameter set, and compares the resulting score vector
// against a production run. No experimental solver result ever
// replaces a production cred graph automatically; ShadowRunner only
// measures and persists the divergence for a human to review.
type ShadowRunner struct {
	store       driftStore
	evaluator   *Evaluator
	shadowSolve func(view *graphcore.ChainView) ([]float64, error)
}

// NewShadowRunner builds a runner around the given experimental solve
// function. Pass solver.PowerIterate wrapped to drop its iteration
// count, or any alternate strategy under evaluation.
func NewShadowRunner(store driftStore, shadowSolve func(view *graphcore.ChainView) ([]float64, error)) *ShadowRunner {
	return &ShadowRunner{
		store:       store,
		evaluator:   NewEvaluator(),
		shadowSolve: shadowSolve,
	}
}

// DefaultShadowSolve runs the reference power-iteration solver with
// default options, suitable as a shadowSolve when comparing two
// parameterizations of the same graph rather than two solvers.
func DefaultShadowSolve(view *graphcore.ChainView) ([]float64, error) {
	scores, _, _, err := solver.PowerIterate(view, solver.DefaultOptions())
	return scores, err
}

// RunShadowAnalysis computes the shadow score vector for view, compares
// it against the already-computed production vector, and persists the
// comparison under runID.
func (sr *ShadowRunner) RunShadowAnalysis(ctx context.Context, runID string, productionScores []float64, view *graphcore.ChainView) (DriftReportRow, error) {
	shadowScores, err := sr.shadowSolve(view)
	if err != nil {
		return DriftReportRow{}, err
	}

	l1, err := sr.evaluator.L1Distance(productionScores, shadowScores)
	if err != nil {
		return DriftReportRow{}, err
	}
	l2, err := sr.evaluator.L2Distance(productionScores, shadowScores)
	if err != nil {
		return DriftReportRow{}, err
	}
	kl, err := sr.evaluator.KLDivergence(productionScores, shadowScores)
	if err != nil {
		return DriftReportRow{}, err
	}
	ari, vi := metrics.CompareCredRankings(productionScores, shadowScores)

	report := DriftReportRow{RunID: runID, L1: l1, L2: l2, KL: kl, ARI: ari, VI: vi}

	if l1 > driftAlertThreshold {
		log.Printf("[SHADOW] DIVERGENCE on run %s: l1=%.6f l2=%.6f kl=%.6f ari=%.4f vi=%.4f",
			runID, l1, l2, kl, ari, vi)
	}

	if sr.store != nil {
		if _, err := sr.store.SaveDriftReport(ctx, report); err != nil {
			return report, err
		}
	}

	return report, nil
}

// driftAlertThreshold is the L1 distance above which a shadow
// comparison is logged as a notable divergence rather than routine
// solver noise.
const driftAlertThreshold = 0.05
