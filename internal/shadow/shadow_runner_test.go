package shadow

import (
	"context"
	"testing"

	"github.com/sourcecred/credrank/internal/graphcore"
	"github.com/sourcecred/credrank/internal/store"
	"github.com/sourcecred/credrank/pkg/address"
	"github.com/sourcecred/credrank/pkg/models"
)

func buildTestView(t *testing.T) *graphcore.ChainView {
	t.Helper()
	base := address.MustNodeAddress("base")
	participantAddr := address.MustNodeAddress("participant", "alice")
	edgeAddr := address.MustEdgeAddress("contrib", "1")

	participant := models.Participant{Address: participantAddr, Description: "alice", Id: "alice"}
	wg := models.StaticWeightedGraph{
		NodeAddresses: []address.NodeAddress{base},
		InputEdges: []models.InputEdge{
			{Address: edgeAddr, Src: participantAddr, Dst: base, TimestampMs: 5},
		},
		WeightConfig: models.NewWeightConfig(),
	}

	g, err := graphcore.Build(graphcore.BuildArgs{
		WeightedGraph: wg,
		Participants:  []models.Participant{participant},
		Intervals:     []models.Interval{{StartTimeMs: 0}},
		Parameters:    models.DefaultParameters(),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return graphcore.NewChainView(g)
}

type fakeDriftStore struct {
	saved []store.DriftReport
}

func (f *fakeDriftStore) SaveDriftReport(_ context.Context, r store.DriftReport) (string, error) {
	f.saved = append(f.saved, r)
	return "fake-id", nil
}

func TestShadowRunner_IdenticalSolveProducesZeroDivergence(t *testing.T) {
	view := buildTestView(t)

	production, _, _, err := dummySolve(view)
	if err != nil {
		t.Fatalf("dummySolve: %v", err)
	}

	fake := &fakeDriftStore{}
	runner := NewShadowRunner(fake, func(v *graphcore.ChainView) ([]float64, error) {
		scores, _, _, err := dummySolve(v)
		return scores, err
	})

	report, err := runner.RunShadowAnalysis(context.Background(), "run-1", production, view)
	if err != nil {
		t.Fatalf("RunShadowAnalysis: %v", err)
	}

	if report.L1 != 0 || report.L2 != 0 || report.KL != 0 {
		t.Errorf("expected zero divergence comparing a run to itself, got %+v", report)
	}
	if len(fake.saved) != 1 {
		t.Fatalf("expected exactly one persisted drift report, got %d", len(fake.saved))
	}
}

func TestShadowRunner_RejectsMismatchedVectorLengths(t *testing.T) {
	view := buildTestView(t)
	production := []float64{0.5, 0.5}

	runner := NewShadowRunner(nil, func(v *graphcore.ChainView) ([]float64, error) {
		return []float64{0.2, 0.3, 0.5}, nil
	})

	if _, err := runner.RunShadowAnalysis(context.Background(), "run-2", production, view); err == nil {
		t.Fatalf("expected an error comparing mismatched-length score vectors")
	}
}

func dummySolve(view *graphcore.ChainView) (scores []float64, iterations int, converged bool, err error) {
	n := len(view.NodeOrder())
	scores = make([]float64, n)
	uniform := 1.0 / float64(n)
	for i := range scores {
		scores[i] = uniform
	}
	return scores, 1, true, nil
}
