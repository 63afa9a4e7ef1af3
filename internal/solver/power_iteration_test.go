package solver

import (
	"math"
	"testing"

	"github.com/sourcecred/credrank/internal/graphcore"
	"github.com/sourcecred/credrank/pkg/address"
	"github.com/sourcecred/credrank/pkg/models"
)

func buildTestChain(t *testing.T) *graphcore.ChainView {
	t.Helper()
	base := address.MustNodeAddress("base")
	participant := models.Participant{Address: address.MustNodeAddress("participant", "alice"), Description: "alice", Id: "alice"}

	wg := models.StaticWeightedGraph{
		NodeAddresses: []address.NodeAddress{base},
		InputEdges: []models.InputEdge{
			{Address: address.MustEdgeAddress("contrib", "1"), Src: participant.Address, Dst: base, TimestampMs: 5},
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
		t.Fatalf("Build returned error: %v", err)
	}
	return graphcore.NewChainView(g)
}

func TestPowerIterate_ConvergesToProbabilityDistribution(t *testing.T) {
	view := buildTestChain(t)

	scores, iterations, converged, err := PowerIterate(view, DefaultOptions())
	if err != nil {
		t.Fatalf("PowerIterate returned error: %v", err)
	}
	if !converged {
		t.Fatalf("expected convergence within %d iterations, stopped after %d", DefaultOptions().MaxIterations, iterations)
	}

	var sum float64
	for _, s := range scores {
		if s < 0 {
			t.Fatalf("score %v is negative", s)
		}
		sum += s
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Fatalf("stationary distribution sums to %v, want 1", sum)
	}
}

func TestPowerIterate_RespectsMaxIterations(t *testing.T) {
	view := buildTestChain(t)

	_, iterations, _, err := PowerIterate(view, Options{MaxIterations: 1, Tolerance: 0})
	if err != nil {
		t.Fatalf("PowerIterate returned error: %v", err)
	}
	if iterations != 1 {
		t.Fatalf("expected exactly 1 iteration, got %d", iterations)
	}
}

func TestScoreOf_FindsAndMissesAddresses(t *testing.T) {
	order := []address.NodeAddress{address.MustNodeAddress("a"), address.MustNodeAddress("b")}
	scores := []float64{0.3, 0.7}

	if got, ok := ScoreOf(order, scores, address.MustNodeAddress("b")); !ok || got != 0.7 {
		t.Fatalf("ScoreOf(b) = %v, %v; want 0.7, true", got, ok)
	}
	if _, ok := ScoreOf(order, scores, address.MustNodeAddress("missing")); ok {
		t.Fatalf("expected ScoreOf to report a miss for an absent address")
	}
}
