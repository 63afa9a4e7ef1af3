package graphcore

import (
	"errors"
	"math"
	"testing"

	"github.com/sourcecred/credrank/pkg/address"
	"github.com/sourcecred/credrank/pkg/models"
)

func mustNode(parts ...string) address.NodeAddress {
	return address.MustNodeAddress(parts...)
}

func mustEdge(parts ...string) address.EdgeAddress {
	return address.MustEdgeAddress(parts...)
}

func outMassOf(g *Graph, addr address.NodeAddress) float64 {
	var sum float64
	for _, e := range g.edges {
		if e.Src.Equal(addr) {
			sum += e.TransitionProbability
		}
	}
	return sum
}

func TestBuild_MinimalGraphSumsToOne(t *testing.T) {
	base := mustNode("base")
	participant := models.Participant{Address: mustNode("participant", "alice"), Description: "alice", Id: "alice"}

	wg := models.StaticWeightedGraph{
		NodeAddresses: []address.NodeAddress{base},
		InputEdges: []models.InputEdge{
			{Address: mustEdge("contrib", "1"), Src: participant.Address, Dst: base, TimestampMs: 5},
		},
		WeightConfig: models.NewWeightConfig(),
	}

	g, err := Build(BuildArgs{
		WeightedGraph: wg,
		Participants:  []models.Participant{participant},
		Intervals:     []models.Interval{{StartTimeMs: 0}},
		Parameters:    models.DefaultParameters(),
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	for _, n := range g.realNodes {
		mass := outMassOf(g, n.Address)
		if math.Abs(mass-1) > Tolerance {
			t.Fatalf("node %q out-transition mass = %v, want ~1", n.Address.ToString(), mass)
		}
	}
	for _, b := range g.boundaries {
		addr := EpochAccumulatorAddress(b)
		mass := outMassOf(g, addr)
		if math.Abs(mass-1) > Tolerance {
			t.Fatalf("accumulator %q out-transition mass = %v, want ~1", addr.ToString(), mass)
		}
	}

	seedMass := outMassOf(g, SeedAddress())
	if math.Abs(seedMass-1) > Tolerance {
		t.Fatalf("seed out-transition mass = %v, want ~1", seedMass)
	}

	for _, e := range g.edges {
		if e.Src.Equal(SeedAddress()) && e.Dst.Equal(SeedAddress()) {
			t.Fatalf("seed must not carry a self-loop")
		}
	}
}

func TestBuild_NoMintingSourceErrors(t *testing.T) {
	zeroWeights := models.NewWeightConfig()
	zeroWeights.NodeWeights[mustNode("base").ToString()] = 0

	wg := models.StaticWeightedGraph{
		NodeAddresses: []address.NodeAddress{mustNode("base")},
		WeightConfig:  zeroWeights,
	}

	_, err := Build(BuildArgs{
		WeightedGraph: wg,
		Participants:  nil,
		Intervals:     []models.Interval{{StartTimeMs: 0}},
		Parameters:    models.DefaultParameters(),
	})
	if !errors.Is(err, ErrNoMintingSource) {
		t.Fatalf("expected ErrNoMintingSource, got %v", err)
	}
}

func TestBuild_OverBudgetParametersRejected(t *testing.T) {
	wg := models.StaticWeightedGraph{
		NodeAddresses: []address.NodeAddress{mustNode("base")},
		WeightConfig:  models.NewWeightConfig(),
	}

	_, err := Build(BuildArgs{
		WeightedGraph: wg,
		Intervals:     []models.Interval{{StartTimeMs: 0}},
		Parameters:    models.Parameters{Alpha: 0.6, Beta: 0.6, GammaForward: 0, GammaBackward: 0},
	})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestBuild_CoreNodeLeakageRejected(t *testing.T) {
	wg := models.StaticWeightedGraph{
		NodeAddresses: []address.NodeAddress{mustNode(CorePrefix, "intruder")},
		WeightConfig:  models.NewWeightConfig(),
	}

	_, err := Build(BuildArgs{
		WeightedGraph: wg,
		Intervals:     []models.Interval{{StartTimeMs: 0}},
		Parameters:    models.DefaultParameters(),
	})
	if !errors.Is(err, ErrCoreNodeLeakage) {
		t.Fatalf("expected ErrCoreNodeLeakage, got %v", err)
	}
}

func TestBuild_FibrationProducesDistinctEpochEndpoints(t *testing.T) {
	base := mustNode("base")
	participant := models.Participant{Address: mustNode("participant", "alice"), Description: "alice", Id: "alice"}

	wg := models.StaticWeightedGraph{
		NodeAddresses: []address.NodeAddress{base},
		InputEdges: []models.InputEdge{
			{Address: mustEdge("contrib", "early"), Src: participant.Address, Dst: base, TimestampMs: -5},
			{Address: mustEdge("contrib", "late"), Src: participant.Address, Dst: base, TimestampMs: 5},
		},
		WeightConfig: models.NewWeightConfig(),
	}

	g, err := Build(BuildArgs{
		WeightedGraph: wg,
		Participants:  []models.Participant{participant},
		Intervals:     []models.Interval{{StartTimeMs: 0}},
		Parameters:    models.DefaultParameters(),
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	var sources []address.NodeAddress
	for _, e := range g.edges {
		if e.Dst.Equal(base) && !e.Reversed && !e.Src.Equal(SeedAddress()) {
			sources = append(sources, e.Src)
		}
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 forward contribution edges into base, got %d", len(sources))
	}
	if sources[0].Equal(sources[1]) {
		t.Fatalf("expected distinct user-epoch sources for edges at different timestamps, got identical %q", sources[0].ToString())
	}
}

func TestBuild_DuplicateNodeAddressConflict(t *testing.T) {
	wg := models.StaticWeightedGraph{
		NodeAddresses: []address.NodeAddress{mustNode("base"), mustNode("base")},
		WeightConfig:  models.NewWeightConfig(),
	}

	_, err := Build(BuildArgs{
		WeightedGraph: wg,
		Intervals:     []models.Interval{{StartTimeMs: 0}},
		Parameters:    models.DefaultParameters(),
	})
	if !errors.Is(err, ErrNodeConflict) {
		t.Fatalf("expected ErrNodeConflict, got %v", err)
	}
}
