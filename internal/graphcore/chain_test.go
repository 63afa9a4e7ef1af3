package graphcore

import (
	"testing"

	"github.com/sourcecred/credrank/pkg/address"
	"github.com/sourcecred/credrank/pkg/models"
)

func buildMinimalGraph(t *testing.T) *Graph {
	t.Helper()
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
	return g
}

func TestChainView_NodeOrderGroupsRealBeforeVirtual(t *testing.T) {
	view := NewChainView(buildMinimalGraph(t))
	order := view.NodeOrder()

	seedIdx := -1
	for i, addr := range order {
		if addr.Equal(SeedAddress()) {
			seedIdx = i
		}
	}
	if seedIdx == -1 {
		t.Fatalf("seed address missing from node order")
	}
	for i := 0; i < seedIdx; i++ {
		if _, ok := view.g.realNode(order[i]); !ok {
			t.Fatalf("node %q before seed is not a real node", order[i].ToString())
		}
	}
}

func TestChainView_ToSparseChainRoundTrips(t *testing.T) {
	g := buildMinimalGraph(t)
	view := NewChainView(g)

	doc, err := view.ToSparseChain()
	if err != nil {
		t.Fatalf("ToSparseChain returned error: %v", err)
	}

	decoded, err := FromSparseChain(doc)
	if err != nil {
		t.Fatalf("FromSparseChain returned error: %v", err)
	}

	if len(decoded.EdgeOrder()) != len(view.EdgeOrder()) {
		t.Fatalf("edge count mismatch: got %d, want %d", len(decoded.EdgeOrder()), len(view.EdgeOrder()))
	}
	if len(decoded.NodeOrder()) != len(view.NodeOrder()) {
		t.Fatalf("node order length mismatch: got %d, want %d", len(decoded.NodeOrder()), len(view.NodeOrder()))
	}

	redoc, err := decoded.ToSparseChain()
	if err != nil {
		t.Fatalf("re-exporting decoded graph failed: %v", err)
	}
	if redoc.Payload.ContentHash != doc.Payload.ContentHash {
		t.Fatalf("content hash changed across round trip: got %s, want %s", redoc.Payload.ContentHash, doc.Payload.ContentHash)
	}
}

func TestFromSparseChain_RejectsUnknownVersion(t *testing.T) {
	doc, err := NewChainView(buildMinimalGraph(t)).ToSparseChain()
	if err != nil {
		t.Fatalf("ToSparseChain returned error: %v", err)
	}
	doc.Version = "9.9.9"

	if _, err := FromSparseChain(doc); err == nil {
		t.Fatalf("expected an error decoding an unrecognized document version")
	}
}

func TestFromSparseChain_RejectsTamperedPayload(t *testing.T) {
	doc, err := NewChainView(buildMinimalGraph(t)).ToSparseChain()
	if err != nil {
		t.Fatalf("ToSparseChain returned error: %v", err)
	}
	doc.Payload.IndexedEdges[0].TransitionProbability += 0.5

	if _, err := FromSparseChain(doc); err == nil {
		t.Fatalf("expected a content-hash mismatch error after tampering with the payload")
	}
}

func TestChainView_InNeighborsFindsIncomingEdges(t *testing.T) {
	view := NewChainView(buildMinimalGraph(t))
	in := view.InNeighbors(SeedAddress())
	if len(in) == 0 {
		t.Fatalf("expected at least one radiation edge into seed")
	}
	for _, e := range in {
		if !e.Dst.Equal(SeedAddress()) {
			t.Fatalf("InNeighbors returned an edge not targeting seed: %q", e.Address.ToString())
		}
	}
}
