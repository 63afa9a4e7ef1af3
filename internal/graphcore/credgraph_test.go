package graphcore

import (
	"math"
	"testing"
)

func uniformScores(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1.0 / float64(n)
	}
	return out
}

func TestNewCredGraph_RejectsLengthMismatch(t *testing.T) {
	view := NewChainView(buildMinimalGraph(t))
	_, err := NewCredGraph(view, []float64{0.5})
	if err == nil {
		t.Fatalf("expected an error for a score vector shorter than the node order")
	}
}

func TestNewCredGraph_RejectsNegativeScore(t *testing.T) {
	view := NewChainView(buildMinimalGraph(t))
	scores := uniformScores(len(view.NodeOrder()))
	scores[0] = -0.1

	if _, err := NewCredGraph(view, scores); err == nil {
		t.Fatalf("expected an error for a negative score")
	}
}

func TestCredGraph_CredFlowIsSourceCredTimesProbability(t *testing.T) {
	view := NewChainView(buildMinimalGraph(t))
	order := view.NodeOrder()
	scores := uniformScores(len(order))

	cg, err := NewCredGraph(view, scores)
	if err != nil {
		t.Fatalf("NewCredGraph returned error: %v", err)
	}

	for _, ce := range cg.Edges() {
		want := cg.credOf(ce.Src) * ce.TransitionProbability
		if math.Abs(ce.CredFlow-want) > 1e-12 {
			t.Fatalf("credFlow for %q = %v, want %v", ce.Address.ToString(), ce.CredFlow, want)
		}
	}
}

func TestCredGraph_ParticipantCredSumsAcrossEpochs(t *testing.T) {
	view := NewChainView(buildMinimalGraph(t))
	order := view.NodeOrder()
	scores := uniformScores(len(order))

	cg, err := NewCredGraph(view, scores)
	if err != nil {
		t.Fatalf("NewCredGraph returned error: %v", err)
	}

	participants := cg.Participants()
	if len(participants) != 1 {
		t.Fatalf("expected 1 participant, got %d", len(participants))
	}

	pc := participants[0]
	var summed float64
	for _, v := range pc.CredPerEpoch {
		summed += v
	}
	if math.Abs(summed-pc.Cred) > 1e-12 {
		t.Fatalf("participant cred %v does not equal sum of its per-epoch cred %v", pc.Cred, summed)
	}
	if len(pc.CredPerEpoch) != len(view.g.boundaries) {
		t.Fatalf("expected %d epochs, got %d", len(view.g.boundaries), len(pc.CredPerEpoch))
	}

	beta := view.g.parameters.Beta
	for _, b := range view.g.boundaries {
		want := cg.credOf(UserEpochAddress(pc.Participant.Id, b)) * beta
		if math.Abs(pc.CredPerEpoch[b]-want) > 1e-12 {
			t.Fatalf("per-epoch cred at %v = %v, want credOf(userEpoch)*beta = %v (got the user-epoch node's own score instead of its payout edge's credFlow?)", b, pc.CredPerEpoch[b], want)
		}
	}
}

func TestCredGraph_DocumentRoundTrips(t *testing.T) {
	view := NewChainView(buildMinimalGraph(t))
	scores := uniformScores(len(view.NodeOrder()))

	cg, err := NewCredGraph(view, scores)
	if err != nil {
		t.Fatalf("NewCredGraph returned error: %v", err)
	}

	doc, err := cg.ToCredGraphDocument()
	if err != nil {
		t.Fatalf("ToCredGraphDocument returned error: %v", err)
	}

	decoded, err := FromCredGraphDocument(doc)
	if err != nil {
		t.Fatalf("FromCredGraphDocument returned error: %v", err)
	}

	if len(decoded.scores) != len(cg.scores) {
		t.Fatalf("decoded score vector length = %d, want %d", len(decoded.scores), len(cg.scores))
	}
}

func TestFromCredGraphDocument_RejectsTamperedScore(t *testing.T) {
	view := NewChainView(buildMinimalGraph(t))
	scores := uniformScores(len(view.NodeOrder()))

	cg, err := NewCredGraph(view, scores)
	if err != nil {
		t.Fatalf("NewCredGraph returned error: %v", err)
	}
	doc, err := cg.ToCredGraphDocument()
	if err != nil {
		t.Fatalf("ToCredGraphDocument returned error: %v", err)
	}

	doc.Payload.Scores[0] += 10
	if _, err := FromCredGraphDocument(doc); err == nil {
		t.Fatalf("expected a content-hash mismatch error after tampering with a score")
	}
}
