package graphcore

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/sourcecred/credrank/pkg/address"
	"github.com/sourcecred/credrank/pkg/models"
)

// CreditedNode pairs a node with the stationary score bound onto it.
type CreditedNode struct {
	models.Node
	Cred float64
}

// CreditedEdge pairs an edge with its cred flow: the stationary score
// of its source scaled by its transition probability. credFlow is the
// quantity of cred that actually moves along this edge per step.
type CreditedEdge struct {
	models.Edge
	CredFlow float64
}

// ParticipantCred summarizes one participant's total cred and its
// breakdown by epoch boundary.
type ParticipantCred struct {
	Participant  models.Participant
	Cred         float64
	CredPerEpoch map[float64]float64
}

// CredGraph binds an externally-computed stationary distribution (the
// solver's output — graphcore never computes it itself, see
// internal/solver) onto a ChainView, and derives credFlow and
// per-participant cred from it (spec.md §4.F).
type CredGraph struct {
	view    *ChainView
	scores  []float64
	byAddr  map[string]float64
}

// NewCredGraph binds scores, which must be aligned index-for-index
// with view.NodeOrder(), onto view. It rejects a length mismatch or
// any non-finite, negative score.
func NewCredGraph(view *ChainView, scores []float64) (*CredGraph, error) {
	order := view.NodeOrder()
	if len(scores) != len(order) {
		return nil, fmt.Errorf("%w: score vector has %d entries, node order has %d", ErrInvalidNodeWeight, len(scores), len(order))
	}

	byAddr := make(map[string]float64, len(order))
	for i, addr := range order {
		s := scores[i]
		if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
			return nil, fmt.Errorf("%w: score for %q is not a valid probability: %v", ErrInvalidNodeWeight, addr.ToString(), s)
		}
		byAddr[addr.ToString()] = s
	}

	return &CredGraph{
		view:   view,
		scores: append([]float64{}, scores...),
		byAddr: byAddr,
	}, nil
}

// credOf returns the bound score for addr, or 0 if addr carries none
// (should not happen for any address view.NodeOrder() produces).
func (c *CredGraph) credOf(addr address.NodeAddress) float64 {
	return c.byAddr[addr.ToString()]
}

// Scores returns the raw score vector this cred graph was built from,
// aligned to view.NodeOrder() — the shape a shadow rerun compares
// against.
func (c *CredGraph) Scores() []float64 {
	return append([]float64{}, c.scores...)
}

// Node resolves addr to its node plus bound cred.
func (c *CredGraph) Node(addr address.NodeAddress) (CreditedNode, error) {
	n, err := c.view.Node(addr)
	if err != nil {
		return CreditedNode{}, err
	}
	return CreditedNode{Node: n, Cred: c.credOf(addr)}, nil
}

// Nodes returns every node in the full node order, credited.
func (c *CredGraph) Nodes() []CreditedNode {
	order := c.view.NodeOrder()
	out := make([]CreditedNode, 0, len(order))
	for _, addr := range order {
		n, err := c.view.Node(addr)
		if err != nil {
			continue
		}
		out = append(out, CreditedNode{Node: n, Cred: c.credOf(addr)})
	}
	return out
}

// Edges returns every edge, credited with its credFlow.
func (c *CredGraph) Edges() []CreditedEdge {
	edgeOrder := c.view.EdgeOrder()
	out := make([]CreditedEdge, len(edgeOrder))
	for i, e := range edgeOrder {
		out[i] = CreditedEdge{Edge: e, CredFlow: c.credOf(e.Src) * e.TransitionProbability}
	}
	return out
}

// InNeighbors returns every credited edge targeting addr.
func (c *CredGraph) InNeighbors(addr address.NodeAddress) []CreditedEdge {
	in := c.view.InNeighbors(addr)
	out := make([]CreditedEdge, len(in))
	for i, e := range in {
		out[i] = CreditedEdge{Edge: e, CredFlow: c.credOf(e.Src) * e.TransitionProbability}
	}
	return out
}

// Participants returns every participant's total cred and its
// breakdown by epoch boundary. Per-epoch cred is the credFlow of the
// payout edge at that boundary — credOf(userEpoch)*beta, not the
// user-epoch node's own stationary score — since it's the payout edge
// that actually carries the participant's share into the accumulator
// (spec.md §4.F "cred aggregation").
func (c *CredGraph) Participants() []ParticipantCred {
	participants := c.view.g.Participants()
	out := make([]ParticipantCred, 0, len(participants))
	for _, p := range participants {
		perEpoch := make(map[float64]float64, len(c.view.g.boundaries))
		var total float64
		for _, b := range c.view.g.boundaries {
			payout := PayoutEdge(p.Id, b, 0).Key()
			var cred float64
			if e, ok := c.view.Edge(payout); ok {
				cred = c.credOf(e.Src) * e.TransitionProbability
			}
			perEpoch[b] = cred
			total += cred
		}
		out = append(out, ParticipantCred{Participant: p, Cred: total, CredPerEpoch: perEpoch})
	}
	return out
}

// ToCredGraphDocument exports the bound graph as a versioned
// CredGraphDocument: the underlying sparse chain plus the score
// vector aligned to its node order.
func (c *CredGraph) ToCredGraphDocument() (models.CredGraphDocument, error) {
	mpg, err := c.view.ToSparseChain()
	if err != nil {
		return models.CredGraphDocument{}, err
	}

	payload := models.CredGraphPayload{
		Mpg:    mpg,
		Scores: append([]float64{}, c.scores...),
	}
	payload.ContentHash = contentHashOfCredGraph(payload)

	return models.CredGraphDocument{
		Type:    models.CredGraphType,
		Version: models.CredGraphVersion,
		Payload: payload,
	}, nil
}

// contentHashOfCredGraph hashes the embedded chain's own content hash
// together with the bound score vector, so a tampered score entry is
// detected even though the chain document itself is untouched.
func contentHashOfCredGraph(p models.CredGraphPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "MPG|%s\n", p.Mpg.Payload.ContentHash)
	for _, s := range p.Scores {
		fmt.Fprintf(&b, "S|%s\n", strconv.FormatFloat(s, 'g', -1, 64))
	}
	return chainhash.DoubleHashH([]byte(b.String())).String()
}

// FromCredGraphDocument decodes doc back into a CredGraph, verifying
// the embedded chain document and re-deriving the score binding.
func FromCredGraphDocument(doc models.CredGraphDocument) (*CredGraph, error) {
	if doc.Type != models.CredGraphType {
		return nil, fmt.Errorf("%w: unrecognized document type %q", ErrVersionMismatch, doc.Type)
	}
	if doc.Version != models.CredGraphVersion {
		return nil, fmt.Errorf("%w: unrecognized document version %q", ErrVersionMismatch, doc.Version)
	}
	if got := contentHashOfCredGraph(doc.Payload); got != doc.Payload.ContentHash {
		return nil, fmt.Errorf("%w: content hash mismatch: got %s, want %s", ErrSumCheckViolation, got, doc.Payload.ContentHash)
	}

	view, err := FromSparseChain(doc.Payload.Mpg)
	if err != nil {
		return nil, err
	}
	return NewCredGraph(view, doc.Payload.Scores)
}
