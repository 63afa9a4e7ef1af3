package graphcore

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/sourcecred/credrank/pkg/address"
	"github.com/sourcecred/credrank/pkg/models"
)

// ChainView is a read-only iteration interface over a built Graph. It
// synthesizes seed and accumulator nodes on demand rather than
// storing them (spec.md §9 "Structural node virtualization"); every
// other operation is a deterministic, pure function of the
// underlying Graph.
type ChainView struct {
	g *Graph
}

// NewChainView wraps g for iteration and export.
func NewChainView(g *Graph) *ChainView {
	return &ChainView{g: g}
}

// Graph returns the underlying graph.
func (c *ChainView) Graph() *Graph {
	return c.g
}

// NodeOrder returns the full, deterministic node order: real nodes
// sorted by address, followed by the virtual seed node, followed by
// epoch accumulators in ascending boundary order.
func (c *ChainView) NodeOrder() []address.NodeAddress {
	order := make([]address.NodeAddress, 0, len(c.g.realNodes)+len(c.g.boundaries)+1)
	real := make([]address.NodeAddress, 0, len(c.g.realNodes))
	for _, n := range c.g.realNodes {
		real = append(real, n.Address)
	}
	sort.Sort(address.NodeAddressesByAddress(real))
	order = append(order, real...)
	order = append(order, SeedAddress())
	for _, b := range c.g.boundaries {
		order = append(order, EpochAccumulatorAddress(b))
	}
	return order
}

// Node resolves addr to its materialized Node, synthesizing seed and
// accumulator nodes on demand.
func (c *ChainView) Node(addr address.NodeAddress) (models.Node, error) {
	if n, ok := c.g.realNode(addr); ok {
		return n, nil
	}
	if addr.Equal(SeedAddress()) {
		return SeedNode(), nil
	}
	if epochStart, err := ParseEpochAccumulatorAddress(addr); err == nil {
		for _, b := range c.g.boundaries {
			if b == epochStart {
				return EpochAccumulatorNode(epochStart), nil
			}
		}
	}
	return models.Node{}, fmt.Errorf("%w: %q is not a node in this graph", ErrAddressParseError, addr.ToString())
}

// Nodes returns every node address in the full node order whose
// address carries prefix.
func (c *ChainView) Nodes(prefix address.NodeAddress) []address.NodeAddress {
	var out []address.NodeAddress
	for _, addr := range c.NodeOrder() {
		if addr.HasPrefix(prefix) {
			out = append(out, addr)
		}
	}
	return out
}

// EdgeOrder returns every edge sorted by (Address, Reversed), with
// unreversed before reversed when the underlying address ties.
func (c *ChainView) EdgeOrder() []models.Edge {
	out := make([]models.Edge, 0, len(c.g.edges))
	for _, e := range c.g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Address.Equal(out[j].Address) {
			return !out[i].Reversed && out[j].Reversed
		}
		return out[i].Address.Less(out[j].Address)
	})
	return out
}

// Edge looks up a single edge by its Markov edge address.
func (c *ChainView) Edge(key models.MarkovEdgeAddress) (models.Edge, bool) {
	e, ok := c.g.edges[key]
	return e, ok
}

// InNeighbors returns every edge whose destination is addr.
func (c *ChainView) InNeighbors(addr address.NodeAddress) []models.Edge {
	var out []models.Edge
	for _, e := range c.EdgeOrder() {
		if e.Dst.Equal(addr) {
			out = append(out, e)
		}
	}
	return out
}

// verifySumCheck enforces invariant 1: every node's outgoing
// transition probabilities sum to 1 within Tolerance.
func (c *ChainView) verifySumCheck() error {
	outMass := make(map[string]float64)
	for _, e := range c.g.edges {
		outMass[e.Src.ToString()] += e.TransitionProbability
	}
	for _, addr := range c.NodeOrder() {
		mass := outMass[addr.ToString()]
		if math.Abs(mass-1) > Tolerance {
			return fmt.Errorf("%w: node %q out-transition sum = %v, want 1±%v",
				ErrSumCheckViolation, addr.ToString(), mass, Tolerance)
		}
	}
	return nil
}

// ToSparseChain exports the graph as a MarkovProcessGraphDocument:
// real nodes, edges with endpoints compressed to indices into the
// full node order, participants, finite epoch boundaries, and
// parameters. It fails the sum-check invariant before exporting.
func (c *ChainView) ToSparseChain() (models.MarkovProcessGraphDocument, error) {
	if err := c.verifySumCheck(); err != nil {
		return models.MarkovProcessGraphDocument{}, err
	}

	nodeOrder := c.NodeOrder()
	indexOf := make(map[string]int, len(nodeOrder))
	for i, addr := range nodeOrder {
		indexOf[addr.ToString()] = i
	}

	sortedNodes := make([]models.Node, 0, len(c.g.realNodes))
	for _, addr := range nodeOrder {
		if n, ok := c.g.realNode(addr); ok {
			sortedNodes = append(sortedNodes, n)
		}
	}

	edgeOrder := c.EdgeOrder()
	indexedEdges := make([]models.IndexedEdge, len(edgeOrder))
	for i, e := range edgeOrder {
		indexedEdges[i] = models.IndexedEdge{
			Address:               e.Address.ToString(),
			Reversed:              e.Reversed,
			Src:                   indexOf[e.Src.ToString()],
			Dst:                   indexOf[e.Dst.ToString()],
			TransitionProbability: e.TransitionProbability,
		}
	}

	payload := models.MarkovProcessGraphPayload{
		SortedNodes:           sortedNodes,
		IndexedEdges:          indexedEdges,
		Participants:          c.g.Participants(),
		FiniteEpochBoundaries: models.FiniteBoundaries(c.g.boundaries),
		Parameters:            c.g.parameters,
	}
	payload.ContentHash = contentHashOf(payload)

	return models.MarkovProcessGraphDocument{
		Type:    models.MarkovProcessGraphType,
		Version: models.MarkovProcessGraphVersion,
		Payload: payload,
	}, nil
}

// contentHashOf computes a stable double-SHA256 digest over the
// payload's canonical fields, so two independently-built but
// semantically identical documents hash identically. Double-hashing
// via chainhash matches the teacher's hashing convention for
// content-addressed data.
func contentHashOf(p models.MarkovProcessGraphPayload) string {
	var b strings.Builder
	for _, n := range p.SortedNodes {
		fmt.Fprintf(&b, "N|%s|%s|%s\n", n.Address.ToString(), n.Description, strconv.FormatFloat(n.Mint, 'g', -1, 64))
	}
	for _, e := range p.IndexedEdges {
		fmt.Fprintf(&b, "E|%s|%v|%d|%d|%s\n", e.Address, e.Reversed, e.Src, e.Dst,
			strconv.FormatFloat(e.TransitionProbability, 'g', -1, 64))
	}
	for _, boundary := range p.FiniteEpochBoundaries {
		fmt.Fprintf(&b, "B|%s\n", strconv.FormatFloat(boundary, 'g', -1, 64))
	}
	fmt.Fprintf(&b, "P|%v|%v|%v|%v\n", p.Parameters.Alpha, p.Parameters.Beta, p.Parameters.GammaForward, p.Parameters.GammaBackward)
	return chainhash.DoubleHashH([]byte(b.String())).String()
}

// FromSparseChain decodes doc back into a ChainView, reconstructing
// the underlying Graph from its node and edge arrays without
// re-running Build. It rejects an unrecognized envelope version and
// re-verifies invariant 1 and the content hash before returning.
func FromSparseChain(doc models.MarkovProcessGraphDocument) (*ChainView, error) {
	if doc.Type != models.MarkovProcessGraphType {
		return nil, fmt.Errorf("%w: unrecognized document type %q", ErrVersionMismatch, doc.Type)
	}
	if doc.Version != models.MarkovProcessGraphVersion {
		return nil, fmt.Errorf("%w: unrecognized document version %q", ErrVersionMismatch, doc.Version)
	}

	payload := doc.Payload
	if got := contentHashOf(payload); got != payload.ContentHash {
		return nil, fmt.Errorf("%w: content hash mismatch: got %s, want %s", ErrSumCheckViolation, got, payload.ContentHash)
	}

	boundaries := models.BoundariesFromFinite(payload.FiniteEpochBoundaries)

	realNodes := make(map[string]models.Node, len(payload.SortedNodes))
	for _, n := range payload.SortedNodes {
		realNodes[n.Address.ToString()] = n
	}

	nodeOrder := make([]address.NodeAddress, 0, len(payload.SortedNodes)+len(boundaries)+1)
	sortedAddrs := make([]address.NodeAddress, 0, len(payload.SortedNodes))
	for _, n := range payload.SortedNodes {
		sortedAddrs = append(sortedAddrs, n.Address)
	}
	sort.Sort(address.NodeAddressesByAddress(sortedAddrs))
	nodeOrder = append(nodeOrder, sortedAddrs...)
	nodeOrder = append(nodeOrder, SeedAddress())
	for _, b := range boundaries {
		nodeOrder = append(nodeOrder, EpochAccumulatorAddress(b))
	}

	edges := make(map[models.MarkovEdgeAddress]models.Edge, len(payload.IndexedEdges))
	for _, ie := range payload.IndexedEdges {
		addr, err := address.ParseEdgeAddress(ie.Address)
		if err != nil {
			return nil, err
		}
		if ie.Src < 0 || ie.Src >= len(nodeOrder) || ie.Dst < 0 || ie.Dst >= len(nodeOrder) {
			return nil, fmt.Errorf("%w: edge %q has an out-of-range endpoint index", ErrAddressParseError, ie.Address)
		}
		e := models.Edge{
			Address:               addr,
			Reversed:              ie.Reversed,
			Src:                   nodeOrder[ie.Src],
			Dst:                   nodeOrder[ie.Dst],
			TransitionProbability: ie.TransitionProbability,
		}
		edges[e.Key()] = e
	}

	g := &Graph{
		realNodes:    realNodes,
		edges:        edges,
		participants: payload.Participants,
		boundaries:   boundaries,
		parameters:   payload.Parameters,
	}

	view := NewChainView(g)
	if err := view.verifySumCheck(); err != nil {
		return nil, err
	}
	return view, nil
}
