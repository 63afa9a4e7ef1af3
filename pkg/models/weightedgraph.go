package models

import "github.com/sourcecred/credrank/pkg/address"

// InputEdge is a single edge from the caller-supplied weighted
// contribution graph, already filtered of dangling endpoints (spec.md
// §1 Non-goals: the core never sees dangling edges).
type InputEdge struct {
	Address     address.EdgeAddress
	Src         address.NodeAddress
	Dst         address.NodeAddress
	TimestampMs float64
}

// EdgeWeight carries the forward and backward scalar weights applied
// to an input edge's two candidate directions.
type EdgeWeight struct {
	Forward  float64
	Backward float64
}

// WeightConfig is the weight configuration the evaluator (component
// C) reduces to scalars. Weights are keyed by the canonical string
// form of the address they apply to (or a prefix of it); a lookup
// walks from the exact address up through its ancestors, using the
// first (longest) match found, and falls back to the evaluator's
// default when no ancestor carries a weight.
type WeightConfig struct {
	NodeWeights map[string]float64
	EdgeWeights map[string]EdgeWeight
}

// NewWeightConfig returns an empty weight configuration; every
// address falls back to the evaluator's defaults until a weight is
// set for it or one of its prefixes.
func NewWeightConfig() WeightConfig {
	return WeightConfig{
		NodeWeights: make(map[string]float64),
		EdgeWeights: make(map[string]EdgeWeight),
	}
}

// WeightedGraph is the external collaborator interface the builder
// consumes: the surrounding plugin ecosystem (GitHub, Discord,
// Discourse, Ethereum address mapping, etc.) is responsible for
// implementing it. spec.md §1 places producing this graph out of
// scope for the core.
type WeightedGraph interface {
	// Nodes returns every node address present in the graph,
	// excluding the reserved "core" prefix and scoring participants'
	// own addresses.
	Nodes() []address.NodeAddress
	// Edges returns every non-dangling edge ({showDangling: false}
	// semantics from spec.md §6).
	Edges() []InputEdge
	// Weights returns the weight configuration consumed by the
	// evaluator.
	Weights() WeightConfig
}

// StaticWeightedGraph is a simple in-memory WeightedGraph, sufficient
// for tests and for callers that already have the full graph
// materialized.
type StaticWeightedGraph struct {
	NodeAddresses []address.NodeAddress
	InputEdges    []InputEdge
	WeightConfig  WeightConfig
}

func (g StaticWeightedGraph) Nodes() []address.NodeAddress { return g.NodeAddresses }
func (g StaticWeightedGraph) Edges() []InputEdge            { return g.InputEdges }
func (g StaticWeightedGraph) Weights() WeightConfig          { return g.WeightConfig }
