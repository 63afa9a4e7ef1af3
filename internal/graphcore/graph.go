package graphcore

import (
	"github.com/sourcecred/credrank/pkg/address"
	"github.com/sourcecred/credrank/pkg/models"
)

// Graph is the immutable Markov process graph produced by Build.
// Structural (virtual) nodes — seed and epoch accumulators — are not
// stored; they are deterministic functions of participants and
// boundaries and are synthesized on demand by ChainView (spec.md §9
// "Structural node virtualization").
type Graph struct {
	realNodes    map[string]models.Node
	edges        map[models.MarkovEdgeAddress]models.Edge
	participants []models.Participant
	boundaries   []float64 // includes ±∞ sentinels, ascending
	parameters   models.Parameters
}

// Participants returns the participants the graph was built with, in
// their original order.
func (g *Graph) Participants() []models.Participant {
	out := make([]models.Participant, len(g.participants))
	copy(out, g.participants)
	return out
}

// Boundaries returns the full time-boundary sequence, including the
// ±∞ sentinels.
func (g *Graph) Boundaries() []float64 {
	out := make([]float64, len(g.boundaries))
	copy(out, g.boundaries)
	return out
}

// Parameters returns the construction parameters.
func (g *Graph) Parameters() models.Parameters {
	return g.parameters
}

// realNode looks up a stored (non-virtual) node by address.
func (g *Graph) realNode(addr address.NodeAddress) (models.Node, bool) {
	n, ok := g.realNodes[addr.ToString()]
	return n, ok
}
