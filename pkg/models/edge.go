package models

import "github.com/sourcecred/credrank/pkg/address"

// Edge is a Markov-process edge. Address is either the original input
// edge address or a gadget-synthesized structural address. Reversed
// distinguishes the two directions a weighted input edge can
// contribute. The pair (Address, Reversed), returned by Key, is the
// unique Markov edge address; the graph builder rejects duplicates of
// it.
type Edge struct {
	Address               address.EdgeAddress `json:"address"`
	Reversed              bool                `json:"reversed"`
	Src                   address.NodeAddress `json:"src"`
	Dst                   address.NodeAddress `json:"dst"`
	TransitionProbability float64             `json:"transitionProbability"`
}

// MarkovEdgeAddress is the composite key (Address, Reversed) that
// distinguishes the two directions of an input edge.
type MarkovEdgeAddress struct {
	Address  string
	Reversed bool
}

// Key returns the composite Markov-edge-address key for e.
func (e Edge) Key() MarkovEdgeAddress {
	return MarkovEdgeAddress{Address: e.Address.ToString(), Reversed: e.Reversed}
}
