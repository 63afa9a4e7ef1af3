// Package models holds the public data types shared between the
// graph-construction core (internal/graphcore), the HTTP surface
// (internal/api), and the document store (internal/store): nodes,
// edges, participants, intervals, parameters, and the versioned JSON
// document envelopes.
package models

import "github.com/sourcecred/credrank/pkg/address"

// Node is a Markov-process node: a unique address, free-form
// reporting text, and a mint weight. Mint is zero for structural
// nodes and for input nodes not eligible to receive seed flow.
type Node struct {
	Address     address.NodeAddress `json:"address"`
	Description string              `json:"description"`
	Mint        float64             `json:"mint"`
}
