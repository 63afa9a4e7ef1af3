package models

import "github.com/sourcecred/credrank/pkg/address"

// Participant is a scoring node: its Address identifies the original
// scoring node in the input graph (never itself present in the
// Markov graph — it is fibrated into one user-epoch node per
// boundary), and Id is a stable opaque identifier embedded in every
// user-epoch address derived from this participant.
type Participant struct {
	Address     address.NodeAddress `json:"address"`
	Description string              `json:"description"`
	Id          string              `json:"id"`
}
