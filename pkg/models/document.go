package models

// Envelope type/version constants (spec.md §6). A decoder rejects any
// envelope whose Version it does not recognize.
const (
	MarkovProcessGraphType    = "sourcecred/markovProcessGraph"
	MarkovProcessGraphVersion = "0.1.0"
	CredGraphType             = "sourcecred/credGraph"
	CredGraphVersion          = "0.1.0"
)

// IndexedEdge is an Edge serialized with integer node-order indices
// instead of repeated address strings, to compress duplicated
// strings across many edges sharing endpoints.
type IndexedEdge struct {
	Address               string  `json:"address"`
	Reversed              bool    `json:"reversed"`
	Src                   int     `json:"src"`
	Dst                   int     `json:"dst"`
	TransitionProbability float64 `json:"transitionProbability"`
}

// MarkovProcessGraphPayload is the envelope payload for a built
// graph: real nodes sorted by address, edges sorted by Markov edge
// address with endpoint indices into the *full* node order (real +
// virtual), participants in their original order, and the finite
// epoch boundaries with the ±∞ sentinels stripped.
type MarkovProcessGraphPayload struct {
	SortedNodes           []Node        `json:"sortedNodes"`
	IndexedEdges          []IndexedEdge `json:"indexedEdges"`
	Participants          []Participant `json:"participants"`
	FiniteEpochBoundaries []float64     `json:"finiteEpochBoundaries"`
	Parameters            Parameters    `json:"parameters"`
	ContentHash           string        `json:"contentHash"`
}

// MarkovProcessGraphDocument is the top-level versioned envelope for
// a serialized graph.
type MarkovProcessGraphDocument struct {
	Type    string                    `json:"type"`
	Version string                    `json:"version"`
	Payload MarkovProcessGraphPayload `json:"payload"`
}

// CredGraphPayload binds a score vector (aligned to the full node
// order the contained graph reconstructs) onto a graph document.
type CredGraphPayload struct {
	Mpg         MarkovProcessGraphDocument `json:"mpg"`
	Scores      []float64                  `json:"scores"`
	ContentHash string                     `json:"contentHash"`
}

// CredGraphDocument is the top-level versioned envelope for a
// serialized cred graph.
type CredGraphDocument struct {
	Type    string           `json:"type"`
	Version string           `json:"version"`
	Payload CredGraphPayload `json:"payload"`
}
