package graphcore

import "errors"

// Sentinel errors forming the construction-time error taxonomy
// (spec.md §7). Every error is fatal and non-recoverable locally;
// callers inspect the wrapped message for the offending address or
// value, or use errors.Is against these sentinels to classify it.
var (
	// ErrInvalidParameter: any of α, β, γf, γb outside [0,1], or
	// their sum exceeds 1.
	ErrInvalidParameter = errors.New("graphcore: invalid parameter")

	// ErrInvalidNodeWeight: negative or non-finite node weight.
	ErrInvalidNodeWeight = errors.New("graphcore: invalid node weight")

	// ErrInvalidEdgeWeight: negative or non-finite edge weight, or a
	// resulting transition probability outside [0,1].
	ErrInvalidEdgeWeight = errors.New("graphcore: invalid edge weight")

	// ErrCoreNodeLeakage: an input node carries the reserved "core"
	// address prefix.
	ErrCoreNodeLeakage = errors.New("graphcore: core node leakage")

	// ErrNodeConflict: a node address was added twice.
	ErrNodeConflict = errors.New("graphcore: node address conflict")

	// ErrEdgeConflict: a Markov edge address was added twice.
	ErrEdgeConflict = errors.New("graphcore: edge address conflict")

	// ErrNoMintingSource: total mint weight across all real nodes is
	// zero, so the seed node would have no outflow.
	ErrNoMintingSource = errors.New("graphcore: no minting source")

	// ErrSumCheckViolation: a node's outgoing transition
	// probabilities deviate from 1 by more than the tolerance.
	ErrSumCheckViolation = errors.New("graphcore: sum check violation")

	// ErrAddressParseError: a structural address failed a gadget's
	// inverse parse.
	ErrAddressParseError = errors.New("graphcore: address parse error")

	// ErrVersionMismatch: a serialized envelope reports an unknown
	// version.
	ErrVersionMismatch = errors.New("graphcore: version mismatch")
)

// Tolerance bounds the allowed deviation of a node's outgoing
// transition-probability sum from 1 (spec.md invariant 1).
const Tolerance = 1e-3
