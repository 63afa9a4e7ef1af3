package models

// Parameters are the four non-negative teleportation/payout/webbing
// probabilities that parameterize graph construction. Parameters is
// the only tuning surface recognized by the builder (spec.md §6).
type Parameters struct {
	// Alpha is the radiation probability: the chance of jumping to
	// seed from any organic source.
	Alpha float64 `json:"alpha"`
	// Beta is the payout probability from a user-epoch node to its
	// epoch accumulator.
	Beta float64 `json:"beta"`
	// GammaForward is the forward temporal webbing probability.
	GammaForward float64 `json:"gammaForward"`
	// GammaBackward is the backward temporal webbing probability.
	GammaBackward float64 `json:"gammaBackward"`
}

// Sum returns alpha + beta + gammaForward + gammaBackward.
func (p Parameters) Sum() float64 {
	return p.Alpha + p.Beta + p.GammaForward + p.GammaBackward
}

// EpochTransitionRemainder is 1 - Sum(), the budget left over for a
// user-epoch node's contribution edges.
func (p Parameters) EpochTransitionRemainder() float64 {
	return 1 - p.Sum()
}

// DefaultParameters mirrors the values used in spec.md's scenario 1.
func DefaultParameters() Parameters {
	return Parameters{Alpha: 0.2, Beta: 0.3, GammaForward: 0.1, GammaBackward: 0.1}
}
