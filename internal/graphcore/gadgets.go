package graphcore

import (
	"fmt"
	"strconv"

	"github.com/sourcecred/credrank/pkg/address"
	"github.com/sourcecred/credrank/pkg/models"
)

// CorePrefix is the reserved address root under which every
// structural node and edge lives. No component outside this file may
// synthesize an address carrying this prefix — the gadgets below are
// the single source of truth for the structural naming convention
// (spec.md §4.B).
const CorePrefix = "core"

// Structural part tags, one per gadget. These are the literal path
// segments that appear immediately after the core prefix.
const (
	tagSeed                  = "SEED"
	tagEpochAccumulator      = "EPOCH_ACCUMULATOR"
	tagUserEpoch             = "USER_EPOCH"
	tagSeedMint              = "SEED_MINT"
	tagPayout                = "PAYOUT"
	tagForwardWebbing        = "FORWARD_WEBBING"
	tagBackwardWebbing       = "BACKWARD_WEBBING"
	tagContributionRadiation = "CONTRIBUTION_RADIATION"
	tagEpochRadiation        = "EPOCH_RADIATION"
	tagAccumulatorRadiation  = "ACCUMULATOR_RADIATION"
)

var coreNodePrefix = address.MustNodeAddress(CorePrefix)
var coreEdgePrefix = address.MustEdgeAddress(CorePrefix)

// formatBoundary renders a time boundary (including ±∞) as a stable
// address part. strconv's 'g' formatter already renders the IEEE
// infinities as "+Inf"/"-Inf", which round-trips through ParseFloat.
func formatBoundary(b float64) string {
	return strconv.FormatFloat(b, 'g', -1, 64)
}

func parseBoundary(s string) (float64, error) {
	b, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid epoch boundary %q: %v", ErrAddressParseError, s, err)
	}
	return b, nil
}

// --- Node gadgets -----------------------------------------------------

// SeedAddress is the singleton seed node's address: core/SEED.
func SeedAddress() address.NodeAddress {
	return coreNodePrefix.Append(tagSeed)
}

// SeedNode materializes the seed node. It never carries mint (it is
// the source of mint, not a recipient; invariant 3: no radiation
// edge either).
func SeedNode() models.Node {
	return models.Node{Address: SeedAddress(), Description: "seed", Mint: 0}
}

// EpochAccumulatorAddress builds the address of the accumulator for
// the epoch starting at epochStart: core/EPOCH_ACCUMULATOR/<epochStart>.
func EpochAccumulatorAddress(epochStart float64) address.NodeAddress {
	return coreNodePrefix.Append(tagEpochAccumulator, formatBoundary(epochStart))
}

// ParseEpochAccumulatorAddress is the inverse of
// EpochAccumulatorAddress; it errors if addr does not match the
// gadget's prefix and key shape.
func ParseEpochAccumulatorAddress(addr address.NodeAddress) (epochStart float64, err error) {
	parts := addr.ToParts()
	if len(parts) != 3 || parts[0] != CorePrefix || parts[1] != tagEpochAccumulator {
		return 0, fmt.Errorf("%w: %q is not an epoch accumulator address", ErrAddressParseError, addr.ToString())
	}
	return parseBoundary(parts[2])
}

// EpochAccumulatorNode materializes the accumulator node for the
// given epoch boundary.
func EpochAccumulatorNode(epochStart float64) models.Node {
	return models.Node{
		Address:     EpochAccumulatorAddress(epochStart),
		Description: fmt.Sprintf("epoch accumulator for %s", formatBoundary(epochStart)),
		Mint:        0,
	}
}

// UserEpochAddress builds the address of the user-epoch node for
// participant ownerId at epochStart: core/USER_EPOCH/<epochStart>/<ownerId>.
func UserEpochAddress(ownerId string, epochStart float64) address.NodeAddress {
	return coreNodePrefix.Append(tagUserEpoch, formatBoundary(epochStart), ownerId)
}

// ParseUserEpochAddress is the inverse of UserEpochAddress.
func ParseUserEpochAddress(addr address.NodeAddress) (ownerId string, epochStart float64, err error) {
	parts := addr.ToParts()
	if len(parts) != 4 || parts[0] != CorePrefix || parts[1] != tagUserEpoch {
		return "", 0, fmt.Errorf("%w: %q is not a user-epoch address", ErrAddressParseError, addr.ToString())
	}
	epochStart, err = parseBoundary(parts[2])
	if err != nil {
		return "", 0, err
	}
	return parts[3], epochStart, nil
}

// UserEpochNode materializes the user-epoch node for the given
// participant and epoch boundary. Mint is always zero: user-epoch
// nodes are virtual fibrations of a participant, never direct mint
// recipients.
func UserEpochNode(p models.Participant, epochStart float64) models.Node {
	return models.Node{
		Address:     UserEpochAddress(p.Id, epochStart),
		Description: fmt.Sprintf("%s at %s", p.Description, formatBoundary(epochStart)),
		Mint:        0,
	}
}

// NodeClass classifies a node address by structural role (spec.md §3).
type NodeClass int

const (
	ClassBase NodeClass = iota
	ClassSeed
	ClassEpochAccumulator
	ClassUserEpoch
)

// ClassifyNode determines which of the four node classes addr
// belongs to. A core-prefixed address matching none of the known
// gadgets is an invariant violation the caller must treat as fatal.
func ClassifyNode(addr address.NodeAddress) (NodeClass, error) {
	if !addr.HasPrefix(coreNodePrefix) {
		return ClassBase, nil
	}
	if addr.Equal(SeedAddress()) {
		return ClassSeed, nil
	}
	if _, err := ParseEpochAccumulatorAddress(addr); err == nil {
		return ClassEpochAccumulator, nil
	}
	if _, _, err := ParseUserEpochAddress(addr); err == nil {
		return ClassUserEpoch, nil
	}
	return 0, fmt.Errorf("%w: %q carries the reserved core prefix but matches no node gadget", ErrCoreNodeLeakage, addr.ToString())
}

// --- Edge gadgets -------------------------------------------------------

// SeedMintEdgeAddress builds the address of the seed-mint edge
// targeting dst: core/SEED_MINT/<dst parts...>.
func SeedMintEdgeAddress(dst address.NodeAddress) address.EdgeAddress {
	return coreEdgePrefix.Append(append([]string{tagSeedMint}, dst.ToParts()...)...)
}

// SeedMintEdge materializes the seed-mint edge from seed to dst with
// the given transition probability.
func SeedMintEdge(dst address.NodeAddress, probability float64) models.Edge {
	return models.Edge{
		Address:               SeedMintEdgeAddress(dst),
		Reversed:              false,
		Src:                   SeedAddress(),
		Dst:                   dst,
		TransitionProbability: probability,
	}
}

// PayoutEdgeAddress builds the address of the payout edge from the
// user-epoch node (ownerId, epochStart) to its accumulator:
// core/PAYOUT/<epochStart>/<ownerId>.
func PayoutEdgeAddress(ownerId string, epochStart float64) address.EdgeAddress {
	return coreEdgePrefix.Append(tagPayout, formatBoundary(epochStart), ownerId)
}

// PayoutEdge materializes the payout edge for participant ownerId at
// epochStart with probability beta.
func PayoutEdge(ownerId string, epochStart float64, beta float64) models.Edge {
	return models.Edge{
		Address:               PayoutEdgeAddress(ownerId, epochStart),
		Reversed:              false,
		Src:                   UserEpochAddress(ownerId, epochStart),
		Dst:                   EpochAccumulatorAddress(epochStart),
		TransitionProbability: beta,
	}
}

// ForwardWebbingEdgeAddress builds the address of the forward
// webbing edge from the user-epoch node at fromEpochStart to the one
// at toEpochStart, for participant ownerId.
func ForwardWebbingEdgeAddress(ownerId string, fromEpochStart float64) address.EdgeAddress {
	return coreEdgePrefix.Append(tagForwardWebbing, formatBoundary(fromEpochStart), ownerId)
}

// ForwardWebbingEdge materializes the forward webbing edge with
// probability gammaForward.
func ForwardWebbingEdge(ownerId string, fromEpochStart, toEpochStart float64, gammaForward float64) models.Edge {
	return models.Edge{
		Address:               ForwardWebbingEdgeAddress(ownerId, fromEpochStart),
		Reversed:              false,
		Src:                   UserEpochAddress(ownerId, fromEpochStart),
		Dst:                   UserEpochAddress(ownerId, toEpochStart),
		TransitionProbability: gammaForward,
	}
}

// BackwardWebbingEdgeAddress builds the address of the backward
// webbing edge from the user-epoch node at fromEpochStart (the later
// boundary) back to the one at toEpochStart (the earlier boundary).
func BackwardWebbingEdgeAddress(ownerId string, fromEpochStart float64) address.EdgeAddress {
	return coreEdgePrefix.Append(tagBackwardWebbing, formatBoundary(fromEpochStart), ownerId)
}

// BackwardWebbingEdge materializes the backward webbing edge with
// probability gammaBackward.
func BackwardWebbingEdge(ownerId string, fromEpochStart, toEpochStart float64, gammaBackward float64) models.Edge {
	return models.Edge{
		Address:               BackwardWebbingEdgeAddress(ownerId, fromEpochStart),
		Reversed:              false,
		Src:                   UserEpochAddress(ownerId, fromEpochStart),
		Dst:                   UserEpochAddress(ownerId, toEpochStart),
		TransitionProbability: gammaBackward,
	}
}

// ContributionRadiationEdgeAddress builds the address of a radiation
// edge from a base node src back to seed.
func ContributionRadiationEdgeAddress(src address.NodeAddress) address.EdgeAddress {
	return coreEdgePrefix.Append(append([]string{tagContributionRadiation}, src.ToParts()...)...)
}

// ContributionRadiationEdge materializes a radiation edge from a base
// node.
func ContributionRadiationEdge(src address.NodeAddress, probability float64) models.Edge {
	return models.Edge{
		Address:               ContributionRadiationEdgeAddress(src),
		Reversed:              false,
		Src:                   src,
		Dst:                   SeedAddress(),
		TransitionProbability: probability,
	}
}

// EpochRadiationEdgeAddress builds the address of the radiation edge
// from a user-epoch node back to seed.
func EpochRadiationEdgeAddress(ownerId string, epochStart float64) address.EdgeAddress {
	return coreEdgePrefix.Append(tagEpochRadiation, formatBoundary(epochStart), ownerId)
}

// EpochRadiationEdge materializes the radiation edge from a
// user-epoch node.
func EpochRadiationEdge(ownerId string, epochStart float64, probability float64) models.Edge {
	return models.Edge{
		Address:               EpochRadiationEdgeAddress(ownerId, epochStart),
		Reversed:              false,
		Src:                   UserEpochAddress(ownerId, epochStart),
		Dst:                   SeedAddress(),
		TransitionProbability: probability,
	}
}

// AccumulatorRadiationEdgeAddress builds the address of the
// radiation edge from an epoch accumulator back to seed.
func AccumulatorRadiationEdgeAddress(epochStart float64) address.EdgeAddress {
	return coreEdgePrefix.Append(tagAccumulatorRadiation, formatBoundary(epochStart))
}

// AccumulatorRadiationEdge materializes the radiation edge from an
// epoch accumulator.
func AccumulatorRadiationEdge(epochStart float64, probability float64) models.Edge {
	return models.Edge{
		Address:               AccumulatorRadiationEdgeAddress(epochStart),
		Reversed:              false,
		Src:                   EpochAccumulatorAddress(epochStart),
		Dst:                   SeedAddress(),
		TransitionProbability: probability,
	}
}
