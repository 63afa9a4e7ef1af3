package graphcore

import (
	"fmt"
	"math"

	"github.com/sourcecred/credrank/pkg/address"
	"github.com/sourcecred/credrank/pkg/models"
)

// edgeProbabilityEpsilon bounds the floating-point slop tolerated on
// an individual transition probability before ErrInvalidEdgeWeight
// fires. It is intentionally much tighter than the §3 invariant-1
// tolerance (1e-3), which bounds a per-node *sum* rather than a
// single value.
const edgeProbabilityEpsilon = 1e-9

// BuildArgs bundles the four inputs spec.md §3 names: the weighted
// contribution graph, the scoring participants, the ordered interval
// sequence, and the four tuning parameters.
type BuildArgs struct {
	WeightedGraph models.WeightedGraph
	Participants  []models.Participant
	Intervals     []models.Interval
	Parameters    models.Parameters
}

// buildState is the mutable arena used only during construction.
// Build returns an immutable Graph once every phase completes; no
// reference to buildState escapes.
type buildState struct {
	evaluator         weightEvaluator
	realNodes         map[string]models.Node
	allEdges          map[models.MarkovEdgeAddress]models.Edge
	outMassBySrc      map[string]float64
	participantByAddr map[string]models.Participant
	boundaries        []float64
	params            models.Parameters
}

// Build runs the six phases of spec.md §4.D and returns the
// resulting immutable Graph, or the first error encountered. Build
// does not mutate args.
func Build(args BuildArgs) (*Graph, error) {
	st := &buildState{
		realNodes:         make(map[string]models.Node),
		allEdges:          make(map[models.MarkovEdgeAddress]models.Edge),
		outMassBySrc:      make(map[string]float64),
		participantByAddr: make(map[string]models.Participant),
	}

	if err := st.phase1ValidateParameters(args.Parameters); err != nil {
		return nil, err
	}
	for _, p := range args.Participants {
		st.participantByAddr[p.Address.ToString()] = p
	}

	if err := st.phase2IngestBaseNodes(args.WeightedGraph); err != nil {
		return nil, err
	}
	st.phase3BuildTimeSkeleton(args.Participants, args.Intervals)
	if err := st.phase4Minting(); err != nil {
		return nil, err
	}
	if err := st.phase5FibrateContributions(args.WeightedGraph); err != nil {
		return nil, err
	}
	if err := st.phase6Radiation(args.Participants); err != nil {
		return nil, err
	}

	return &Graph{
		realNodes:    st.realNodes,
		edges:        st.allEdges,
		participants: append([]models.Participant{}, args.Participants...),
		boundaries:   st.boundaries,
		parameters:   st.params,
	}, nil
}

// --- Phase 1 -----------------------------------------------------------

func (st *buildState) phase1ValidateParameters(p models.Parameters) error {
	for _, v := range []float64{p.Alpha, p.Beta, p.GammaForward, p.GammaBackward} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: parameters must lie in [0,1], got alpha=%v beta=%v gammaForward=%v gammaBackward=%v",
				ErrInvalidParameter, p.Alpha, p.Beta, p.GammaForward, p.GammaBackward)
		}
	}
	if p.Sum() > 1+edgeProbabilityEpsilon {
		return fmt.Errorf("%w: alpha+beta+gammaForward+gammaBackward = %v exceeds 1", ErrInvalidParameter, p.Sum())
	}
	st.params = p
	return nil
}

// --- Phase 2 -----------------------------------------------------------

func (st *buildState) phase2IngestBaseNodes(wg models.WeightedGraph) error {
	weights := newWeightEvaluator(wg.Weights())
	st.evaluator = weights

	for _, addr := range wg.Nodes() {
		if addr.HasPrefix(coreNodePrefix) {
			return fmt.Errorf("%w: input node %q carries the reserved core prefix", ErrCoreNodeLeakage, addr.ToString())
		}
		if _, isParticipant := st.participantByAddr[addr.ToString()]; isParticipant {
			continue
		}
		mint, err := weights.nodeWeight(addr)
		if err != nil {
			return err
		}
		if err := st.insertRealNode(models.Node{
			Address:     addr,
			Description: addr.ToString(),
			Mint:        mint,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (st *buildState) insertRealNode(n models.Node) error {
	key := n.Address.ToString()
	if _, exists := st.realNodes[key]; exists {
		return fmt.Errorf("%w: node %q already present", ErrNodeConflict, key)
	}
	st.realNodes[key] = n
	return nil
}

// --- Phase 3 -----------------------------------------------------------

func (st *buildState) phase3BuildTimeSkeleton(participants []models.Participant, intervals []models.Interval) {
	st.boundaries = models.TimeBoundaries(intervals)

	for _, p := range participants {
		for i, b := range st.boundaries {
			// The user-epoch node itself is a real (stored) node,
			// unlike seed and accumulators, which are virtualized
			// (spec.md §9).
			st.realNodes[UserEpochAddress(p.Id, b).ToString()] = UserEpochNode(p, b)

			st.addEdgeUnchecked(PayoutEdge(p.Id, b, st.params.Beta))

			if i > 0 {
				prev := st.boundaries[i-1]
				st.addEdgeUnchecked(ForwardWebbingEdge(p.Id, prev, b, st.params.GammaForward))
				st.addEdgeUnchecked(BackwardWebbingEdge(p.Id, b, prev, st.params.GammaBackward))
			}
		}
	}
}

// --- Phase 4 -----------------------------------------------------------

func (st *buildState) phase4Minting() error {
	var totalMint float64
	for _, n := range st.realNodes {
		totalMint += n.Mint
	}
	if totalMint <= 0 {
		return fmt.Errorf("%w: total mint across %d real nodes is zero", ErrNoMintingSource, len(st.realNodes))
	}

	// Deterministic order: iterate base nodes by address rather than
	// map order, so seed-mint edges are emitted in a stable sequence
	// (the edge *set* doesn't depend on order, but stable iteration
	// keeps construction itself reproducible step for step).
	addrs := make([]string, 0, len(st.realNodes))
	for k := range st.realNodes {
		addrs = append(addrs, k)
	}
	sortStrings(addrs)

	for _, k := range addrs {
		n := st.realNodes[k]
		if n.Mint <= 0 {
			continue
		}
		if err := st.addEdgeChecked(SeedMintEdge(n.Address, n.Mint/totalMint)); err != nil {
			return err
		}
	}
	return nil
}

// --- Phase 5 -----------------------------------------------------------

// rewriteEpochEndpoint rewrites addr to its containing user-epoch
// address if addr is a scoring participant's own address; otherwise
// it returns addr unchanged.
func (st *buildState) rewriteEpochEndpoint(addr address.NodeAddress, t float64) address.NodeAddress {
	p, ok := st.participantByAddr[addr.ToString()]
	if !ok {
		return addr
	}
	b := st.boundaryContaining(t)
	return UserEpochAddress(p.Id, b)
}

// boundaryContaining returns the largest finite-or-sentinel boundary
// that is <= t: the start of the epoch containing timestamp t.
func (st *buildState) boundaryContaining(t float64) float64 {
	best := st.boundaries[0] // -∞, always <= t
	for _, b := range st.boundaries {
		if b <= t && b > best {
			best = b
		}
	}
	return best
}

type contributionCandidate struct {
	src, dst address.NodeAddress
	reversed bool
	weight   float64
	address  address.EdgeAddress
}

func (st *buildState) phase5FibrateContributions(wg models.WeightedGraph) error {
	groups := make(map[string][]contributionCandidate)
	groupOrder := make([]string, 0)

	for _, e := range wg.Edges() {
		w, err := st.evaluator.edgeWeight(e.Address)
		if err != nil {
			return err
		}

		candidates := []contributionCandidate{
			{src: e.Src, dst: e.Dst, reversed: false, weight: w.Forward, address: e.Address},
			{src: e.Dst, dst: e.Src, reversed: true, weight: w.Backward, address: e.Address},
		}

		for _, c := range candidates {
			if c.weight <= 0 {
				continue
			}
			c.src = st.rewriteEpochEndpoint(c.src, e.TimestampMs)
			c.dst = st.rewriteEpochEndpoint(c.dst, e.TimestampMs)

			key := c.src.ToString()
			if _, seen := groups[key]; !seen {
				groupOrder = append(groupOrder, key)
			}
			groups[key] = append(groups[key], c)
		}
	}

	sortStrings(groupOrder)
	for _, key := range groupOrder {
		group := groups[key]
		src := group[0].src

		var total float64
		for _, c := range group {
			total += c.weight
		}
		if total <= 0 {
			continue
		}

		budget, err := st.outBudgetFor(src)
		if err != nil {
			return err
		}

		for _, c := range group {
			prob := (c.weight / total) * budget
			if err := st.addEdgeChecked(models.Edge{
				Address:               c.address,
				Reversed:              c.reversed,
				Src:                   c.src,
				Dst:                   c.dst,
				TransitionProbability: prob,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// outBudgetFor returns the out-budget a contribution-edge source is
// allotted: the epoch transition remainder for a user-epoch source,
// or (1-alpha) for any other (base) source (spec.md §4.D Phase 5).
func (st *buildState) outBudgetFor(src address.NodeAddress) (float64, error) {
	if _, _, err := ParseUserEpochAddress(src); err == nil {
		return st.params.EpochTransitionRemainder(), nil
	}
	return 1 - st.params.Alpha, nil
}

// --- Phase 6 -----------------------------------------------------------

func (st *buildState) phase6Radiation(participants []models.Participant) error {
	for _, addr := range st.allNonSeedNodeAddresses(participants) {
		outMass := st.outMassBySrc[addr.ToString()]
		residual := 1 - outMass

		class, err := ClassifyNode(addr)
		if err != nil {
			return err
		}

		var edge models.Edge
		switch class {
		case ClassBase:
			edge = ContributionRadiationEdge(addr, residual)
		case ClassUserEpoch:
			ownerId, epochStart, err := ParseUserEpochAddress(addr)
			if err != nil {
				return err
			}
			edge = EpochRadiationEdge(ownerId, epochStart, residual)
		case ClassEpochAccumulator:
			epochStart, err := ParseEpochAccumulatorAddress(addr)
			if err != nil {
				return err
			}
			edge = AccumulatorRadiationEdge(epochStart, residual)
		default:
			return fmt.Errorf("%w: %q has no radiation route", ErrCoreNodeLeakage, addr.ToString())
		}

		if err := st.addEdgeChecked(edge); err != nil {
			return err
		}
	}
	return nil
}

// allNonSeedNodeAddresses enumerates every node in the graph other
// than seed: every real node (base and user-epoch, both stored in
// realNodes) plus every virtualized accumulator, one per boundary.
func (st *buildState) allNonSeedNodeAddresses(participants []models.Participant) []address.NodeAddress {
	out := make([]address.NodeAddress, 0, len(st.realNodes)+len(st.boundaries))

	keys := make([]string, 0, len(st.realNodes))
	for k := range st.realNodes {
		keys = append(keys, k)
	}
	sortStrings(keys)
	for _, k := range keys {
		out = append(out, st.realNodes[k].Address)
	}

	for _, b := range st.boundaries {
		out = append(out, EpochAccumulatorAddress(b))
	}
	return out
}

// --- Edge bookkeeping ----------------------------------------------------

// addEdgeChecked validates the transition probability and rejects
// duplicate Markov edge addresses before recording e.
func (st *buildState) addEdgeChecked(e models.Edge) error {
	if e.TransitionProbability < -edgeProbabilityEpsilon || e.TransitionProbability > 1+edgeProbabilityEpsilon {
		return fmt.Errorf("%w: transition probability %v for %q out of [0,1]",
			ErrInvalidEdgeWeight, e.TransitionProbability, e.Address.ToString())
	}
	key := e.Key()
	if _, exists := st.allEdges[key]; exists {
		return fmt.Errorf("%w: edge %q (reversed=%v) already present", ErrEdgeConflict, e.Address.ToString(), e.Reversed)
	}
	st.allEdges[key] = e
	st.outMassBySrc[e.Src.ToString()] += e.TransitionProbability
	return nil
}

// addEdgeUnchecked records a structural edge the builder itself
// generated (payout/webbing), which cannot collide by construction:
// each (participant, boundary) pair is visited exactly once.
func (st *buildState) addEdgeUnchecked(e models.Edge) {
	key := e.Key()
	st.allEdges[key] = e
	st.outMassBySrc[e.Src.ToString()] += e.TransitionProbability
}
