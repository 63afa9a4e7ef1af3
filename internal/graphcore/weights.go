package graphcore

import (
	"fmt"
	"math"

	"github.com/sourcecred/credrank/pkg/address"
	"github.com/sourcecred/credrank/pkg/models"
)

// defaultNodeWeight and defaultEdgeWeight are applied when neither an
// address nor any of its ancestors carries an explicit weight.
const defaultNodeWeight = 1.0

var defaultEdgeWeight = models.EdgeWeight{Forward: 1.0, Backward: 1.0}

// weightEvaluator is a pure, stateless reduction of a WeightConfig to
// the two scalar functions the builder needs: nodeWeight and
// edgeWeight, both with prefix-based inheritance (spec.md §4.C). It
// holds no mutable state and is safe to share across readers.
type weightEvaluator struct {
	config models.WeightConfig
}

func newWeightEvaluator(config models.WeightConfig) weightEvaluator {
	return weightEvaluator{config: config}
}

// nodeWeight reduces the weight configuration to a single
// non-negative, finite scalar for addr, walking from addr up through
// its ancestors and using the first (most specific) match.
func (w weightEvaluator) nodeWeight(addr address.NodeAddress) (float64, error) {
	parts := addr.ToParts()
	for i := len(parts); i >= 0; i-- {
		prefix := address.Raw(parts[:i]).ToString()
		if v, ok := w.config.NodeWeights[prefix]; ok {
			return validateWeight(v, addr.ToString(), ErrInvalidNodeWeight)
		}
	}
	return defaultNodeWeight, nil
}

// edgeWeight reduces the weight configuration to a (forward,
// backward) scalar pair for addr, with the same prefix-inheritance
// rule as nodeWeight.
func (w weightEvaluator) edgeWeight(addr address.EdgeAddress) (models.EdgeWeight, error) {
	parts := addr.ToParts()
	for i := len(parts); i >= 0; i-- {
		prefix := address.Raw(parts[:i]).ToString()
		if v, ok := w.config.EdgeWeights[prefix]; ok {
			fwd, err := validateWeight(v.Forward, addr.ToString(), ErrInvalidEdgeWeight)
			if err != nil {
				return models.EdgeWeight{}, err
			}
			bwd, err := validateWeight(v.Backward, addr.ToString(), ErrInvalidEdgeWeight)
			if err != nil {
				return models.EdgeWeight{}, err
			}
			return models.EdgeWeight{Forward: fwd, Backward: bwd}, nil
		}
	}
	return defaultEdgeWeight, nil
}

// validateWeight rejects negative or non-finite weights, per
// ErrInvalidNodeWeight / ErrInvalidEdgeWeight in spec.md §7. The two
// error sentinels share this helper because the validity rule is
// identical; callers pass the sentinel appropriate to their context.
func validateWeight(v float64, addrString string, sentinel error) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: weight for %q is not finite: %v", sentinel, addrString, v)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: weight for %q is negative: %v", sentinel, addrString, v)
	}
	return v, nil
}
