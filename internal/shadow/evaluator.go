package shadow

import "math"

// Evaluator compares two independently-produced stationary score
// vectors over the same graphcore node order: two solver runs, or the
// same run before and after a parameter change. A cred vector is
// already a normalized probability-like mass, which is what makes
// L1/L2 distance and KL divergence meaningful comparisons here.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// L1Distance computes sum(|a_i - b_i|). a and b must be the same
// length and aligned to the same node order.
func (e *Evaluator) L1Distance(a, b []float64) (float64, error) {
	if err := sameLength(a, b); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum, nil
}

// L2Distance computes the Euclidean distance between a and b.
func (e *Evaluator) L2Distance(a, b []float64) (float64, error) {
	if err := sameLength(a, b); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// KLDivergence computes the Kullback-Leibler divergence D(a || b),
// treating both vectors as discrete distributions over the same node
// order. An entry where a_i is zero contributes nothing; an entry
// where a_i > 0 and b_i == 0 makes the divergence infinite.
func (e *Evaluator) KLDivergence(a, b []float64) (float64, error) {
	if err := sameLength(a, b); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		if a[i] == 0 {
			continue
		}
		if b[i] == 0 {
			return math.Inf(1), nil
		}
		sum += a[i] * math.Log(a[i]/b[i])
	}
	return sum, nil
}

func sameLength(a, b []float64) error {
	if len(a) != len(b) {
		return errLengthMismatch
	}
	return nil
}
