// Package solver provides a reference eigensolver for the stationary
// distribution of a graphcore.ChainView's Markov chain. It is a
// pluggable strategy, never called from internal/graphcore itself:
// spec.md places the convergence strategy out of the core's scope,
// the same way the teacher keeps its hardware-accelerated matching
// kernel (internal/cuda) behind a pluggable function a caller wires
// in rather than something the heuristics pipeline invokes directly.
package solver

import (
	"fmt"
	"log"
	"math"

	"github.com/sourcecred/credrank/internal/graphcore"
	"github.com/sourcecred/credrank/pkg/address"
)

// Options configures PowerIterate.
type Options struct {
	// MaxIterations bounds the number of power-iteration steps.
	MaxIterations int
	// Tolerance is the L1-distance threshold between successive
	// distributions below which iteration stops early.
	Tolerance float64
}

// DefaultOptions returns conservative defaults suitable for the
// graph sizes spec.md targets.
func DefaultOptions() Options {
	return Options{MaxIterations: 1000, Tolerance: 1e-7}
}

// transition is one outgoing edge compiled into index form for the
// power-iteration inner loop.
type transition struct {
	dst  int
	prob float64
}

// PowerIterate computes the stationary distribution of view's Markov
// chain by repeated application of the transition matrix, starting
// from a uniform distribution. The returned scores are aligned
// index-for-index with view.NodeOrder(), ready to pass to
// graphcore.NewCredGraph.
func PowerIterate(view *graphcore.ChainView, opts Options) (scores []float64, iterations int, converged bool, err error) {
	order := view.NodeOrder()
	n := len(order)
	if n == 0 {
		return nil, 0, true, fmt.Errorf("solver: chain has no nodes")
	}

	indexOf := make(map[string]int, n)
	for i, addr := range order {
		indexOf[addr.ToString()] = i
	}

	adjacency, err := compileAdjacency(view, indexOf, n)
	if err != nil {
		return nil, 0, false, err
	}

	dist := make([]float64, n)
	uniform := 1.0 / float64(n)
	for i := range dist {
		dist[i] = uniform
	}

	next := make([]float64, n)
	for iterations = 1; iterations <= opts.MaxIterations; iterations++ {
		for i := range next {
			next[i] = 0
		}
		for src, edges := range adjacency {
			mass := dist[src]
			if mass == 0 {
				continue
			}
			for _, t := range edges {
				next[t.dst] += mass * t.prob
			}
		}

		delta := l1Distance(dist, next)
		dist, next = next, dist
		if delta < opts.Tolerance {
			log.Printf("[SOLVER] converged after %d iterations (delta=%.3e)", iterations, delta)
			return dist, iterations, true, nil
		}
	}

	log.Printf("[SOLVER] did not converge within %d iterations", opts.MaxIterations)
	return dist, opts.MaxIterations, false, nil
}

// compileAdjacency groups view's edges by source index, for an inner
// loop that never re-resolves an address.NodeAddress to a string.
func compileAdjacency(view *graphcore.ChainView, indexOf map[string]int, n int) ([][]transition, error) {
	adjacency := make([][]transition, n)
	for _, e := range view.EdgeOrder() {
		srcIdx, ok := indexOf[e.Src.ToString()]
		if !ok {
			return nil, fmt.Errorf("solver: edge source %q is not in the node order", e.Src.ToString())
		}
		dstIdx, ok := indexOf[e.Dst.ToString()]
		if !ok {
			return nil, fmt.Errorf("solver: edge destination %q is not in the node order", e.Dst.ToString())
		}
		adjacency[srcIdx] = append(adjacency[srcIdx], transition{dst: dstIdx, prob: e.TransitionProbability})
	}
	return adjacency, nil
}

func l1Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// ScoreOf is a convenience lookup for a single address's score within
// a PowerIterate result, given the same node order it was computed
// against.
func ScoreOf(order []address.NodeAddress, scores []float64, addr address.NodeAddress) (float64, bool) {
	for i, a := range order {
		if a.Equal(addr) {
			return scores[i], true
		}
	}
	return 0, false
}
