package metrics

import "sort"

// CredDecileBuckets assigns each score in scores to one of 10 buckets
// (0 = lowest decile, 9 = highest) by rank, for use as a cluster
// label with AdjustedRandIndex / VariationOfInformation. Two cred
// vectors over the same participant order can be compared this way
// to answer "did the top decile of cred shuffle?" across a parameter
// change or a solver rerun.
func CredDecileBuckets(scores []float64) []int {
	n := len(scores)
	buckets := make([]int, n)
	if n == 0 {
		return buckets
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return scores[order[i]] < scores[order[j]] })

	for rank, idx := range order {
		decile := rank * 10 / n
		if decile > 9 {
			decile = 9
		}
		buckets[idx] = decile
	}
	return buckets
}

// CompareCredRankings reports how much a participant's decile bucket
// moved between two cred vectors aligned to the same participant
// order: the Adjusted Rand Index (bucket agreement) and Variation of
// Information (bucket reassignment cost).
func CompareCredRankings(before, after []float64) (ari, vi float64) {
	a := CredDecileBuckets(before)
	b := CredDecileBuckets(after)
	return AdjustedRandIndex(a, b), VariationOfInformation(a, b)
}
