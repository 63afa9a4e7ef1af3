package metrics

import (
	"math"
	"testing"
)

func TestCredDecileBuckets_AssignsTenBuckets(t *testing.T) {
	scores := make([]float64, 100)
	for i := range scores {
		scores[i] = float64(i)
	}

	buckets := CredDecileBuckets(scores)

	if buckets[0] != 0 {
		t.Errorf("expected the lowest score in decile 0, got %d", buckets[0])
	}
	if buckets[99] != 9 {
		t.Errorf("expected the highest score in decile 9, got %d", buckets[99])
	}
}

func TestCompareCredRankings_IdenticalVectorsAgreePerfectly(t *testing.T) {
	scores := []float64{0.1, 0.5, 0.9, 0.2, 0.7, 0.3, 0.8, 0.4, 0.6, 0.05}

	ari, vi := CompareCredRankings(scores, scores)

	if math.Abs(ari-1.0) > 0.01 {
		t.Errorf("expected ARI=1.0 comparing a cred vector to itself, got %f", ari)
	}
	if vi > 0.01 {
		t.Errorf("expected VI=0 comparing a cred vector to itself, got %f", vi)
	}
}
