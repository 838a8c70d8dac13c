package entropy

import (
	"math"

	"github.com/pkg/errors"
)

// ContextSet models up to MaxContexts independent per-context
// distributions sharing a single coded stream (spec.md §4.3).
type ContextSet struct {
	Distributions []*Distribution
	// ClusterMap[c] gives the cluster index distribution c was merged
	// into; len(ClusterMap) == len(Distributions). Identity (i -> i) when
	// no clustering occurred.
	ClusterMap []int
}

// NewContextSet builds one Distribution per context from parallel symbol
// streams, one per context, all drawn from the same alphabet size.
func NewContextSet(perContextSymbols [][]uint16, alphabetSize int) (*ContextSet, error) {
	if len(perContextSymbols) > MaxContexts {
		return nil, errors.Errorf("entropy: %d contexts exceeds limit of %d", len(perContextSymbols), MaxContexts)
	}
	dists := make([]*Distribution, len(perContextSymbols))
	for i, symbols := range perContextSymbols {
		d, err := BuildDistribution(symbols, alphabetSize)
		if err != nil {
			return nil, err
		}
		dists[i] = d
	}
	cs := &ContextSet{Distributions: dists, ClusterMap: identityMap(len(dists))}
	return cs, nil
}

func identityMap(n int) []int {
	m := make([]int, n)
	for i := range m {
		m[i] = i
	}
	return m
}

// Cluster merges contexts whose distributions are within maxKL of each
// other when the aggregate table size (contexts * alphabet size) exceeds
// threshold, per spec.md §4.3. It updates ClusterMap only; Distributions
// keeps one entry per context.
func (cs *ContextSet) Cluster(threshold int, maxKL float64) {
	n := len(cs.Distributions)
	if n == 0 {
		return
	}
	alphabet := 0
	for _, d := range cs.Distributions {
		if len(d.Freq) > alphabet {
			alphabet = len(d.Freq)
		}
	}
	if n*alphabet <= threshold {
		return
	}

	survivors := []int{0}
	clusterOf := make([]int, n)
	clusterOf[0] = 0
	for i := 1; i < n; i++ {
		merged := false
		for _, s := range survivors {
			if klDivergence(cs.Distributions[i], cs.Distributions[s]) <= maxKL {
				clusterOf[i] = s
				merged = true
				break
			}
		}
		if !merged {
			survivors = append(survivors, i)
			clusterOf[i] = i
		}
	}
	cs.ClusterMap = clusterOf
}

// klDivergence computes the discrete KL divergence D(p || q) over shared
// support, treating a zero-probability bucket in q as an (effectively)
// infinite-cost mismatch collapsed to a fixed large penalty so clustering
// never merges across disjoint supports.
func klDivergence(p, q *Distribution) float64 {
	if len(p.Freq) != len(q.Freq) {
		return math.Inf(1)
	}
	var sum float64
	for i, pf := range p.Freq {
		if pf == 0 {
			continue
		}
		qf := q.Freq[i]
		if qf == 0 {
			sum += 64 // large fixed penalty, avoids -Inf/NaN
			continue
		}
		pProb := float64(pf) / TotalFreq
		qProb := float64(qf) / TotalFreq
		sum += pProb * math.Log2(pProb/qProb)
	}
	return sum
}
