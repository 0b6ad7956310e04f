package proxyscan

import (
	"sort"
	"sync"
)

// Aggregator collects results from concurrent workers.
type Aggregator struct {
	mu          sync.Mutex
	classifier  *Classifier
	interesting []ProbeResult
	probed      int
	failures    map[FailureKind]int
}

func NewAggregator(classifier *Classifier) *Aggregator {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	return &Aggregator{
		classifier: classifier,
		failures:   make(map[FailureKind]int),
	}
}

// Add records a result and reports whether it was kept as interesting.
func (a *Aggregator) Add(r ProbeResult) bool {
	keep := a.classifier.Interesting(r)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.probed++
	if r.Failure != FailureNone {
		a.failures[r.Failure]++
	}
	if keep {
		a.interesting = append(a.interesting, r)
	}
	return keep
}

// Probed is the number of results added so far.
func (a *Aggregator) Probed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.probed
}

// Summary returns the interesting results sorted by port. It can be called
// more than once.
func (a *Aggregator) Summary() *Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	results := make([]ProbeResult, len(a.interesting))
	copy(results, a.interesting)
	sort.Slice(results, func(i, j int) bool {
		return results[i].Port < results[j].Port
	})

	failures := make(map[FailureKind]int, len(a.failures))
	for k, v := range a.failures {
		failures[k] = v
	}

	return &Summary{
		Results:  results,
		Probed:   a.probed,
		Failures: failures,
	}
}
