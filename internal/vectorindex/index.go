package vectorindex

import (
	"fmt"
	"sort"
	"sync"

	"github.com/PjVineeth/vocab-assist/internal/domain"
)

// State tracks index availability. The index starts Unbuilt, becomes Ready
// after a successful Build, and Failed after a rejected one. Only a Ready
// index answers searches.
type State int

const (
	StateUnbuilt State = iota
	StateReady
	StateFailed
)

// Index is an in-process brute-force nearest-neighbor index over the chunk
// vectors, positionally aligned with the chunk sequence it was built from.
// It is immutable between builds; concurrent searches take a read lock.
type Index struct {
	mu        sync.RWMutex
	state     State
	dimension int
	vectors   [][]float32
}

func New() *Index { return &Index{} }

// Build stores the vectors and marks the index ready. An empty vector set
// leaves the index unbuilt; mismatched dimensions mark it failed. Build
// replaces any previously stored vectors.
func (ix *Index) Build(vectors [][]float32) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if len(vectors) == 0 {
		ix.state = StateUnbuilt
		ix.vectors = nil
		return fmt.Errorf("build with no vectors: %w", domain.ErrIndexUnavailable)
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			ix.state = StateFailed
			ix.vectors = nil
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	ix.dimension = dim
	ix.vectors = vectors
	ix.state = StateReady
	return nil
}

// State reports the current availability state.
func (ix *Index) State() State {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.state
}

// Len returns the number of stored vectors.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Search returns the k stored vectors nearest to query by squared
// Euclidean distance, ascending, ties broken by lower stored position.
// k is clamped to the number of stored vectors. Searching an index that
// is not ready returns domain.ErrIndexUnavailable.
func (ix *Index) Search(query []float32, k int) ([]domain.SearchResult, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.state != StateReady {
		return nil, domain.ErrIndexUnavailable
	}
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("query dimension %d, index dimension %d", len(query), ix.dimension)
	}
	if k <= 0 {
		return nil, nil
	}
	results := make([]domain.SearchResult, len(ix.vectors))
	for i, v := range ix.vectors {
		results[i] = domain.SearchResult{Index: i, Distance: squaredL2(query, v)}
	}
	sort.Slice(results, func(a, b int) bool {
		if results[a].Distance != results[b].Distance {
			return results[a].Distance < results[b].Distance
		}
		return results[a].Index < results[b].Index
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func squaredL2(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
