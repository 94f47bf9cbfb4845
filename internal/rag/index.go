package rag

import (
	"fmt"
	"sort"
	"sync"

	"github.com/coursegen-ai/coursegen/internal/domain"
)

// DefaultTopK is how many chunks a similarity query returns.
const DefaultTopK = 5

// Chunk is one indexed text fragment with the page it came from.
type Chunk struct {
	Text  string
	Title string
	URL   string
}

// Result is one similarity match. Distance is squared L2; smaller is closer.
type Result struct {
	Chunk    Chunk
	Distance float32
}

// Index is a flat, exact nearest neighbor index over chunk embeddings. Every
// query scans all vectors with squared L2 distance. Chunks and vectors are
// stored in parallel slices; entry i of one corresponds to entry i of the
// other. Safe for concurrent use.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	vectors    [][]float32
	chunks     []Chunk
}

// NewIndex creates an empty index for vectors of the given dimensionality.
func NewIndex(dimensions int) *Index {
	return &Index{dimensions: dimensions}
}

// Add appends chunks and their embeddings to the index. The two slices must
// be the same length and every vector must match the index dimensionality.
func (idx *Index) Add(vectors [][]float32, chunks []Chunk) error {
	if len(vectors) != len(chunks) {
		return fmt.Errorf("vector count %d does not match chunk count %d", len(vectors), len(chunks))
	}
	for _, v := range vectors {
		if len(v) != idx.dimensions {
			return fmt.Errorf("vector has %d dimensions, index expects %d", len(v), idx.dimensions)
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.vectors = append(idx.vectors, vectors...)
	idx.chunks = append(idx.chunks, chunks...)
	return nil
}

// Search returns the k nearest chunks to the query vector, closest first.
// Querying an empty index returns ErrEmptyIndex.
func (idx *Index) Search(query []float32, k int) ([]Result, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("query has %d dimensions, index expects %d", len(query), idx.dimensions)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.vectors) == 0 {
		return nil, domain.ErrEmptyIndex
	}

	results := make([]Result, len(idx.vectors))
	for i, v := range idx.vectors {
		results[i] = Result{Chunk: idx.chunks[i], Distance: squaredL2(query, v)}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Distance < results[b].Distance
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
