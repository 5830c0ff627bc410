// ABOUTME: Immutable in-memory vector index with cosine similarity search
// ABOUTME: Holds one embedding per transcript sentence, built once at startup
package storage

import (
	"fmt"
	"math"
	"sort"

	"github.com/harper/lecture-summarizer/internal/models"
)

// VectorIndex holds index-aligned embeddings. It is never mutated after
// NewVectorIndex returns, so concurrent searches need no locking.
type VectorIndex struct {
	vectors   [][]float32
	dimension int
}

// NewVectorIndex validates and copies vectors into a new index.
// Every vector must share the dimension of the first one.
func NewVectorIndex(vectors [][]float32) (*VectorIndex, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("vector index requires at least one vector")
	}

	dim := len(vectors[0])
	owned := make([][]float32, len(vectors))
	for i, v := range vectors {
		emb := models.Embedding{SentenceIndex: i, Vector: v}
		if err := emb.ValidateDimension(dim); err != nil {
			return nil, fmt.Errorf("invalid embedding: %w", err)
		}
		owned[i] = append([]float32(nil), v...)
	}

	return &VectorIndex{vectors: owned, dimension: dim}, nil
}

// Len returns the number of vectors in the index
func (vi *VectorIndex) Len() int {
	return len(vi.vectors)
}

// Dimension returns the shared vector dimension
func (vi *VectorIndex) Dimension() int {
	return vi.dimension
}

// SearchSimilar scores every vector against queryVector and returns the top
// maxResults by descending cosine similarity. Equal scores keep index order.
func (vi *VectorIndex) SearchSimilar(queryVector []float32, maxResults int) ([]models.VectorSearchResult, error) {
	if len(queryVector) != vi.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", vi.dimension, len(queryVector))
	}
	if maxResults <= 0 {
		return []models.VectorSearchResult{}, nil
	}

	allResults := make([]models.VectorSearchResult, len(vi.vectors))
	for i, v := range vi.vectors {
		allResults[i] = models.VectorSearchResult{
			SentenceIndex:   i,
			SimilarityScore: cosineSimilarity(queryVector, v),
		}
	}

	sort.SliceStable(allResults, func(i, j int) bool {
		return allResults[i].SimilarityScore > allResults[j].SimilarityScore
	})

	if len(allResults) > maxResults {
		allResults = allResults[:maxResults]
	}

	return allResults, nil
}

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dotProduct += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
