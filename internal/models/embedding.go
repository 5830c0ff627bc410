// ABOUTME: Embedding models for the in-memory transcript vector index
// ABOUTME: Defines Embedding and VectorSearchResult structures
package models

import "fmt"

// Embedding is the vector for one transcript sentence, addressed by its position in the index
type Embedding struct {
	SentenceIndex int       `json:"sentence_index"`
	Vector        []float32 `json:"vector"`
}

// ValidateDimension ensures the vector is non-empty and has the expected length
func (e Embedding) ValidateDimension(expected int) error {
	if len(e.Vector) == 0 {
		return fmt.Errorf("embedding %d: vector cannot be empty", e.SentenceIndex)
	}
	if len(e.Vector) != expected {
		return fmt.Errorf("embedding %d: dimension mismatch: expected %d, got %d", e.SentenceIndex, expected, len(e.Vector))
	}
	return nil
}

// VectorSearchResult represents a search result with similarity score
type VectorSearchResult struct {
	SentenceIndex   int     `json:"sentence_index"`
	SimilarityScore float64 `json:"similarity_score"`
}
