// ABOUTME: TranscriptIndexer splits a lecture transcript into sentences and embeds them once
// ABOUTME: Produces either IndexBuilt or IndexEmpty; a missing transcript is a degraded mode, not an error
package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/harper/lecture-summarizer/internal/llm"
	"github.com/harper/lecture-summarizer/internal/storage"
)

// MinSentenceLength is the exclusive lower bound on trimmed sentence length
const MinSentenceLength = 15

// TranscriptIndex is the result of indexing a transcript: *IndexBuilt or *IndexEmpty.
// Both variants are immutable once constructed.
type TranscriptIndex interface {
	Len() int
	isTranscriptIndex()
}

// IndexBuilt holds sentences and their index-aligned embeddings
type IndexBuilt struct {
	sentences []string
	vectors   *storage.VectorIndex
}

// IndexEmpty records why no sentences are available for retrieval
type IndexEmpty struct {
	Reason string
}

func (*IndexBuilt) isTranscriptIndex() {}
func (*IndexEmpty) isTranscriptIndex() {}

// Len returns the number of indexed sentences
func (b *IndexBuilt) Len() int { return len(b.sentences) }

// Len is always zero for an empty index
func (e *IndexEmpty) Len() int { return 0 }

// Sentence returns the sentence at position i
func (b *IndexBuilt) Sentence(i int) string { return b.sentences[i] }

// Sentences returns a copy of the indexed sentences in transcript order
func (b *IndexBuilt) Sentences() []string {
	return append([]string(nil), b.sentences...)
}

// Dimension returns the embedding dimension of the index
func (b *IndexBuilt) Dimension() int { return b.vectors.Dimension() }

// newlineReplacer folds every line ending into a single space
var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// SplitSentences normalizes newlines, splits on '.', trims, and keeps fragments
// longer than MinSentenceLength. Abbreviations and decimals are not special-cased.
func SplitSentences(text string) []string {
	flat := newlineReplacer.Replace(text)

	var sentences []string
	for _, fragment := range strings.Split(flat, ".") {
		s := strings.TrimSpace(fragment)
		if len(s) > MinSentenceLength {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// BuildTranscriptIndex reads the transcript at path and embeds its sentences.
// An absent or unreadable file yields IndexEmpty with a warning; an embedder
// failure on a readable transcript is returned as an error.
func BuildTranscriptIndex(ctx context.Context, path string, embedder llm.Embedder) (TranscriptIndex, error) {
	log.Printf("Processing transcript from: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("Warning: transcript %q not found. Summaries will be generic.", path)
			return &IndexEmpty{Reason: "transcript not found"}, nil
		}
		log.Printf("Warning: could not read transcript %q: %v", path, err)
		return &IndexEmpty{Reason: fmt.Sprintf("transcript unreadable: %v", err)}, nil
	}

	return BuildTranscriptIndexFromText(ctx, string(data), embedder)
}

// BuildTranscriptIndexFromText indexes already-loaded transcript text
func BuildTranscriptIndexFromText(ctx context.Context, text string, embedder llm.Embedder) (TranscriptIndex, error) {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		log.Printf("Warning: no sentences found in transcript")
		return &IndexEmpty{Reason: "no qualifying sentences"}, nil
	}

	log.Printf("Found %d sentences. Creating semantic embeddings...", len(sentences))

	vectors, err := embedder.Embed(ctx, sentences)
	if err != nil {
		return nil, fmt.Errorf("embedding transcript sentences: %w", err)
	}
	if len(vectors) != len(sentences) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d sentences", len(vectors), len(sentences))
	}

	vi, err := storage.NewVectorIndex(vectors)
	if err != nil {
		return nil, fmt.Errorf("building vector index: %w", err)
	}

	log.Printf("Transcript processed and vectorized (%d sentences, %d dimensions)", len(sentences), vi.Dimension())

	return &IndexBuilt{sentences: sentences, vectors: vi}, nil
}
