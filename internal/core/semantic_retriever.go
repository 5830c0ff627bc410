// ABOUTME: Retriever ranks transcript sentences against a topic by cosine similarity
// ABOUTME: Returns the top-K sentences as lecture context; an empty index yields no context
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/lecture-summarizer/internal/llm"
)

// DefaultTopK is the number of context sentences retrieved per topic
const DefaultTopK = 4

// contextSeparator joins retrieved sentences into one excerpt
const contextSeparator = ". "

// Retriever embeds topics with the same embedder used for the index
type Retriever struct {
	index    TranscriptIndex
	embedder llm.Embedder
}

// NewRetriever creates a Retriever over a fixed index
func NewRetriever(index TranscriptIndex, embedder llm.Embedder) *Retriever {
	if index == nil {
		index = &IndexEmpty{Reason: "no index provided"}
	}
	return &Retriever{
		index:    index,
		embedder: embedder,
	}
}

// Index returns the transcript index this retriever searches
func (r *Retriever) Index() TranscriptIndex {
	return r.index
}

// Retrieve returns up to min(k, sentence count) sentences in descending similarity.
// Ties keep transcript order.
func (r *Retriever) Retrieve(ctx context.Context, topic string, k int) ([]string, error) {
	switch idx := r.index.(type) {
	case *IndexEmpty:
		return []string{}, nil

	case *IndexBuilt:
		if k <= 0 {
			return []string{}, nil
		}

		vectors, err := r.embedder.Embed(ctx, []string{topic})
		if err != nil {
			return nil, fmt.Errorf("embedding topic %q: %w", topic, err)
		}
		if len(vectors) != 1 {
			return nil, fmt.Errorf("embedding topic %q: expected 1 vector, got %d", topic, len(vectors))
		}

		results, err := idx.vectors.SearchSimilar(vectors[0], min(k, idx.Len()))
		if err != nil {
			return nil, fmt.Errorf("searching transcript for %q: %w", topic, err)
		}

		sentences := make([]string, len(results))
		for i, res := range results {
			sentences[i] = idx.Sentence(res.SentenceIndex)
		}
		return sentences, nil

	default:
		return nil, fmt.Errorf("unsupported transcript index type %T", r.index)
	}
}

// JoinContext joins retrieved sentences into the excerpt quoted in prompts
func JoinContext(sentences []string) string {
	return strings.Join(sentences, contextSeparator)
}
