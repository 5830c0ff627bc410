// ABOUTME: Tests for semantic retrieval over the transcript index
// ABOUTME: Verifies ranking, top-K bounds, the empty-index path, and error propagation
package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

func buildIndex(t *testing.T, embedder *wordEmbedder, text string) TranscriptIndex {
	t.Helper()
	idx, err := BuildTranscriptIndexFromText(context.Background(), text, embedder)
	if err != nil {
		t.Fatalf("BuildTranscriptIndexFromText() error = %v", err)
	}
	return idx
}

func TestRetriever_EmptyIndex(t *testing.T) {
	embedder := newWordEmbedder()
	r := NewRetriever(&IndexEmpty{Reason: "transcript not found"}, embedder)

	for _, topic := range []string{"recursion", "", "neural networks"} {
		got, err := r.Retrieve(context.Background(), topic, DefaultTopK)
		if err != nil {
			t.Fatalf("Retrieve(%q) error = %v", topic, err)
		}
		if len(got) != 0 {
			t.Errorf("Retrieve(%q) = %q, want empty", topic, got)
		}
	}
	if len(embedder.calls) != 0 {
		t.Errorf("embedder called %d times, want 0", len(embedder.calls))
	}
}

func TestRetriever_NilIndexIsEmpty(t *testing.T) {
	r := NewRetriever(nil, newWordEmbedder())

	got, err := r.Retrieve(context.Background(), "recursion", DefaultTopK)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Retrieve() = %q, want empty", got)
	}
}

func TestRetriever_RanksRelevantSentenceFirst(t *testing.T) {
	embedder := newWordEmbedder()
	idx := buildIndex(t, embedder, "The exam will be held on Friday. Neural networks are inspired by biological brains. They consist of layers of interconnected nodes.")
	r := NewRetriever(idx, embedder)

	got, err := r.Retrieve(context.Background(), "neural networks", DefaultTopK)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("len = %d, want min(4, 3) = 3", len(got))
	}
	if got[0] != "Neural networks are inspired by biological brains" {
		t.Errorf("top sentence = %q, want the neural networks sentence", got[0])
	}
	for i, s := range got {
		if s == "The exam will be held on Friday" && i == 0 {
			t.Error("unrelated sentence ranked first")
		}
	}
}

func TestRetriever_TopKLimit(t *testing.T) {
	embedder := newWordEmbedder()
	text := ""
	for i := 0; i < 10; i++ {
		text += fmt.Sprintf("Lecture sentence number %d about recursion. ", i)
	}
	r := NewRetriever(buildIndex(t, embedder, text), embedder)

	got, err := r.Retrieve(context.Background(), "recursion", DefaultTopK)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != DefaultTopK {
		t.Errorf("len = %d, want %d", len(got), DefaultTopK)
	}

	got, err = r.Retrieve(context.Background(), "recursion", 0)
	if err != nil {
		t.Fatalf("Retrieve(k=0) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Retrieve(k=0) len = %d, want 0", len(got))
	}
}

func TestRetriever_TiesKeepTranscriptOrder(t *testing.T) {
	embedder := newWordEmbedder()
	idx := buildIndex(t, embedder, "Alpha beta gamma delta epsilon. Zeta eta theta iota kappa. Lambda mu nu xi omicron.")
	r := NewRetriever(idx, embedder)

	// No overlap with any sentence: every score is zero
	got, err := r.Retrieve(context.Background(), "unrelated words entirely", 2)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 2 || got[0] != "Alpha beta gamma delta epsilon" || got[1] != "Zeta eta theta iota kappa" {
		t.Errorf("Retrieve() = %q, want first two sentences in transcript order", got)
	}
}

func TestRetriever_EmbedderError(t *testing.T) {
	embedder := newWordEmbedder()
	idx := buildIndex(t, embedder, "Neural networks are inspired by biological brains.")
	embedder.err = errors.New("embedding service down")
	r := NewRetriever(idx, embedder)

	if _, err := r.Retrieve(context.Background(), "neural networks", DefaultTopK); !errors.Is(err, embedder.err) {
		t.Errorf("Retrieve() error = %v, want wrapping %v", err, embedder.err)
	}
}

func TestRetriever_BoundsProperty(t *testing.T) {
	words := []string{"stack", "queue", "heap", "tree", "graph", "node", "edge", "sort", "hash", "list"}
	word := rapid.SampledFrom(words)

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "sentences")
		text := ""
		for i := 0; i < n; i++ {
			text += fmt.Sprintf("Sentence %d mentions %s and %s. ", i, word.Draw(t, "w1"), word.Draw(t, "w2"))
		}
		topic := word.Draw(t, "topic")
		k := rapid.IntRange(0, 15).Draw(t, "k")

		embedder := newWordEmbedder()
		idx, err := BuildTranscriptIndexFromText(context.Background(), text, embedder)
		if err != nil {
			t.Fatalf("BuildTranscriptIndexFromText() error = %v", err)
		}
		built := idx.(*IndexBuilt)

		got, err := NewRetriever(idx, embedder).Retrieve(context.Background(), topic, k)
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}

		if len(got) > min(k, built.Len()) {
			t.Fatalf("got %d sentences, want at most min(%d, %d)", len(got), k, built.Len())
		}
		known := make(map[string]bool)
		for _, s := range built.Sentences() {
			known[s] = true
		}
		for _, s := range got {
			if !known[s] {
				t.Fatalf("retrieved sentence %q not in index", s)
			}
		}
	})
}

func TestJoinContext(t *testing.T) {
	if got := JoinContext(nil); got != "" {
		t.Errorf("JoinContext(nil) = %q, want empty", got)
	}
	if got := JoinContext([]string{"First idea", "Second idea"}); got != "First idea. Second idea" {
		t.Errorf("JoinContext() = %q", got)
	}
}
