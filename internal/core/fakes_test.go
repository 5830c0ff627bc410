// ABOUTME: Deterministic fake embedder and generator shared by core tests
// ABOUTME: The embedder is a bag-of-words model so lexical overlap drives similarity
package core

import (
	"context"
	"regexp"
	"strings"

	"github.com/harper/lecture-summarizer/internal/llm"
)

const fakeDim = 256

// wordEmbedder assigns each distinct lowercase word its own dimension
type wordEmbedder struct {
	vocab map[string]int
	calls [][]string
	err   error
	// short drops the last vector when set, to simulate a misbehaving model
	short bool
}

func newWordEmbedder() *wordEmbedder {
	return &wordEmbedder{vocab: make(map[string]int)}
}

func (w *wordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	w.calls = append(w.calls, append([]string(nil), texts...))
	if w.err != nil {
		return nil, w.err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, fakeDim)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			word = strings.Trim(word, ".,;:!?'\"")
			if word == "" {
				continue
			}
			idx, ok := w.vocab[word]
			if !ok {
				idx = len(w.vocab) % fakeDim
				w.vocab[word] = idx
			}
			vec[idx]++
		}
		out[i] = vec
	}
	if w.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

var topicPattern = regexp.MustCompile(`concept of '([^']*)'`)

// topicOf extracts the topic quoted in a rendered prompt
func topicOf(prompt string) string {
	m := topicPattern.FindStringSubmatch(prompt)
	if m == nil {
		return ""
	}
	return m[1]
}

// echoGenerator mimics a completions endpoint with echo enabled
type echoGenerator struct {
	prompts [][]string
	params  []llm.SamplingParams
	err     error
	drop    bool
}

func (g *echoGenerator) Generate(ctx context.Context, prompts []string, params llm.SamplingParams) ([]string, error) {
	g.prompts = append(g.prompts, append([]string(nil), prompts...))
	g.params = append(g.params, params)
	if g.err != nil {
		return nil, g.err
	}

	out := make([]string, len(prompts))
	for i, p := range prompts {
		out[i] = p + "\n  Explanation of " + topicOf(p) + ".  "
	}
	if g.drop {
		out = out[:len(out)-1]
	}
	return out, nil
}
