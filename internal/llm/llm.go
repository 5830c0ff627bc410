// ABOUTME: Model boundary interfaces for text generation and sentence embedding
// ABOUTME: Backends: OpenAI-compatible completions/embeddings, Gemini, local ONNX
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a model call succeeds but yields no usable output
var ErrEmptyResponse = errors.New("model returned an empty response")

// SamplingParams are fixed at startup and applied to every generation call
type SamplingParams struct {
	Temperature  float32
	TopP         float32
	MaxNewTokens int
}

// DefaultSamplingParams returns the sampling configuration used for summaries
func DefaultSamplingParams() SamplingParams {
	return SamplingParams{
		Temperature:  0.7,
		TopP:         0.9,
		MaxNewTokens: 512,
	}
}

// Generator produces one raw output per rendered prompt, in prompt order.
// Raw outputs may echo the prompt text; callers strip it.
type Generator interface {
	Generate(ctx context.Context, prompts []string, params SamplingParams) ([]string, error)
}

// Embedder maps texts to fixed-dimension vectors, in input order.
// The same Embedder must be used for indexing and querying.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
