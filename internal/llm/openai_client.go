// ABOUTME: OpenAI-compatible client for batched completions and embeddings
// ABOUTME: Works against OpenAI, vLLM, Ollama, or llama.cpp servers via a configurable base URL
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/harper/lecture-summarizer/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the instruction-tuned model served behind the completions endpoint
	DefaultChatModel = "meta-llama/Llama-3.2-1B-Instruct"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultBaseURL points at a local OpenAI-compatible inference server
	DefaultBaseURL = "http://localhost:8000/v1"
)

// ClientConfig holds configuration for the OpenAI-compatible client
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel openai.EmbeddingModel
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:         apiKey,
		BaseURL:        DefaultBaseURL,
		ChatModel:      DefaultChatModel,
		EmbeddingModel: DefaultEmbeddingModel,
		Timeout:        120 * time.Second,
		MaxRetries:     2,
		RetryDelay:     2 * time.Second,
	}
}

// OpenAIClient wraps the go-openai client with retry logic.
// It implements both Generator and Embedder.
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
}

// NewOpenAIClientWithConfig creates a new client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" && config.BaseURL == "" {
		return nil, fmt.Errorf("OpenAI API key is required when no base URL is configured")
	}
	if config.ChatModel == "" && config.EmbeddingModel == "" {
		return nil, fmt.Errorf("at least one of chat model or embedding model is required")
	}

	oaiConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		oaiConfig.BaseURL = config.BaseURL
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(oaiConfig),
		chatModel:      config.ChatModel,
		embeddingModel: config.EmbeddingModel,
		timeout:        timeout,
		maxRetries:     config.MaxRetries,
		retryDelay:     config.RetryDelay,
	}, nil
}

// GetClient returns the underlying OpenAI client for direct use
func (c *OpenAIClient) GetClient() *openai.Client {
	return c.client
}

// Generate submits every prompt in a single completions request with echo enabled,
// so each raw output starts with its own prompt. Outputs are ordered by choice index.
func (c *OpenAIClient) Generate(ctx context.Context, prompts []string, params SamplingParams) ([]string, error) {
	if len(prompts) == 0 {
		return []string{}, nil
	}

	var outputs []string
	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateCompletion(callCtx, openai.CompletionRequest{
			Model:       c.chatModel,
			Prompt:      prompts,
			MaxTokens:   params.MaxNewTokens,
			Temperature: params.Temperature,
			TopP:        params.TopP,
			Echo:        true,
		})
		if err != nil {
			return classify(err)
		}

		ordered, err := orderChoices(resp.Choices, len(prompts))
		if err != nil {
			return err
		}
		outputs = ordered
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("completion batch of %d prompts: %w", len(prompts), err)
	}

	return outputs, nil
}

// orderChoices places each choice at its prompt index and checks none is missing
func orderChoices(choices []openai.CompletionChoice, n int) ([]string, error) {
	if len(choices) != n {
		return nil, fmt.Errorf("expected %d choices, got %d: %w", n, len(choices), ErrEmptyResponse)
	}

	outputs := make([]string, n)
	filled := make([]bool, n)
	for _, ch := range choices {
		if ch.Index < 0 || ch.Index >= n || filled[ch.Index] {
			return nil, fmt.Errorf("unexpected choice index %d for batch of %d", ch.Index, n)
		}
		outputs[ch.Index] = ch.Text
		filled[ch.Index] = true
	}
	return outputs, nil
}

// Embed generates one vector per text using a single embeddings request
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var vectors [][]float32
	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: c.embeddingModel,
		})
		if err != nil {
			return classify(err)
		}

		if len(resp.Data) != len(texts) {
			return fmt.Errorf("expected %d embeddings, got %d: %w", len(texts), len(resp.Data), ErrEmptyResponse)
		}

		out := make([][]float32, len(texts))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(texts) || out[d.Index] != nil {
				return fmt.Errorf("unexpected embedding index %d for batch of %d", d.Index, len(texts))
			}
			out[d.Index] = d.Embedding
		}
		vectors = out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("embedding batch of %d texts: %w", len(texts), err)
	}

	return vectors, nil
}

// classify marks client errors other than rate limiting as permanent
func classify(err error) error {
	var code int
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		code = reqErr.HTTPStatusCode
	}
	if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
		return util.Permanent(err)
	}
	return err
}
