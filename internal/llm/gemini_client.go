// ABOUTME: Gemini generator backend using the Google GenAI SDK
// ABOUTME: Sends each rendered prompt as plain text; outputs never echo the prompt
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harper/lecture-summarizer/internal/util"
	"google.golang.org/genai"
)

// DefaultGeminiModel is the default Gemini model for generation
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient implements Generator on top of genai.Client
type GeminiClient struct {
	client     *genai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
}

// NewGeminiClient creates a Gemini generator. An API key is required.
func NewGeminiClient(ctx context.Context, apiKey, model string, maxRetries int, retryDelay time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		model:      model,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}, nil
}

// Generate calls the model once per prompt, in order. Gemini has no batch
// text-completion endpoint, so the batch is all-or-nothing at this level too.
func (g *GeminiClient) Generate(ctx context.Context, prompts []string, params SamplingParams) ([]string, error) {
	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(params.Temperature),
		TopP:            genai.Ptr(params.TopP),
		MaxOutputTokens: int32(params.MaxNewTokens),
	}

	outputs := make([]string, len(prompts))
	for i, prompt := range prompts {
		err := util.Retry(ctx, g.maxRetries, g.retryDelay, func(ctx context.Context) error {
			result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genConfig)
			if err != nil {
				return err
			}
			text := result.Text()
			if strings.TrimSpace(text) == "" {
				return ErrEmptyResponse
			}
			outputs[i] = text
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("gemini prompt %d/%d: %w", i+1, len(prompts), err)
		}
	}

	return outputs, nil
}
