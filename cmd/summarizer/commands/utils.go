// ABOUTME: Shared component wiring for CLI commands
// ABOUTME: Loads config and builds the embedder, generator, transcript index, and orchestrator
package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/harper/lecture-summarizer/internal/config"
	"github.com/harper/lecture-summarizer/internal/core"
	"github.com/harper/lecture-summarizer/internal/llm"
	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"
)

// components holds everything a command needs to serve batches
type components struct {
	cfg          *config.Config
	embedder     llm.Embedder
	index        core.TranscriptIndex
	orchestrator *core.BatchOrchestrator
	closers      []func() error
}

// Close releases model resources in reverse order of creation
func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			log.Printf("Warning: error releasing resources: %v", err)
		}
	}
}

// loadConfig reads .env, the optional YAML file, and env vars, then applies
// the --port flag when the user set it explicitly
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && verbose {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
		cfg.Port = port
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newEmbedder builds the configured embedding backend and its cleanup func
func newEmbedder(cfg *config.Config) (llm.Embedder, func() error, error) {
	switch cfg.Embedder {
	case config.EmbedderONNX:
		onnxCfg := llm.DefaultONNXConfig()
		onnxCfg.ModelPath = cfg.ONNXModelPath
		onnxCfg.TokenizerPath = cfg.ONNXTokenizerPath
		onnxCfg.SharedLibraryPath = cfg.ONNXSharedLibrary

		embedder, err := llm.NewONNXEmbedder(onnxCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load ONNX embedding model: %w", err)
		}
		return embedder, embedder.Close, nil

	default:
		clientCfg := openAIConfig(cfg)
		clientCfg.BaseURL = cfg.EmbeddingURL()
		clientCfg.ChatModel = ""
		clientCfg.EmbeddingModel = openai.EmbeddingModel(cfg.EmbeddingModel)

		client, err := llm.NewOpenAIClientWithConfig(clientCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize embedding client: %w", err)
		}
		return client, func() error { return nil }, nil
	}
}

// newGenerator builds the configured generation backend, rate limited when configured
func newGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	var gen llm.Generator

	switch cfg.Generator {
	case config.GeneratorGemini:
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.MaxRetries, cfg.RetryDelay)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		gen = client

	default:
		clientCfg := openAIConfig(cfg)
		clientCfg.EmbeddingModel = ""

		client, err := llm.NewOpenAIClientWithConfig(clientCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize generation client: %w", err)
		}
		gen = client
	}

	return llm.NewRateLimitedGenerator(gen, cfg.RateLimit, 1), nil
}

func openAIConfig(cfg *config.Config) *llm.ClientConfig {
	clientCfg := llm.DefaultConfig(cfg.OpenAIKey)
	clientCfg.BaseURL = cfg.LLMBaseURL
	clientCfg.ChatModel = cfg.ChatModel
	clientCfg.Timeout = cfg.Timeout
	clientCfg.MaxRetries = cfg.MaxRetries
	clientCfg.RetryDelay = cfg.RetryDelay
	return clientCfg
}

// buildIndex creates the embedder and indexes the configured transcript.
// A missing transcript is not an error; an unusable embedder is.
func buildIndex(ctx context.Context, cfg *config.Config) (*components, error) {
	c := &components{cfg: cfg}

	embedder, closeEmbedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	c.embedder = embedder
	c.closers = append(c.closers, closeEmbedder)

	index, err := core.BuildTranscriptIndex(ctx, cfg.TranscriptPath, embedder)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("indexing transcript: %w", err)
	}
	c.index = index
	return c, nil
}

// buildComponents wires the full pipeline used by serve and mcp
func buildComponents(ctx context.Context, cfg *config.Config) (*components, error) {
	template, err := core.TemplateByName(cfg.ChatTemplate)
	if err != nil {
		return nil, err
	}

	c, err := buildIndex(ctx, cfg)
	if err != nil {
		return nil, err
	}

	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	params := llm.SamplingParams{
		Temperature:  cfg.Temperature,
		TopP:         cfg.TopP,
		MaxNewTokens: cfg.MaxNewTokens,
	}

	c.orchestrator = core.NewBatchOrchestrator(
		core.NewRetriever(c.index, c.embedder),
		core.NewPromptSynthesizer(template),
		generator,
		params,
		core.WithTopK(cfg.TopK),
		core.WithVerbose(verbose),
	)

	if verbose {
		log.Printf("Generator: %s, embedder: %s, chat template: %s, top-k: %d",
			cfg.Generator, cfg.Embedder, template.Name(), cfg.TopK)
	}
	return c, nil
}
