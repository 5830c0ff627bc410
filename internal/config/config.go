// ABOUTME: Centralized configuration for the lecture summarizer
// ABOUTME: Defaults, then an optional YAML file, then environment variables, then validation
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Generator backends
const (
	GeneratorOpenAI = "openai"
	GeneratorGemini = "gemini"
)

// Embedder backends
const (
	EmbedderOpenAI = "openai"
	EmbedderONNX   = "onnx"
)

// Config holds all configuration for the summarizer
type Config struct {
	// Server settings
	Port           int    `yaml:"port"`
	TranscriptPath string `yaml:"transcript_path"`
	StaticDir      string `yaml:"static_dir"`
	CORSOrigin     string `yaml:"cors_origin"`

	// Generator settings
	Generator    string `yaml:"generator"`
	LLMBaseURL   string `yaml:"llm_base_url"`
	OpenAIKey    string `yaml:"-"`
	ChatModel    string `yaml:"chat_model"`
	ChatTemplate string `yaml:"chat_template"`
	GeminiKey    string `yaml:"-"`
	GeminiModel  string `yaml:"gemini_model"`

	// Embedder settings
	Embedder          string `yaml:"embedder"`
	EmbeddingBaseURL  string `yaml:"embedding_base_url"`
	EmbeddingModel    string `yaml:"embedding_model"`
	ONNXModelPath     string `yaml:"onnx_model_path"`
	ONNXTokenizerPath string `yaml:"onnx_tokenizer_path"`
	ONNXSharedLibrary string `yaml:"onnx_shared_library"`

	// Sampling and retrieval
	Temperature  float32 `yaml:"temperature"`
	TopP         float32 `yaml:"top_p"`
	MaxNewTokens int     `yaml:"max_new_tokens"`
	TopK         int     `yaml:"top_k"`

	// Upstream client behaviour
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	RateLimit  float64       `yaml:"rate_limit"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		Port:              5000,
		TranscriptPath:    "transcript.txt",
		StaticDir:         "static",
		CORSOrigin:        "*",
		Generator:         GeneratorOpenAI,
		LLMBaseURL:        "http://localhost:8000/v1",
		ChatModel:         "meta-llama/Llama-3.2-1B-Instruct",
		ChatTemplate:      "llama3",
		GeminiModel:       "gemini-2.5-flash",
		Embedder:          EmbedderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		ONNXModelPath:     "models/all-MiniLM-L6-v2/model.onnx",
		ONNXTokenizerPath: "models/all-MiniLM-L6-v2/tokenizer.json",
		Temperature:       0.7,
		TopP:              0.9,
		MaxNewTokens:      512,
		TopK:              4,
		Timeout:           120 * time.Second,
		MaxRetries:        2,
		RetryDelay:        2 * time.Second,
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile overlays a YAML file onto the defaults before applying environment
// variables. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	c.Port = getEnvInt("SUMMARIZER_PORT", c.Port)
	c.TranscriptPath = getEnv("SUMMARIZER_TRANSCRIPT_PATH", c.TranscriptPath)
	c.StaticDir = getEnv("SUMMARIZER_STATIC_DIR", c.StaticDir)
	c.CORSOrigin = getEnv("SUMMARIZER_CORS_ORIGIN", c.CORSOrigin)

	c.Generator = strings.ToLower(getEnv("SUMMARIZER_GENERATOR", c.Generator))
	c.LLMBaseURL = getEnv("SUMMARIZER_LLM_BASE_URL", c.LLMBaseURL)
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.ChatModel = getEnv("SUMMARIZER_CHAT_MODEL", c.ChatModel)
	c.ChatTemplate = getEnv("SUMMARIZER_CHAT_TEMPLATE", c.ChatTemplate)
	c.GeminiKey = os.Getenv("GEMINI_API_KEY")
	c.GeminiModel = getEnv("SUMMARIZER_GEMINI_MODEL", c.GeminiModel)

	c.Embedder = strings.ToLower(getEnv("SUMMARIZER_EMBEDDER", c.Embedder))
	c.EmbeddingBaseURL = getEnv("SUMMARIZER_EMBEDDING_BASE_URL", c.EmbeddingBaseURL)
	c.EmbeddingModel = getEnv("SUMMARIZER_EMBEDDING_MODEL", c.EmbeddingModel)
	c.ONNXModelPath = getEnv("SUMMARIZER_ONNX_MODEL_PATH", c.ONNXModelPath)
	c.ONNXTokenizerPath = getEnv("SUMMARIZER_ONNX_TOKENIZER_PATH", c.ONNXTokenizerPath)
	c.ONNXSharedLibrary = getEnv("ONNXRUNTIME_SHARED_LIBRARY", c.ONNXSharedLibrary)

	c.Temperature = float32(getEnvFloat("SUMMARIZER_TEMPERATURE", float64(c.Temperature)))
	c.TopP = float32(getEnvFloat("SUMMARIZER_TOP_P", float64(c.TopP)))
	c.MaxNewTokens = getEnvInt("SUMMARIZER_MAX_NEW_TOKENS", c.MaxNewTokens)
	c.TopK = getEnvInt("SUMMARIZER_TOP_K", c.TopK)

	c.Timeout = getEnvDuration("OPENAI_TIMEOUT", c.Timeout)
	c.MaxRetries = getEnvInt("OPENAI_MAX_RETRIES", c.MaxRetries)
	c.RetryDelay = getEnvDuration("OPENAI_RETRY_DELAY", c.RetryDelay)
	c.RateLimit = getEnvFloat("SUMMARIZER_RATE_LIMIT", c.RateLimit)
}

// EmbeddingURL returns the embeddings endpoint, falling back to the generator's
func (c *Config) EmbeddingURL() string {
	if c.EmbeddingBaseURL != "" {
		return c.EmbeddingBaseURL
	}
	return c.LLMBaseURL
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("SUMMARIZER_PORT must be 1-65535, got %d", c.Port)
	}
	if c.Generator != GeneratorOpenAI && c.Generator != GeneratorGemini {
		return fmt.Errorf("SUMMARIZER_GENERATOR must be %s or %s, got %q", GeneratorOpenAI, GeneratorGemini, c.Generator)
	}
	if c.Embedder != EmbedderOpenAI && c.Embedder != EmbedderONNX {
		return fmt.Errorf("SUMMARIZER_EMBEDDER must be %s or %s, got %q", EmbedderOpenAI, EmbedderONNX, c.Embedder)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("SUMMARIZER_TEMPERATURE must be 0-2, got %f", c.Temperature)
	}
	if c.TopP <= 0 || c.TopP > 1 {
		return fmt.Errorf("SUMMARIZER_TOP_P must be in (0, 1], got %f", c.TopP)
	}
	if c.MaxNewTokens < 1 {
		return fmt.Errorf("SUMMARIZER_MAX_NEW_TOKENS must be positive, got %d", c.MaxNewTokens)
	}
	if c.TopK < 1 {
		return fmt.Errorf("SUMMARIZER_TOP_K must be positive, got %d", c.TopK)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("SUMMARIZER_RATE_LIMIT must not be negative, got %f", c.RateLimit)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
