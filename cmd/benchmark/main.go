// ABOUTME: Command-line benchmark runner for RAGAS tests
// ABOUTME: Indexes the reference lecture, runs every scenario as one batch, and outputs JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harper/lecture-summarizer/benchmarks/ragas"
	"github.com/harper/lecture-summarizer/internal/config"
	"github.com/harper/lecture-summarizer/internal/core"
	"github.com/harper/lecture-summarizer/internal/llm"
	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"
)

func main() {
	testID := flag.String("test", "", "Run specific test (1a, 1b, 2a). If empty, runs all tests.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	configPath := flag.String("config", "", "Optional YAML config file")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (continuing anyway): %v", err)
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Println("========================================")
	fmt.Println("Lecture Summarizer RAGAS Benchmarks")
	fmt.Println("========================================")
	fmt.Println()

	ctx := context.Background()

	runner, err := newRunner(ctx, cfg, *verbose)
	if err != nil {
		log.Fatalf("Failed to create benchmark runner: %v", err)
	}

	var results []ragas.TestResult

	if *testID == "" {
		fmt.Println("Running all RAGAS benchmark tests...")
		fmt.Println()

		results, err = runner.RunAllTests(ctx)
		if err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
	} else {
		var scenario ragas.TestScenario

		switch *testID {
		case "1a":
			scenario = ragas.GetTest1A()
		case "1b":
			scenario = ragas.GetTest1B()
		case "2a":
			scenario = ragas.GetTest2A()
		default:
			log.Fatalf("Unknown test ID: %s (valid options: 1a, 1b, 2a)", *testID)
		}

		fmt.Printf("Running test: %s\n\n", scenario.Name)

		result, err := runner.RunTest(ctx, scenario)
		if err != nil {
			log.Fatalf("Test failed: %v", err)
		}
		results = []ragas.TestResult{result}
	}

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	passed := 0
	failed := 0

	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.TestID, result.TestName)
		fmt.Printf("  Faithfulness: %.2f\n", result.FaithfulnessScore)
		fmt.Printf("  Context Recall: %.2f\n", result.ContextRecallScore)
		fmt.Printf("  Overall: %.2f\n", result.OverallScore)
		fmt.Printf("  Length: %v\n", result.Details["length_detail"])
		fmt.Printf("  Status: %s\n", result.Status)

		if result.Status == "PASS" {
			passed++
		} else {
			failed++
		}
	}

	fmt.Println("\n========================================")
	fmt.Printf("Total Tests: %d\n", len(results))
	fmt.Printf("Passed: %d\n", passed)
	fmt.Printf("Failed: %d\n", failed)
	fmt.Println("========================================")

	if err := runner.ExportResults(results, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// newRunner wires the OpenAI-compatible backend against the reference lecture
func newRunner(ctx context.Context, cfg *config.Config, verbose bool) (*ragas.BenchmarkRunner, error) {
	embedCfg := llm.DefaultConfig(cfg.OpenAIKey)
	embedCfg.BaseURL = cfg.EmbeddingURL()
	embedCfg.ChatModel = ""
	embedCfg.EmbeddingModel = openai.EmbeddingModel(cfg.EmbeddingModel)
	embedCfg.Timeout = cfg.Timeout
	embedCfg.MaxRetries = cfg.MaxRetries
	embedCfg.RetryDelay = cfg.RetryDelay
	embedder, err := llm.NewOpenAIClientWithConfig(embedCfg)
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}

	genCfg := llm.DefaultConfig(cfg.OpenAIKey)
	genCfg.BaseURL = cfg.LLMBaseURL
	genCfg.ChatModel = cfg.ChatModel
	genCfg.EmbeddingModel = ""
	genCfg.Timeout = cfg.Timeout
	genCfg.MaxRetries = cfg.MaxRetries
	genCfg.RetryDelay = cfg.RetryDelay
	generator, err := llm.NewOpenAIClientWithConfig(genCfg)
	if err != nil {
		return nil, fmt.Errorf("generation client: %w", err)
	}

	template, err := core.TemplateByName(cfg.ChatTemplate)
	if err != nil {
		return nil, err
	}

	index, err := core.BuildTranscriptIndexFromText(ctx, ragas.LectureTranscript, embedder)
	if err != nil {
		return nil, fmt.Errorf("indexing reference lecture: %w", err)
	}

	orchestrator := core.NewBatchOrchestrator(
		core.NewRetriever(index, embedder),
		core.NewPromptSynthesizer(template),
		generator,
		llm.SamplingParams{Temperature: cfg.Temperature, TopP: cfg.TopP, MaxNewTokens: cfg.MaxNewTokens},
		core.WithTopK(cfg.TopK),
		core.WithVerbose(verbose),
	)

	return ragas.NewBenchmarkRunner(orchestrator, cfg.TopK, verbose), nil
}
