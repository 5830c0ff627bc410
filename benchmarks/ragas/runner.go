// ABOUTME: RAGAS benchmark runner for the lecture summarizer pipeline
// ABOUTME: Retrieves context and generates every scenario in one batch, then scores each result

package ragas

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/harper/lecture-summarizer/internal/core"
	"github.com/harper/lecture-summarizer/internal/models"
)

// BenchmarkRunner executes RAGAS benchmark tests against a live orchestrator
type BenchmarkRunner struct {
	orchestrator *core.BatchOrchestrator
	metrics      *MetricsCalculator
	topK         int
	verbose      bool
}

// NewBenchmarkRunner creates a runner; topK should match the orchestrator's
func NewBenchmarkRunner(orchestrator *core.BatchOrchestrator, topK int, verbose bool) *BenchmarkRunner {
	if topK <= 0 {
		topK = core.DefaultTopK
	}
	return &BenchmarkRunner{
		orchestrator: orchestrator,
		metrics:      NewMetricsCalculator(),
		topK:         topK,
		verbose:      verbose,
	}
}

// RunTest executes a single RAGAS benchmark test
func (r *BenchmarkRunner) RunTest(ctx context.Context, scenario TestScenario) (TestResult, error) {
	results, err := r.RunTests(ctx, []TestScenario{scenario})
	if err != nil {
		return TestResult{}, err
	}
	return results[0], nil
}

// RunTests generates all scenarios as one batch, mirroring how the HTTP
// endpoint is used, and scores each result in input order
func (r *BenchmarkRunner) RunTests(ctx context.Context, scenarios []TestScenario) ([]TestResult, error) {
	requests := make([]models.SummaryRequest, len(scenarios))
	contexts := make([][]string, len(scenarios))

	for i, scenario := range scenarios {
		requests[i] = scenario.Request

		retrieved, err := r.orchestrator.Retriever().Retrieve(ctx, scenario.Request.Topic, r.topK)
		if err != nil {
			return nil, fmt.Errorf("test %s: retrieving context: %w", scenario.ID, err)
		}
		contexts[i] = retrieved

		if r.verbose {
			fmt.Printf("[%s] Retrieved %d sentences for %q\n", scenario.ID, len(retrieved), scenario.Request.Topic)
			for j, s := range retrieved {
				fmt.Printf("  %d. %s\n", j+1, s)
			}
		}
	}

	start := time.Now()
	summaries, err := r.orchestrator.GenerateBatch(ctx, requests)
	if err != nil {
		return nil, fmt.Errorf("batch generation failed: %w", err)
	}
	elapsed := time.Since(start)

	results := make([]TestResult, len(scenarios))
	for i, scenario := range scenarios {
		results[i] = r.metrics.EvaluateTest(scenario, summaries[i].Summary, contexts[i])
		results[i].Details["batch_duration_ms"] = elapsed.Milliseconds()

		if r.verbose {
			fmt.Printf("[%s] Response: %s\n\n", scenario.ID, summaries[i].Summary)
		}
	}

	return results, nil
}

// RunAllTests executes all benchmark tests
func (r *BenchmarkRunner) RunAllTests(ctx context.Context) ([]TestResult, error) {
	return r.RunTests(ctx, GetAllTests())
}

// ExportResults exports test results to JSON
func (r *BenchmarkRunner) ExportResults(results []TestResult, outputPath string) error {
	passed := 0
	for _, result := range results {
		if result.Status == "PASS" {
			passed++
		}
	}

	summary := map[string]interface{}{
		"timestamp":   time.Now().Format(time.RFC3339),
		"total_tests": len(results),
		"passed":      passed,
		"failed":      len(results) - passed,
		"results":     results,
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	fmt.Printf("✓ Results exported to: %s\n", outputPath)
	return nil
}
