// ABOUTME: BatchOrchestrator turns a batch of summary requests into generated explanations
// ABOUTME: Retrieves context, renders prompts, calls the generator once, and strips echoed prompts
package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/harper/lecture-summarizer/internal/llm"
	"github.com/harper/lecture-summarizer/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrInvalidRequest marks a batch rejected because one of its items is malformed
var ErrInvalidRequest = errors.New("invalid summary request")

var tracer = otel.Tracer("github.com/harper/lecture-summarizer/internal/core")

// BatchOrchestrator wires retrieval, prompt synthesis, and generation.
// A batch either fully succeeds or fails as a unit.
type BatchOrchestrator struct {
	retriever   *Retriever
	synthesizer *PromptSynthesizer
	generator   llm.Generator
	params      llm.SamplingParams
	topK        int
	verbose     bool
}

// OrchestratorOption configures optional BatchOrchestrator settings
type OrchestratorOption func(*BatchOrchestrator)

// WithTopK overrides DefaultTopK
func WithTopK(k int) OrchestratorOption {
	return func(o *BatchOrchestrator) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithVerbose logs each rendered prompt
func WithVerbose(verbose bool) OrchestratorOption {
	return func(o *BatchOrchestrator) {
		o.verbose = verbose
	}
}

// NewBatchOrchestrator creates an orchestrator with fixed sampling parameters
func NewBatchOrchestrator(retriever *Retriever, synthesizer *PromptSynthesizer, generator llm.Generator, params llm.SamplingParams, opts ...OrchestratorOption) *BatchOrchestrator {
	o := &BatchOrchestrator{
		retriever:   retriever,
		synthesizer: synthesizer,
		generator:   generator,
		params:      params,
		topK:        DefaultTopK,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Retriever exposes the orchestrator's retriever for callers that only need context
func (o *BatchOrchestrator) Retriever() *Retriever {
	return o.retriever
}

// GenerateBatch returns one result per request, in request order.
// Any failure aborts the whole batch and no partial results are returned.
func (o *BatchOrchestrator) GenerateBatch(ctx context.Context, requests []models.SummaryRequest) ([]models.SummaryResult, error) {
	batchID := uuid.New().String()[:8]

	ctx, span := tracer.Start(ctx, "core.GenerateBatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("batch.id", batchID),
		attribute.Int("batch.size", len(requests)),
	)

	results, err := o.generateBatch(ctx, batchID, requests)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch generation failed")
		log.Printf("[Batch %s] Error during batch generation: %v", batchID, err)
		return nil, err
	}
	return results, nil
}

func (o *BatchOrchestrator) generateBatch(ctx context.Context, batchID string, requests []models.SummaryRequest) ([]models.SummaryResult, error) {
	log.Printf("[Batch %s] Received a batch of %d summaries to generate", batchID, len(requests))

	if len(requests) == 0 {
		return []models.SummaryResult{}, nil
	}

	prompts, err := o.BuildPrompts(ctx, requests)
	if err != nil {
		return nil, err
	}

	outputs, err := o.generator.Generate(ctx, prompts, o.params)
	if err != nil {
		return nil, fmt.Errorf("generating batch: %w", err)
	}
	if len(outputs) != len(prompts) {
		return nil, fmt.Errorf("generator returned %d outputs for %d prompts", len(outputs), len(prompts))
	}

	results := make([]models.SummaryResult, len(outputs))
	for i, raw := range outputs {
		results[i] = models.SummaryResult{Summary: StripPrompt(raw, prompts[i])}
	}

	log.Printf("[Batch %s] Batch generation complete", batchID)
	return results, nil
}

// BuildPrompts validates each request and renders its prompt, in order
func (o *BatchOrchestrator) BuildPrompts(ctx context.Context, requests []models.SummaryRequest) ([]string, error) {
	prompts := make([]string, len(requests))
	for i, req := range requests {
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w: %v", i, ErrInvalidRequest, err)
		}

		sentences, err := o.retriever.Retrieve(ctx, req.Topic, o.topK)
		if err != nil {
			return nil, fmt.Errorf("item %d: retrieving context: %w", i, err)
		}

		prompts[i] = o.synthesizer.Build(req.Topic, req.Category, JoinContext(sentences))
		if o.verbose {
			log.Printf("Prompt %d (status=%q, %d context sentences):\n%s", i, req.Status, len(sentences), prompts[i])
		}
	}
	return prompts, nil
}

// StripPrompt removes the echoed prompt text from a raw model output and trims whitespace
func StripPrompt(raw, prompt string) string {
	if prompt != "" {
		raw = strings.ReplaceAll(raw, prompt, "")
	}
	return strings.TrimSpace(raw)
}
