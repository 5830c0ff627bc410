// ABOUTME: Tests for MCP tool handlers
// ABOUTME: Drives handlers directly with CallToolRequests over a fake-model orchestrator
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/harper/lecture-summarizer/internal/core"
	"github.com/harper/lecture-summarizer/internal/llm"
	"github.com/harper/lecture-summarizer/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// letterEmbedder maps text to letter frequencies
type letterEmbedder struct{}

func (letterEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, 26)
		for _, r := range strings.ToLower(text) {
			if r >= 'a' && r <= 'z' {
				vec[r-'a']++
			}
		}
		out[i] = vec
	}
	return out, nil
}

type answerGenerator struct {
	calls int
	err   error
}

func (g *answerGenerator) Generate(_ context.Context, prompts []string, _ llm.SamplingParams) ([]string, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	out := make([]string, len(prompts))
	for i, p := range prompts {
		out[i] = p + " answer"
	}
	return out, nil
}

func newTestHandlers(t *testing.T, transcript string, gen *answerGenerator) *Handlers {
	t.Helper()

	var idx core.TranscriptIndex = &core.IndexEmpty{Reason: "transcript file not found"}
	if transcript != "" {
		built, err := core.BuildTranscriptIndexFromText(context.Background(), transcript, letterEmbedder{})
		if err != nil {
			t.Fatalf("BuildTranscriptIndexFromText() error = %v", err)
		}
		idx = built
	}

	orch := core.NewBatchOrchestrator(core.NewRetriever(idx, letterEmbedder{}), core.NewPromptSynthesizer(nil), gen, llm.DefaultSamplingParams())
	return NewHandlers(orch)
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want mcp.TextContent", result.Content[0])
	}
	return text.Text
}

func TestGenerateSummaries(t *testing.T) {
	gen := &answerGenerator{}
	h := newTestHandlers(t, "", gen)

	result, err := h.GenerateSummaries(context.Background(), callRequest("generate_summaries", map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"topic": "recursion", "category": "CS101", "status": "pending"},
			map[string]interface{}{"topic": "sorting", "category": "CS101"},
		},
	}))
	if err != nil {
		t.Fatalf("GenerateSummaries() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	var resp models.BatchResponse
	if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(resp.Summaries) != 2 {
		t.Fatalf("len(summaries) = %d, want 2", len(resp.Summaries))
	}
	for i, s := range resp.Summaries {
		if s != "answer" {
			t.Errorf("summaries[%d] = %q, want %q", i, s, "answer")
		}
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
}

func TestGenerateSummaries_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing items", map[string]interface{}{}},
		{"items not array", map[string]interface{}{"items": "recursion"}},
		{"item not object", map[string]interface{}{"items": []interface{}{"recursion"}}},
		{"missing topic", map[string]interface{}{"items": []interface{}{map[string]interface{}{"category": "CS101"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &answerGenerator{}
			h := newTestHandlers(t, "", gen)

			result, err := h.GenerateSummaries(context.Background(), callRequest("generate_summaries", tt.args))
			if err != nil {
				t.Fatalf("GenerateSummaries() protocol error = %v", err)
			}
			if !result.IsError {
				t.Error("expected a tool error result")
			}
			if gen.calls != 0 {
				t.Errorf("generator calls = %d, want 0", gen.calls)
			}
		})
	}
}

func TestGenerateSummaries_GeneratorFailure(t *testing.T) {
	h := newTestHandlers(t, "", &answerGenerator{err: errors.New("upstream unavailable")})

	result, err := h.GenerateSummaries(context.Background(), callRequest("generate_summaries", map[string]interface{}{
		"items": []interface{}{map[string]interface{}{"topic": "recursion"}},
	}))
	if err != nil {
		t.Fatalf("GenerateSummaries() protocol error = %v", err)
	}
	if !result.IsError {
		t.Error("expected a tool error result")
	}
}

func TestRetrieveContext(t *testing.T) {
	h := newTestHandlers(t, "Recursion is when a function calls itself. Sorting arranges items in order. Hash tables map keys to values.", &answerGenerator{})

	result, err := h.RetrieveContext(context.Background(), callRequest("retrieve_context", map[string]interface{}{
		"topic": "recursion",
		"k":     float64(2),
	}))
	if err != nil {
		t.Fatalf("RetrieveContext() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	var resp struct {
		Topic     string   `json:"topic"`
		Sentences []string `json:"sentences"`
		Warning   string   `json:"warning"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Topic != "recursion" {
		t.Errorf("topic = %q, want recursion", resp.Topic)
	}
	if len(resp.Sentences) != 2 {
		t.Errorf("len(sentences) = %d, want 2", len(resp.Sentences))
	}
	if resp.Warning != "" {
		t.Errorf("unexpected warning %q", resp.Warning)
	}
}

func TestRetrieveContext_NoTranscript(t *testing.T) {
	h := newTestHandlers(t, "", &answerGenerator{})

	result, err := h.RetrieveContext(context.Background(), callRequest("retrieve_context", map[string]interface{}{
		"topic": "recursion",
	}))
	if err != nil {
		t.Fatalf("RetrieveContext() error = %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, `"sentences":[]`) {
		t.Errorf("expected empty sentences, got %s", text)
	}
	if !strings.Contains(text, "transcript file not found") {
		t.Errorf("expected warning naming the reason, got %s", text)
	}
}

func TestRetrieveContext_InvalidArguments(t *testing.T) {
	h := newTestHandlers(t, "", &answerGenerator{})

	for name, args := range map[string]map[string]interface{}{
		"missing topic": {},
		"zero k":        {"topic": "recursion", "k": float64(0)},
	} {
		t.Run(name, func(t *testing.T) {
			result, err := h.RetrieveContext(context.Background(), callRequest("retrieve_context", args))
			if err != nil {
				t.Fatalf("RetrieveContext() protocol error = %v", err)
			}
			if !result.IsError {
				t.Error("expected a tool error result")
			}
		})
	}
}

func TestRegisterTools(t *testing.T) {
	server := mcpserver.NewMCPServer("Lecture Summarizer", "test")
	h := newTestHandlers(t, "", &answerGenerator{})

	handlers := RegisterTools(server, core.NewBatchOrchestrator(h.orchestrator.Retriever(), core.NewPromptSynthesizer(nil), &answerGenerator{}, llm.DefaultSamplingParams()))
	if handlers == nil {
		t.Fatal("RegisterTools() returned nil handlers")
	}

	// No generations started, so shutdown returns immediately
	handlers.Shutdown()
}
