// ABOUTME: MCP tool handler implementations for the lecture summarizer
// ABOUTME: Tool errors are reported as error results, never as protocol failures
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/harper/lecture-summarizer/internal/core"
	"github.com/harper/lecture-summarizer/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	orchestrator *core.BatchOrchestrator
	mu           sync.Mutex      // One batch at a time
	inFlight     *sync.WaitGroup // Track running generations for shutdown
}

// GenerateSummaries handles the generate_summaries tool
func (h *Handlers) GenerateSummaries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requests, err := parseItems(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.inFlight.Add(1)
	defer h.inFlight.Done()

	h.mu.Lock()
	results, err := h.orchestrator.GenerateBatch(ctx, requests)
	h.mu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summary generation failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(models.NewBatchResponse(results))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// RetrieveContext handles the retrieve_context tool
func (h *Handlers) RetrieveContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := request.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError("topic argument is required and must be a string"), nil
	}

	k := request.GetInt("k", core.DefaultTopK)
	if k < 1 {
		return mcp.NewToolResultError(fmt.Sprintf("k must be positive, got %d", k)), nil
	}

	sentences, err := h.orchestrator.Retriever().Retrieve(ctx, topic, k)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("context retrieval failed: %v", err)), nil
	}

	response := map[string]interface{}{
		"topic":     topic,
		"sentences": sentences,
	}
	if empty, ok := h.orchestrator.Retriever().Index().(*core.IndexEmpty); ok {
		response["warning"] = "no transcript indexed: " + empty.Reason
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// Shutdown waits for any running generation to complete
func (h *Handlers) Shutdown() {
	log.Println("Waiting for pending generations to complete...")
	h.inFlight.Wait()
	log.Println("All generations completed")
}

// parseItems converts the items argument into summary requests
func parseItems(args map[string]interface{}) ([]models.SummaryRequest, error) {
	raw, ok := args["items"]
	if !ok {
		return nil, fmt.Errorf("items argument is required")
	}
	arr, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("items argument must be an array")
	}

	requests := make([]models.SummaryRequest, 0, len(arr))
	for i, item := range arr {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("items[%d] must be an object", i)
		}
		requests = append(requests, models.SummaryRequest{
			Topic:    stringField(obj, "topic"),
			Category: stringField(obj, "category"),
			Status:   stringField(obj, "status"),
		})
	}
	return requests, nil
}

func stringField(obj map[string]interface{}, key string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return ""
}
