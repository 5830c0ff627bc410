// ABOUTME: MCP tool definitions and registration for the lecture summarizer
// ABOUTME: Exposes batch summary generation and transcript context retrieval as tools
package mcp

import (
	"sync"

	"github.com/harper/lecture-summarizer/internal/core"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, orchestrator *core.BatchOrchestrator) *Handlers {
	handlers := NewHandlers(orchestrator)

	// 1. generate_summaries - Explain a batch of topics using the lecture transcript
	server.AddTool(mcp.Tool{
		Name:        "generate_summaries",
		Description: "Generate short teaching-assistant explanations for a batch of topics, grounded in the loaded lecture transcript when relevant text exists. Results are returned in input order; any invalid item fails the whole batch.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"items": map[string]interface{}{
					"type":        "array",
					"description": "Topics to explain",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"topic": map[string]interface{}{
								"type":        "string",
								"description": "Concept to explain",
							},
							"category": map[string]interface{}{
								"type":        "string",
								"description": "Subject or course the concept belongs to",
							},
							"status": map[string]interface{}{
								"type":        "string",
								"description": "Caller-side status label (not used for generation)",
							},
						},
						"required": []string{"topic"},
					},
				},
			},
			Required: []string{"items"},
		},
	}, handlers.GenerateSummaries)

	// 2. retrieve_context - Show which transcript sentences a topic retrieves
	server.AddTool(mcp.Tool{
		Name:        "retrieve_context",
		Description: "Return the lecture transcript sentences most similar to a topic, in descending similarity.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"topic": map[string]interface{}{
					"type":        "string",
					"description": "Topic to search the transcript for",
				},
				"k": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of sentences to return (default: 4)",
					"default":     core.DefaultTopK,
				},
			},
			Required: []string{"topic"},
		},
	}, handlers.RetrieveContext)

	return handlers
}

// NewHandlers creates tool handlers around a shared orchestrator
func NewHandlers(orchestrator *core.BatchOrchestrator) *Handlers {
	return &Handlers{
		orchestrator: orchestrator,
		inFlight:     &sync.WaitGroup{},
	}
}
