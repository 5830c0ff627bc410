// ABOUTME: Request and response models for batch summary generation
// ABOUTME: Shared by the HTTP boundary, the MCP tools, and the batch orchestrator
package models

import (
	"fmt"
	"strings"
)

// SummaryRequest is one item of a batch: a topic to explain within a subject category.
// Status is accepted from callers but does not influence the prompt.
type SummaryRequest struct {
	Topic    string `json:"topic"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

// Validate checks that the request carries a usable topic
func (r SummaryRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	return nil
}

// SummaryResult is the generated explanation for one request, with the echoed prompt removed
type SummaryResult struct {
	Summary string `json:"summary"`
}

// BatchResponse is the success payload returned for a batch
type BatchResponse struct {
	Summaries []string `json:"summaries"`
}

// ErrorResponse is the failure payload returned for a batch
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewBatchResponse flattens results into the wire format, preserving order
func NewBatchResponse(results []SummaryResult) BatchResponse {
	summaries := make([]string, len(results))
	for i, r := range results {
		summaries[i] = r.Summary
	}
	return BatchResponse{Summaries: summaries}
}
