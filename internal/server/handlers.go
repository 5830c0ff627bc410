// ABOUTME: HTTP handlers for batch summary generation, health, and static files
// ABOUTME: Batch failures map to one generic 500 body; internals are only logged
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/harper/lecture-summarizer/internal/core"
	"github.com/harper/lecture-summarizer/internal/models"
)

// GenericErrorMessage is the only failure detail a batch caller ever sees
const GenericErrorMessage = "An unexpected error occurred during summary generation."

// maxBodyBytes bounds a batch request body
const maxBodyBytes = 1 << 20

var errNotArray = errors.New("request body must be a JSON array of summary requests")

func (s *Server) handleGenerateBatch(w http.ResponseWriter, r *http.Request) {
	requests, err := decodeBatch(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.logger.Printf("Warning: rejecting batch request [%s]: %v", r.Header.Get(RequestIDHeader), err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := s.generate(r, requests)
	if err != nil {
		if errors.Is(err, core.ErrInvalidRequest) {
			s.logger.Printf("Warning: invalid item in batch [%s]: %v", r.Header.Get(RequestIDHeader), err)
		} else {
			s.logger.Printf("Error during batch generation [%s]: %v", r.Header.Get(RequestIDHeader), err)
		}
		writeError(w, http.StatusInternalServerError, GenericErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, models.NewBatchResponse(results))
}

// generate runs one batch at a time; concurrent requests queue on the lock
func (s *Server) generate(r *http.Request, requests []models.SummaryRequest) ([]models.SummaryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orchestrator.GenerateBatch(r.Context(), requests)
}

func decodeBatch(body io.Reader) ([]models.SummaryRequest, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, errNotArray
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errNotArray
	}

	var requests []models.SummaryRequest
	if err := json.Unmarshal(raw, &requests); err != nil {
		return nil, errNotArray
	}
	return requests, nil
}

// HealthResponse reports liveness and how much transcript is indexed
type HealthResponse struct {
	Status              string `json:"status"`
	TranscriptSentences int    `json:"transcript_sentences"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	n := 0
	if idx := s.orchestrator.Retriever().Index(); idx != nil {
		n = idx.Len()
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", TranscriptSentences: n})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
