// ABOUTME: Tests for the OpenAI-compatible client against a fake inference server
// ABOUTME: Verifies batched completions ordering, echo, embeddings, and retry classification
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	cfg.RetryDelay = time.Millisecond
	client, err := NewOpenAIClientWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewOpenAIClientWithConfig() error = %v", err)
	}
	return client
}

func TestNewOpenAIClientWithConfig_RequiresKeyOrBaseURL(t *testing.T) {
	cfg := DefaultConfig("")
	cfg.BaseURL = ""
	if _, err := NewOpenAIClientWithConfig(cfg); err == nil {
		t.Error("expected error without API key or base URL")
	}

	cfg.BaseURL = "http://localhost:8000/v1"
	if _, err := NewOpenAIClientWithConfig(cfg); err != nil {
		t.Errorf("local base URL without key should be accepted, got %v", err)
	}
}

func TestGenerate_BatchOrderedByChoiceIndex(t *testing.T) {
	var got openai.CompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/completions" {
			t.Errorf("path = %s, want /v1/completions", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		// Choices deliberately out of order
		fmt.Fprint(w, `{"id":"c1","object":"text_completion","model":"m","choices":[
			{"text":"PROMPT-B second","index":1,"finish_reason":"stop"},
			{"text":"PROMPT-A first","index":0,"finish_reason":"stop"}]}`)
	})

	params := SamplingParams{Temperature: 0.7, TopP: 0.9, MaxNewTokens: 64}
	outputs, err := client.Generate(context.Background(), []string{"PROMPT-A", "PROMPT-B"}, params)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(outputs) != 2 || outputs[0] != "PROMPT-A first" || outputs[1] != "PROMPT-B second" {
		t.Errorf("outputs = %q, want ordered by index", outputs)
	}
	if !got.Echo {
		t.Error("request should enable echo")
	}
	if got.MaxTokens != 64 || got.Temperature != 0.7 || got.TopP != 0.9 {
		t.Errorf("sampling = (%d, %v, %v), want (64, 0.7, 0.9)", got.MaxTokens, got.Temperature, got.TopP)
	}
	prompts, ok := got.Prompt.([]any)
	if !ok || len(prompts) != 2 {
		t.Errorf("Prompt = %#v, want a batch of 2", got.Prompt)
	}
}

func TestGenerate_EmptyBatchSkipsCall(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty batch")
	})

	outputs, err := client.Generate(context.Background(), nil, DefaultSamplingParams())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(outputs) != 0 {
		t.Errorf("len(outputs) = %d, want 0", len(outputs))
	}
}

func TestGenerate_MissingChoiceFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"c1","object":"text_completion","model":"m","choices":[{"text":"only one","index":0}]}`)
	})

	_, err := client.Generate(context.Background(), []string{"a", "b"}, DefaultSamplingParams())
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Generate() error = %v, want ErrEmptyResponse", err)
	}
}

func TestGenerate_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error":{"message":"warming up","type":"server_error"}}`)
			return
		}
		fmt.Fprint(w, `{"id":"c1","object":"text_completion","model":"m","choices":[{"text":"ok","index":0}]}`)
	})

	outputs, err := client.Generate(context.Background(), []string{"p"}, DefaultSamplingParams())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if outputs[0] != "ok" {
		t.Errorf("outputs[0] = %q, want ok", outputs[0])
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestGenerate_DoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"prompt too long","type":"invalid_request_error"}}`)
	})

	if _, err := client.Generate(context.Background(), []string{"p"}, DefaultSamplingParams()); err == nil {
		t.Fatal("Generate() should fail on 400")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestEmbed_OrderedByIndex(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("path = %s, want /v1/embeddings", r.URL.Path)
		}
		fmt.Fprint(w, `{"object":"list","model":"m","data":[
			{"object":"embedding","index":1,"embedding":[0,1]},
			{"object":"embedding","index":0,"embedding":[1,0]}]}`)
	})

	vectors, err := client.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if len(vectors) != 2 {
		t.Fatalf("len(vectors) = %d, want 2", len(vectors))
	}
	if vectors[0][0] != 1 || vectors[1][1] != 1 {
		t.Errorf("vectors = %v, want [[1 0] [0 1]]", vectors)
	}
}

func TestEmbed_CountMismatchFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"object":"list","model":"m","data":[{"object":"embedding","index":0,"embedding":[1,0]}]}`)
	})

	_, err := client.Embed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Embed() error = %v, want ErrEmptyResponse", err)
	}
}
