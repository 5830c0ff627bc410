// ABOUTME: Tests for summary request validation and response flattening
// ABOUTME: Verifies blank topics are rejected and result order is kept
package models

import (
	"encoding/json"
	"testing"
)

func TestSummaryRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     SummaryRequest
		wantErr bool
	}{
		{"valid", SummaryRequest{Topic: "recursion", Category: "CS101", Status: "pending"}, false},
		{"no category", SummaryRequest{Topic: "recursion"}, false},
		{"empty topic", SummaryRequest{Category: "CS101"}, true},
		{"whitespace topic", SummaryRequest{Topic: "   \t", Category: "CS101"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSummaryRequest_UnmarshalMissingTopic(t *testing.T) {
	var reqs []SummaryRequest
	if err := json.Unmarshal([]byte(`[{"category":"CS101","status":"pending"}]`), &reqs); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("len = %d, want 1", len(reqs))
	}
	if reqs[0].Topic != "" {
		t.Errorf("Topic = %q, want empty", reqs[0].Topic)
	}
	if err := reqs[0].Validate(); err == nil {
		t.Error("Validate() should fail for a missing topic")
	}
}

func TestNewBatchResponse_PreservesOrder(t *testing.T) {
	results := []SummaryResult{{Summary: "first"}, {Summary: "second"}, {Summary: "third"}}

	resp := NewBatchResponse(results)

	if len(resp.Summaries) != 3 {
		t.Fatalf("len(Summaries) = %d, want 3", len(resp.Summaries))
	}
	for i, want := range []string{"first", "second", "third"} {
		if resp.Summaries[i] != want {
			t.Errorf("Summaries[%d] = %q, want %q", i, resp.Summaries[i], want)
		}
	}
}

func TestNewBatchResponse_EmptyMarshalsAsArray(t *testing.T) {
	data, err := json.Marshal(NewBatchResponse(nil))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"summaries":[]}` {
		t.Errorf("Marshal = %s, want {\"summaries\":[]}", data)
	}
}
