// ABOUTME: Test scenario data structures for RAGAS benchmarks
// ABOUTME: Defines a reference lecture transcript, topic requests, and ground truth per test

package ragas

import "github.com/harper/lecture-summarizer/internal/models"

// LectureTranscript is the reference lecture every scenario is evaluated against
const LectureTranscript = `Welcome back everyone, today we continue with machine learning fundamentals.
Neural networks are inspired by the structure of biological brains.
A neural network is built from layers of interconnected neurons that pass weighted signals forward.
Each neuron applies a nonlinear activation function such as ReLU or the sigmoid.
Gradient descent minimizes the loss by repeatedly stepping against the gradient.
The learning rate controls how large each gradient descent step is.
Backpropagation computes the gradient of the loss with respect to every weight using the chain rule.
Overfitting happens when a model memorizes the training data instead of generalizing.
Regularization techniques such as dropout and weight decay reduce overfitting.
Remember that the midterm exam covers everything up to regularization.`

// TestScenario represents a complete RAGAS benchmark test
type TestScenario struct {
	ID          string
	Name        string
	Description string
	Request     models.SummaryRequest
	GroundTruth GroundTruth
}

// GroundTruth defines expected outcomes for RAGAS evaluation
type GroundTruth struct {
	ExpectedInResponse  []string // Strings that MUST appear in response
	ForbiddenInResponse []string // Strings that MUST NOT appear in response

	// Context retrieval expectations
	ExpectedContextItems []string // Transcript phrases that should be retrieved
}

// TestResult represents the outcome of a benchmark test
type TestResult struct {
	TestID             string                 `json:"test_id"`
	TestName           string                 `json:"test_name"`
	FaithfulnessScore  float64                `json:"faithfulness_score"`
	ContextRecallScore float64                `json:"context_recall_score"`
	OverallScore       float64                `json:"overall_score"`
	Status             string                 `json:"status"` // "PASS" or "FAIL"
	Details            map[string]interface{} `json:"details"`
	ErrorMessage       string                 `json:"error_message,omitempty"`
}

// promptLeakage lists fragments that only appear when the echoed prompt was not stripped
var promptLeakage = []string{
	"<|start_header_id|>",
	"<|eot_id|>",
	"expert AI Teaching Assistant",
	"Lecture Text:",
}

// GetTest1A returns Test 1A: a topic the lecture covers directly
func GetTest1A() TestScenario {
	return TestScenario{
		ID:          "1a",
		Name:        "Neural Networks (on-transcript)",
		Description: "Retrieval should surface the neural network sentences and the explanation should stay on topic",
		Request: models.SummaryRequest{
			Topic:    "neural networks",
			Category: "Machine Learning",
			Status:   "pending",
		},
		GroundTruth: GroundTruth{
			ExpectedInResponse:   []string{"neur"},
			ForbiddenInResponse:  promptLeakage,
			ExpectedContextItems: []string{"biological brains", "layers of interconnected neurons"},
		},
	}
}

// GetTest1B returns Test 1B: a topic spread across several lecture sentences
func GetTest1B() TestScenario {
	return TestScenario{
		ID:          "1b",
		Name:        "Gradient Descent (multi-sentence context)",
		Description: "Retrieval should pull both the definition and the learning rate sentence",
		Request: models.SummaryRequest{
			Topic:    "gradient descent",
			Category: "Machine Learning",
			Status:   "incorrect",
		},
		GroundTruth: GroundTruth{
			ExpectedInResponse:   []string{"gradient"},
			ForbiddenInResponse:  promptLeakage,
			ExpectedContextItems: []string{"stepping against the gradient", "learning rate"},
		},
	}
}

// GetTest2A returns Test 2A: a topic the lecture never mentions
func GetTest2A() TestScenario {
	return TestScenario{
		ID:          "2a",
		Name:        "Photosynthesis (off-transcript)",
		Description: "The explanation should still answer the topic without leaking prompt scaffolding",
		Request: models.SummaryRequest{
			Topic:    "photosynthesis",
			Category: "Biology",
			Status:   "pending",
		},
		GroundTruth: GroundTruth{
			ExpectedInResponse:  []string{"photosynthesis"},
			ForbiddenInResponse: promptLeakage,
		},
	}
}

// GetAllTests returns all benchmark scenarios
func GetAllTests() []TestScenario {
	return []TestScenario{
		GetTest1A(),
		GetTest1B(),
		GetTest2A(),
	}
}
