// ABOUTME: Local sentence-transformer embedder backed by ONNX Runtime
// ABOUTME: Tokenizes with a HuggingFace tokenizer.json and mean-pools the last hidden state
package llm

import (
	"context"
	"fmt"
	"math"
	"sync"

	tokenizer "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig locates the exported sentence-transformer and its tokenizer
type ONNXConfig struct {
	ModelPath         string
	TokenizerPath     string
	SharedLibraryPath string
	BatchSize         int
	MaxSeqLen         int
}

// DefaultONNXConfig returns paths for an all-MiniLM-L6-v2 export
func DefaultONNXConfig() ONNXConfig {
	return ONNXConfig{
		ModelPath:     "models/all-MiniLM-L6-v2/model.onnx",
		TokenizerPath: "models/all-MiniLM-L6-v2/tokenizer.json",
		BatchSize:     32,
		MaxSeqLen:     256,
	}
}

// ONNXEmbedder implements Embedder with a local ONNX session.
// ONNX Runtime sessions are not documented as reentrant, so Run is serialized.
type ONNXEmbedder struct {
	tok     *tokenizer.Tokenizer
	session *ort.DynamicAdvancedSession
	config  ONNXConfig
	mu      sync.Mutex
}

// NewONNXEmbedder loads the tokenizer and model
func NewONNXEmbedder(config ONNXConfig) (*ONNXEmbedder, error) {
	if config.BatchSize <= 0 {
		config.BatchSize = 32
	}
	if config.MaxSeqLen <= 0 {
		config.MaxSeqLen = 256
	}

	tok, err := pretrained.FromFile(config.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	if config.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(config.SharedLibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer opts.Destroy()

	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		return nil, fmt.Errorf("failed to set graph optimization: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		config.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &ONNXEmbedder{
		tok:     tok,
		session: session,
		config:  config,
	}, nil
}

// Embed embeds texts in fixed-size batches, preserving order
func (e *ONNXEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+e.config.BatchSize, len(texts))
		vectors, err := e.embedBatch(texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (e *ONNXEmbedder) embedBatch(texts []string) ([][]float32, error) {
	inputs := make([]tokenizer.EncodeInput, len(texts))
	for i, t := range texts {
		inputs[i] = tokenizer.NewSingleEncodeInput(tokenizer.NewInputSequence(t))
	}

	encodings, err := e.tok.EncodeBatch(inputs, true)
	if err != nil {
		return nil, fmt.Errorf("tokenization failed: %w", err)
	}

	maxLen := 0
	for _, enc := range encodings {
		maxLen = max(maxLen, min(len(enc.GetIds()), e.config.MaxSeqLen))
	}
	if maxLen == 0 {
		return nil, fmt.Errorf("tokenizer produced no tokens")
	}

	batchSize := len(encodings)
	inputIDs := make([]int64, batchSize*maxLen)
	attentionMask := make([]int64, batchSize*maxLen)
	tokenTypeIDs := make([]int64, batchSize*maxLen)

	for i, enc := range encodings {
		ids := enc.GetIds()
		mask := enc.GetAttentionMask()
		offset := i * maxLen
		for j := 0; j < maxLen && j < len(ids); j++ {
			inputIDs[offset+j] = int64(ids[j])
			attentionMask[offset+j] = int64(mask[j])
		}
	}

	shape := ort.NewShape(int64(batchSize), int64(maxLen))
	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	typeTensor, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create token_type_ids tensor: %w", err)
	}
	defer typeTensor.Destroy()

	outputs := make([]ort.Value, 1)
	e.mu.Lock()
	err = e.session.Run([]ort.Value{idsTensor, maskTensor, typeTensor}, outputs)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("output tensor is not float32 type")
	}

	outShape := hidden.GetShape()
	if len(outShape) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", outShape)
	}

	return meanPool(hidden.GetData(), attentionMask, batchSize, int(outShape[1]), int(outShape[2])), nil
}

// meanPool averages token vectors under the attention mask and L2-normalizes the result,
// matching sentence-transformers' pooling for MiniLM models.
func meanPool(data []float32, mask []int64, batchSize, seqLen, hiddenDim int) [][]float32 {
	out := make([][]float32, batchSize)
	for b := 0; b < batchSize; b++ {
		vec := make([]float32, hiddenDim)
		var count float32
		for s := 0; s < seqLen; s++ {
			if mask[b*seqLen+s] == 0 {
				continue
			}
			count++
			row := data[(b*seqLen+s)*hiddenDim : (b*seqLen+s+1)*hiddenDim]
			for d, v := range row {
				vec[d] += v
			}
		}
		if count > 0 {
			for d := range vec {
				vec[d] /= count
			}
		}
		normalize(vec)
		out[b] = vec
	}
	return out
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

// Close releases the ONNX session and environment
func (e *ONNXEmbedder) Close() error {
	if e.session != nil {
		if err := e.session.Destroy(); err != nil {
			return err
		}
	}
	return ort.DestroyEnvironment()
}
