package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/upstream"
	"github.com/teemow/agentdesk/internal/validation"
)

// HuggingFace inference defaults.
const (
	DefaultHuggingFaceURL   = "https://api-inference.huggingface.co"
	DefaultHuggingFaceModel = "Supabase/gte-small"
)

// HuggingFaceEmbedder embeds text with a feature-extraction model on the
// HuggingFace inference API, mean-pooling token vectors and normalising
// the result to unit length.
type HuggingFaceEmbedder struct {
	api   *upstream.Client
	model string
}

// NewHuggingFaceEmbedder returns an embedder for model. Empty values
// select the defaults above.
func NewHuggingFaceEmbedder(apiKey, model string, base upstream.Config) *HuggingFaceEmbedder {
	base.Service = instrumentation.ServiceHuggingFace
	if base.BaseURL == "" {
		base.BaseURL = DefaultHuggingFaceURL
	}
	if apiKey != "" {
		base.Headers = map[string]string{"Authorization": "Bearer " + apiKey}
	}
	if model == "" {
		model = DefaultHuggingFaceModel
	}
	return &HuggingFaceEmbedder{api: upstream.New(base), model: model}
}

// Embed implements Embedder.
func (e *HuggingFaceEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text, err := validation.Required("text", text)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"inputs":  text,
		"options": map[string]bool{"wait_for_model": true},
	}
	var raw json.RawMessage
	if err := e.api.PostJSON(ctx, instrumentation.OperationEmbed,
		"/pipeline/feature-extraction/"+e.model, payload, &raw); err != nil {
		return nil, err
	}

	vec, err := decodeFeatures(raw)
	if err != nil {
		return nil, &upstream.Error{Service: e.api.Service(), Op: instrumentation.OperationEmbed, Err: err}
	}
	return vec, nil
}

// decodeFeatures accepts a pooled vector, a token matrix or a batch of
// one token matrix and returns a normalised sentence vector.
func decodeFeatures(raw json.RawMessage) ([]float32, error) {
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err == nil {
		return normalize(vec)
	}
	var tokens [][]float32
	if err := json.Unmarshal(raw, &tokens); err == nil {
		return normalize(meanPool(tokens))
	}
	var batch [][][]float32
	if err := json.Unmarshal(raw, &batch); err == nil && len(batch) > 0 {
		return normalize(meanPool(batch[0]))
	}
	return nil, errors.New("unexpected feature-extraction response shape")
}

func meanPool(tokens [][]float32) []float32 {
	if len(tokens) == 0 {
		return nil
	}
	dim := len(tokens[0])
	out := make([]float32, dim)
	for _, tok := range tokens {
		for i := 0; i < dim && i < len(tok); i++ {
			out[i] += tok[i]
		}
	}
	for i := range out {
		out[i] /= float32(len(tokens))
	}
	return out
}

func normalize(vec []float32) ([]float32, error) {
	if len(vec) == 0 {
		return nil, errors.New("empty embedding")
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return nil, fmt.Errorf("zero embedding of dimension %d", len(vec))
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out, nil
}
