package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/agentdesk/internal/upstream"
)

type fakeGenerator struct {
	resp  *genai.GenerateContentResponse
	err   error
	parts []genai.Part
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, f.err
}

type fakeContentEmbedder struct {
	resp *genai.EmbedContentResponse
	err  error
}

func (f *fakeContentEmbedder) EmbedContent(_ context.Context, _ ...genai.Part) (*genai.EmbedContentResponse, error) {
	return f.resp, f.err
}

func textResponse(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestGeminiExtractor_Extract(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(genai.Text("Plans start "), genai.Text("at $10.\n"))}
	e := &GeminiExtractor{model: gen}

	got, err := e.Extract(context.Background(), "How much?", "Plans start at $10.")
	require.NoError(t, err)
	assert.Equal(t, "Plans start at $10.", got)

	require.Len(t, gen.parts, 1)
	prompt := string(gen.parts[0].(genai.Text))
	assert.Contains(t, prompt, "User's Question:\n\"\"\"How much?\"\"\"")
	assert.Contains(t, prompt, "Knowledge Base Content:\n\"\"\"Plans start at $10.\"\"\"")
}

func TestGeminiExtractor_Error(t *testing.T) {
	e := &GeminiExtractor{model: &fakeGenerator{err: errors.New("quota exceeded")}}

	_, err := e.Extract(context.Background(), "q", "k")
	var upErr *upstream.Error
	require.True(t, errors.As(err, &upErr))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestResponseText_Empty(t *testing.T) {
	assert.Empty(t, responseText(nil))
	assert.Empty(t, responseText(&genai.GenerateContentResponse{}))
	assert.Empty(t, responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
}

func TestGeminiEmbedder_Embed(t *testing.T) {
	e := &GeminiEmbedder{model: &fakeContentEmbedder{resp: &genai.EmbedContentResponse{
		Embedding: &genai.ContentEmbedding{Values: []float32{0.1, 0.2}},
	}}}
	got, err := e.Embed(context.Background(), "pricing")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, got)

	e = &GeminiEmbedder{model: &fakeContentEmbedder{resp: &genai.EmbedContentResponse{}}}
	_, err = e.Embed(context.Background(), "pricing")
	assert.Error(t, err)
}
