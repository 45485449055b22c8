package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/upstream"
	"github.com/teemow/agentdesk/internal/validation"
)

// Gemini model settings.
const (
	DefaultGeminiModel          = "gemini-2.0-flash-001"
	DefaultGeminiEmbeddingModel = "text-embedding-004"

	extractTemperature = 0.3
	extractMaxTokens   = 1500
)

const extractSystemPrompt = `You are a content extraction assistant for vendor-related queries. Provide detailed and comprehensive information that directly pertains to the user's question.
- Include all relevant details without introducing unnecessary verbosity.`

// NewGeminiClient opens a Gemini API client. The caller closes it.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, &validation.ValidationError{Field: "GOOGLE_AI_API_KEY", Reason: "is required"}
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type contentEmbedder interface {
	EmbedContent(ctx context.Context, parts ...genai.Part) (*genai.EmbedContentResponse, error)
}

// GeminiExtractor implements Extractor with a Gemini text model.
type GeminiExtractor struct {
	model   contentGenerator
	metrics *instrumentation.Metrics
}

// NewGeminiExtractor configures model on client. An empty model name
// means DefaultGeminiModel.
func NewGeminiExtractor(client *genai.Client, model string, metrics *instrumentation.Metrics) *GeminiExtractor {
	if model == "" {
		model = DefaultGeminiModel
	}
	m := client.GenerativeModel(model)
	m.SystemInstruction = genai.NewUserContent(genai.Text(extractSystemPrompt))
	m.SetTemperature(extractTemperature)
	m.SetMaxOutputTokens(extractMaxTokens)
	return &GeminiExtractor{model: m, metrics: metrics}
}

// Extract implements Extractor.
func (e *GeminiExtractor) Extract(ctx context.Context, question, knowledge string) (text string, err error) {
	ctx, done := observe(ctx, e.metrics, instrumentation.ServiceGemini, instrumentation.OperationExtract)
	defer func() { done(err) }()

	resp, err := e.model.GenerateContent(ctx, genai.Text(extractPrompt(question, knowledge)))
	if err != nil {
		return "", &upstream.Error{Service: instrumentation.ServiceGemini, Op: instrumentation.OperationExtract, Err: err}
	}
	return responseText(resp), nil
}

func extractPrompt(question, knowledge string) string {
	return fmt.Sprintf(`User's Question:
"""%s"""

Knowledge Base Content:
"""%s"""

Please extract and return only the relevant and detailed information from the provided knowledge base that's pertinent to the user's question.`, question, knowledge)
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

// GeminiEmbedder implements Embedder with a Gemini embedding model.
type GeminiEmbedder struct {
	model   contentEmbedder
	metrics *instrumentation.Metrics
}

// NewGeminiEmbedder returns an embedder for model. An empty model name
// means DefaultGeminiEmbeddingModel.
func NewGeminiEmbedder(client *genai.Client, model string, metrics *instrumentation.Metrics) *GeminiEmbedder {
	if model == "" {
		model = DefaultGeminiEmbeddingModel
	}
	return &GeminiEmbedder{model: client.EmbeddingModel(model), metrics: metrics}
}

// Embed implements Embedder.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) (vec []float32, err error) {
	text, err = validation.Required("text", text)
	if err != nil {
		return nil, err
	}
	ctx, done := observe(ctx, e.metrics, instrumentation.ServiceGemini, instrumentation.OperationEmbed)
	defer func() { done(err) }()

	resp, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, &upstream.Error{Service: instrumentation.ServiceGemini, Op: instrumentation.OperationEmbed, Err: err}
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, &upstream.Error{Service: instrumentation.ServiceGemini, Op: instrumentation.OperationEmbed,
			Message: "empty embedding"}
	}
	return resp.Embedding.Values, nil
}

// observe opens a client span and returns a func recording its outcome.
func observe(ctx context.Context, metrics *instrumentation.Metrics, service, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := instrumentation.StartUpstreamSpan(ctx, service, op)
	return ctx, func(err error) {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		span.End()
		metrics.RecordUpstreamOperation(ctx, service, op, status, time.Since(start))
	}
}
