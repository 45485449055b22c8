package knowledge

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/logging"
	"github.com/teemow/agentdesk/internal/validation"
)

const (
	// DefaultVendor is used when a question names no vendor.
	DefaultVendor = "Teleperson"

	DefaultThreshold = 0.83
	DefaultCount     = 8

	maxSources = 3
	maxMatches = 6
)

// Config wires a Service. Extractor may be nil.
type Config struct {
	Embedder  Embedder
	Searcher  Searcher
	Extractor Extractor
	Threshold float64
	Count     int
	Metrics   *instrumentation.Metrics
	Logger    *slog.Logger
}

// Service answers questions against the knowledge base.
type Service struct {
	embedder  Embedder
	searcher  Searcher
	extractor Extractor
	threshold float64
	count     int
	metrics   *instrumentation.Metrics
	logger    *slog.Logger
}

// NewService returns a Service with defaults applied.
func NewService(cfg Config) *Service {
	s := &Service{
		embedder:  cfg.Embedder,
		searcher:  cfg.Searcher,
		extractor: cfg.Extractor,
		threshold: cfg.Threshold,
		count:     cfg.Count,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
	if s.threshold <= 0 {
		s.threshold = DefaultThreshold
	}
	if s.count <= 0 {
		s.count = DefaultCount
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Answer embeds question, matches it against vendor's documents and, when
// anything matched and an extractor is configured, extracts a focused
// answer. An empty vendor means DefaultVendor.
func (s *Service) Answer(ctx context.Context, question, vendor string) (*Answer, error) {
	question, err := validation.Required("question", question)
	if err != nil {
		return nil, err
	}
	vendor = strings.TrimSpace(vendor)
	if vendor == "" {
		vendor = DefaultVendor
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(instrumentation.SpanAttrVendor, vendor))

	embedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	docs, err := s.searcher.Match(ctx, MatchQuery{
		Embedding: embedding,
		Threshold: s.threshold,
		Count:     s.count,
		Vendor:    vendor,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordKnowledgeMatches(ctx, vendor, len(docs))

	answer := &Answer{
		Question:  question,
		Vendor:    vendor,
		Knowledge: joinContent(docs),
		Sources:   Sources(docs),
		Matches:   TopMatches(docs),
	}
	if !answer.Found() || s.extractor == nil {
		return answer, nil
	}

	verified, err := s.extractor.Extract(ctx, question, answer.Knowledge)
	if err != nil {
		return nil, err
	}
	answer.Verified = verified

	s.logger.DebugContext(ctx, "knowledge answered",
		logging.Vendor(vendor),
		slog.Int("documents", len(docs)),
		slog.Int("sources", len(answer.Sources)))
	return answer, nil
}

func joinContent(docs []Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Content)
	}
	return strings.Join(parts, "\n\n")
}

// Dedupe keeps one document per metadata source, the one with the highest
// similarity, and sorts the result by similarity descending. Documents
// without a source are dropped.
func Dedupe(docs []Document) []Document {
	best := make(map[string]int, len(docs))
	var out []Document
	for _, d := range docs {
		if d.Metadata.Source == "" {
			continue
		}
		i, ok := best[d.Metadata.Source]
		if !ok {
			best[d.Metadata.Source] = len(out)
			out = append(out, d)
			continue
		}
		if d.Similarity > out[i].Similarity {
			out[i] = d
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	return out
}

// Sources cites the best three distinct pages. A missing title falls back
// to the URL.
func Sources(docs []Document) []Source {
	unique := Dedupe(docs)
	if len(unique) > maxSources {
		unique = unique[:maxSources]
	}
	out := make([]Source, 0, len(unique))
	for _, d := range unique {
		title := d.Metadata.Title
		if title == "" {
			title = d.Metadata.Source
		}
		out = append(out, Source{URL: d.Metadata.Source, Title: title})
	}
	return out
}

// TopMatches lists the six most similar documents with similarity rounded
// to two decimals.
func TopMatches(docs []Document) []Match {
	out := make([]Match, 0, len(docs))
	for _, d := range docs {
		out = append(out, Match{DocumentID: d.ID, Similarity: math.Round(d.Similarity*100) / 100})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > maxMatches {
		out = out[:maxMatches]
	}
	return out
}
