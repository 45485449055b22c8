package knowledge

import (
	"context"
	"strconv"
	"strings"

	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/upstream"
)

const matchFunction = "match_documents_by_vendor_name"

// SupabaseSearcher calls the match function through the PostgREST RPC
// endpoint of a Supabase project.
type SupabaseSearcher struct {
	api *upstream.Client
}

// NewSupabaseSearcher authenticates with the project's service-role key.
func NewSupabaseSearcher(projectURL, serviceKey string, base upstream.Config) *SupabaseSearcher {
	base.Service = instrumentation.ServiceSupabase
	base.BaseURL = projectURL
	base.Headers = map[string]string{
		"apikey":        serviceKey,
		"Authorization": "Bearer " + serviceKey,
	}
	return &SupabaseSearcher{api: upstream.New(base)}
}

// Match implements Searcher.
func (s *SupabaseSearcher) Match(ctx context.Context, q MatchQuery) ([]Document, error) {
	payload := map[string]any{
		"query_embedding":   q.Embedding,
		"match_threshold":   q.Threshold,
		"match_count":       q.Count,
		"vendor_name_param": q.Vendor,
	}
	var docs []Document
	if err := s.api.PostJSON(ctx, instrumentation.OperationMatch, "/rest/v1/rpc/"+matchFunction, payload, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// vectorLiteral renders v in pgvector's text form, e.g. [0.1,0.2].
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
