package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/agentdesk/internal/upstream"
)

func TestSupabaseSearcher_Match(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/rpc/match_documents_by_vendor_name", r.URL.Path)
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`[{"id":5,"content":"Acme ships worldwide.","metadata":{"source":"https://acme.com/shipping","title":"Shipping"},"similarity":0.88}]`))
	}))
	defer srv.Close()

	s := NewSupabaseSearcher(srv.URL, "service-key", upstream.Config{})
	docs, err := s.Match(context.Background(), MatchQuery{Embedding: []float32{0.5, 0.25}, Threshold: 0.83, Count: 8, Vendor: "Acme"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, Document{
		ID:         5,
		Content:    "Acme ships worldwide.",
		Metadata:   Metadata{Source: "https://acme.com/shipping", Title: "Shipping"},
		Similarity: 0.88,
	}, docs[0])

	assert.Equal(t, []any{0.5, 0.25}, body["query_embedding"])
	assert.Equal(t, 0.83, body["match_threshold"])
	assert.Equal(t, float64(8), body["match_count"])
	assert.Equal(t, "Acme", body["vendor_name_param"])
}

func TestVectorLiteral(t *testing.T) {
	assert.Equal(t, "[0.5,-0.25,1]", vectorLiteral([]float32{0.5, -0.25, 1}))
	assert.Equal(t, "[]", vectorLiteral(nil))
}
