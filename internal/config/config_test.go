package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "UPSTREAM_TIMEOUT", "UPSTREAM_RATE_LIMIT", "UPSTREAM_RATE_BURST", "KNOWLEDGE_EMBEDDER", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, float64(0), cfg.Upstream.RateLimit)
	assert.Equal(t, 1, cfg.Upstream.Burst)
	assert.Equal(t, EmbedderHuggingFace, cfg.Knowledge.Embedder)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("CAL_API_KEY", "cal_live_x")
	t.Setenv("CAL_BASE_URL", "http://cal.local")
	t.Setenv("TELEPERSON_API_KEY", "tp")
	t.Setenv("TELEPERSON_USERNAME", "svc@teleperson.com")
	t.Setenv("JINA_API_KEY", "jina")
	t.Setenv("KNOWLEDGE_DATABASE_URL", "postgres://kb")
	t.Setenv("KNOWLEDGE_EMBEDDER", "Gemini")
	t.Setenv("GOOGLE_AI_API_KEY", "g")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	t.Setenv("UPSTREAM_RATE_LIMIT", "2.5")
	t.Setenv("UPSTREAM_RATE_BURST", "4")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, CalConfig{APIKey: "cal_live_x", BaseURL: "http://cal.local"}, cfg.Cal)
	assert.Equal(t, "svc@teleperson.com", cfg.Teleperson.Username)
	assert.Equal(t, "jina", cfg.Reader.APIKey)
	assert.Equal(t, EmbedderGemini, cfg.Knowledge.Embedder)
	assert.Equal(t, UpstreamConfig{Timeout: 5 * time.Second, RateLimit: 2.5, Burst: 4}, cfg.Upstream)
	assert.Equal(t, "json", cfg.Log.Format)

	require.NoError(t, cfg.Cal.Validate())
	require.NoError(t, cfg.Knowledge.Validate())

	base := cfg.UpstreamBase(nil, nil)
	assert.Equal(t, 5*time.Second, base.Timeout)
	assert.Equal(t, 2.5, base.RateLimit)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	for _, v := range []string{"soon", "0s", "-1s"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("UPSTREAM_TIMEOUT", v)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.Error(t, CalConfig{}.Validate())
	assert.Error(t, TelepersonConfig{}.Validate())
	assert.NoError(t, ReaderConfig{}.Validate())

	tests := []struct {
		name    string
		cfg     KnowledgeConfig
		wantErr string
	}{
		{name: "supabase", cfg: KnowledgeConfig{SupabaseURL: "https://x.supabase.co", SupabaseKey: "k", Embedder: EmbedderHuggingFace}},
		{name: "postgres", cfg: KnowledgeConfig{DatabaseURL: "postgres://kb", Embedder: EmbedderHuggingFace}},
		{name: "no searcher", cfg: KnowledgeConfig{SupabaseURL: "https://x.supabase.co", Embedder: EmbedderHuggingFace}, wantErr: "SUPABASE_SERVICE_ROLE_KEY"},
		{name: "gemini without key", cfg: KnowledgeConfig{DatabaseURL: "postgres://kb", Embedder: EmbedderGemini}, wantErr: "GOOGLE_AI_API_KEY"},
		{name: "unknown embedder", cfg: KnowledgeConfig{DatabaseURL: "postgres://kb", Embedder: "openai"}, wantErr: "KNOWLEDGE_EMBEDDER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
