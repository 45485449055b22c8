package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/agentdesk/internal/cal"
	"github.com/teemow/agentdesk/internal/config"
	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/knowledge"
	"github.com/teemow/agentdesk/internal/teleperson"
	"github.com/teemow/agentdesk/internal/upstream"
	"github.com/teemow/agentdesk/internal/website"
)

// ReadinessCheck reports whether a dependency can serve requests.
type ReadinessCheck func(ctx context.Context) error

// ServerContext holds the upstream clients and instrumentation shared by
// all tool handlers.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	calClient          *cal.Client
	telepersonClient   *teleperson.Client
	telepersonUsername string
	reader             *website.Reader
	knowledge          *knowledge.Service
	eventTypeID        int64
	toolsets           []Toolset

	checks  map[string]ReadinessCheck
	closers []func() error

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a server context whose Context is cancelled by
// Shutdown. A nil logger means slog.Default().
func NewServerContext(ctx context.Context, logger *slog.Logger) *ServerContext {
	if logger == nil {
		logger = slog.Default()
	}
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		logger:      logger,
		eventTypeID: cal.EventTypeDiscovery,
		checks:      make(map[string]ReadinessCheck),
	}
}

// Connect builds the clients the enabled toolsets need from cfg. Metrics
// set before Connect are passed to every client.
func (sc *ServerContext) Connect(ctx context.Context, cfg *config.Config, toolsets []Toolset) error {
	base := cfg.UpstreamBase(sc.Metrics(), sc.logger)

	for _, ts := range toolsets {
		switch ts {
		case ToolsetBooking:
			if err := cfg.Cal.Validate(); err != nil {
				return err
			}
			calBase := base
			calBase.BaseURL = cfg.Cal.BaseURL
			sc.SetCalClient(cal.NewClient(cfg.Cal.APIKey, calBase))

		case ToolsetVendor:
			if err := cfg.Teleperson.Validate(); err != nil {
				return err
			}
			tpBase := base
			tpBase.BaseURL = cfg.Teleperson.BaseURL
			sc.SetTelepersonClient(teleperson.NewClient(cfg.Teleperson.APIKey, tpBase), cfg.Teleperson.Username)

		case ToolsetWebsite:
			readerBase := base
			readerBase.BaseURL = cfg.Reader.BaseURL
			sc.SetReader(website.NewReader(cfg.Reader.APIKey, readerBase))

		case ToolsetKnowledge:
			svc, err := sc.connectKnowledge(ctx, cfg, base)
			if err != nil {
				return err
			}
			sc.SetKnowledge(svc)
		}
	}

	sc.mu.Lock()
	sc.toolsets = append([]Toolset(nil), toolsets...)
	sc.mu.Unlock()
	return nil
}

func (sc *ServerContext) connectKnowledge(ctx context.Context, cfg *config.Config, base upstream.Config) (*knowledge.Service, error) {
	kc := cfg.Knowledge
	if err := kc.Validate(); err != nil {
		return nil, err
	}

	var searcher knowledge.Searcher
	if kc.DatabaseURL != "" {
		db, err := knowledge.OpenPostgres(ctx, kc.DatabaseURL)
		if err != nil {
			return nil, err
		}
		sc.addCloser(db.Close)
		pg := knowledge.NewPostgresSearcher(db, sc.Metrics())
		sc.AddReadinessCheck("knowledge_database", pg.Ping)
		searcher = pg
	} else {
		searcher = knowledge.NewSupabaseSearcher(kc.SupabaseURL, kc.SupabaseKey, base)
	}

	var extractor knowledge.Extractor
	var embedder knowledge.Embedder
	if kc.GoogleAIAPIKey != "" {
		client, err := knowledge.NewGeminiClient(ctx, kc.GoogleAIAPIKey)
		if err != nil {
			return nil, err
		}
		sc.addCloser(client.Close)
		extractor = knowledge.NewGeminiExtractor(client, "", sc.Metrics())
		if kc.Embedder == config.EmbedderGemini {
			embedder = knowledge.NewGeminiEmbedder(client, "", sc.Metrics())
		}
	} else {
		sc.logger.Warn("GOOGLE_AI_API_KEY not set, knowledge answers will not be extracted")
	}
	if embedder == nil {
		embedder = knowledge.NewHuggingFaceEmbedder(kc.HuggingFaceAPIKey, "", base)
	}

	return knowledge.NewService(knowledge.Config{
		Embedder:  embedder,
		Searcher:  searcher,
		Extractor: extractor,
		Metrics:   sc.Metrics(),
		Logger:    sc.logger,
	}), nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// CalClient returns the Cal.com client, or nil when booking is disabled.
func (sc *ServerContext) CalClient() *cal.Client {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.calClient
}

// SetCalClient sets the Cal.com client.
func (sc *ServerContext) SetCalClient(c *cal.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calClient = c
}

// TelepersonClient returns the CRM client, or nil when vendor tools are
// disabled.
func (sc *ServerContext) TelepersonClient() *teleperson.Client {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.telepersonClient
}

// TelepersonUsername is the account single-vendor lookups log in as.
func (sc *ServerContext) TelepersonUsername() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.telepersonUsername
}

// SetTelepersonClient sets the CRM client and its service username.
func (sc *ServerContext) SetTelepersonClient(c *teleperson.Client, username string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.telepersonClient = c
	sc.telepersonUsername = username
}

// Reader returns the website reader.
func (sc *ServerContext) Reader() *website.Reader {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.reader
}

// SetReader sets the website reader.
func (sc *ServerContext) SetReader(r *website.Reader) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.reader = r
}

// Knowledge returns the knowledge service.
func (sc *ServerContext) Knowledge() *knowledge.Service {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.knowledge
}

// SetKnowledge sets the knowledge service.
func (sc *ServerContext) SetKnowledge(k *knowledge.Service) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.knowledge = k
}

// EventTypeID is the event type bookings are created for.
func (sc *ServerContext) EventTypeID() int64 {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.eventTypeID
}

// SetEventTypeID sets the event type bookings are created for.
func (sc *ServerContext) SetEventTypeID(id int64) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.eventTypeID = id
}

// Toolsets returns the toolsets passed to Connect.
func (sc *ServerContext) Toolsets() []Toolset {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return append([]Toolset(nil), sc.toolsets...)
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger.
func (sc *ServerContext) SetAuditLogger(a *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = a
}

// AddReadinessCheck registers a check run by the readiness endpoint.
func (sc *ServerContext) AddReadinessCheck(name string, check ReadinessCheck) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.checks[name] = check
}

// ReadinessChecks returns a copy of the registered checks.
func (sc *ServerContext) ReadinessChecks() map[string]ReadinessCheck {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	out := make(map[string]ReadinessCheck, len(sc.checks))
	for k, v := range sc.checks {
		out[k] = v
	}
	return out
}

func (sc *ServerContext) addCloser(fn func() error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.closers = append(sc.closers, fn)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the context and releases database and model clients.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()

	var errs []error
	for i := len(sc.closers) - 1; i >= 0; i-- {
		if err := sc.closers[i](); err != nil {
			errs = append(errs, fmt.Errorf("close: %w", err))
		}
	}
	sc.closers = nil
	return errors.Join(errs...)
}
