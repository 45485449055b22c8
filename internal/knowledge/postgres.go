package knowledge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	_ "github.com/lib/pq"

	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/upstream"
)

const matchDocumentsQuery = `SELECT id, content, metadata, similarity
	FROM match_documents_by_vendor_name($1::vector, $2, $3, $4)`

// OpenPostgres connects to the knowledge database.
func OpenPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open knowledge database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping knowledge database: %w", err)
	}
	return db, nil
}

// PostgresSearcher calls the match function directly over SQL.
type PostgresSearcher struct {
	db      *sqlx.DB
	metrics *instrumentation.Metrics
}

// NewPostgresSearcher returns a searcher on db.
func NewPostgresSearcher(db *sqlx.DB, metrics *instrumentation.Metrics) *PostgresSearcher {
	return &PostgresSearcher{db: db, metrics: metrics}
}

type documentRow struct {
	ID         int64          `db:"id"`
	Content    string         `db:"content"`
	Metadata   types.JSONText `db:"metadata"`
	Similarity float64        `db:"similarity"`
}

// Match implements Searcher.
func (s *PostgresSearcher) Match(ctx context.Context, q MatchQuery) (docs []Document, err error) {
	ctx, done := observe(ctx, s.metrics, instrumentation.ServicePostgres, instrumentation.OperationMatch)
	defer func() { done(err) }()

	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, matchDocumentsQuery,
		vectorLiteral(q.Embedding), q.Threshold, q.Count, q.Vendor); err != nil {
		return nil, &upstream.Error{Service: instrumentation.ServicePostgres, Op: instrumentation.OperationMatch, Err: err}
	}

	docs = make([]Document, 0, len(rows))
	for _, r := range rows {
		doc := Document{ID: r.ID, Content: r.Content, Similarity: r.Similarity}
		if len(r.Metadata) > 0 {
			if err := json.Unmarshal(r.Metadata, &doc.Metadata); err != nil {
				return nil, &upstream.Error{Service: instrumentation.ServicePostgres, Op: instrumentation.OperationMatch,
					Err: fmt.Errorf("document %d metadata: %w", r.ID, err)}
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Ping checks the database connection.
func (s *PostgresSearcher) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
