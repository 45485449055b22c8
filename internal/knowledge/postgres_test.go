package knowledge

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/teemow/agentdesk/internal/upstream"
)

func newSearcherMock(t *testing.T) (*PostgresSearcher, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresSearcher(sqlx.NewDb(db, "sqlmock"), nil), mock, func() { db.Close() }
}

func TestPostgresSearcherMatch(t *testing.T) {
	searcher, mock, cleanup := newSearcherMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "content", "metadata", "similarity"}).
		AddRow(11, "Returns within 30 days.", []byte(`{"source":"https://acme.com/returns","title":"Returns"}`), 0.9).
		AddRow(12, "No metadata here.", nil, 0.85)
	mock.ExpectQuery(regexp.QuoteMeta("FROM match_documents_by_vendor_name($1::vector, $2, $3, $4)")).
		WithArgs("[0.1,0.2]", 0.83, 8, "Acme").
		WillReturnRows(rows)

	docs, err := searcher.Match(context.Background(), MatchQuery{
		Embedding: []float32{0.1, 0.2},
		Threshold: 0.83,
		Count:     8,
		Vendor:    "Acme",
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, int64(11), docs[0].ID)
	require.Equal(t, Metadata{Source: "https://acme.com/returns", Title: "Returns"}, docs[0].Metadata)
	require.Equal(t, Metadata{}, docs[1].Metadata)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSearcherMatchError(t *testing.T) {
	searcher, mock, cleanup := newSearcherMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("match_documents_by_vendor_name")).
		WillReturnError(errors.New("function does not exist"))

	_, err := searcher.Match(context.Background(), MatchQuery{Embedding: []float32{1}, Threshold: 0.83, Count: 8, Vendor: "Acme"})
	var upErr *upstream.Error
	require.True(t, errors.As(err, &upErr))
	require.Contains(t, err.Error(), "function does not exist")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSearcherBadMetadata(t *testing.T) {
	searcher, mock, cleanup := newSearcherMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "content", "metadata", "similarity"}).
		AddRow(13, "x", []byte(`"not an object"`), 0.9)
	mock.ExpectQuery(regexp.QuoteMeta("match_documents_by_vendor_name")).WillReturnRows(rows)

	_, err := searcher.Match(context.Background(), MatchQuery{Embedding: []float32{1}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "document 13 metadata")
}
