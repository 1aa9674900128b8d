package triplestore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/maproute/api/schemas"
)

// DBPool abstracts the pgxpool.Pool methods the store needs, so tests can
// substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

var _ DBPool = (*pgxpool.Pool)(nil)

// PostgresStore is a persistent triple store backed by PostgreSQL, for
// resolving against a shared relation database instead of a local document.
type PostgresStore struct {
	pool DBPool
	log  *zap.Logger
}

var _ schemas.TripleSource = (*PostgresStore)(nil)

// NewPostgresStore verifies the connection and returns the store.
func NewPostgresStore(ctx context.Context, pool DBPool, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool, log: logger.Named("PostgresStore")}, nil
}

// EnsureSchema creates the triples table if it does not exist. The seq column
// preserves assertion order, which SubjectObjects relies on.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS triples (
			id        UUID PRIMARY KEY,
			subject   TEXT NOT NULL,
			predicate TEXT NOT NULL,
			object    TEXT NOT NULL,
			seq       BIGSERIAL
		);
		CREATE INDEX IF NOT EXISTS triples_predicate_idx ON triples (predicate, seq);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure triples schema: %w", err)
	}
	return nil
}

// Add asserts a triple and returns its generated id.
func (s *PostgresStore) Add(ctx context.Context, t schemas.Triple) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO triples (id, subject, predicate, object)
		VALUES ($1, $2, $3, $4);
	`, id, t.Subject, t.Predicate, t.Object)
	if err != nil {
		return "", fmt.Errorf("failed to insert triple: %w", err)
	}
	return id, nil
}

// AddAll bulk-asserts triples via COPY.
func (s *PostgresStore) AddAll(ctx context.Context, triples []schemas.Triple) error {
	rows := make([][]any, len(triples))
	for i, t := range triples {
		rows[i] = []any{uuid.NewString(), t.Subject, t.Predicate, t.Object}
	}

	count, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"triples"},
		[]string{"id", "subject", "predicate", "object"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy triples: %w", err)
	}
	if int(count) != len(triples) {
		return fmt.Errorf("mismatch in copied triples count: expected %d, got %d", len(triples), count)
	}
	return nil
}

// SubjectObjects returns the (subject, object) pairs asserted under the
// predicate, in assertion order.
func (s *PostgresStore) SubjectObjects(ctx context.Context, predicate string) ([]schemas.Pair, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT subject, object FROM triples
		WHERE predicate = $1
		ORDER BY seq ASC;
	`, predicate)
	if err != nil {
		return nil, fmt.Errorf("failed to query triples: %w", err)
	}
	defer rows.Close()

	var pairs []schemas.Pair
	for rows.Next() {
		var p schemas.Pair
		if err := rows.Scan(&p.Subject, &p.Object); err != nil {
			return nil, fmt.Errorf("failed to scan triple row: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return pairs, nil
}
