package knowledge

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// pgPool is the subset of pgxpool.Pool the backend uses; pgxmock satisfies it
// in tests.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresBackend persists the knowledge document in a single-row Postgres
// table, for deployments where the tool runs against shared infrastructure.
type PostgresBackend struct {
	pool pgPool
}

// NewPostgres creates a PostgresBackend with a connection pool and ensures
// the document table exists.
func NewPostgres(ctx context.Context, connString string) (*PostgresBackend, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}

	b := &PostgresBackend{pool: pool}
	if err := b.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS knowledge_doc (
	id         INT PRIMARY KEY CHECK (id = 1),
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func (b *PostgresBackend) migrate(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (b *PostgresBackend) Load(ctx context.Context) ([]byte, error) {
	var doc []byte
	err := b.pool.QueryRow(ctx,
		`SELECT doc FROM knowledge_doc WHERE id = 1`,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load document")
	}
	return doc, nil
}

func (b *PostgresBackend) Store(ctx context.Context, doc []byte) error {
	_, err := b.pool.Exec(ctx,
		`INSERT INTO knowledge_doc (id, doc, updated_at) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`,
		doc, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: store document")
}

func (b *PostgresBackend) Reset(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, `DELETE FROM knowledge_doc WHERE id = 1`)
	return eris.Wrap(err, "postgres: reset document")
}

func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
