package knowledge

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteBackend persists the knowledge document in a single-row SQLite table.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path, configures WAL mode
// and creates the document table.
func NewSQLite(dsn string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	b := &SQLiteBackend{db: db}
	if err := b.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS knowledge_doc (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	doc        TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (b *SQLiteBackend) migrate(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (b *SQLiteBackend) Load(ctx context.Context) ([]byte, error) {
	var doc string
	err := b.db.QueryRowContext(ctx,
		`SELECT doc FROM knowledge_doc WHERE id = 1`,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load document")
	}
	return []byte(doc), nil
}

func (b *SQLiteBackend) Store(ctx context.Context, doc []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO knowledge_doc (id, doc, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		string(doc), time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: store document")
}

func (b *SQLiteBackend) Reset(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM knowledge_doc WHERE id = 1`)
	return eris.Wrap(err, "sqlite: reset document")
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
