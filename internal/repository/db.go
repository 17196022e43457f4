package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pocketbase/dbx"

	_ "modernc.org/sqlite" // sqlite driver
)

// DB wraps the dbx handle used by the sqlite repositories.
type DB struct {
	*dbx.DB
}

// Open opens (creating if necessary) the sqlite database at path.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// sqlite allows a single writer; serialize access through one
	// connection instead of surfacing SQLITE_BUSY to callers.
	sqlDB.SetMaxOpenConns(1)

	db := dbx.NewFromDB(sqlDB, "sqlite")
	return &DB{DB: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL DEFAULT '',
	created       DATETIME NOT NULL,
	updated       DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES users(id),
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	archived    BOOLEAN NOT NULL DEFAULT FALSE,
	archived_at DATETIME,
	deleted_at  DATETIME,
	created     DATETIME NOT NULL,
	updated     DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	id      TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	name    TEXT NOT NULL,
	color   TEXT NOT NULL DEFAULT '',
	created DATETIME NOT NULL,
	updated DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL REFERENCES users(id),
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'pending',
	priority        INTEGER NOT NULL DEFAULT 3,
	due_date        DATETIME,
	due_time        TEXT,
	position        INTEGER NOT NULL DEFAULT 0,
	project_id      TEXT,
	tag_ids         TEXT NOT NULL DEFAULT '[]',
	completed_at    DATETIME,
	is_recurring    BOOLEAN NOT NULL DEFAULT FALSE,
	recurrence_rule TEXT NOT NULL DEFAULT '',
	recurrence_type TEXT NOT NULL DEFAULT '',
	recurrence_end  DATETIME,
	origin_task_id  TEXT,
	created         DATETIME NOT NULL,
	updated         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id);
CREATE INDEX IF NOT EXISTS idx_tags_user ON tags(user_id);
`

// Migrate creates the database schema if it does not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.NewQuery(schema).WithContext(ctx).Execute(); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.DB.DB().PingContext(ctx)
}

type txKey struct{}

// builderFrom returns the transaction bound to ctx, or the base handle
// when no transaction is in flight.
func (d *DB) builderFrom(ctx context.Context) dbx.Builder {
	if tx, ok := ctx.Value(txKey{}).(*dbx.Tx); ok {
		return tx
	}
	return d.DB
}

type sqliteTransactionManager struct {
	db *DB
}

// NewTransactionManager creates a TransactionManager backed by the
// sqlite database.
func NewTransactionManager(db *DB) TransactionManager {
	return &sqliteTransactionManager{db: db}
}

// RunInTransaction executes fn inside one sqlite transaction. The
// transaction handle is carried in the context so repository calls made
// by fn join it.
func (m *sqliteTransactionManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.TransactionalContext(ctx, nil, func(tx *dbx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
