package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

type Storage struct {
	Connection *sql.DB
}

func NewSQLiteStorage(path string) (*Storage, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &Storage{Connection: conn}, nil
}

// Init creates the relay journal.
func (that *Storage) Init(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS exchanges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		kind TEXT NOT NULL,
		sender TEXT NOT NULL,
		action TEXT NOT NULL,
		method TEXT NOT NULL DEFAULT '',
		original TEXT NOT NULL,
		delivered TEXT NOT NULL,
		modified INTEGER NOT NULL,
		created_at TEXT NOT NULL
	)`

	if _, err := that.Connection.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("can't create table: %w", err)
	}

	index := `CREATE INDEX IF NOT EXISTS exchanges_game ON exchanges (game_id, round)`
	if _, err := that.Connection.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("can't create index: %w", err)
	}

	return nil
}

func (that *Storage) Close() error {
	return that.Connection.Close()
}
