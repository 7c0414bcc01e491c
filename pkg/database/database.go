package database

import (
	"context"
	"database/sql"
	"fmt"

	"proctor-service/config"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Client struct {
	db     *sql.DB
	config *config.DBConfig
}

// NewClient opens postgres or an embedded sqlite file, depending on cfg.Driver.
func NewClient(cfg *config.DBConfig) (*Client, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// One writer at a time; sqlite locks the whole file anyway.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{
		db:     db,
		config: cfg,
	}, nil
}

func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *Client) GetDB() *sql.DB {
	return c.db
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// The DDL sticks to types both drivers accept.
var schema = []struct {
	name string
	ddl  string
}{
	{"progress_records", `
		CREATE TABLE IF NOT EXISTS progress_records (
			user_id VARCHAR(255) PRIMARY KEY,
			games_completed INTEGER NOT NULL DEFAULT 0,
			total_score INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{"proctor_sessions", `
		CREATE TABLE IF NOT EXISTS proctor_sessions (
			id VARCHAR(255) PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			game_id VARCHAR(255) NOT NULL,
			outcome VARCHAR(50) NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT '',
			camera_status VARCHAR(50) NOT NULL,
			violation_count INTEGER NOT NULL DEFAULT 0,
			violations TEXT NOT NULL DEFAULT '[]',
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP
		)`},
	{"idx_proctor_sessions_user_id", `CREATE INDEX IF NOT EXISTS idx_proctor_sessions_user_id ON proctor_sessions(user_id)`},
	{"idx_proctor_sessions_outcome", `CREATE INDEX IF NOT EXISTS idx_proctor_sessions_outcome ON proctor_sessions(outcome)`},
	{"idx_progress_records_total_score", `CREATE INDEX IF NOT EXISTS idx_progress_records_total_score ON progress_records(total_score)`},
}

func (c *Client) InitSchema(ctx context.Context) error {
	for _, s := range schema {
		if _, err := c.db.ExecContext(ctx, s.ddl); err != nil {
			return fmt.Errorf("failed to create %s: %w", s.name, err)
		}
	}
	return nil
}
