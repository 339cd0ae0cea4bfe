package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// InitDatabase opens the pool and makes sure the gateway's own tables
// exist. The CRM data itself lives upstream; the gateway only persists
// sessions.
func InitDatabase(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	conn, err := pgxpool.ConnectConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	sqlQueries := []string{
		`CREATE TABLE IF NOT EXISTS gateway_sessions (
			session_id uuid PRIMARY KEY,
			upstream_token TEXT NOT NULL,
			email VARCHAR(255) NOT NULL,
			user_id VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
	}

	for _, query := range sqlQueries {
		_, err = conn.Exec(ctx, query)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create table: %v", err)
		}
	}

	return conn, nil
}
