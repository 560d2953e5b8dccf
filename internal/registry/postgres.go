package registry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const createTable = `
CREATE TABLE IF NOT EXISTS available_offline (
	file_id  TEXT PRIMARY KEY,
	added_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres is a Registry shared through a PostgreSQL table.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects to databaseURL and creates the table if needed.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create available_offline table: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Has reports whether fileID is available offline.
func (p *Postgres) Has(ctx context.Context, fileID string) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM available_offline WHERE file_id = $1)`, fileID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query available_offline: %w", err)
	}
	return exists, nil
}

// Add marks fileID available offline.
func (p *Postgres) Add(ctx context.Context, fileID string) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO available_offline (file_id) VALUES ($1) ON CONFLICT (file_id) DO NOTHING`, fileID)
	if err != nil {
		return fmt.Errorf("insert available_offline: %w", err)
	}
	return nil
}

// Remove unmarks fileID.
func (p *Postgres) Remove(ctx context.Context, fileID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM available_offline WHERE file_id = $1`, fileID)
	if err != nil {
		return fmt.Errorf("delete available_offline: %w", err)
	}
	return nil
}

// List returns all entries ordered by the time they were added.
func (p *Postgres) List(ctx context.Context) ([]Entry, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT file_id, added_at FROM available_offline ORDER BY added_at, file_id`)
	if err != nil {
		return nil, fmt.Errorf("list available_offline: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.FileID, &e.AddedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (p *Postgres) Close() error {
	return p.db.Close()
}
