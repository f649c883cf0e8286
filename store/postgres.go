package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const schema = `
CREATE TABLE IF NOT EXISTS high_scores (
	id         TEXT PRIMARY KEY,
	score      INTEGER NOT NULL,
	updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
)`

// scoreID is the single row this store reads and writes.
const scoreID = "local"

// Postgres stores the high score in a high_scores table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres connects, pings and creates the table if needed.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Load(ctx context.Context) (int, error) {
	var score int
	err := p.db.QueryRowContext(ctx, `SELECT score FROM high_scores WHERE id = $1`, scoreID).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load high score: %w", err)
	}
	return score, nil
}

func (p *Postgres) Save(ctx context.Context, score int) error {
	_, err := p.db.ExecContext(ctx, `
	INSERT INTO high_scores (id, score) VALUES ($1, $2)
	ON CONFLICT (id)
	DO UPDATE SET score = GREATEST(high_scores.score, EXCLUDED.score), updated_at = NOW()
	`, scoreID, score)
	if err != nil {
		return fmt.Errorf("failed to save high score: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
