package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/rifatsekerariot/ariowan/internal/config"
)

// PostgresStore implements Store interface for PostgreSQL
type PostgresStore struct {
	db  *sql.DB
	tx  *sql.Tx
	cfg *config.DatabaseConfig
}

// NewPostgresStore creates a new PostgreSQL store with a bounded
// connection pool.
func NewPostgresStore(cfg *config.DatabaseConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime.Std())

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db, cfg: cfg}, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// BeginTx starts a new transaction
func (s *PostgresStore) BeginTx(ctx context.Context) (Store, error) {
	return s.beginTx(ctx)
}

func (s *PostgresStore) beginTx(ctx context.Context) (*PostgresStore, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: s.db, tx: tx, cfg: s.cfg}, nil
}

// Commit commits the transaction
func (s *PostgresStore) Commit() error {
	if s.tx == nil {
		return nil
	}
	return s.tx.Commit()
}

// Rollback rolls back the transaction
func (s *PostgresStore) Rollback() error {
	if s.tx == nil {
		return nil
	}
	return s.tx.Rollback()
}

// getDB returns tx if in transaction, otherwise db
func (s *PostgresStore) getDB() interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
} {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// stmtCtx bounds a single statement with the configured timeout.
func (s *PostgresStore) stmtCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := 30 * time.Second
	if s.cfg != nil && s.cfg.StatementTimeout > 0 {
		timeout = s.cfg.StatementTimeout.Std()
	}
	return context.WithTimeout(ctx, timeout)
}

// logSlow logs statements that exceeded the slow-query threshold.
func (s *PostgresStore) logSlow(name string, started time.Time) {
	if s.cfg == nil || s.cfg.SlowQueryThreshold <= 0 {
		return
	}
	if elapsed := time.Since(started); elapsed > s.cfg.SlowQueryThreshold.Std() {
		log.Warn().
			Str("query", name).
			Dur("elapsed", elapsed).
			Msg("Slow query")
	}
}
