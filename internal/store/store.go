package store

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"seller-insight/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// MaxListLimit caps ListRecentRuns.
const MaxListLimit = 100

// Store keeps insight run summaries in Postgres
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection for readiness checks
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the insight_runs table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// RecordRun inserts one insight run summary
func (s *Store) RecordRun(ctx context.Context, run *models.InsightRun) error {
	query := `
		INSERT INTO insight_runs (id, kind, subject, result_count, score, created_at)
		VALUES (:id, :kind, :subject, :result_count, :score, :created_at)`

	if _, err := s.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("failed to record insight run: %w", err)
	}
	return nil
}

// ListRecentRuns returns the newest runs first. limit is clamped to
// [1, MaxListLimit].
func (s *Store) ListRecentRuns(ctx context.Context, limit int) ([]models.InsightRun, error) {
	runs := []models.InsightRun{}
	err := s.db.SelectContext(ctx, &runs,
		"SELECT id, kind, subject, result_count, score, created_at FROM insight_runs ORDER BY created_at DESC LIMIT $1",
		ClampLimit(limit))
	return runs, err
}

// ClampLimit bounds a requested page size.
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
