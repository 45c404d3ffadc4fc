package store

import (
	"context"
	"errors"
	"fmt"

	"stockcaster/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore keeps one artifact row per ticker. The upsert replaces the
// blob in a single statement, so readers never see a partial artifact.
type PostgresStore struct {
	pool pgPool
}

func NewPostgresStore(pool pgPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the artifact table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS model_artifacts (
    ticker      TEXT PRIMARY KEY,
    artifact    BYTEA NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`)
	if err != nil {
		return fmt.Errorf("ensure model_artifacts table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, ticker string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM model_artifacts WHERE ticker = $1)`,
		domain.NormalizeTicker(ticker),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check artifact: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Load(ctx context.Context, ticker string) ([]byte, error) {
	var blob []byte
	err := s.pool.QueryRow(ctx,
		`SELECT artifact FROM model_artifacts WHERE ticker = $1`,
		domain.NormalizeTicker(ticker),
	).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load artifact: %w", err)
	}
	return blob, nil
}

func (s *PostgresStore) Save(ctx context.Context, ticker string, artifact []byte) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO model_artifacts (ticker, artifact, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (ticker) DO UPDATE SET artifact = EXCLUDED.artifact, updated_at = NOW()`,
		domain.NormalizeTicker(ticker), artifact)
	if err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT ticker FROM model_artifacts ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}
