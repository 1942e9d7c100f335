package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"mediagrab/internal/domain"
)

// PostgresStore keeps a write-only audit trail of extraction attempts plus
// the read path behind /api/history.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// SaveExtraction records one extraction attempt.
func (s *PostgresStore) SaveExtraction(ctx context.Context, rec *domain.ExtractionRecord) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO extractions (url, status, kind, source_count, fail_reason, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.URL, rec.Status, rec.Kind, rec.SourceCount, rec.FailReason, rec.DurationMS, rec.CreatedAt,
	)
	return err
}

// RecentExtractions returns the newest records, newest first.
func (s *PostgresStore) RecentExtractions(ctx context.Context, limit int) ([]domain.ExtractionRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT url, status, kind, source_count, fail_reason, duration_ms, created_at
		 FROM extractions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ExtractionRecord
	for rows.Next() {
		var rec domain.ExtractionRecord
		if err := rows.Scan(&rec.URL, &rec.Status, &rec.Kind, &rec.SourceCount,
			&rec.FailReason, &rec.DurationMS, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
