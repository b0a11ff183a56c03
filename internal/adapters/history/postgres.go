package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"tiktok-stats/internal/domain"
)

const (
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute
	DefaultPingTimeout     = 5 * time.Second
)

const insertRecordQuery = `
	INSERT INTO query_history
		(jina_api_key_identifier, tiktok_user_id, following_count, followers_count, likes_count, queried_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, jina_api_key_identifier, tiktok_user_id, following_count, followers_count, likes_count, queried_at`

const listRecordsQuery = `
	SELECT id, jina_api_key_identifier, tiktok_user_id, following_count, followers_count, likes_count, queried_at
	FROM query_history
	WHERE jina_api_key_identifier = $1
	ORDER BY queried_at DESC
	LIMIT $2`

// PostgresStore keeps query history in the query_history table.
type PostgresStore struct {
	db *sqlx.DB
}

// OpenPostgres connects to dsn, configures the pool and verifies the
// connection.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewPostgresStore(db), nil
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save inserts record and returns the stored row with its generated id.
func (s *PostgresStore) Save(ctx context.Context, record domain.HistoryRecord) (*domain.HistoryRecord, error) {
	if record.QueriedAt.IsZero() {
		record.QueriedAt = time.Now().UTC()
	}

	var saved domain.HistoryRecord
	err := s.db.QueryRowxContext(ctx, insertRecordQuery,
		record.KeyIdentifier,
		record.TargetID,
		record.FollowingCount,
		record.FollowersCount,
		record.LikesCount,
		record.QueriedAt,
	).StructScan(&saved)
	if err != nil {
		return nil, fmt.Errorf("insert query history: %w", err)
	}

	return &saved, nil
}

// List returns up to limit records for keyIdentifier, newest first.
func (s *PostgresStore) List(ctx context.Context, keyIdentifier string, limit int) ([]domain.HistoryRecord, error) {
	records := []domain.HistoryRecord{}
	if err := s.db.SelectContext(ctx, &records, listRecordsQuery, keyIdentifier, limit); err != nil {
		return nil, fmt.Errorf("select query history: %w", err)
	}
	return records, nil
}

// Ping reports whether the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
