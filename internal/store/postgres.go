package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string for c.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Database, c.User, c.Password, nonEmpty(c.SSLMode, "disable"),
	)
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS ingestion_records (
		fingerprint VARCHAR(64) PRIMARY KEY,
		status VARCHAR(16) NOT NULL,
		error_kind VARCHAR(64) NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		message_count INTEGER NOT NULL DEFAULT 0,
		enum_count INTEGER NOT NULL DEFAULT 0,
		raw_bytes BYTEA NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ingestion_records_created_at ON ingestion_records(created_at)`,
}

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a PostgreSQL connection pool and runs migrations.
func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	for i, migration := range postgresMigrations {
		if _, err := db.Exec(migration); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Put(ctx context.Context, rec *Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingestion_records (fingerprint, status, error_kind, error_message, message_count, enum_count, raw_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (fingerprint) DO UPDATE SET
			status = EXCLUDED.status,
			error_kind = EXCLUDED.error_kind,
			error_message = EXCLUDED.error_message,
			message_count = EXCLUDED.message_count,
			enum_count = EXCLUDED.enum_count,
			raw_bytes = EXCLUDED.raw_bytes`,
		rec.Fingerprint, rec.Status, rec.ErrorKind, rec.ErrorMessage, rec.MessageCount, rec.EnumCount, rec.RawBytes, createdAtOrNow(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put ingestion record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, fingerprint string) (*Record, error) {
	rec := &Record{Fingerprint: fingerprint}
	err := s.db.QueryRowContext(ctx, `
		SELECT status, error_kind, error_message, message_count, enum_count, raw_bytes, created_at
		FROM ingestion_records WHERE fingerprint = $1`, fingerprint,
	).Scan(&rec.Status, &rec.ErrorKind, &rec.ErrorMessage, &rec.MessageCount, &rec.EnumCount, &rec.RawBytes, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ingestion record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, status, error_kind, error_message, message_count, enum_count, raw_bytes, created_at
		FROM ingestion_records ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list ingestion records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec := &Record{}
		if err := rows.Scan(&rec.Fingerprint, &rec.Status, &rec.ErrorKind, &rec.ErrorMessage, &rec.MessageCount, &rec.EnumCount, &rec.RawBytes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ingestion record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, fingerprint string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ingestion_records WHERE fingerprint = $1`, fingerprint)
	if err != nil {
		return fmt.Errorf("delete ingestion record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) IsHealthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx) == nil
}

func createdAtOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

var _ Store = (*PostgresStore)(nil)
