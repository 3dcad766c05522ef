package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLConfig holds MySQL connection configuration.
type MySQLConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	TLS             string        `yaml:"tls"` // true, false, skip-verify, preferred
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN returns the MySQL connection string for c.
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, nonEmpty(c.TLS, "false"),
	)
}

var mysqlMigrations = []string{
	`CREATE TABLE IF NOT EXISTS ingestion_records (
		fingerprint VARCHAR(64) PRIMARY KEY,
		status VARCHAR(16) NOT NULL,
		error_kind VARCHAR(64) NOT NULL DEFAULT '',
		error_message TEXT,
		message_count INT NOT NULL DEFAULT 0,
		enum_count INT NOT NULL DEFAULT 0,
		raw_bytes MEDIUMBLOB NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_ingestion_records_created_at (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

// MySQLStore implements Store using MySQL.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore opens a MySQL connection pool and runs migrations.
func NewMySQLStore(cfg MySQLConfig) (*MySQLStore, error) {
	db, err := sql.Open("mysql", cfg.DSN())
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
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	for i, migration := range mysqlMigrations {
		if _, err := db.Exec(migration); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Put(ctx context.Context, rec *Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingestion_records (fingerprint, status, error_kind, error_message, message_count, enum_count, raw_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			error_kind = VALUES(error_kind),
			error_message = VALUES(error_message),
			message_count = VALUES(message_count),
			enum_count = VALUES(enum_count),
			raw_bytes = VALUES(raw_bytes)`,
		rec.Fingerprint, rec.Status, rec.ErrorKind, rec.ErrorMessage, rec.MessageCount, rec.EnumCount, rec.RawBytes, createdAtOrNow(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put ingestion record: %w", err)
	}
	return nil
}

func (s *MySQLStore) Get(ctx context.Context, fingerprint string) (*Record, error) {
	rec := &Record{Fingerprint: fingerprint}
	err := s.db.QueryRowContext(ctx, `
		SELECT status, error_kind, error_message, message_count, enum_count, raw_bytes, created_at
		FROM ingestion_records WHERE fingerprint = ?`, fingerprint,
	).Scan(&rec.Status, &rec.ErrorKind, &rec.ErrorMessage, &rec.MessageCount, &rec.EnumCount, &rec.RawBytes, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ingestion record: %w", err)
	}
	return rec, nil
}

func (s *MySQLStore) List(ctx context.Context) ([]*Record, error) {
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

func (s *MySQLStore) Delete(ctx context.Context, fingerprint string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ingestion_records WHERE fingerprint = ?`, fingerprint)
	if err != nil {
		return fmt.Errorf("delete ingestion record: %w", err)
	}
	return nil
}

func (s *MySQLStore) Close() error {
	return s.db.Close()
}

func (s *MySQLStore) IsHealthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx) == nil
}

var _ Store = (*MySQLStore)(nil)
