// Package store provides storage interfaces and implementations for
// persisting descriptor ingestion records.
package store

import (
	"context"
	"errors"
	"time"
)

// Common errors returned by Store implementations.
var (
	ErrNotFound      = errors.New("ingestion record not found")
	ErrAlreadyExists = errors.New("ingestion record already exists")
)

// Status classifies the outcome of an ingestion attempt.
type Status string

const (
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Record is a persisted ingestion attempt: the raw wire bytes that were
// submitted, their content fingerprint, and the outcome.
type Record struct {
	Fingerprint  string    `json:"fingerprint"`
	RawBytes     []byte    `json:"-"`
	Status       Status    `json:"status"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	MessageCount int       `json:"message_count"`
	EnumCount    int       `json:"enum_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists ingestion records keyed by content fingerprint.
type Store interface {
	// Put inserts or replaces the record for its fingerprint.
	Put(ctx context.Context, rec *Record) error
	// Get retrieves a record by fingerprint. Returns ErrNotFound if absent.
	Get(ctx context.Context, fingerprint string) (*Record, error)
	// List returns all records ordered by CreatedAt ascending.
	List(ctx context.Context) ([]*Record, error)
	// Delete removes a record by fingerprint. It is not an error to delete
	// a fingerprint that does not exist.
	Delete(ctx context.Context, fingerprint string) error

	// Close releases any underlying resources (DB connections, etc).
	Close() error
	// IsHealthy reports whether the backend can currently serve requests.
	IsHealthy(ctx context.Context) bool
}

// New constructs a Store for the named backend ("memory", "postgresql", or
// "mysql") using the corresponding section of cfg. It mirrors the
// teacher's storage factory: one switch, one constructor per backend.
func New(backend string, cfg BackendConfig) (Store, error) {
	switch backend {
	case "memory", "":
		return NewMemoryStore(), nil
	case "postgresql":
		return NewPostgresStore(cfg.PostgreSQL)
	case "mysql":
		return NewMySQLStore(cfg.MySQL)
	default:
		return nil, errors.New("unknown storage backend: " + backend)
	}
}

// BackendConfig groups the per-backend connection settings New needs. It is
// populated from internal/config.StorageConfig by the CLI entry point, kept
// separate here so internal/store does not import internal/config.
type BackendConfig struct {
	PostgreSQL PostgresConfig
	MySQL      MySQLConfig
}
