package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eldtechnologies/folio/internal/crypto"
	"github.com/eldtechnologies/folio/internal/models"
)

// ErrNotFound is returned by mutations that matched no row.
var ErrNotFound = errors.New("not found")

// DataStore defines the interface for persistent storage of works and the admin.
// Both PostgresStore and SQLiteStore implement this interface.
// Lookups return (nil, nil) when nothing matches.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Work operations
	ListWorks(ctx context.Context) ([]models.Work, error)
	GetWork(ctx context.Context, id uuid.UUID) (*models.Work, error)
	CreateWork(ctx context.Context, work *models.Work) error
	UpdateWork(ctx context.Context, work *models.Work) error
	DeleteWork(ctx context.Context, id uuid.UUID) error
	CountWorks(ctx context.Context) (int64, error)

	// Admin operations
	GetAdmin(ctx context.Context, id string) (*models.Admin, error)
	CreateAdmin(ctx context.Context, id, passwordHash string) (*models.Admin, error)
	UpdateAdminPassword(ctx context.Context, id, passwordHash string) error
	CountAdmins(ctx context.Context) (int64, error)
}

// Open connects to the store named by databaseURL. postgres:// and
// postgresql:// URLs select PostgreSQL (migrations are applied first);
// anything else is treated as a SQLite path, with an optional sqlite://
// prefix. An empty URL uses the default SQLite file.
func Open(ctx context.Context, databaseURL string) (DataStore, error) {
	if isPostgresURL(databaseURL) {
		if err := RunMigrations(ctx, databaseURL); err != nil {
			return nil, err
		}
		return NewPostgresStore(ctx, databaseURL)
	}
	return NewSQLiteStore(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
}

func isPostgresURL(u string) bool {
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}

// nullable maps an empty string to a NULL column value.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// prepareNewWork assigns a time-ordered ID and creation timestamps.
func prepareNewWork(work *models.Work) {
	if work.ID == uuid.Nil {
		work.ID = crypto.NewUUIDv7()
	}
	now := time.Now().UTC()
	work.CreatedAt = now
	work.UpdatedAt = now
}
