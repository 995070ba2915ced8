package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eldtechnologies/folio/internal/models"
)

// SQLiteStore handles SQLite database operations.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/folio.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/folio.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS works (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL,
		efforts TEXT NOT NULL,
		image BLOB NOT NULL,
		image_type TEXT NOT NULL DEFAULT 'application/octet-stream',
		source_code_link TEXT,
		website_link TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS admins (
		id TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteWork(row rowScanner) (*models.Work, error) {
	work := &models.Work{}
	var idStr string
	var source, website sql.NullString
	err := row.Scan(
		&idStr,
		&work.Name,
		&work.Type,
		&work.Description,
		&work.Efforts,
		&work.Image,
		&work.ImageType,
		&source,
		&website,
		&work.CreatedAt,
		&work.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	work.ID = id
	work.SourceCodeLink = source.String
	work.WebsiteLink = website.String
	return work, nil
}

// ListWorks returns all works in creation order.
func (s *SQLiteStore) ListWorks(ctx context.Context) ([]models.Work, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+workColumns+` FROM works ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var works []models.Work
	for rows.Next() {
		work, err := scanSQLiteWork(rows)
		if err != nil {
			return nil, err
		}
		works = append(works, *work)
	}
	return works, rows.Err()
}

// GetWork retrieves a work by ID.
func (s *SQLiteStore) GetWork(ctx context.Context, id uuid.UUID) (*models.Work, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+workColumns+` FROM works WHERE id = ?`, id.String())
	work, err := scanSQLiteWork(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return work, nil
}

// CreateWork inserts work, assigning its ID and timestamps.
func (s *SQLiteStore) CreateWork(ctx context.Context, work *models.Work) error {
	prepareNewWork(work)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO works (`+workColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		work.ID.String(),
		work.Name,
		work.Type,
		work.Description,
		work.Efforts,
		work.Image,
		work.ImageType,
		nullable(work.SourceCodeLink),
		nullable(work.WebsiteLink),
		work.CreatedAt,
		work.UpdatedAt,
	)
	return err
}

// UpdateWork replaces the editable fields of an existing work.
func (s *SQLiteStore) UpdateWork(ctx context.Context, work *models.Work) error {
	work.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE works
		SET name = ?, type = ?, description = ?, efforts = ?, image = ?,
			image_type = ?, source_code_link = ?, website_link = ?, updated_at = ?
		WHERE id = ?
	`,
		work.Name,
		work.Type,
		work.Description,
		work.Efforts,
		work.Image,
		work.ImageType,
		nullable(work.SourceCodeLink),
		nullable(work.WebsiteLink),
		work.UpdatedAt,
		work.ID.String(),
	)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeleteWork removes a work.
func (s *SQLiteStore) DeleteWork(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM works WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// CountWorks returns the number of works.
func (s *SQLiteStore) CountWorks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM works`).Scan(&count)
	return count, err
}

// GetAdmin retrieves the admin with the given ID.
func (s *SQLiteStore) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	admin := &models.Admin{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash, created_at FROM admins WHERE id = ?
	`, id).Scan(&admin.ID, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return admin, nil
}

// CreateAdmin creates the admin credential record.
func (s *SQLiteStore) CreateAdmin(ctx context.Context, id, passwordHash string) (*models.Admin, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (id, password_hash, created_at) VALUES (?, ?, ?)
	`, id, passwordHash, now)
	if err != nil {
		return nil, err
	}
	return &models.Admin{ID: id, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// UpdateAdminPassword replaces the admin's password hash.
func (s *SQLiteStore) UpdateAdminPassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE admins SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// CountAdmins returns the number of admin records.
func (s *SQLiteStore) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count)
	return count, err
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
