package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eldtechnologies/folio/internal/models"
)

// pgxPool is the subset of *pgxpool.Pool used by PostgresStore.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool pgxPool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func newPostgresStoreWithPool(pool pgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const workColumns = `id, name, type, description, efforts, image, image_type,
		source_code_link, website_link, created_at, updated_at`

func scanWork(row pgx.Row) (*models.Work, error) {
	work := &models.Work{}
	var source, website *string
	err := row.Scan(
		&work.ID,
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
	work.SourceCodeLink = deref(source)
	work.WebsiteLink = deref(website)
	return work, nil
}

// ListWorks returns all works in creation order.
func (s *PostgresStore) ListWorks(ctx context.Context) ([]models.Work, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+workColumns+` FROM works ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var works []models.Work
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			return nil, err
		}
		works = append(works, *work)
	}
	return works, rows.Err()
}

// GetWork retrieves a work by ID.
func (s *PostgresStore) GetWork(ctx context.Context, id uuid.UUID) (*models.Work, error) {
	work, err := scanWork(s.pool.QueryRow(ctx, `SELECT `+workColumns+` FROM works WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return work, nil
}

// CreateWork inserts work, assigning its ID and timestamps.
func (s *PostgresStore) CreateWork(ctx context.Context, work *models.Work) error {
	prepareNewWork(work)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO works (`+workColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		work.ID,
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
func (s *PostgresStore) UpdateWork(ctx context.Context, work *models.Work) error {
	work.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx, `
		UPDATE works
		SET name = $2, type = $3, description = $4, efforts = $5, image = $6,
			image_type = $7, source_code_link = $8, website_link = $9, updated_at = $10
		WHERE id = $1
	`,
		work.ID,
		work.Name,
		work.Type,
		work.Description,
		work.Efforts,
		work.Image,
		work.ImageType,
		nullable(work.SourceCodeLink),
		nullable(work.WebsiteLink),
		work.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWork removes a work.
func (s *PostgresStore) DeleteWork(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM works WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountWorks returns the number of works.
func (s *PostgresStore) CountWorks(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM works`).Scan(&count)
	return count, err
}

// GetAdmin retrieves the admin with the given ID.
func (s *PostgresStore) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	admin := &models.Admin{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, password_hash, created_at FROM admins WHERE id = $1
	`, id).Scan(&admin.ID, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return admin, nil
}

// CreateAdmin creates the admin credential record.
func (s *PostgresStore) CreateAdmin(ctx context.Context, id, passwordHash string) (*models.Admin, error) {
	admin := &models.Admin{ID: id, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO admins (id, password_hash, created_at) VALUES ($1, $2, $3)
	`, admin.ID, admin.PasswordHash, admin.CreatedAt)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// UpdateAdminPassword replaces the admin's password hash.
func (s *PostgresStore) UpdateAdminPassword(ctx context.Context, id, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE admins SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountAdmins returns the number of admin records.
func (s *PostgresStore) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count)
	return count, err
}
