package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"bloodlink-api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the users and geocode_cache tables when missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		password TEXT NOT NULL,
		blood_group VARCHAR(3) NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		address_raw TEXT NOT NULL,
		address_normalized TEXT,
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		last_donated_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx ON users (LOWER(email));

	CREATE TABLE IF NOT EXISTS geocode_cache (
		key TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		address_normalized TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`
	if _, err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("repository: ensure schema: %w", err)
	}
	return nil
}

// PostgresUserStore implements the user directory on PostgreSQL.
type PostgresUserStore struct {
	db *pgxpool.Pool
}

// NewPostgresUserStore creates a PostgreSQL user store.
func NewPostgresUserStore(db *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = `id, name, email, password, blood_group, phone,
	address_raw, address_normalized, lat, lon, last_donated_at, created_at, updated_at`

// FindByEmail looks a user up by email, case-insensitively.
func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (models.User, bool, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
	return scanUser(row)
}

// FindByID looks a user up by its identifier.
func (s *PostgresUserStore) FindByID(ctx context.Context, id string) (models.User, bool, error) {
	numeric, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return models.User{}, false, nil
	}
	row := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, numeric)
	return scanUser(row)
}

// Insert stores a new user and returns it with its assigned identifier.
func (s *PostgresUserStore) Insert(ctx context.Context, user models.User) (models.User, error) {
	var lat, lon *float64
	var normalized *string
	if user.Location != nil {
		lat, lon = &user.Location.Lat, &user.Location.Lon
		normalized = &user.Location.NormalizedAddress
	}

	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password, blood_group, phone,
			address_raw, address_normalized, lat, lon, last_donated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		user.Name, user.Email, user.Password, user.BloodGroup, user.Phone,
		user.AddressRaw, normalized, lat, lon, user.LastDonatedAt, user.CreatedAt, user.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return models.User{}, fmt.Errorf("repository: insert user: %w", err)
	}

	user.ID = strconv.FormatInt(id, 10)
	return user, nil
}

// Update replaces every mutable field of the stored record.
func (s *PostgresUserStore) Update(ctx context.Context, user models.User) error {
	numeric, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("repository: invalid user id %q", user.ID)
	}

	var lat, lon *float64
	var normalized *string
	if user.Location != nil {
		lat, lon = &user.Location.Lat, &user.Location.Lon
		normalized = &user.Location.NormalizedAddress
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE users SET name = $2, email = $3, password = $4, blood_group = $5,
			phone = $6, address_raw = $7, address_normalized = $8, lat = $9,
			lon = $10, last_donated_at = $11, updated_at = $12
		WHERE id = $1`,
		numeric, user.Name, user.Email, user.Password, user.BloodGroup,
		user.Phone, user.AddressRaw, normalized, lat, lon, user.LastDonatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repository: user %s not found", user.ID)
	}
	return nil
}

// All returns every stored user, oldest first.
func (s *PostgresUserStore) All(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("repository: list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, _, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: iterate users: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (models.User, bool, error) {
	var (
		u          models.User
		id         int64
		normalized *string
		lat, lon   *float64
	)
	err := row.Scan(&id, &u.Name, &u.Email, &u.Password, &u.BloodGroup, &u.Phone,
		&u.AddressRaw, &normalized, &lat, &lon, &u.LastDonatedAt, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("repository: scan user: %w", err)
	}

	u.ID = strconv.FormatInt(id, 10)
	if lat != nil && lon != nil {
		point := models.GeoPoint{Lat: *lat, Lon: *lon}
		if normalized != nil {
			point.NormalizedAddress = *normalized
		}
		u.Location = &point
	}
	return u, true, nil
}

// PostgresGeoCache implements the geocode cache on PostgreSQL.
type PostgresGeoCache struct {
	db *pgxpool.Pool
}

// NewPostgresGeoCache creates a PostgreSQL geocode cache.
func NewPostgresGeoCache(db *pgxpool.Pool) *PostgresGeoCache {
	return &PostgresGeoCache{db: db}
}

// Get returns the cached point for key, if present.
func (c *PostgresGeoCache) Get(ctx context.Context, key string) (models.GeoPoint, bool, error) {
	var p models.GeoPoint
	err := c.db.QueryRow(ctx,
		`SELECT lat, lon, address_normalized FROM geocode_cache WHERE key = $1`, key,
	).Scan(&p.Lat, &p.Lon, &p.NormalizedAddress)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.GeoPoint{}, false, nil
	}
	if err != nil {
		return models.GeoPoint{}, false, fmt.Errorf("repository: get cache entry: %w", err)
	}
	return p, true, nil
}

// Set upserts the point under key.
func (c *PostgresGeoCache) Set(ctx context.Context, key string, point models.GeoPoint) error {
	_, err := c.db.Exec(ctx, `
		INSERT INTO geocode_cache (key, lat, lon, address_normalized)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			lat = EXCLUDED.lat, lon = EXCLUDED.lon,
			address_normalized = EXCLUDED.address_normalized`,
		key, point.Lat, point.Lon, point.NormalizedAddress,
	)
	if err != nil {
		return fmt.Errorf("repository: set cache entry: %w", err)
	}
	return nil
}
