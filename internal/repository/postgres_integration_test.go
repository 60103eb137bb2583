//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"bloodlink-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jackc/pgx/v5/pgxpool"
)

func setupTestDatabase(t *testing.T) *pgxpool.Pool {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections"),
	}

	postgresC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		postgresC.Terminate(ctx)
	})

	host, err := postgresC.Host(ctx)
	require.NoError(t, err)

	port, err := postgresC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := "postgres://testuser:testpass@" + host + ":" + port.Port() + "/testdb?sslmode=disable"

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
	})

	require.NoError(t, EnsureSchema(ctx, pool))

	return pool
}

func TestPostgresUserStore_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool := setupTestDatabase(t)
	store := NewPostgresUserStore(pool)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := models.User{
		Name:       "Asha",
		Email:      "asha@example.com",
		Password:   "secret",
		BloodGroup: models.OPositive,
		Phone:      "9876501234",
		AddressRaw: "12 Gandhi Ngr, Chennai 600041, Tamil Nadu",
		Location: &models.GeoPoint{
			Lat:               13.0827,
			Lon:               80.2707,
			NormalizedAddress: "12 Gandhi Nagar, Chennai 600041, Tamil Nadu",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	inserted, err := store.Insert(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, inserted.ID)

	found, ok, err := store.FindByEmail(ctx, "ASHA@EXAMPLE.COM")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, inserted.ID, found.ID)
	require.NotNil(t, found.Location)
	assert.InDelta(t, 13.0827, found.Location.Lat, 1e-9)

	_, ok, err = store.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	found.Phone = "0000000000"
	found.BloodGroup = models.ONegative
	require.NoError(t, store.Update(ctx, found))

	again, ok, err := store.FindByID(ctx, inserted.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0000000000", again.Phone)
	assert.Equal(t, models.ONegative, again.BloodGroup)

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// Duplicate email must violate the unique index.
	_, err = store.Insert(ctx, user)
	assert.Error(t, err)
}

func TestPostgresGeoCache_SetGet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool := setupTestDatabase(t)
	cache := NewPostgresGeoCache(pool)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "pin:600041")
	require.NoError(t, err)
	assert.False(t, ok)

	point := models.GeoPoint{Lat: 13.0067, Lon: 80.2565, NormalizedAddress: "Adyar, Chennai 600041"}
	require.NoError(t, cache.Set(ctx, "pin:600041", point))

	got, ok, err := cache.Get(ctx, "pin:600041")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, point, got)

	// Upsert replaces the stored point.
	point.Lat = 13.01
	require.NoError(t, cache.Set(ctx, "pin:600041", point))
	got, _, err = cache.Get(ctx, "pin:600041")
	require.NoError(t, err)
	assert.InDelta(t, 13.01, got.Lat, 1e-9)
}
