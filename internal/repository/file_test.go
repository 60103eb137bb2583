package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bloodlink-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(email string) models.User {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return models.User{
		Name:       "Asha",
		Email:      email,
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
}

func TestFileUserStore_CRUD(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.json")

	store, err := NewFileUserStore(path)
	require.NoError(t, err)

	inserted, err := store.Insert(ctx, testUser("asha@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "1", inserted.ID)

	second, err := store.Insert(ctx, testUser("ravi@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "2", second.ID)

	// Case-insensitive email lookup.
	found, ok, err := store.FindByEmail(ctx, "ASHA@Example.COM")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, inserted.ID, found.ID)

	_, ok, err = store.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	found, ok, err = store.FindByID(ctx, "2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ravi@example.com", found.Email)

	found.Phone = "0000000000"
	require.NoError(t, store.Update(ctx, found))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "0000000000", all[1].Phone)

	assert.Error(t, store.Update(ctx, models.User{ID: "99"}))
}

func TestFileUserStore_ReloadsFromDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.json")

	store, err := NewFileUserStore(path)
	require.NoError(t, err)
	_, err = store.Insert(ctx, testUser("asha@example.com"))
	require.NoError(t, err)
	_, err = store.Insert(ctx, testUser("ravi@example.com"))
	require.NoError(t, err)

	// A fresh store must see the flushed records and continue the sequence.
	reloaded, err := NewFileUserStore(path)
	require.NoError(t, err)

	all, err := reloaded.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "asha@example.com", all[0].Email)
	require.NotNil(t, all[0].Location)
	assert.Equal(t, 13.0827, all[0].Location.Lat)

	third, err := reloaded.Insert(ctx, testUser("mina@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "3", third.ID)
}

func TestFileGeoCache_SetGetReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "geo-cache.json")

	cache, err := NewFileGeoCache(path)
	require.NoError(t, err)

	_, ok, err := cache.Get(ctx, "addr:missing")
	require.NoError(t, err)
	assert.False(t, ok)

	point := models.GeoPoint{Lat: 13.0827, Lon: 80.2707, NormalizedAddress: "Adyar, Chennai"}
	require.NoError(t, cache.Set(ctx, "addr:adyar, chennai", point))

	got, ok, err := cache.Get(ctx, "addr:adyar, chennai")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, point, got)

	reloaded, err := NewFileGeoCache(path)
	require.NoError(t, err)
	got, ok, err = reloaded.Get(ctx, "addr:adyar, chennai")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, point, got)
}
