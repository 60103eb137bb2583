package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"bloodlink-api/internal/models"

	"github.com/rs/zerolog/log"
)

// FileGeoCache is a persisted cache-key → GeoPoint mapping backed by a JSON
// file. The whole cache is loaded at construction and flushed after every
// insertion. Entries are never evicted.
type FileGeoCache struct {
	path string

	mu      sync.Mutex
	entries map[string]models.GeoPoint
}

// NewFileGeoCache loads the cache from path; a missing file is an empty
// cache, not an error.
func NewFileGeoCache(path string) (*FileGeoCache, error) {
	c := &FileGeoCache{path: path, entries: make(map[string]models.GeoPoint)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: read geocode cache: %w", err)
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("repository: parse geocode cache: %w", err)
	}
	return c, nil
}

// Get returns the cached point for key, if present.
func (c *FileGeoCache) Get(_ context.Context, key string) (models.GeoPoint, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.entries[key]
	return p, ok, nil
}

// Set stores the point under key and flushes the file. A failed flush is
// logged; the in-memory entry is kept either way.
func (c *FileGeoCache) Set(_ context.Context, key string, point models.GeoPoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = point

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("encode geocode cache failed")
		return nil
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		log.Warn().Err(err).Str("path", c.path).Msg("write geocode cache failed")
	}
	return nil
}
