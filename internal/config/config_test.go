package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress)
	assert.Equal(t, "", cfg.DBSource)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.NominatimBaseURL)
	assert.Equal(t, 1100*time.Millisecond, cfg.NominatimMinInterval)
	assert.Equal(t, "in", cfg.GeocoderCountryCode)
	assert.Equal(t, []string{"Tamil Nadu"}, cfg.Regions())
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	env := "SERVER_ADDRESS=127.0.0.1:9999\nGEOCODER_REGIONS=Tamil Nadu, Kerala ,\nNOMINATIM_TIMEOUT=5s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(env), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.ServerAddress)
	assert.Equal(t, 5*time.Second, cfg.NominatimTimeout)
	assert.Equal(t, []string{"Tamil Nadu", "Kerala"}, cfg.Regions())
}
