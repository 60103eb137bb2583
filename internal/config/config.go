package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application, loaded from an
// app.env file and overridable through environment variables.
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`

	// DBSource selects the Postgres backend when set. When empty the
	// stores fall back to JSON files under DataDir.
	DBSource string `mapstructure:"DB_SOURCE"`
	DataDir  string `mapstructure:"DATA_DIR"`

	NominatimBaseURL     string        `mapstructure:"NOMINATIM_BASE_URL"`
	NominatimUserAgent   string        `mapstructure:"NOMINATIM_USER_AGENT"`
	NominatimTimeout     time.Duration `mapstructure:"NOMINATIM_TIMEOUT"`
	NominatimMinInterval time.Duration `mapstructure:"NOMINATIM_MIN_INTERVAL"`

	GeocoderCountryCode string `mapstructure:"GEOCODER_COUNTRY_CODE"`
	GeocoderCountryName string `mapstructure:"GEOCODER_COUNTRY_NAME"`
	GeocoderLanguage    string `mapstructure:"GEOCODER_LANGUAGE"`
	// GeocoderRegions is a comma-separated list of regions tried by the
	// regional geocoding fallback.
	GeocoderRegions string `mapstructure:"GEOCODER_REGIONS"`
}

// Regions splits GeocoderRegions into a trimmed, non-empty list.
func (c Config) Regions() []string {
	var regions []string
	for _, r := range strings.Split(c.GeocoderRegions, ",") {
		if r = strings.TrimSpace(r); r != "" {
			regions = append(regions, r)
		}
	}
	return regions
}

// LoadConfig reads configuration from app.env in the given path, with
// environment variables taking precedence. A missing file is not an
// error; every setting has a default.
func LoadConfig(path string) (Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_SOURCE", "")
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	viper.SetDefault("NOMINATIM_USER_AGENT", "BloodLink/1.0 (contact@example.com)")
	viper.SetDefault("NOMINATIM_TIMEOUT", "15s")
	viper.SetDefault("NOMINATIM_MIN_INTERVAL", "1100ms")
	viper.SetDefault("GEOCODER_COUNTRY_CODE", "in")
	viper.SetDefault("GEOCODER_COUNTRY_NAME", "India")
	viper.SetDefault("GEOCODER_LANGUAGE", "en")
	viper.SetDefault("GEOCODER_REGIONS", "Tamil Nadu")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}
