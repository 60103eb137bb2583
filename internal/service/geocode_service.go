package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bloodlink-api/internal/address"
	"bloodlink-api/internal/models"
	"bloodlink-api/internal/nominatim"
	"bloodlink-api/internal/observability"

	"github.com/rs/zerolog/log"
)

// ErrAddressNotResolved is returned when every fallback stage is exhausted
// without a coordinate. Callers must not persist an address-bearing record
// when they receive it.
var ErrAddressNotResolved = errors.New("service: address could not be resolved")

// SearchClient interface for dependency injection
type SearchClient interface {
	Search(ctx context.Context, params nominatim.SearchParams) ([]nominatim.Place, error)
}

// GeoCache interface for dependency injection
type GeoCache interface {
	Get(ctx context.Context, key string) (models.GeoPoint, bool, error)
	Set(ctx context.Context, key string, point models.GeoPoint) error
}

// GeocodeService resolves free-form addresses to coordinates through an
// ordered fallback chain: cached or full-text search, postal-code search, a
// regional city heuristic, then postal code alone. The first stage that
// produces a result wins; remote failures advance to the next stage.
type GeocodeService struct {
	client      SearchClient
	cache       GeoCache
	regions     []string
	countryName string
	metrics     *observability.Metrics
}

// NewGeocodeService creates a new geocode service. regions drives the
// city-heuristic fallback stage; countryName suffixes the broad queries.
func NewGeocodeService(client SearchClient, cache GeoCache, regions []string, countryName string, metrics *observability.Metrics) *GeocodeService {
	return &GeocodeService{
		client:      client,
		cache:       cache,
		regions:     regions,
		countryName: countryName,
		metrics:     metrics,
	}
}

// resolveStage is one step of the fallback chain. params reports whether
// the stage applies to the current address at all; cacheKey is consulted
// before the remote call and written on success.
type resolveStage struct {
	name     string
	cacheKey string
	params   func() (nominatim.SearchParams, bool)
}

func (s *GeocodeService) stages(clean, pin string) []resolveStage {
	addrKey := "addr:" + strings.ToLower(clean)
	pinKey := "pin:" + pin

	stages := []resolveStage{
		{
			name:     "full_text",
			cacheKey: addrKey,
			params: func() (nominatim.SearchParams, bool) {
				return nominatim.SearchParams{Query: clean, Limit: 3}, true
			},
		},
		{
			name:     "postal_code",
			cacheKey: pinKey,
			params: func() (nominatim.SearchParams, bool) {
				if pin == "" {
					return nominatim.SearchParams{}, false
				}
				return nominatim.SearchParams{PostalCode: pin, Limit: 1}, true
			},
		},
	}

	for _, region := range s.regions {
		stages = append(stages, resolveStage{
			name:     "regional",
			cacheKey: addrKey,
			params: func() (nominatim.SearchParams, bool) {
				city := address.CityBeforeRegion(clean, region)
				if city == "" {
					return nominatim.SearchParams{}, false
				}
				locality := strings.TrimSpace(city + " " + pin)
				query := fmt.Sprintf("%s, %s, %s", locality, region, s.countryName)
				return nominatim.SearchParams{Query: query, Limit: 3}, true
			},
		})
	}

	stages = append(stages, resolveStage{
		name:     "postal_code_only",
		cacheKey: pinKey,
		params: func() (nominatim.SearchParams, bool) {
			if pin == "" {
				return nominatim.SearchParams{}, false
			}
			return nominatim.SearchParams{Query: pin + ", " + s.countryName, Limit: 1}, true
		},
	})

	return stages
}

// Resolve turns a raw address into a GeoPoint, or ErrAddressNotResolved
// when every stage comes up empty. Cache hits short-circuit without a
// network call; cache write failures are logged and ignored.
func (s *GeocodeService) Resolve(ctx context.Context, rawAddress string) (models.GeoPoint, error) {
	clean := address.Normalize(rawAddress)
	if clean == "" {
		return models.GeoPoint{}, ErrAddressNotResolved
	}
	pin := address.ExtractPIN(clean)

	for _, stage := range s.stages(clean, pin) {
		if err := ctx.Err(); err != nil {
			return models.GeoPoint{}, err
		}

		params, applicable := stage.params()
		if !applicable {
			continue
		}

		if point, ok, err := s.cache.Get(ctx, stage.cacheKey); err != nil {
			log.Warn().Err(err).Str("key", stage.cacheKey).Msg("geocode cache read failed")
		} else if ok {
			s.metrics.GeocodeCacheLookups.WithLabelValues("hit").Inc()
			return point, nil
		} else {
			s.metrics.GeocodeCacheLookups.WithLabelValues("miss").Inc()
		}

		start := time.Now()
		places, err := s.client.Search(ctx, params)
		s.metrics.ProviderDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			s.metrics.GeocodeRequests.WithLabelValues(stage.name, "error").Inc()
			log.Warn().Err(err).Str("stage", stage.name).Msg("geocode lookup failed")
			continue
		}
		if len(places) == 0 {
			s.metrics.GeocodeRequests.WithLabelValues(stage.name, "empty").Inc()
			continue
		}
		s.metrics.GeocodeRequests.WithLabelValues(stage.name, "success").Inc()

		point := models.GeoPoint{
			Lat:               places[0].Lat,
			Lon:               places[0].Lon,
			NormalizedAddress: clean,
		}
		if err := s.cache.Set(ctx, stage.cacheKey, point); err != nil {
			log.Warn().Err(err).Str("key", stage.cacheKey).Msg("geocode cache write failed")
		}
		s.metrics.GeocodeResolutions.WithLabelValues("resolved").Inc()
		return point, nil
	}

	s.metrics.GeocodeResolutions.WithLabelValues("not_found").Inc()
	return models.GeoPoint{}, ErrAddressNotResolved
}
