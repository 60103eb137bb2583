package main

import (
	"context"
	"os"
	"path/filepath"

	"bloodlink-api/internal/config"
	"bloodlink-api/internal/handler"
	"bloodlink-api/internal/nominatim"
	"bloodlink-api/internal/observability"
	"bloodlink-api/internal/repository"
	"bloodlink-api/internal/service"

	_ "bloodlink-api/docs"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			BloodLink API
//	@version		1.0
//	@description	Blood donor registry with address geocoding and nearest-donor matching.
//	@BasePath		/api

func main() {
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	ctx := context.Background()

	// Storage backend: Postgres when DB_SOURCE is set, JSON files otherwise.
	var (
		users service.UserDirectory
		all   service.UserLister
		cache service.GeoCache
	)
	switch {
	case cfg.DBSource != "":
		conn, err := pgxpool.New(ctx, cfg.DBSource)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot connect to db")
		}
		defer conn.Close()
		if err := repository.EnsureSchema(ctx, conn); err != nil {
			log.Fatal().Err(err).Msg("cannot ensure schema")
		}
		store := repository.NewPostgresUserStore(conn)
		users, all = store, store
		cache = repository.NewPostgresGeoCache(conn)
	default:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			log.Fatal().Err(err).Msg("cannot create data dir")
		}
		store, err := repository.NewFileUserStore(filepath.Join(cfg.DataDir, "users.json"))
		if err != nil {
			log.Fatal().Err(err).Msg("cannot open user store")
		}
		fileCache, err := repository.NewFileGeoCache(filepath.Join(cfg.DataDir, "geocache.json"))
		if err != nil {
			log.Fatal().Err(err).Msg("cannot open geocode cache")
		}
		users, all = store, store
		cache = fileCache
	}

	metrics := observability.NewMetrics()

	client := nominatim.NewClient(nominatim.Config{
		BaseURL:      cfg.NominatimBaseURL,
		UserAgent:    cfg.NominatimUserAgent,
		CountryCodes: cfg.GeocoderCountryCode,
		Language:     cfg.GeocoderLanguage,
		Timeout:      cfg.NominatimTimeout,
		MinInterval:  cfg.NominatimMinInterval,
	})

	geocodeService := service.NewGeocodeService(client, cache, cfg.Regions(), cfg.GeocoderCountryName, metrics)
	userService := service.NewUserService(users, geocodeService)
	matchService := service.NewMatchService(all)

	userHandler := handler.NewUserHandler(userService)
	nearestHandler := handler.NewNearestHandler(matchService)
	healthHandler := handler.NewHealthHandler(all)

	r := gin.Default()

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.POST("/register", userHandler.Register)
	api.POST("/login", userHandler.Login)
	api.GET("/users/:id", userHandler.GetUser)
	api.PUT("/users/:id", userHandler.UpdateUser)
	api.GET("/nearest", nearestHandler.Nearest)

	r.Run(cfg.ServerAddress)
}
