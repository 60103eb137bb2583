package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"bloodlink-api/internal/config"
	"bloodlink-api/internal/nominatim"
	"bloodlink-api/internal/observability"
	"bloodlink-api/internal/repository"
	"bloodlink-api/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SeedUser struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	BloodGroup string `json:"bloodGroup"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

func main() {
	file := flag.String("file", "", "Path to the seed JSON file to import")
	flag.Parse()

	if *file == "" {
		fmt.Println("Error: --file flag is required")
		os.Exit(1)
	}

	fmt.Printf("Starting import from file: %s\n", *file)

	seed, err := parseSeed(*file)
	if err != nil {
		fmt.Printf("Error parsing seed file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Parsed %d seed users\n", len(seed))

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var (
		users service.UserDirectory
		cache service.GeoCache
	)
	if cfg.DBSource != "" {
		conn, err := pgxpool.New(ctx, cfg.DBSource)
		if err != nil {
			fmt.Printf("Error connecting to database: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()
		if err := repository.EnsureSchema(ctx, conn); err != nil {
			fmt.Printf("Error creating tables: %v\n", err)
			os.Exit(1)
		}
		users = repository.NewPostgresUserStore(conn)
		cache = repository.NewPostgresGeoCache(conn)
	} else {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			fmt.Printf("Error creating data dir: %v\n", err)
			os.Exit(1)
		}
		fileUsers, err := repository.NewFileUserStore(filepath.Join(cfg.DataDir, "users.json"))
		if err != nil {
			fmt.Printf("Error opening user store: %v\n", err)
			os.Exit(1)
		}
		fileCache, err := repository.NewFileGeoCache(filepath.Join(cfg.DataDir, "geocache.json"))
		if err != nil {
			fmt.Printf("Error opening geocode cache: %v\n", err)
			os.Exit(1)
		}
		users, cache = fileUsers, fileCache
	}

	client := nominatim.NewClient(nominatim.Config{
		BaseURL:      cfg.NominatimBaseURL,
		UserAgent:    cfg.NominatimUserAgent,
		CountryCodes: cfg.GeocoderCountryCode,
		Language:     cfg.GeocoderLanguage,
		Timeout:      cfg.NominatimTimeout,
		MinInterval:  cfg.NominatimMinInterval,
	})
	geocoder := service.NewGeocodeService(client, cache, cfg.Regions(), cfg.GeocoderCountryName, observability.NewMetrics())
	userService := service.NewUserService(users, geocoder)

	imported := 0
	for _, s := range seed {
		_, err := userService.Register(ctx, service.RegisterInput{
			Name:       s.Name,
			Email:      s.Email,
			Password:   s.Password,
			BloodGroup: s.BloodGroup,
			Phone:      s.Phone,
			Address:    s.Address,
		})
		switch {
		case err == nil:
			imported++
		case errors.Is(err, service.ErrEmailExists):
			fmt.Printf("Skipping %s: already registered\n", s.Email)
		case errors.Is(err, service.ErrAddressNotResolved):
			fmt.Printf("Skipping %s: address %q could not be geocoded\n", s.Email, s.Address)
		default:
			fmt.Printf("Error importing %s: %v\n", s.Email, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Successfully imported %d of %d users\n", imported, len(seed))
}

func parseSeed(filePath string) ([]SeedUser, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	var seed []SeedUser
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed JSON: %w", err)
	}
	return seed, nil
}
