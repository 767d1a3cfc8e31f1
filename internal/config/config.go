package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/davidmmovement/agent-finder-api/internal/utils"
	"github.com/davidmmovement/agent-finder-api/internal/utils/overpass"
)

const AppName = "agent-finder-api"

type Config struct {
	AppName string
	AppPort string
	AppUrl  string

	// Database
	DBUrl string

	// External services. GMapsAPIKey empty means every Google-backed
	// adapter runs its offline/estimate path; each adapter decides that
	// for itself from this value.
	GMapsAPIKey string
	OverpassURL string

	SeedTestData bool
}

func LoadConfig() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	utils.Logger.Info("Loading config for app: ", AppName)

	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}

	appUrl := os.Getenv("APP_URL")
	if appUrl == "" {
		appUrl = "http://localhost:" + appPort
	}

	gmapsKey := os.Getenv("GMAPS_API_KEY")
	if gmapsKey == "" {
		utils.Logger.Warn("GMAPS_API_KEY not set; geocoding, routing and places lookups will use offline fallbacks")
	}

	overpassURL := os.Getenv("OVERPASS_URL")
	if overpassURL == "" {
		overpassURL = overpass.DefaultBaseURL
	}

	seed := false
	if v := os.Getenv("SEED_TEST_DATA"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			utils.Logger.Fatalf("SEED_TEST_DATA invalid: %q", v)
		}
		seed = parsed
	}

	return &Config{
		AppName:      AppName,
		AppPort:      appPort,
		AppUrl:       appUrl,
		DBUrl:        dbURL,
		GMapsAPIKey:  gmapsKey,
		OverpassURL:  overpassURL,
		SeedTestData: seed,
	}
}

func (c *Config) Close() {}
