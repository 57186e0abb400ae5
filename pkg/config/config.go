package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/avidal/oddsarb/internal/presets"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Odds source API
	OddsAPIBaseURL string
	OddsAPIKey     string
	Regions        []string
	Markets        []string

	// Contract source API (cross-platform mode)
	ContractAPIBaseURL    string
	ContractAPIKey        string
	CrossPlatformMode     bool
	ContractSeriesTickers []string

	// Scan scheduling
	Sports               []string
	Bookmakers           []string
	StatePreset          string
	ScanInterval         time.Duration
	LoopMode             bool
	MaxConcurrentFetches int

	// Arbitrage detection
	MinEdge         float64
	MinEdgeValueBet float64
	MaxSingleBet    float64
	MaxArbTotal     float64

	// Credit guard
	CreditThreshold int

	// Persistence
	OpportunitiesFile string
	BudgetFile        string
	OpportunityTTL    time.Duration

	// Storage (optional analytics sink)
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
// A local .env file is loaded first if present; its absence is not an error.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	apiKey := os.Getenv("ODDS_API_KEY")

	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		OddsAPIBaseURL: getEnvOrDefault("ODDS_API_BASE_URL", "https://api.the-odds-api.com"),
		OddsAPIKey:     apiKey,
		Regions:        getListOrDefault("ODDS_REGIONS", []string{"us"}),
		Markets:        getListOrDefault("ODDS_MARKETS", []string{"h2h", "spreads", "totals"}),

		ContractAPIBaseURL:    getEnvOrDefault("CONTRACT_API_BASE_URL", "https://trading-api.contract-platform.com"),
		ContractAPIKey:        os.Getenv("CONTRACT_API_KEY"),
		CrossPlatformMode:     getBoolOrDefault("CROSS_PLATFORM_MODE", false),
		ContractSeriesTickers: getListOrDefault("CONTRACT_SERIES_TICKERS", []string{"NFL", "NBA", "MLB", "NHL"}),

		Sports:               getListOrDefault("SCAN_SPORTS", presets.DefaultSports),
		Bookmakers:           getListOrDefault("SCAN_BOOKMAKERS", nil),
		StatePreset:          getEnvOrDefault("SCAN_STATE_PRESET", ""),
		ScanInterval:         getDurationOrDefault("SCAN_INTERVAL", 5*time.Minute),
		LoopMode:             getBoolOrDefault("SCAN_LOOP", false),
		MaxConcurrentFetches: getIntOrDefault("MAX_CONCURRENT_FETCHES", 4),

		MinEdge:         getFloat64OrDefault("MIN_EDGE", 0.0),
		MinEdgeValueBet: getFloat64OrDefault("MIN_EDGE_VALUE_BET", 0.05),
		MaxSingleBet:    getFloat64OrDefault("MAX_SINGLE_BET", 50.0),
		MaxArbTotal:     getFloat64OrDefault("MAX_ARB_TOTAL", 100.0),

		CreditThreshold: getIntOrDefault("CREDIT_THRESHOLD", 10),

		OpportunitiesFile: getEnvOrDefault("OPPORTUNITIES_FILE", "logs/opportunities.json"),
		BudgetFile:        getEnvOrDefault("BUDGET_FILE", "logs/budget.json"),
		OpportunityTTL:    getDurationOrDefault("OPPORTUNITY_TTL", 300*time.Second),

		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "oddsarb"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "oddsarb123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "oddsarb"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() (err error) {
	if c.HTTPPort == "" {
		return errors.New("HTTP_PORT cannot be empty")
	}

	if c.OddsAPIBaseURL == "" {
		return errors.New("ODDS_API_BASE_URL cannot be empty")
	}

	if c.CrossPlatformMode && c.ContractAPIBaseURL == "" {
		return errors.New("CONTRACT_API_BASE_URL cannot be empty when cross-platform mode is enabled")
	}

	if c.MinEdge < 0 {
		return fmt.Errorf("MIN_EDGE must be non-negative, got %f", c.MinEdge)
	}

	if c.MinEdgeValueBet < 0 {
		return fmt.Errorf("MIN_EDGE_VALUE_BET must be non-negative, got %f", c.MinEdgeValueBet)
	}

	// Hard platform caps — caller input is clamped, never exceeded.
	if c.MaxSingleBet <= 0 {
		return fmt.Errorf("MAX_SINGLE_BET must be positive, got %f", c.MaxSingleBet)
	}
	if c.MaxSingleBet > 50.0 {
		c.MaxSingleBet = 50.0
	}

	if c.MaxArbTotal <= 0 {
		return fmt.Errorf("MAX_ARB_TOTAL must be positive, got %f", c.MaxArbTotal)
	}
	if c.MaxArbTotal > 100.0 {
		c.MaxArbTotal = 100.0
	}

	if c.CreditThreshold < 0 {
		return fmt.Errorf("CREDIT_THRESHOLD must be non-negative, got %d", c.CreditThreshold)
	}

	if c.ScanInterval <= 0 {
		return fmt.Errorf("SCAN_INTERVAL must be positive, got %s", c.ScanInterval)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'console', got %q", c.StorageMode)
	}

	if len(c.Sports) == 0 {
		return errors.New("at least one sport must be configured")
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}
