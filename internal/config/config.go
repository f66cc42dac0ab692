package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// NBA Stats API
	NBAStatsBaseURL string        `envconfig:"NBA_STATS_BASE_URL" default:"https://stats.nba.com/stats"`
	NBAStatsTimeout time.Duration `envconfig:"NBA_STATS_TIMEOUT" default:"30s"`

	// Fetch pacing and retry policy; each orchestrator instance holds its
	// own budget so parallel season runs never share pacing state.
	FetchJitterMin time.Duration `envconfig:"FETCH_JITTER_MIN" default:"600ms"`
	FetchJitterMax time.Duration `envconfig:"FETCH_JITTER_MAX" default:"1200ms"`
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"3"`
	RetryCooldown  time.Duration `envconfig:"RETRY_COOLDOWN" default:"30s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"nba_props"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"nba_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Export
	ExportDir string `envconfig:"EXPORT_DIR" default:"exports"`

	// Feature engineering
	GarbageTimeMinutes float64 `envconfig:"GARBAGE_TIME_MINUTES" default:"10"`
	DefaultDaysRest    float64 `envconfig:"DEFAULT_DAYS_REST" default:"3"`

	// Scenario engine. The spread is a heuristic scale constant, not a
	// calibrated variance estimate; override per deployment as needed.
	ScenarioSpread float64 `envconfig:"SCENARIO_SPREAD" default:"4.0"`

	// Scheduler
	EnableScheduler   bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	NightlyIngestCron string `envconfig:"NIGHTLY_INGEST_CRON" default:"0 4 * * *"`

	// Caching TTL
	CacheTTLSchedule time.Duration `envconfig:"CACHE_TTL_SCHEDULE" default:"6h"`
	CacheTTLScenario time.Duration `envconfig:"CACHE_TTL_SCENARIO" default:"10m"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.FetchJitterMax < c.FetchJitterMin {
		return fmt.Errorf("FETCH_JITTER_MAX must be >= FETCH_JITTER_MIN")
	}

	if c.MaxRetries < 1 {
		return fmt.Errorf("MAX_RETRIES must be at least 1")
	}

	if c.ScenarioSpread <= 0 {
		return fmt.Errorf("SCENARIO_SPREAD must be positive")
	}

	return nil
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
